// Package services orchestrates the analysis pipeline: fetch, align,
// compute, and report. Handlers and commands depend on this package
// instead of wiring the lower layers themselves.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"marketpulse/internal/analytics"
	"marketpulse/internal/config"
	"marketpulse/internal/series"
)

// ErrInvalidRequest marks request validation failures so transport
// layers can map them to a 400 instead of a server error.
var ErrInvalidRequest = errors.New("invalid analysis request")

// Fetcher abstracts the price source so tests can substitute fixtures
// for the live market API.
type Fetcher interface {
	FetchAll(ctx context.Context, tickers []string, start, end time.Time) (map[string]series.PriceSeries, error)
}

// AnalysisRequest carries the parameters of one analysis run. Zero
// values fall back to the configured defaults.
type AnalysisRequest struct {
	Tickers    []string `json:"tickers" validate:"required,min=1,dive,required"`
	Start      string   `json:"start" validate:"required,datetime=2006-01-02"`
	End        string   `json:"end" validate:"required,datetime=2006-01-02"`
	Align      string   `json:"align,omitempty" validate:"omitempty,oneof=union intersection"`
	FillPolicy string   `json:"fill_policy,omitempty" validate:"omitempty,oneof=forward_backward forward backward drop interpolate"`
	ReturnKind string   `json:"return_kind,omitempty" validate:"omitempty,oneof=simple log"`
	Method     string   `json:"method,omitempty" validate:"omitempty,oneof=pearson spearman kendall"`
	Window     int      `json:"window,omitempty" validate:"omitempty,min=2"`
}

// TickerReport gathers the per-ticker scalar results.
type TickerReport struct {
	Ticker           string                `json:"ticker"`
	CumulativeReturn float64               `json:"cumulative_return"`
	Trend            analytics.TrendResult `json:"trend"`
	Drawdown         analytics.Drawdown    `json:"drawdown"`
}

// AnalysisResult is the full bundle produced by one run.
type AnalysisResult struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Request     AnalysisRequest               `json:"request"`
	Raw         map[string]series.PriceSeries `json:"-"`
	Prices      *series.Frame                 `json:"-"`
	Returns     *series.Frame                 `json:"-"`
	Cumulative  *series.Frame                 `json:"-"`
	Volatility  *series.Frame                 `json:"-"`
	Summaries   []analytics.Summary           `json:"summaries"`
	Correlation *analytics.CorrelationMatrix  `json:"correlation"`
	Profile     []analytics.RiskReturnPoint   `json:"profile"`
	Reports     []TickerReport                `json:"reports"`
}

// AnalysisService runs the pipeline end to end.
type AnalysisService struct {
	fetcher  Fetcher
	cfg      config.AnalysisConfig
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(fetcher Fetcher, cfg config.AnalysisConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		fetcher:  fetcher,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateRequest checks the request against its validation tags.
func (s *AnalysisService) ValidateRequest(req AnalysisRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	start, _ := time.Parse(series.DateFormat, req.Start)
	end, _ := time.Parse(series.DateFormat, req.End)
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRequest, req.Start, req.End)
	}
	return nil
}

// options resolves request fields against configured defaults.
type options struct {
	align      series.AlignMode
	fill       series.FillPolicy
	kind       series.ReturnKind
	method     analytics.Method
	window     int
	start, end time.Time
}

func (s *AnalysisService) resolve(req AnalysisRequest) (options, error) {
	var opts options
	var err error

	if opts.align, err = series.ParseAlignMode(req.Align); err != nil {
		return opts, err
	}
	fillName := req.FillPolicy
	if fillName == "" {
		fillName = s.cfg.FillPolicy
	}
	if opts.fill, err = series.ParseFillPolicy(fillName); err != nil {
		return opts, err
	}
	kindName := req.ReturnKind
	if kindName == "" {
		kindName = s.cfg.ReturnKind
	}
	if opts.kind, err = series.ParseReturnKind(kindName); err != nil {
		return opts, err
	}
	methodName := req.Method
	if methodName == "" {
		methodName = s.cfg.CorrelationMethod
	}
	if opts.method, err = analytics.ParseMethod(methodName); err != nil {
		return opts, err
	}
	opts.window = req.Window
	if opts.window == 0 {
		opts.window = s.cfg.VolatilityWindow
	}
	if opts.start, err = time.Parse(series.DateFormat, req.Start); err != nil {
		return opts, err
	}
	if opts.end, err = time.Parse(series.DateFormat, req.End); err != nil {
		return opts, err
	}
	return opts, nil
}

// Run executes the full pipeline for the request. Fetch failures for
// individual tickers are tolerated as long as at least one series comes
// back; everything downstream operates on what was retrieved.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if err := s.ValidateRequest(req); err != nil {
		return nil, err
	}
	opts, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "starting analysis run",
		slog.Int("ticker_count", len(req.Tickers)),
		slog.String("start", req.Start),
		slog.String("end", req.End))

	fetched, err := s.fetcher.FetchAll(ctx, req.Tickers, opts.start, opts.end)
	if err != nil {
		return nil, err
	}
	prices, err := series.Align(orderedSeries(fetched), opts.align, opts.fill)
	if err != nil {
		return nil, err
	}

	result, err := s.analyze(ctx, prices, req, opts)
	if err != nil {
		return nil, err
	}
	result.Raw = fetched
	return result, nil
}

// AnalyzeFrame runs every metric over an already aligned price frame.
// It is the entry point for callers that load prices from disk instead
// of the market API.
func (s *AnalysisService) AnalyzeFrame(ctx context.Context, prices *series.Frame, req AnalysisRequest) (*AnalysisResult, error) {
	opts, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, prices, req, opts)
}

func (s *AnalysisService) analyze(ctx context.Context, prices *series.Frame, req AnalysisRequest, opts options) (*AnalysisResult, error) {
	returns, err := prices.Returns(opts.kind)
	if err != nil {
		return nil, err
	}

	summaries, err := analytics.Describe(returns)
	if err != nil {
		return nil, err
	}
	correlation, err := analytics.Correlation(returns, opts.method)
	if err != nil {
		return nil, err
	}
	profile, err := analytics.RiskReturnProfile(returns, s.cfg.RiskFreeRate, s.cfg.PeriodsPerYear)
	if err != nil {
		return nil, err
	}

	cumulative := series.NewFrame(returns.Dates, returns.Tickers)
	volatility := series.NewFrame(returns.Dates, returns.Tickers)
	reports := make([]TickerReport, 0, len(returns.Tickers))

	for j, ticker := range returns.Tickers {
		column, err := returns.Column(ticker)
		if err != nil {
			return nil, err
		}
		for i, c := range series.CumulativeSeries(column) {
			cumulative.Set(i, j, c)
		}
		vol, err := analytics.RollingVolatility(column, opts.window, true)
		if err != nil {
			return nil, err
		}
		for i, c := range vol {
			volatility.Set(i, j, c)
		}

		report := TickerReport{
			Ticker: ticker,
			Trend:  analytics.DetectTrend(column),
		}
		if values, err := returns.ColumnValues(ticker); err == nil {
			report.CumulativeReturn = series.CumulativeReturn(values)
		}
		if ps, err := prices.Series(ticker); err == nil {
			if dd, err := analytics.MaxDrawdown(ps); err == nil {
				report.Drawdown = dd
			}
		}
		reports = append(reports, report)
	}

	s.logger.InfoContext(ctx, "analysis run complete",
		slog.Int("tickers_analyzed", len(returns.Tickers)),
		slog.Int("return_rows", returns.NumRows()))

	return &AnalysisResult{
		GeneratedAt: time.Now().UTC(),
		Request:     req,
		Prices:      prices,
		Returns:     returns,
		Cumulative:  cumulative,
		Volatility:  volatility,
		Summaries:   summaries,
		Correlation: correlation,
		Profile:     profile,
		Reports:     reports,
	}, nil
}

// orderedSeries flattens the fetch result into deterministic ticker
// order so frames come out identical run to run.
func orderedSeries(fetched map[string]series.PriceSeries) []series.PriceSeries {
	tickers := make([]string, 0, len(fetched))
	for t := range fetched {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	list := make([]series.PriceSeries, 0, len(tickers))
	for _, t := range tickers {
		list = append(list, fetched[t])
	}
	return list
}
