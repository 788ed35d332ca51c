// Package fetch is the market-data boundary of Market Pulse. It pulls
// daily price histories from the Yahoo Finance chart API and hands them
// to the analytics core as in-memory PriceSeries; nothing downstream of
// this package performs I/O.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"marketpulse/internal/config"
	"marketpulse/internal/series"
)

// Client fetches historical prices from the Yahoo Finance chart API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewClient creates a market data client from configuration.
func NewClient(cfg config.FetchConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

// chartResponse is the response structure of the Yahoo Finance chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries retrieves the daily close history of one ticker between
// start and end. Days the API reports with a null close become gaps in
// the returned series; the normalizer resolves them later.
func (c *Client) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (series.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return series.PriceSeries{}, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return series.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return series.PriceSeries{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return series.PriceSeries{}, fmt.Errorf("fetch %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return series.PriceSeries{}, fmt.Errorf("decode %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return series.PriceSeries{}, fmt.Errorf("fetch %s: %s: %s", ticker, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return series.PriceSeries{}, fmt.Errorf("fetch %s: no data in response", ticker)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	s := series.PriceSeries{Ticker: ticker}
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue // gap
		}
		date := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		s.Points = append(s.Points, series.Point{Date: date, Price: *closes[i]})
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })

	return s, nil
}

// FetchAll retrieves histories for every ticker concurrently. Each
// ticker writes only its own result slot, so the merge is
// order-independent and identical to a sequential run. Tickers that
// fail are logged and omitted from the returned map; one bad symbol
// never aborts the batch.
func (c *Client) FetchAll(ctx context.Context, tickers []string, start, end time.Time) (map[string]series.PriceSeries, error) {
	if len(tickers) == 0 {
		return nil, &series.EmptyInputError{Op: "fetch"}
	}

	results := make([]series.PriceSeries, len(tickers))
	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			s, err := c.FetchSeries(gctx, ticker, start, end)
			if err != nil {
				c.logger.WarnContext(gctx, "skipping ticker after failed fetch",
					"ticker", ticker,
					"error", err,
				)
				mu.Lock()
				failed = append(failed, ticker)
				mu.Unlock()
				return nil
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]series.PriceSeries, len(tickers))
	for _, s := range results {
		if !s.IsEmpty() {
			out[s.Ticker] = s
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no data retrieved for any of %d tickers: %w", len(tickers), &series.EmptyInputError{Op: "fetch"})
	}

	c.logger.InfoContext(ctx, "fetch completed",
		"requested", len(tickers),
		"retrieved", len(out),
		"failed", len(failed),
	)
	return out, nil
}
