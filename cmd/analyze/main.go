// Command analyze runs the full analysis pipeline once and writes the
// report artifacts to disk: CSV tables, an Excel workbook, a JSON
// summary, and PNG charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketpulse/internal/config"
	"marketpulse/internal/fetch"
	"marketpulse/internal/infrastructure"
	"marketpulse/internal/services"
	"marketpulse/internal/store"
)

func main() {
	tickers := flag.String("tickers", "", "comma-separated ticker symbols (required)")
	start := flag.String("start", "", "start date YYYY-MM-DD (defaults to one year ago)")
	end := flag.String("end", "", "end date YYYY-MM-DD (defaults to today)")
	outputDir := flag.String("out", "", "output directory for the report (defaults to data/processed)")
	window := flag.Int("window", 0, "rolling volatility window in trading days")
	method := flag.String("method", "", "correlation method: pearson, spearman, or kendall")
	fill := flag.String("fill", "", "gap fill policy: forward_backward, forward, backward, drop, or interpolate")
	kind := flag.String("returns", "", "return kind: simple or log")
	align := flag.String("align", "", "date alignment: union or intersection")
	pricesFile := flag.String("prices", "", "analyze a wide price CSV instead of fetching (offline mode)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	if *tickers == "" && *pricesFile == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -tickers AAPL,MSFT [-start 2024-01-01] [-end 2024-12-31]")
		fmt.Fprintln(os.Stderr, "       analyze -prices data/processed/prices.csv")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	now := time.Now().UTC()
	if *end == "" {
		*end = now.Format("2006-01-02")
	}
	if *start == "" {
		*start = now.AddDate(-1, 0, 0).Format("2006-01-02")
	}
	if *outputDir == "" {
		*outputDir = filepath.Join(cfg.Paths.ProcessedDir, now.Format("2006-01-02_150405"))
	}

	req := services.AnalysisRequest{
		Tickers:    splitTickers(*tickers),
		Start:      *start,
		End:        *end,
		Align:      *align,
		FillPolicy: *fill,
		ReturnKind: *kind,
		Method:     *method,
		Window:     *window,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := fetch.NewClient(cfg.Fetch, logger)
	analysis := services.NewAnalysisService(client, cfg.Analysis, logger)

	logger.InfoContext(ctx, "running analysis",
		slog.Any("tickers", req.Tickers),
		slog.String("start", req.Start),
		slog.String("end", req.End),
		slog.String("out", *outputDir))

	var result *services.AnalysisResult
	if *pricesFile != "" {
		prices, err := store.LoadFrame(*pricesFile)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load prices", slog.String("error", err.Error()))
			os.Exit(1)
		}
		req.Tickers = prices.Tickers
		if n := prices.NumRows(); n > 0 {
			req.Start = prices.Dates[0].Format("2006-01-02")
			req.End = prices.Dates[n-1].Format("2006-01-02")
		}
		result, err = analysis.AnalyzeFrame(ctx, prices, req)
		if err != nil {
			logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		result, err = analysis.Run(ctx, req)
		if err != nil {
			logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		raw := store.NewStore(cfg.Paths.RawDir, logger)
		for _, ps := range result.Raw {
			if err := raw.SaveSeries(ps); err != nil {
				logger.WarnContext(ctx, "failed to cache raw series",
					slog.String("ticker", ps.Ticker),
					slog.String("error", err.Error()))
			}
		}
	}

	reports := services.NewReportService(logger)
	if err := reports.WriteReport(ctx, *outputDir, result); err != nil {
		logger.ErrorContext(ctx, "failed to write report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Report written to %s\n", *outputDir)
	for _, r := range result.Reports {
		fmt.Printf("  %-8s cumulative %+.2f%%  max drawdown %+.2f%%  trend %s\n",
			r.Ticker,
			r.CumulativeReturn*100,
			r.Drawdown.MaxDrawdown*100,
			r.Trend.Trend)
	}
}

func splitTickers(s string) []string {
	var tickers []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tickers = append(tickers, strings.ToUpper(t))
		}
	}
	return tickers
}
