// Package chart renders analysis artifacts as PNG images. Rendering is
// delegated to go-charts; this package only shapes frames and metric
// tables into series lists.
package chart

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	charts "github.com/vicanso/go-charts/v2"

	"marketpulse/internal/analytics"
	"marketpulse/internal/series"
)

const (
	defaultWidth  = 1000
	defaultHeight = 600
)

// Renderer produces PNG charts for frames and derived metrics.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a new chart renderer
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// frameSeries converts a frame into go-charts line series. Missing
// cells become null values so gaps stay visible instead of collapsing
// to zero.
func frameSeries(f *series.Frame) ([][]float64, []string) {
	values := make([][]float64, len(f.Tickers))
	for col := range f.Tickers {
		column := make([]float64, len(f.Dates))
		for row := range f.Dates {
			cell := f.At(row, col)
			if cell.Valid {
				column[row] = cell.Value
			} else {
				column[row] = charts.GetNullValue()
			}
		}
		values[col] = column
	}

	labels := make([]string, len(f.Dates))
	for i, d := range f.Dates {
		labels[i] = d.Format(series.DateFormat)
	}
	return values, labels
}

// xAxisSplit keeps date axes readable for long histories.
func xAxisSplit(n int) int {
	if n <= 10 {
		return n
	}
	return 10
}

// LineChart renders every frame column as a line and returns the PNG
// bytes. Used for prices, cumulative returns, and rolling volatility
// alike; the caller picks the title.
func (r *Renderer) LineChart(f *series.Frame, title string) ([]byte, error) {
	if f == nil || len(f.Dates) == 0 {
		return nil, fmt.Errorf("no data points to chart")
	}

	values, labels := frameSeries(f)

	painter, err := charts.LineRender(values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: xAxisSplit(len(labels)),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: f.Tickers,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render line chart: %w", err)
	}
	return painter.Bytes()
}

// RiskReturnChart renders the risk/return profile as a grouped bar
// chart, one bar pair per ticker.
func (r *Renderer) RiskReturnChart(profile []analytics.RiskReturnPoint, title string) ([]byte, error) {
	if len(profile) == 0 {
		return nil, fmt.Errorf("no data points to chart")
	}

	tickers := make([]string, len(profile))
	returns := make([]float64, len(profile))
	vols := make([]float64, len(profile))
	for i, p := range profile {
		tickers[i] = p.Ticker
		returns[i] = p.AnnualizedReturn
		vols[i] = p.AnnualizedVolatility
	}

	painter, err := charts.BarRender([][]float64{returns, vols},
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(tickers),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"annualized return", "annualized volatility"},
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render risk/return chart: %w", err)
	}
	return painter.Bytes()
}

// CorrelationChart renders each ticker's correlations against the
// others as grouped bars. A heat map would be denser, but bars keep
// the exact coefficients readable.
func (r *Renderer) CorrelationChart(m *analytics.CorrelationMatrix, title string) ([]byte, error) {
	if m == nil || len(m.Tickers) == 0 {
		return nil, fmt.Errorf("no data points to chart")
	}

	values := make([][]float64, len(m.Tickers))
	for i := range m.Tickers {
		row := make([]float64, len(m.Tickers))
		for j := range m.Tickers {
			row[j] = m.At(i, j)
		}
		values[i] = row
	}

	painter, err := charts.BarRender(values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(m.Tickers),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: m.Tickers,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render correlation chart: %w", err)
	}
	return painter.Bytes()
}

// SavePNG writes chart bytes to disk, creating parent directories.
func (r *Renderer) SavePNG(filePath string, data []byte) error {
	r.logger.Info("writing chart",
		slog.String("path", filePath),
		slog.Int("bytes", len(data)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}
