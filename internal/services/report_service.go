package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"marketpulse/internal/analytics"
	"marketpulse/internal/chart"
	"marketpulse/internal/exporter"
)

// statTable adapts header/record pairs to the exporter's Tabular.
type statTable struct {
	headers []string
	records [][]string
}

func (t statTable) Headers() []string   { return t.headers }
func (t statTable) Records() [][]string { return t.records }

// ReportService writes an analysis result to disk as CSV files, an
// Excel workbook, a JSON summary, and PNG charts.
type ReportService struct {
	csv      *exporter.CSVWriter
	excel    *exporter.ExcelWriter
	json     *exporter.JSONWriter
	renderer *chart.Renderer
	logger   *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		csv:      exporter.NewCSVWriter(logger),
		excel:    exporter.NewExcelWriter(logger),
		json:     exporter.NewJSONWriter(logger),
		renderer: chart.NewRenderer(logger),
		logger:   logger,
	}
}

// WriteReport writes the full artifact set under outDir. Chart failures
// are logged and skipped so a rendering problem never loses the data
// files.
func (s *ReportService) WriteReport(ctx context.Context, outDir string, result *AnalysisResult) error {
	summaryTable := statTable{analytics.SummaryHeaders(), analytics.SummaryRecords(result.Summaries)}
	profileTable := statTable{analytics.RiskReturnHeaders(), analytics.RiskReturnRecords(result.Profile)}

	tables := []struct {
		name  string
		table exporter.Tabular
	}{
		{"prices", result.Prices},
		{"returns", result.Returns},
		{"cumulative_returns", result.Cumulative},
		{"rolling_volatility", result.Volatility},
		{"correlation", result.Correlation},
		{"statistics", summaryTable},
		{"risk_return", profileTable},
	}

	for _, t := range tables {
		path := filepath.Join(outDir, t.name+".csv")
		if err := s.csv.WriteTable(path, t.table); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.name, err)
		}
	}

	sheets := make([]exporter.Sheet, 0, len(tables))
	for _, t := range tables {
		sheets = append(sheets, exporter.Sheet{Name: t.name, Table: t.table})
	}
	if err := s.excel.WriteWorkbook(filepath.Join(outDir, "analysis.xlsx"), sheets); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	if err := s.json.WriteJSON(filepath.Join(outDir, "summary.json"), result); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	s.writeCharts(ctx, outDir, result)

	s.logger.InfoContext(ctx, "report written", slog.String("dir", outDir))
	return nil
}

func (s *ReportService) writeCharts(ctx context.Context, outDir string, result *AnalysisResult) {
	charts := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{"prices", func() ([]byte, error) {
			return s.renderer.LineChart(result.Prices, "Closing Prices")
		}},
		{"cumulative_returns", func() ([]byte, error) {
			return s.renderer.LineChart(result.Cumulative, "Cumulative Returns")
		}},
		{"rolling_volatility", func() ([]byte, error) {
			return s.renderer.LineChart(result.Volatility, "Rolling Volatility (annualized)")
		}},
		{"risk_return", func() ([]byte, error) {
			return s.renderer.RiskReturnChart(result.Profile, "Risk vs Return")
		}},
		{"correlation", func() ([]byte, error) {
			return s.renderer.CorrelationChart(result.Correlation, "Return Correlation")
		}},
	}

	for _, c := range charts {
		data, err := c.render()
		if err != nil {
			s.logger.WarnContext(ctx, "skipping chart",
				slog.String("chart", c.name),
				slog.String("error", err.Error()))
			continue
		}
		path := filepath.Join(outDir, "charts", c.name+".png")
		if err := s.renderer.SavePNG(path, data); err != nil {
			s.logger.WarnContext(ctx, "failed to save chart",
				slog.String("chart", c.name),
				slog.String("error", err.Error()))
		}
	}
}
