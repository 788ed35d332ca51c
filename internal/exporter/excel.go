package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter writes a multi-sheet analysis workbook.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// Sheet pairs a sheet name with its tabular content.
type Sheet struct {
	Name  string
	Table Tabular
}

// WriteWorkbook writes the given sheets into a single .xlsx file, one
// table per sheet. Sheet names longer than the Excel limit of 31
// characters are truncated.
func (w *ExcelWriter) WriteWorkbook(filePath string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	w.logger.Info("writing Excel workbook",
		slog.String("path", filePath),
		slog.Int("sheet_count", len(sheets)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := sheetName(sheet.Name)
		if i == 0 {
			// Rename the default sheet instead of leaving an empty "Sheet1".
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to create sheet %q: %w", name, err)
			}
		}

		if err := writeSheet(f, name, sheet.Table); err != nil {
			return fmt.Errorf("failed to fill sheet %q: %w", name, err)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, table Tabular) error {
	row := 1
	if headers := table.Headers(); len(headers) > 0 {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(name, cell, &headers); err != nil {
			return err
		}
		row++
	}

	for _, record := range table.Records() {
		values := make([]interface{}, len(record))
		for i, v := range record {
			// Numeric strings become numbers so Excel can chart them.
			if n, err := strconv.ParseFloat(v, 64); err == nil && v != "" {
				values[i] = n
			} else {
				values[i] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func sheetName(name string) string {
	if name == "" {
		return "Sheet"
	}
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
