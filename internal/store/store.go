// Package store persists raw price history on disk so analysis runs can
// work offline. Each ticker is one CSV file under the raw data
// directory; aligned frames round-trip through the same wide CSV layout
// the exporter writes.
package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketpulse/internal/series"
)

// CachedSeries describes one ticker's cached history.
type CachedSeries struct {
	Ticker  string
	Path    string
	ModTime time.Time
}

// Store reads and writes price history under a data directory.
type Store struct {
	dataDir string
	logger  *slog.Logger
}

// NewStore creates a new price store
func NewStore(dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dataDir: dataDir, logger: logger}
}

func (s *Store) seriesPath(ticker string) string {
	return filepath.Join(s.dataDir, strings.ToUpper(ticker)+".csv")
}

// SaveSeries writes one ticker's history as a date,close CSV.
func (s *Store) SaveSeries(ps series.PriceSeries) error {
	if ps.Ticker == "" {
		return fmt.Errorf("cannot save series without a ticker")
	}

	path := s.seriesPath(ps.Ticker)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "close"}); err != nil {
		return err
	}
	for _, p := range ps.Points {
		record := []string{
			p.Date.Format(series.DateFormat),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	s.logger.Info("cached price series",
		slog.String("ticker", ps.Ticker),
		slog.Int("points", len(ps.Points)))
	return writer.Error()
}

// LoadSeries reads one ticker's cached history.
func (s *Store) LoadSeries(ticker string) (series.PriceSeries, error) {
	path := s.seriesPath(ticker)
	file, err := os.Open(path)
	if err != nil {
		return series.PriceSeries{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return series.PriceSeries{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return series.PriceSeries{Ticker: strings.ToUpper(ticker)}, nil
	}

	ps := series.PriceSeries{Ticker: strings.ToUpper(ticker)}
	for i, record := range records[1:] {
		if len(record) < 2 {
			return series.PriceSeries{}, fmt.Errorf("%s: malformed row %d", path, i+2)
		}
		date, err := time.Parse(series.DateFormat, record[0])
		if err != nil {
			return series.PriceSeries{}, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		price, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return series.PriceSeries{}, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		ps.Points = append(ps.Points, series.Point{Date: date, Price: price})
	}
	return ps, nil
}

// List returns every cached ticker sorted by symbol.
func (s *Store) List() ([]CachedSeries, error) {
	entries, err := os.ReadDir(s.dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.dataDir, err)
	}

	var cached []CachedSeries
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		cached = append(cached, CachedSeries{
			Ticker:  strings.TrimSuffix(entry.Name(), ".csv"),
			Path:    filepath.Join(s.dataDir, entry.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(cached, func(i, j int) bool { return cached[i].Ticker < cached[j].Ticker })
	return cached, nil
}

// LoadFrame reads an aligned price frame from a wide CSV: a date column
// followed by one column per ticker, empty strings marking missing
// cells. This is the layout the exporter writes, so exported reports
// load straight back in.
func LoadFrame(path string) (*series.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, &series.EmptyInputError{Op: "load frame"}
	}

	header := records[0]
	// Tolerate the UTF-8 BOM the exporter writes for Excel.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	tickers := header[1:]

	dates := make([]time.Time, 0, len(records)-1)
	for i, record := range records[1:] {
		date, err := time.Parse(series.DateFormat, record[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		dates = append(dates, date)
	}

	frame := series.NewFrame(dates, tickers)
	for i, record := range records[1:] {
		for j := range tickers {
			raw := record[j+1]
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", path, i+2, tickers[j], err)
			}
			frame.Set(i, j, series.Some(value))
		}
	}
	return frame, nil
}
