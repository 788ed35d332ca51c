package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/exporter"
	"marketpulse/internal/series"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestStore_SaveAndLoadSeries(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	original := series.PriceSeries{
		Ticker: "AAPL",
		Points: []series.Point{
			{Date: day(2), Price: 100},
			{Date: day(3), Price: 110.25},
		},
	}
	require.NoError(t, s.SaveSeries(original))

	loaded, err := s.LoadSeries("aapl")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestStore_SaveSeries_NoTicker(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	assert.Error(t, s.SaveSeries(series.PriceSeries{}))
}

func TestStore_LoadSeries_Missing(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	_, err := s.LoadSeries("MISSING")
	assert.Error(t, err)
}

func TestStore_List(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	cached, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, cached)

	require.NoError(t, s.SaveSeries(series.PriceSeries{
		Ticker: "MSFT",
		Points: []series.Point{{Date: day(2), Price: 200}},
	}))
	require.NoError(t, s.SaveSeries(series.PriceSeries{
		Ticker: "AAPL",
		Points: []series.Point{{Date: day(2), Price: 100}},
	}))

	cached, err = s.List()
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "AAPL", cached[0].Ticker)
	assert.Equal(t, "MSFT", cached[1].Ticker)
}

func TestLoadFrame_RoundTripsExporterOutput(t *testing.T) {
	frame := series.NewFrame([]time.Time{day(2), day(3)}, []string{"AAPL", "MSFT"})
	frame.Set(0, 0, series.Some(100))
	frame.Set(0, 1, series.Some(200))
	frame.Set(1, 0, series.Some(110))
	// MSFT missing on the second day.

	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, exporter.NewCSVWriter(nil).WriteTable(path, frame))

	loaded, err := LoadFrame(path)
	require.NoError(t, err)

	assert.Equal(t, frame.Dates, loaded.Dates)
	assert.Equal(t, frame.Tickers, loaded.Tickers)
	assert.Equal(t, series.Some(110), loaded.At(1, 0))
	assert.Equal(t, series.None(), loaded.At(1, 1))
}

func TestLoadFrame_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	_, err := LoadFrame(path)
	assert.Error(t, err)
}
