package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/series"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func frameFromColumns(t *testing.T, columns map[string][]float64) *series.Frame {
	t.Helper()
	var list []series.PriceSeries
	for ticker, prices := range columns {
		s := series.PriceSeries{Ticker: ticker}
		for i, p := range prices {
			s.Points = append(s.Points, series.Point{Date: day(i + 1), Price: p})
		}
		list = append(list, s)
	}
	f, err := series.Align(list, series.AlignUnion, series.FillForwardBackward)
	require.NoError(t, err)
	return f
}

func TestDescribe(t *testing.T) {
	f := frameFromColumns(t, map[string][]float64{
		"AAPL": {1, 2, 3, 4},
	})

	summaries, err := Describe(f)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.2909944487358056, s.Std, 1e-12, "sample std, ddof=1")
	assert.InDelta(t, 1.0, s.Min, 1e-12)
	assert.InDelta(t, 1.75, s.Q1, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 3.25, s.Q3, 1e-12)
	assert.InDelta(t, 4.0, s.Max, 1e-12)
}

func TestDescribeSingleObservation(t *testing.T) {
	f := frameFromColumns(t, map[string][]float64{"X": {42}})

	summaries, err := Describe(f)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0.0, s.Std, "std of one observation reported as 0, not NaN")
	assert.Equal(t, 42.0, s.Median)
}

func TestDescribeNoNumericColumns(t *testing.T) {
	f := series.NewFrame([]time.Time{day(1)}, []string{"EMPTY"})

	_, err := Describe(f)
	var noCols *NoNumericColumnsError
	require.ErrorAs(t, err, &noCols)
}

func TestPercentileOddLength(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 2.0, percentile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 3.0, percentile(sorted, 0.50), 1e-12)
	assert.InDelta(t, 4.0, percentile(sorted, 0.75), 1e-12)
	assert.InDelta(t, 1.0, percentile(sorted, 0), 1e-12)
	assert.InDelta(t, 5.0, percentile(sorted, 1), 1e-12)
}
