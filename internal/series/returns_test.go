package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricesToSeries(ticker string, prices []float64) PriceSeries {
	s := PriceSeries{Ticker: ticker}
	for i, p := range prices {
		s.Points = append(s.Points, Point{Date: day(i + 1), Price: p})
	}
	return s
}

func TestSeriesReturnsSimple(t *testing.T) {
	s := pricesToSeries("TEST", []float64{100, 110, 121, 108.9})

	returns, err := SeriesReturns(s, SimpleReturn)
	require.NoError(t, err)

	require.Len(t, returns, 3, "first observation has no return")
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, 0.10, returns[1], 1e-12)
	assert.InDelta(t, -0.10, returns[2], 1e-12)
}

func TestSeriesReturnsLog(t *testing.T) {
	s := pricesToSeries("TEST", []float64{100, 110})

	returns, err := SeriesReturns(s, LogReturn)
	require.NoError(t, err)

	require.Len(t, returns, 1)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
}

func TestSeriesReturnsInvalidPrice(t *testing.T) {
	s := PriceSeries{Ticker: "BAD", Points: []Point{
		{Date: day(1), Price: 100},
		{Date: day(2), Price: 0},
		{Date: day(3), Price: 50},
	}}

	_, err := SeriesReturns(s, SimpleReturn)
	var priceErr *InvalidPriceError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, "BAD", priceErr.Ticker)
	assert.Equal(t, day(2), priceErr.Date)
}

func TestFrameReturns(t *testing.T) {
	f, err := Align([]PriceSeries{
		pricesToSeries("A", []float64{100, 110, 121}),
		pricesToSeries("B", []float64{50, 55, 66}),
	}, AlignUnion, FillForwardBackward)
	require.NoError(t, err)

	r, err := f.Returns(SimpleReturn)
	require.NoError(t, err)

	assert.Equal(t, 2, r.NumRows(), "first date row dropped")
	assert.Equal(t, f.Dates[1:], r.Dates)

	aCol, err := r.Column("A")
	require.NoError(t, err)
	assert.InDelta(t, 0.10, aCol[0].Value, 1e-12)
	assert.InDelta(t, 0.10, aCol[1].Value, 1e-12)

	bCol, err := r.Column("B")
	require.NoError(t, err)
	assert.InDelta(t, 0.10, bCol[0].Value, 1e-12)
	assert.InDelta(t, 0.20, bCol[1].Value, 1e-12)
}

func TestFrameReturnsMissingPriorIsUndefined(t *testing.T) {
	f := NewFrame([]time.Time{day(1), day(2), day(3)}, []string{"A"})
	f.Set(0, 0, Some(100))
	// day 2 missing
	f.Set(2, 0, Some(110))

	r, err := f.Returns(SimpleReturn)
	require.NoError(t, err)

	col, err := r.Column("A")
	require.NoError(t, err)
	assert.False(t, col[0].Valid, "return with missing current price is undefined")
	assert.False(t, col[1].Valid, "return with missing prior price is undefined")
}

func TestFrameReturnsSingleRow(t *testing.T) {
	f := NewFrame([]time.Time{day(1)}, []string{"A"})
	f.Set(0, 0, Some(100))

	r, err := f.Returns(SimpleReturn)
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumRows())
	assert.Equal(t, []string{"A"}, r.Tickers)
}

func TestLongReturnsGrouped(t *testing.T) {
	// Two tickers interleaved the way a concatenated fetch produces them.
	// Grouped computation must never derive a return across the boundary
	// between AAPL's last row and MSFT's first.
	rows := []Row{
		{Date: day(1), Ticker: "AAPL", Close: 100},
		{Date: day(2), Ticker: "AAPL", Close: 110},
		{Date: day(1), Ticker: "MSFT", Close: 300},
		{Date: day(2), Ticker: "MSFT", Close: 330},
	}

	returns, err := LongReturns(rows, SimpleReturn)
	require.NoError(t, err)

	require.Len(t, returns, 2, "each ticker's first observation is omitted")
	assert.Equal(t, "AAPL", returns[0].Ticker)
	assert.InDelta(t, 0.10, returns[0].Return, 1e-12)
	assert.Equal(t, "MSFT", returns[1].Ticker)
	assert.InDelta(t, 0.10, returns[1].Return, 1e-12)
}

func TestLongReturnsUngroupedOptIn(t *testing.T) {
	rows := []Row{
		{Date: day(1), Ticker: "AAPL", Close: 100},
		{Date: day(2), Ticker: "AAPL", Close: 110},
		{Date: day(1), Ticker: "MSFT", Close: 220},
	}

	returns, err := LongReturns(rows, SimpleReturn, Ungrouped())
	require.NoError(t, err)

	require.Len(t, returns, 2)
	// Second entry deliberately crosses the AAPL->MSFT boundary.
	assert.Equal(t, "MSFT", returns[1].Ticker)
	assert.InDelta(t, 1.0, returns[1].Return, 1e-12)
}

func TestCumulativeReturnRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
	}{
		{"golden scenario", []float64{100, 110, 121, 108.9}},
		{"monotonic", []float64{50, 51, 53, 57, 60}},
		{"volatile", []float64{200, 180, 240, 100, 150.5}},
		{"single step", []float64{10, 12.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			returns, err := SeriesReturns(pricesToSeries("X", tt.prices), SimpleReturn)
			require.NoError(t, err)

			cumulative := CumulativeReturn(returns)
			expected := tt.prices[len(tt.prices)-1]/tt.prices[0] - 1
			assert.InDelta(t, expected, cumulative, 1e-12,
				"cumulative return must round-trip to final/initial - 1")
		})
	}
}

func TestCumulativeReturnGolden(t *testing.T) {
	returns, err := SeriesReturns(pricesToSeries("X", []float64{100, 110, 121, 108.9}), SimpleReturn)
	require.NoError(t, err)
	// 108.9/100 - 1, per the round-trip identity.
	assert.InDelta(t, 0.089, CumulativeReturn(returns), 1e-10)
}

func TestCumulativeSeries(t *testing.T) {
	cells := []Cell{Some(0.10), None(), Some(0.10)}
	out := CumulativeSeries(cells)

	require.Len(t, out, 3)
	assert.InDelta(t, 0.10, out[0].Value, 1e-12)
	assert.False(t, out[1].Valid, "missing returns stay missing")
	assert.InDelta(t, 0.21, out[2].Value, 1e-12)
}
