package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFillPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FillPolicy
		wantErr bool
	}{
		{"", FillForwardBackward, false},
		{"forward_backward", FillForwardBackward, false},
		{"forward", FillForward, false},
		{"forward_fill", FillForward, false},
		{"backward", FillBackward, false},
		{"drop", FillDrop, false},
		{"interpolate", FillInterpolate, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFillPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		in   []PriceSeries
	}{
		{"no series", nil},
		{"all empty", []PriceSeries{{Ticker: "AAPL"}, {Ticker: "MSFT"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Align(tt.in, AlignUnion, FillForwardBackward)
			var emptyErr *EmptyInputError
			require.ErrorAs(t, err, &emptyErr)
		})
	}
}

func TestAlignForwardBackwardFill(t *testing.T) {
	// One series covers days 1-4 with a gap on day 3; the other starts
	// late on day 2. Forward fill must carry day 2's price over day 3 and
	// backward fill must resolve MSFT's missing day 1.
	aapl := PriceSeries{Ticker: "AAPL", Points: []Point{
		{Date: day(1), Price: 100},
		{Date: day(2), Price: 102},
		{Date: day(4), Price: 104},
	}}
	msft := PriceSeries{Ticker: "MSFT", Points: []Point{
		{Date: day(2), Price: 300},
		{Date: day(3), Price: 303},
		{Date: day(4), Price: 306},
	}}

	f, err := Align([]PriceSeries{aapl, msft}, AlignUnion, FillForwardBackward)
	require.NoError(t, err)

	require.Equal(t, 4, f.NumRows())
	require.Equal(t, []string{"AAPL", "MSFT"}, f.Tickers)

	aaplCol, err := f.Column("AAPL")
	require.NoError(t, err)
	assert.Equal(t, []Cell{Some(100), Some(102), Some(102), Some(104)}, aaplCol,
		"day-3 gap forward-filled from day 2")

	msftCol, err := f.Column("MSFT")
	require.NoError(t, err)
	assert.Equal(t, []Cell{Some(300), Some(300), Some(303), Some(306)}, msftCol,
		"leading gap backward-filled from first observation")

	// Default policy leaves zero missing values.
	for i := 0; i < f.NumRows(); i++ {
		for j := 0; j < f.NumCols(); j++ {
			assert.True(t, f.At(i, j).Valid, "cell (%d,%d) should be filled", i, j)
		}
	}
}

func TestAlignIntersection(t *testing.T) {
	a := PriceSeries{Ticker: "A", Points: []Point{
		{Date: day(1), Price: 1},
		{Date: day(2), Price: 2},
		{Date: day(3), Price: 3},
	}}
	b := PriceSeries{Ticker: "B", Points: []Point{
		{Date: day(2), Price: 20},
		{Date: day(3), Price: 30},
	}}

	f, err := Align([]PriceSeries{a, b}, AlignIntersection, FillForwardBackward)
	require.NoError(t, err)

	require.Equal(t, 2, f.NumRows())
	assert.Equal(t, day(2), f.Dates[0])
	assert.Equal(t, day(3), f.Dates[1])
}

func TestAlignFillVariants(t *testing.T) {
	// Gap on day 2, leading gap on day 1 for the second series.
	a := PriceSeries{Ticker: "A", Points: []Point{
		{Date: day(1), Price: 10},
		{Date: day(3), Price: 30},
	}}
	b := PriceSeries{Ticker: "B", Points: []Point{
		{Date: day(2), Price: 5},
		{Date: day(3), Price: 6},
	}}

	t.Run("forward only leaves leading gaps", func(t *testing.T) {
		f, err := Align([]PriceSeries{a, b}, AlignUnion, FillForward)
		require.NoError(t, err)
		bCol, err := f.Column("B")
		require.NoError(t, err)
		assert.False(t, bCol[0].Valid)
		assert.Equal(t, Some(5.0), bCol[1])
	})

	t.Run("drop removes incomplete rows", func(t *testing.T) {
		f, err := Align([]PriceSeries{a, b}, AlignUnion, FillDrop)
		require.NoError(t, err)
		require.Equal(t, 1, f.NumRows())
		assert.Equal(t, day(3), f.Dates[0])
	})

	t.Run("interpolate fills interior gap linearly", func(t *testing.T) {
		f, err := Align([]PriceSeries{a, b}, AlignUnion, FillInterpolate)
		require.NoError(t, err)
		aCol, err := f.Column("A")
		require.NoError(t, err)
		require.True(t, aCol[1].Valid)
		assert.InDelta(t, 20.0, aCol[1].Value, 1e-12)

		bCol, err := f.Column("B")
		require.NoError(t, err)
		assert.False(t, bCol[0].Valid, "leading gap is not interpolated")
	})
}

func TestAlignIgnoresEmptySeries(t *testing.T) {
	// A failed fetch contributes an empty series; alignment must proceed
	// with whatever subset has data.
	a := PriceSeries{Ticker: "A", Points: []Point{{Date: day(1), Price: 10}}}
	f, err := Align([]PriceSeries{a, {Ticker: "GONE"}}, AlignUnion, FillForwardBackward)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, f.Tickers)
}

func TestAlignRejectsDuplicateTickers(t *testing.T) {
	// Columns are addressed by ticker, so two series claiming the same
	// symbol cannot share a frame.
	a := PriceSeries{Ticker: "A", Points: []Point{{Date: day(1), Price: 10}}}
	b := PriceSeries{Ticker: "A", Points: []Point{{Date: day(2), Price: 11}}}

	_, err := Align([]PriceSeries{a, b}, AlignUnion, FillForwardBackward)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate ticker")
}

func TestAlignIsPure(t *testing.T) {
	a := PriceSeries{Ticker: "A", Points: []Point{
		{Date: day(1), Price: 10},
		{Date: day(3), Price: 30},
	}}
	before := append([]Point(nil), a.Points...)

	_, err := Align([]PriceSeries{a}, AlignUnion, FillForwardBackward)
	require.NoError(t, err)
	assert.Equal(t, before, a.Points, "input series must not be modified")
}
