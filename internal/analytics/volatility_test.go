package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"marketpulse/internal/series"
)

func cells(values ...float64) []series.Cell {
	out := make([]series.Cell, len(values))
	for i, v := range values {
		out[i] = series.Some(v)
	}
	return out
}

func TestRollingVolatilityWindowing(t *testing.T) {
	returns := cells(0.01, -0.02, 0.015, 0.005, -0.01)

	vol, err := RollingVolatility(returns, 3, false)
	require.NoError(t, err)
	require.Len(t, vol, 5)

	assert.False(t, vol[0].Valid, "first window-1 entries are undefined")
	assert.False(t, vol[1].Valid)
	for i := 2; i < 5; i++ {
		require.True(t, vol[i].Valid, "entry %d", i)
	}

	expected := stat.StdDev([]float64{0.01, -0.02, 0.015}, nil)
	assert.InDelta(t, expected, vol[2].Value, 1e-12)
}

func TestRollingVolatilityFullWindowEqualsGlobalStd(t *testing.T) {
	values := []float64{0.02, -0.01, 0.03, 0.005, -0.025, 0.01}
	returns := cells(values...)

	vol, err := RollingVolatility(returns, len(values), true)
	require.NoError(t, err)

	last := vol[len(vol)-1]
	require.True(t, last.Valid)
	global := stat.StdDev(values, nil)
	assert.InDelta(t, global, last.Value/math.Sqrt(TradingDaysPerYear), 1e-12,
		"annualization factor divided out leaves the whole-series std")
}

func TestRollingVolatilityAnnualization(t *testing.T) {
	returns := cells(0.01, 0.02, 0.03)

	raw, err := RollingVolatility(returns, 3, false)
	require.NoError(t, err)
	annualized, err := RollingVolatility(returns, 3, true)
	require.NoError(t, err)

	assert.InDelta(t, raw[2].Value*math.Sqrt(252), annualized[2].Value, 1e-12)
}

func TestRollingVolatilityMissingCellsBreakWindow(t *testing.T) {
	returns := []series.Cell{
		series.Some(0.01), series.Some(0.02), series.None(), series.Some(0.01), series.Some(0.03),
	}

	vol, err := RollingVolatility(returns, 2, false)
	require.NoError(t, err)

	assert.True(t, vol[1].Valid)
	assert.False(t, vol[2].Valid, "window containing a gap is undefined")
	assert.False(t, vol[3].Valid, "window starting inside a gap is undefined")
	assert.True(t, vol[4].Valid)
}

func TestRollingVolatilityWindowOfOne(t *testing.T) {
	vol, err := RollingVolatility(cells(0.01, 0.02), 1, false)
	require.NoError(t, err)
	for i, c := range vol {
		assert.False(t, c.Valid, "sample std of a single value is undefined (entry %d)", i)
	}
}

func TestRollingVolatilityInvalidWindow(t *testing.T) {
	_, err := RollingVolatility(cells(0.01), 0, false)
	assert.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	ma, err := MovingAverage(cells(1, 2, 3, 4), 2)
	require.NoError(t, err)

	assert.False(t, ma[0].Valid)
	assert.InDelta(t, 1.5, ma[1].Value, 1e-12)
	assert.InDelta(t, 2.5, ma[2].Value, 1e-12)
	assert.InDelta(t, 3.5, ma[3].Value, 1e-12)
}
