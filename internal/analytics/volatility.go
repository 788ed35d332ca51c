package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"marketpulse/internal/series"
)

// TradingDaysPerYear is the conventional annualization base for daily data.
const TradingDaysPerYear = 252

// RollingVolatility computes the sample standard deviation of a return
// column over a trailing window of size window, optionally annualized by
// sqrt(TradingDaysPerYear). The first window-1 positions, and any
// position whose trailing window contains a missing cell, are missing in
// the output; a window of 1 has no defined sample deviation, so every
// position is missing rather than NaN. With window equal to the series
// length the single defined value equals the whole-series standard
// deviation.
func RollingVolatility(returns []series.Cell, window int, annualize bool) ([]series.Cell, error) {
	return rolling(returns, window, func(buf []float64) series.Cell {
		if len(buf) < 2 {
			return series.None()
		}
		v := stat.StdDev(buf, nil)
		if annualize {
			v *= math.Sqrt(TradingDaysPerYear)
		}
		return series.Some(v)
	})
}

// MovingAverage computes the trailing mean over a window of size window,
// with the same missing-cell semantics as RollingVolatility.
func MovingAverage(values []series.Cell, window int) ([]series.Cell, error) {
	return rolling(values, window, func(buf []float64) series.Cell {
		return series.Some(stat.Mean(buf, nil))
	})
}

func rolling(values []series.Cell, window int, fn func([]float64) series.Cell) ([]series.Cell, error) {
	if window < 1 {
		return nil, fmt.Errorf("window must be at least 1, got %d", window)
	}

	out := make([]series.Cell, len(values))
	buf := make([]float64, 0, window)
	for i := range values {
		if i < window-1 {
			continue
		}
		buf = buf[:0]
		complete := true
		for k := i - window + 1; k <= i; k++ {
			if !values[k].Valid {
				complete = false
				break
			}
			buf = append(buf, values[k].Value)
		}
		if !complete {
			continue
		}
		out[i] = fn(buf)
	}
	return out, nil
}
