package analytics

import (
	"time"

	"marketpulse/internal/series"
)

// Drawdown describes the worst peak-to-trough decline of a price series.
// MaxDrawdown is always <= 0; for a series that never falls below its
// running maximum it is exactly 0.
type Drawdown struct {
	MaxDrawdown    float64   `json:"max_drawdown"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	PeakDate       time.Time `json:"peak_date"`
	PeakValue      float64   `json:"peak_value"`
	TroughDate     time.Time `json:"trough_date"`
	TroughValue    float64   `json:"trough_value"`
}

// DrawdownSeries returns the decline from the running maximum at each
// point: (price - runningMax)/runningMax.
func DrawdownSeries(prices []float64) []float64 {
	out := make([]float64, len(prices))
	runningMax := 0.0
	for i, p := range prices {
		if i == 0 || p > runningMax {
			runningMax = p
		}
		out[i] = (p - runningMax) / runningMax
	}
	return out
}

// MaxDrawdown finds the deepest drawdown of a price series along with
// the peak and trough that realize it. The trough is the first point
// achieving the minimum drawdown; the peak is the first maximum price
// within the prefix ending at the trough, so it can never postdate it.
func MaxDrawdown(s series.PriceSeries) (Drawdown, error) {
	if s.IsEmpty() {
		return Drawdown{}, &series.EmptyInputError{Op: "max drawdown"}
	}

	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	drawdowns := DrawdownSeries(prices)

	trough := 0
	for i, d := range drawdowns {
		if d < drawdowns[trough] {
			trough = i
		}
	}
	peak := 0
	for i := 1; i <= trough; i++ {
		if prices[i] > prices[peak] {
			peak = i
		}
	}

	return Drawdown{
		MaxDrawdown:    drawdowns[trough],
		MaxDrawdownPct: drawdowns[trough] * 100,
		PeakDate:       s.Points[peak].Date,
		PeakValue:      prices[peak],
		TroughDate:     s.Points[trough].Date,
		TroughValue:    prices[trough],
	}, nil
}
