package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"marketpulse/internal/series"
)

// Trend labels for TrendResult.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// TrendResult is the outcome of an ordinary least-squares regression of
// a series against its observation index.
type TrendResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	PValue    float64 `json:"p_value"`
	Trend     string  `json:"trend"`
}

// DetectTrend regresses the defined cells of a series against a
// synthetic index 0..n-1, skipping missing cells but keeping their index
// positions. The label follows the sign of the slope; a slope of exactly
// 0 is "stable". With fewer than two defined observations the sentinel
// insufficient_data result (slope 0, intercept 0, r² 0, p 1) is
// returned instead of an error, so a thin column degrades gracefully in
// a multi-ticker report.
func DetectTrend(values []series.Cell) TrendResult {
	var x, y []float64
	for i, c := range values {
		if c.Valid {
			x = append(x, float64(i))
			y = append(y, c.Value)
		}
	}

	if len(y) < 2 {
		return TrendResult{PValue: 1, Trend: TrendInsufficientData}
	}
	if constant(y) {
		// Zero variance: a flat line fits exactly with slope 0, and there
		// is no linear relationship to test.
		return TrendResult{Intercept: y[0], PValue: 1, Trend: TrendStable}
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)
	rSquared := r * r

	result := TrendResult{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  rSquared,
		PValue:    slopePValue(r, len(y)),
	}
	switch {
	case slope > 0:
		result.Trend = TrendIncreasing
	case slope < 0:
		result.Trend = TrendDecreasing
	default:
		result.Trend = TrendStable
	}
	return result
}

// slopePValue is the two-sided p-value of the slope's t-statistic,
// t = r*sqrt((n-2)/(1-r²)), under Student's t with n-2 degrees of
// freedom. With n == 2 there are no residual degrees of freedom and the
// test is uninformative, so p is 1; a perfect fit gives p of 0.
func slopePValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.Survival(math.Abs(t))
}
