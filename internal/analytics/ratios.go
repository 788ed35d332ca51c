package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SharpeRatio computes the annualized risk-adjusted return of a return
// series: mean(excess)/std(excess) * sqrt(periodsPerYear), where excess
// returns subtract riskFreeRate/periodsPerYear each period. A series
// with zero variance (including one with fewer than two observations)
// yields exactly 0.0; this is an explicit guard against dividing by
// zero, not NaN propagation.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0.0
	}
	perPeriodRate := riskFreeRate / float64(periodsPerYear)
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - perPeriodRate
	}

	std := stat.StdDev(excess, nil)
	if std == 0 {
		return 0.0
	}
	return stat.Mean(excess, nil) / std * math.Sqrt(float64(periodsPerYear))
}

// Beta computes the sensitivity of a stock's returns to the market's:
// cov(stock, market)/var(market). Zero market variance yields exactly
// 0.0 by explicit guard. The two series must be aligned and of equal
// length.
func Beta(stockReturns, marketReturns []float64) (float64, error) {
	if len(stockReturns) != len(marketReturns) {
		return 0, fmt.Errorf("return series length mismatch: %d vs %d", len(stockReturns), len(marketReturns))
	}
	if len(stockReturns) < 2 {
		return 0.0, nil
	}

	marketVar := stat.Variance(marketReturns, nil)
	if marketVar == 0 {
		return 0.0, nil
	}
	return stat.Covariance(stockReturns, marketReturns, nil) / marketVar, nil
}
