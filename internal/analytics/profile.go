package analytics

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"marketpulse/internal/series"
)

// RiskReturnPoint positions one ticker on the risk-return plane.
type RiskReturnPoint struct {
	Ticker               string  `json:"ticker"`
	MeanReturn           float64 `json:"mean_return"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	Sharpe               float64 `json:"sharpe"`
}

// RiskReturnProfile computes, per ticker of a return frame, the mean
// periodic return, its annualized counterpart, annualized volatility,
// and the Sharpe ratio. Columns with no defined returns are skipped; a
// frame with no usable column fails with NoNumericColumnsError.
func RiskReturnProfile(returns *series.Frame, riskFreeRate float64, periodsPerYear int) ([]RiskReturnPoint, error) {
	var points []RiskReturnPoint
	for _, ticker := range returns.Tickers {
		values, err := returns.ColumnValues(ticker)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}

		mean := stat.Mean(values, nil)
		vol := 0.0
		if len(values) > 1 {
			vol = stat.StdDev(values, nil) * math.Sqrt(float64(periodsPerYear))
		}
		points = append(points, RiskReturnPoint{
			Ticker:               ticker,
			MeanReturn:           mean,
			AnnualizedReturn:     mean * float64(periodsPerYear),
			AnnualizedVolatility: vol,
			Sharpe:               SharpeRatio(values, riskFreeRate, periodsPerYear),
		})
	}
	if len(points) == 0 {
		return nil, &NoNumericColumnsError{}
	}
	return points, nil
}

// RiskReturnHeaders returns the CSV header row for a risk-return profile.
func RiskReturnHeaders() []string {
	return []string{"Ticker", "MeanReturn", "AnnualizedReturn", "AnnualizedVolatility", "Sharpe"}
}

// RiskReturnRecords returns the profile as CSV records.
func RiskReturnRecords(points []RiskReturnPoint) [][]string {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{
			p.Ticker,
			strconv.FormatFloat(p.MeanReturn, 'f', 6, 64),
			strconv.FormatFloat(p.AnnualizedReturn, 'f', 6, 64),
			strconv.FormatFloat(p.AnnualizedVolatility, 'f', 6, 64),
			strconv.FormatFloat(p.Sharpe, 'f', 6, 64),
		}
	}
	return records
}
