package analytics

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"marketpulse/internal/series"
)

// Summary holds the descriptive statistics of one numeric column.
// Std is the sample standard deviation (ddof=1); for a single
// observation it is reported as 0 rather than NaN.
type Summary struct {
	Ticker string  `json:"ticker"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe computes per-column descriptive statistics over the defined
// cells of a frame. Columns with no defined values are skipped; if no
// column has data the call fails with NoNumericColumnsError.
func Describe(f *series.Frame) ([]Summary, error) {
	var summaries []Summary
	for _, ticker := range f.Tickers {
		values, err := f.ColumnValues(ticker)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}
		summaries = append(summaries, summarize(ticker, values))
	}
	if len(summaries) == 0 {
		return nil, &NoNumericColumnsError{}
	}
	return summaries, nil
}

func summarize(ticker string, values []float64) Summary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	std := 0.0
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return Summary{
		Ticker: ticker,
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Std:    std,
		Min:    sorted[0],
		Q1:     percentile(sorted, 0.25),
		Median: percentile(sorted, 0.50),
		Q3:     percentile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// percentile computes the p-quantile of sorted data with linear
// interpolation between closest ranks, matching spreadsheet and pandas
// conventions rather than gonum's empirical quantile.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(h-float64(lo))
}

// SummaryHeaders returns the CSV header row for a set of summaries.
func SummaryHeaders() []string {
	return []string{"Ticker", "Count", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max"}
}

// SummaryRecords returns the summaries as CSV records.
func SummaryRecords(summaries []Summary) [][]string {
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		records[i] = []string{
			s.Ticker,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Mean, 'f', 6, 64),
			strconv.FormatFloat(s.Std, 'f', 6, 64),
			strconv.FormatFloat(s.Min, 'f', 6, 64),
			strconv.FormatFloat(s.Q1, 'f', 6, 64),
			strconv.FormatFloat(s.Median, 'f', 6, 64),
			strconv.FormatFloat(s.Q3, 'f', 6, 64),
			strconv.FormatFloat(s.Max, 'f', 6, 64),
		}
	}
	return records
}
