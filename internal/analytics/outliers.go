package analytics

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// OutlierMethod is the closed set of outlier-detection strategies.
type OutlierMethod int

const (
	// OutlierIQR keeps values within [Q1 - k*IQR, Q3 + k*IQR].
	OutlierIQR OutlierMethod = iota
	// OutlierZScore keeps values whose |z| is below the threshold.
	OutlierZScore
)

// String returns the string representation of the method
func (m OutlierMethod) String() string {
	switch m {
	case OutlierIQR:
		return "iqr"
	case OutlierZScore:
		return "z-score"
	default:
		return "unknown"
	}
}

// ParseOutlierMethod converts a method name into an OutlierMethod.
func ParseOutlierMethod(name string) (OutlierMethod, error) {
	switch strings.ToLower(name) {
	case "iqr", "":
		return OutlierIQR, nil
	case "z-score", "zscore":
		return OutlierZScore, nil
	default:
		return 0, &UnsupportedMethodError{Method: name}
	}
}

// FilterOutliers returns the values that survive the chosen fence. The
// conventional thresholds are 1.5 for IQR and 3 for z-score. The input
// is not modified. A series too short or too flat to define a fence is
// returned unchanged.
func FilterOutliers(values []float64, method OutlierMethod, threshold float64) []float64 {
	if len(values) < 2 {
		return append([]float64(nil), values...)
	}

	switch method {
	case OutlierZScore:
		mean := stat.Mean(values, nil)
		std := stat.StdDev(values, nil)
		if std == 0 {
			return append([]float64(nil), values...)
		}
		return keep(values, func(v float64) bool {
			return math.Abs((v-mean)/std) < threshold
		})
	default:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		q1 := percentile(sorted, 0.25)
		q3 := percentile(sorted, 0.75)
		iqr := q3 - q1
		lower := q1 - threshold*iqr
		upper := q3 + threshold*iqr
		return keep(values, func(v float64) bool {
			return v >= lower && v <= upper
		})
	}
}

func keep(values []float64, pred func(float64) bool) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}
