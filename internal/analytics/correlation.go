package analytics

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"marketpulse/internal/series"
)

// Method is the closed set of supported correlation methods.
type Method int

const (
	// Pearson measures linear correlation on raw values.
	Pearson Method = iota
	// Spearman measures monotonic correlation via value ranks.
	Spearman
	// Kendall measures rank correlation via concordant pairs.
	Kendall
)

// String returns the string representation of the method
func (m Method) String() string {
	switch m {
	case Pearson:
		return "pearson"
	case Spearman:
		return "spearman"
	case Kendall:
		return "kendall"
	default:
		return "unknown"
	}
}

// ParseMethod converts a method name into a Method. Any identifier
// outside the closed set fails with UnsupportedMethodError, so an
// invalid selection is rejected at construction time rather than deep in
// a computation.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "pearson", "":
		return Pearson, nil
	case "spearman":
		return Spearman, nil
	case "kendall":
		return Kendall, nil
	default:
		return 0, &UnsupportedMethodError{Method: name}
	}
}

// MarshalJSON encodes the method by name rather than ordinal.
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a method name.
func (m *Method) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseMethod(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// CorrelationMatrix is a square ticker-by-ticker matrix, symmetric with
// a unit diagonal by construction.
type CorrelationMatrix struct {
	Method  Method      `json:"method"`
	Tickers []string    `json:"tickers"`
	Values  [][]float64 `json:"values"`
}

// At returns the correlation between the i-th and j-th ticker.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Headers returns the CSV header row for the matrix.
func (m *CorrelationMatrix) Headers() []string {
	return append([]string{"Ticker"}, m.Tickers...)
}

// Records returns the matrix body as CSV records.
func (m *CorrelationMatrix) Records() [][]string {
	records := make([][]string, len(m.Tickers))
	for i, t := range m.Tickers {
		record := make([]string, 0, len(m.Tickers)+1)
		record = append(record, t)
		for j := range m.Tickers {
			record = append(record, strconv.FormatFloat(m.Values[i][j], 'f', 6, 64))
		}
		records[i] = record
	}
	return records
}

// Correlation computes the pairwise correlation of the frame's columns
// over rows where both columns are defined. Degenerate pairs (fewer than
// two shared observations, or zero variance on either side) are reported
// as 0; that is the only place this function substitutes a value, and it
// keeps the matrix NaN-free for the presentation layer.
func Correlation(f *series.Frame, method Method) (*CorrelationMatrix, error) {
	n := f.NumCols()
	if n == 0 {
		return nil, &NoNumericColumnsError{}
	}

	m := &CorrelationMatrix{
		Method:  method,
		Tickers: append([]string(nil), f.Tickers...),
		Values:  make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x, y := pairedColumns(f, i, j)
			r := correlate(x, y, method)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// pairedColumns extracts the rows where both columns hold defined values.
func pairedColumns(f *series.Frame, i, j int) ([]float64, []float64) {
	var x, y []float64
	for row := 0; row < f.NumRows(); row++ {
		a, b := f.At(row, i), f.At(row, j)
		if a.Valid && b.Valid {
			x = append(x, a.Value)
			y = append(y, b.Value)
		}
	}
	return x, y
}

func correlate(x, y []float64, method Method) float64 {
	if len(x) < 2 || constant(x) || constant(y) {
		return 0
	}
	switch method {
	case Spearman:
		return stat.Correlation(ranks(x), ranks(y), nil)
	case Kendall:
		return stat.Kendall(x, y, nil)
	default:
		return stat.Correlation(x, y, nil)
	}
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// ranks assigns fractional ranks, averaging ties, for the Spearman
// transform.
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = rank
		}
		i = j + 1
	}
	return out
}
