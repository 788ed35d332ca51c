package series

import (
	"fmt"
	"math"
	"time"
)

// ReturnKind selects the return formula.
type ReturnKind int

const (
	// SimpleReturn is p_t/p_{t-1} - 1.
	SimpleReturn ReturnKind = iota
	// LogReturn is ln(p_t/p_{t-1}).
	LogReturn
)

// String returns the string representation of the kind
func (k ReturnKind) String() string {
	switch k {
	case SimpleReturn:
		return "simple"
	case LogReturn:
		return "log"
	default:
		return "unknown"
	}
}

// ParseReturnKind converts a configuration string into a ReturnKind.
func ParseReturnKind(s string) (ReturnKind, error) {
	switch s {
	case "simple", "":
		return SimpleReturn, nil
	case "log":
		return LogReturn, nil
	default:
		return 0, fmt.Errorf("unknown return kind: %s", s)
	}
}

func periodReturn(kind ReturnKind, prev, cur float64) float64 {
	if kind == LogReturn {
		return math.Log(cur / prev)
	}
	return cur/prev - 1
}

// Returns derives a return frame from a price frame. The first date row
// carries no defined return and is dropped, not zero-filled. A missing
// current or prior cell yields a missing return cell; a non-positive
// price where the ratio needs it fails with InvalidPriceError rather than
// silently producing a number.
func (f *Frame) Returns(kind ReturnKind) (*Frame, error) {
	if f.NumRows() == 0 || f.NumCols() == 0 {
		return nil, &EmptyInputError{Op: "returns"}
	}
	if f.NumRows() < 2 {
		// A single row has no prior period; the result is an empty frame
		// with the same columns.
		return NewFrame(nil, append([]string(nil), f.Tickers...)), nil
	}

	out := NewFrame(append([]time.Time(nil), f.Dates[1:]...), append([]string(nil), f.Tickers...))
	for j, ticker := range f.Tickers {
		for i := 1; i < f.NumRows(); i++ {
			prev, cur := f.Cells[i-1][j], f.Cells[i][j]
			if !prev.Valid || !cur.Valid {
				continue // undefined, cell stays missing
			}
			if prev.Value <= 0 {
				return nil, &InvalidPriceError{Ticker: ticker, Date: f.Dates[i-1], Price: prev.Value}
			}
			if cur.Value <= 0 {
				return nil, &InvalidPriceError{Ticker: ticker, Date: f.Dates[i], Price: cur.Value}
			}
			out.Cells[i-1][j] = Some(periodReturn(kind, prev.Value, cur.Value))
		}
	}
	return out, nil
}

// SeriesReturns computes the return sequence of a single price series.
// The result has one fewer element than the input.
func SeriesReturns(s PriceSeries, kind ReturnKind) ([]float64, error) {
	if s.IsEmpty() {
		return nil, &EmptyInputError{Op: "returns"}
	}
	out := make([]float64, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Points[i-1], s.Points[i]
		if prev.Price <= 0 {
			return nil, &InvalidPriceError{Ticker: s.Ticker, Date: prev.Date, Price: prev.Price}
		}
		if cur.Price <= 0 {
			return nil, &InvalidPriceError{Ticker: s.Ticker, Date: cur.Date, Price: cur.Price}
		}
		out = append(out, periodReturn(kind, prev.Price, cur.Price))
	}
	return out, nil
}

// LongReturn is one per-ticker return observation in long form.
type LongReturn struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Return float64   `json:"return"`
}

type longOptions struct {
	ungrouped bool
}

// LongOption configures LongReturns.
type LongOption func(*longOptions)

// Ungrouped disables per-ticker grouping so returns are computed across
// consecutive rows regardless of ticker. Crossing a ticker boundary this
// way is almost always a bug, so it is a deliberate opt-in rather than a
// flag that defaults open.
func Ungrouped() LongOption {
	return func(o *longOptions) { o.ungrouped = true }
}

// LongReturns computes returns over a long-form (date, ticker, close)
// table. Rows must be date-ordered within each ticker. Each ticker's
// sequence is computed independently; a ticker's first observation has no
// return and is omitted from the output.
func LongReturns(rows []Row, kind ReturnKind, opts ...LongOption) ([]LongReturn, error) {
	if len(rows) == 0 {
		return nil, &EmptyInputError{Op: "returns"}
	}
	var o longOptions
	for _, opt := range opts {
		opt(&o)
	}

	var out []LongReturn
	prev := make(map[string]Row)
	var last Row
	haveLast := false

	for _, r := range rows {
		key := r.Ticker
		p, ok := prev[key]
		if o.ungrouped {
			p, ok = last, haveLast
		}
		if ok {
			if p.Close <= 0 {
				return nil, &InvalidPriceError{Ticker: p.Ticker, Date: p.Date, Price: p.Close}
			}
			if r.Close <= 0 {
				return nil, &InvalidPriceError{Ticker: r.Ticker, Date: r.Date, Price: r.Close}
			}
			out = append(out, LongReturn{
				Date:   r.Date,
				Ticker: r.Ticker,
				Return: periodReturn(kind, p.Close, r.Close),
			})
		}
		prev[key] = r
		last, haveLast = r, true
	}
	return out, nil
}

// CumulativeReturn folds simple returns left to right:
// (1+r_1)(1+r_2)...(1+r_n) - 1. With complete data this equals
// final_price/initial_price - 1.
func CumulativeReturn(returns []float64) float64 {
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return growth - 1
}

// CumulativeSeries returns the running cumulative simple return at each
// step, skipping missing cells while preserving their positions.
func CumulativeSeries(returns []Cell) []Cell {
	out := make([]Cell, len(returns))
	growth := 1.0
	for i, c := range returns {
		if !c.Valid {
			continue
		}
		growth *= 1 + c.Value
		out[i] = Some(growth - 1)
	}
	return out
}
