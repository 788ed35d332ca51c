package series

import (
	"fmt"
	"time"
)

// AlignMode selects which dates survive alignment of multiple series.
type AlignMode int

const (
	// AlignUnion keeps every date observed by any series.
	AlignUnion AlignMode = iota
	// AlignIntersection keeps only dates observed by every series.
	AlignIntersection
)

// String returns the string representation of the mode
func (m AlignMode) String() string {
	switch m {
	case AlignUnion:
		return "union"
	case AlignIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// ParseAlignMode maps a mode name to its AlignMode.
func ParseAlignMode(s string) (AlignMode, error) {
	switch s {
	case "union", "":
		return AlignUnion, nil
	case "intersection":
		return AlignIntersection, nil
	default:
		return AlignUnion, fmt.Errorf("unknown align mode %q", s)
	}
}

// FillPolicy is the closed set of gap-resolution strategies applied after
// alignment. Invalid selections are impossible by construction; there is
// no string-keyed dispatch at call time.
type FillPolicy int

const (
	// FillForwardBackward carries the last known price forward, then fills
	// any still-missing leading cells backward from the first known price.
	// It is the default and leaves no gaps when a ticker has at least one
	// observation.
	FillForwardBackward FillPolicy = iota
	// FillForward only carries known prices forward; leading gaps remain.
	FillForward
	// FillBackward only fills from the next known price; trailing gaps remain.
	FillBackward
	// FillDrop removes every date row that still has a missing cell.
	FillDrop
	// FillInterpolate linearly interpolates interior gaps by row position;
	// leading and trailing gaps remain.
	FillInterpolate
)

// String returns the string representation of the policy
func (p FillPolicy) String() string {
	switch p {
	case FillForwardBackward:
		return "forward_backward"
	case FillForward:
		return "forward"
	case FillBackward:
		return "backward"
	case FillDrop:
		return "drop"
	case FillInterpolate:
		return "interpolate"
	default:
		return "unknown"
	}
}

// ParseFillPolicy converts a configuration string into a FillPolicy.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch s {
	case "forward_backward", "":
		return FillForwardBackward, nil
	case "forward", "forward_fill":
		return FillForward, nil
	case "backward", "backward_fill":
		return FillBackward, nil
	case "drop":
		return FillDrop, nil
	case "interpolate":
		return FillInterpolate, nil
	default:
		return 0, fmt.Errorf("unknown fill policy: %s", s)
	}
}

// Align places the given series onto one shared date index and resolves
// gaps with the fill policy. Series given to Align are whatever subset the
// fetch layer managed to retrieve; a missing ticker simply contributes no
// column, it never aborts alignment of the rest.
//
// Align is a pure function: inputs are not modified and the returned
// frame shares no storage with them. Duplicate tickers are rejected so
// the frame's columns stay uniquely addressable.
func Align(list []PriceSeries, mode AlignMode, fill FillPolicy) (*Frame, error) {
	usable := make([]PriceSeries, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if s.IsEmpty() {
			continue
		}
		if _, ok := seen[s.Ticker]; ok {
			return nil, fmt.Errorf("duplicate ticker %q", s.Ticker)
		}
		seen[s.Ticker] = struct{}{}
		usable = append(usable, s)
	}
	if len(usable) == 0 {
		return nil, &EmptyInputError{Op: "align"}
	}

	dates := alignedDates(usable, mode)
	tickers := make([]string, len(usable))
	for i, s := range usable {
		tickers[i] = s.Ticker
	}

	f := NewFrame(dates, tickers)
	rowIdx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowIdx[d] = i
	}
	for j, s := range usable {
		for _, p := range s.Points {
			if i, ok := rowIdx[p.Date]; ok {
				f.Cells[i][j] = Some(p.Price)
			}
		}
	}

	applyFill(f, fill)
	return f, nil
}

func alignedDates(list []PriceSeries, mode AlignMode) []time.Time {
	counts := make(map[time.Time]int)
	for _, s := range list {
		for _, p := range s.Points {
			counts[p.Date]++
		}
	}

	set := make(map[time.Time]struct{}, len(counts))
	for d, n := range counts {
		if mode == AlignUnion || n == len(list) {
			set[d] = struct{}{}
		}
	}
	return sortedDates(set)
}

func applyFill(f *Frame, fill FillPolicy) {
	switch fill {
	case FillForwardBackward:
		for j := range f.Tickers {
			fillForward(f, j)
			fillBackward(f, j)
		}
	case FillForward:
		for j := range f.Tickers {
			fillForward(f, j)
		}
	case FillBackward:
		for j := range f.Tickers {
			fillBackward(f, j)
		}
	case FillInterpolate:
		for j := range f.Tickers {
			interpolateColumn(f, j)
		}
	case FillDrop:
		dropMissingRows(f)
	}
}

func fillForward(f *Frame, j int) {
	var last Cell
	for i := range f.Dates {
		if f.Cells[i][j].Valid {
			last = f.Cells[i][j]
		} else if last.Valid {
			f.Cells[i][j] = last
		}
	}
}

func fillBackward(f *Frame, j int) {
	var next Cell
	for i := len(f.Dates) - 1; i >= 0; i-- {
		if f.Cells[i][j].Valid {
			next = f.Cells[i][j]
		} else if next.Valid {
			f.Cells[i][j] = next
		}
	}
}

// interpolateColumn fills interior gaps with a straight line between the
// surrounding valid cells, weighted by row position.
func interpolateColumn(f *Frame, j int) {
	prev := -1
	for i := 0; i <= len(f.Dates); i++ {
		if i < len(f.Dates) && !f.Cells[i][j].Valid {
			continue
		}
		if i < len(f.Dates) && prev >= 0 && i-prev > 1 {
			lo := f.Cells[prev][j].Value
			hi := f.Cells[i][j].Value
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				frac := float64(k-prev) / span
				f.Cells[k][j] = Some(lo + (hi-lo)*frac)
			}
		}
		if i < len(f.Dates) {
			prev = i
		}
	}
}

func dropMissingRows(f *Frame) {
	var dates []time.Time
	var cells [][]Cell
	for i, d := range f.Dates {
		complete := true
		for j := range f.Tickers {
			if !f.Cells[i][j].Valid {
				complete = false
				break
			}
		}
		if complete {
			dates = append(dates, d)
			cells = append(cells, f.Cells[i])
		}
	}
	f.Dates = dates
	f.Cells = cells
}
