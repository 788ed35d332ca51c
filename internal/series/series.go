package series

import (
	"encoding/json"
	"time"
)

// Point is a single dated price observation.
type Point struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries holds the ordered price history for one ticker.
// Dates are strictly increasing and prices are positive; calendar gaps
// are simply absent points and are resolved during alignment.
type PriceSeries struct {
	Ticker string  `json:"ticker"`
	Points []Point `json:"points"`
}

// IsValid reports whether dates are strictly increasing and all prices
// are positive. An empty series is valid; it just carries no data.
func (s PriceSeries) IsValid() bool {
	for i, p := range s.Points {
		if p.Price <= 0 {
			return false
		}
		if i > 0 && !s.Points[i-1].Date.Before(p.Date) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the series has no observations.
func (s PriceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Cell is an explicit optional numeric value. The zero value is a
// missing observation. Using Cell instead of NaN keeps "no value in the
// window yet" distinguishable from "computation was not possible".
type Cell struct {
	Value float64
	Valid bool
}

// Some returns a valid cell holding v.
func Some(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// None returns a missing cell.
func None() Cell {
	return Cell{}
}

// MarshalJSON renders a valid cell as its number and a missing cell as null,
// which is what the dashboard frontend expects for gaps.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number or null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Some(v)
	return nil
}

// Row is one observation of a long-form table keyed by (date, ticker),
// the shape the fetch layer produces before pivoting.
type Row struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Close  float64   `json:"close"`
}
