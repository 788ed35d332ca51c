package series

import (
	"fmt"
	"time"
)

// EmptyInputError indicates that an operation received no usable data:
// zero series, or series that contain no observations at all.
type EmptyInputError struct {
	Op string
}

// Error implements the error interface
func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no usable input data", e.Op)
}

// InvalidPriceError indicates a non-positive price where a ratio is
// required. The offending entry is identified so callers can skip the
// ticker or surface a precise message instead of aborting the run.
type InvalidPriceError struct {
	Ticker string
	Date   time.Time
	Price  float64
}

// Error implements the error interface
func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %.6g for %s on %s", e.Price, e.Ticker, e.Date.Format("2006-01-02"))
}
