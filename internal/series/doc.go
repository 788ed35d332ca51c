// Package series provides the price-series data model for Market Pulse:
// per-ticker price histories, the date-by-ticker Frame used as the price
// and return matrices, calendar alignment with configurable gap filling,
// and simple/logarithmic return calculation.
//
// Everything in this package is a pure transformation. Inputs are fully
// materialized in memory, outputs are freshly allocated, and no function
// performs I/O or retains state between calls. Missing observations are
// carried as explicit invalid Cells rather than NaN so that "undefined
// because of a gap" and "invalid because of a bad price" never collapse
// into the same floating-point value.
package series
