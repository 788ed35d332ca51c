package series

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// DateFormat is the calendar-date layout used in all tabular output.
const DateFormat = "2006-01-02"

// Frame is a date-by-ticker matrix of optional values. It backs both the
// price matrix produced by alignment and the return matrix derived from
// it. Rows are unique, ascending dates; columns are unique tickers.
type Frame struct {
	Dates   []time.Time `json:"dates"`
	Tickers []string    `json:"tickers"`
	Cells   [][]Cell    `json:"cells"` // Cells[row][col], row per date
}

// NewFrame allocates a frame of missing cells for the given axes.
func NewFrame(dates []time.Time, tickers []string) *Frame {
	cells := make([][]Cell, len(dates))
	for i := range cells {
		cells[i] = make([]Cell, len(tickers))
	}
	return &Frame{Dates: dates, Tickers: tickers, Cells: cells}
}

// NumRows returns the number of date rows.
func (f *Frame) NumRows() int { return len(f.Dates) }

// NumCols returns the number of ticker columns.
func (f *Frame) NumCols() int { return len(f.Tickers) }

// ColumnIndex returns the column position of ticker, or -1.
func (f *Frame) ColumnIndex(ticker string) int {
	for i, t := range f.Tickers {
		if t == ticker {
			return i
		}
	}
	return -1
}

// At returns the cell at row i, column j.
func (f *Frame) At(i, j int) Cell {
	return f.Cells[i][j]
}

// Set stores a cell at row i, column j.
func (f *Frame) Set(i, j int, c Cell) {
	f.Cells[i][j] = c
}

// Column returns the full cell column for ticker.
func (f *Frame) Column(ticker string) ([]Cell, error) {
	j := f.ColumnIndex(ticker)
	if j < 0 {
		return nil, fmt.Errorf("ticker %s not present in frame", ticker)
	}
	col := make([]Cell, len(f.Dates))
	for i := range f.Dates {
		col[i] = f.Cells[i][j]
	}
	return col, nil
}

// ColumnValues returns the defined values of a column in row order,
// skipping missing cells.
func (f *Frame) ColumnValues(ticker string) ([]float64, error) {
	col, err := f.Column(ticker)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(col))
	for _, c := range col {
		if c.Valid {
			values = append(values, c.Value)
		}
	}
	return values, nil
}

// Series extracts one column as a PriceSeries, dropping missing cells.
func (f *Frame) Series(ticker string) (PriceSeries, error) {
	col, err := f.Column(ticker)
	if err != nil {
		return PriceSeries{}, err
	}
	s := PriceSeries{Ticker: ticker}
	for i, c := range col {
		if c.Valid {
			s.Points = append(s.Points, Point{Date: f.Dates[i], Price: c.Value})
		}
	}
	return s, nil
}

// FromLong pivots a long-form (date, ticker, close) table into a frame,
// mirroring a spreadsheet pivot: one row per distinct date, one column
// per distinct ticker. Duplicate (date, ticker) pairs keep the last
// observation.
func FromLong(rows []Row) (*Frame, error) {
	if len(rows) == 0 {
		return nil, &EmptyInputError{Op: "pivot"}
	}

	dateSet := make(map[time.Time]struct{})
	tickerSet := make(map[string]struct{})
	for _, r := range rows {
		dateSet[r.Date] = struct{}{}
		tickerSet[r.Ticker] = struct{}{}
	}

	dates := sortedDates(dateSet)
	tickers := sortedTickers(tickerSet)

	rowIdx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowIdx[d] = i
	}
	colIdx := make(map[string]int, len(tickers))
	for j, t := range tickers {
		colIdx[t] = j
	}

	f := NewFrame(dates, tickers)
	for _, r := range rows {
		f.Cells[rowIdx[r.Date]][colIdx[r.Ticker]] = Some(r.Close)
	}
	return f, nil
}

// ToLong flattens the frame back into long form, omitting missing cells.
func (f *Frame) ToLong() []Row {
	var rows []Row
	for i, d := range f.Dates {
		for j, t := range f.Tickers {
			if c := f.Cells[i][j]; c.Valid {
				rows = append(rows, Row{Date: d, Ticker: t, Close: c.Value})
			}
		}
	}
	return rows
}

// Headers returns the CSV header row: Date followed by the tickers.
func (f *Frame) Headers() []string {
	headers := make([]string, 0, len(f.Tickers)+1)
	headers = append(headers, "Date")
	headers = append(headers, f.Tickers...)
	return headers
}

// Records returns the frame body as CSV records. Missing cells become
// empty fields so a round trip through a spreadsheet keeps gaps visible.
func (f *Frame) Records() [][]string {
	records := make([][]string, 0, len(f.Dates))
	for i, d := range f.Dates {
		record := make([]string, 0, len(f.Tickers)+1)
		record = append(record, d.Format(DateFormat))
		for j := range f.Tickers {
			c := f.Cells[i][j]
			if c.Valid {
				record = append(record, strconv.FormatFloat(c.Value, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}
	return records
}

func sortedDates(set map[time.Time]struct{}) []time.Time {
	dates := make([]time.Time, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func sortedTickers(set map[string]struct{}) []string {
	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
