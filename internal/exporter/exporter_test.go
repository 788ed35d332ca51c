package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeTable struct {
	headers []string
	records [][]string
}

func (t fakeTable) Headers() []string   { return t.headers }
func (t fakeTable) Records() [][]string { return t.records }

func priceTable() fakeTable {
	return fakeTable{
		headers: []string{"date", "AAPL", "MSFT"},
		records: [][]string{
			{"2024-01-02", "100.5", "200.25"},
			{"2024-01-03", "101", ""},
		},
	}
}

func TestCSVWriter_WriteTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "prices.csv")

	w := NewCSVWriter(nil)
	err := w.WriteTable(path, priceTable())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// BOM prefix for Excel compatibility.
	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	content := string(data[3:])
	assert.Equal(t, "date,AAPL,MSFT\n2024-01-02,100.5,200.25\n2024-01-03,101,\n", content)
}

func TestCSVWriter_Append(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")

	w := NewCSVWriter(nil)
	err := w.WriteCSV(path, WriteOptions{
		Headers: []string{"date", "value"},
		Records: [][]string{{"2024-01-02", "1"}},
	})
	require.NoError(t, err)

	err = w.WriteCSV(path, WriteOptions{
		Records: [][]string{{"2024-01-03", "2"}},
		Append:  true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,value\n2024-01-02,1\n2024-01-03,2\n", string(data))
}

func TestExcelWriter_WriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.xlsx")

	w := NewExcelWriter(nil)
	err := w.WriteWorkbook(path, []Sheet{
		{Name: "Prices", Table: priceTable()},
		{Name: "Correlation", Table: fakeTable{
			headers: []string{"ticker", "AAPL"},
			records: [][]string{{"AAPL", "1"}},
		}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Prices", "Correlation"}, f.GetSheetList())

	header, err := f.GetCellValue("Prices", "B1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", header)

	// Numeric strings are stored as numbers.
	value, err := f.GetCellValue("Prices", "B2")
	require.NoError(t, err)
	assert.Equal(t, "100.5", value)
}

func TestExcelWriter_NoSheets(t *testing.T) {
	w := NewExcelWriter(nil)
	err := w.WriteWorkbook(filepath.Join(t.TempDir(), "empty.xlsx"), nil)
	assert.Error(t, err)
}

func TestExcelWriter_TruncatesLongSheetNames(t *testing.T) {
	name := sheetName("a-very-long-sheet-name-that-exceeds-the-limit")
	assert.Len(t, name, 31)
}

func TestJSONWriter_WriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "summary.json")

	w := NewJSONWriter(nil)
	err := w.WriteJSON(path, map[string]interface{}{
		"ticker": "AAPL",
		"mean":   0.001,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "AAPL", decoded["ticker"])
	assert.InDelta(t, 0.001, decoded["mean"], 1e-12)
}
