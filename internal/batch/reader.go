// Package batch scores spreadsheets of feature rows.
//
// Input is a table whose header row is exactly the canonical feature names
// in canonical order, followed by one row of values per sample. A header
// that differs fails the whole batch; a bad cell only fails its row.
package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/schema"
)

// Row is one data row of the input table.
type Row struct {
	// Line is the 1-based line (or spreadsheet row) the values came from.
	Line     int
	Features models.FeatureVector
	// Err is set when the row could not be turned into a vector.
	Err error
}

// ReadFile reads rows from a .csv or .xlsx file.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported batch input %q: want .csv or .xlsx", filepath.Ext(path))
	}
}

// ReadCSV reads comma-separated rows. UTF-8 input may carry a byte order
// mark; UTF-16 input must.
func ReadCSV(r io.Reader) ([]Row, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var records []record
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
	return parseTable(records)
}

// ReadXLSX reads rows from the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	records := make([]record, len(rows))
	for i, cells := range rows {
		records[i] = record{line: i + 1, cells: cells}
	}
	return parseTable(records)
}

type record struct {
	line  int
	cells []string
}

func parseTable(records []record) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: input has no header row", models.ErrSchemaMismatch)
	}
	header := make([]string, len(records[0].cells))
	for i, h := range records[0].cells {
		header[i] = strings.TrimSpace(h)
	}
	// Spreadsheets often carry empty trailing columns.
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	names := schema.Names()
	if se := models.CompareSchema(names, header); se != nil {
		return nil, fmt.Errorf("header: %w", se)
	}

	var rows []Row
	for _, rec := range records[1:] {
		if blank(rec.cells) {
			continue
		}
		rows = append(rows, parseRow(rec.line, names, rec.cells))
	}
	return rows, nil
}

func parseRow(line int, names []string, rec []string) Row {
	row := Row{Line: line}
	values := make([]float64, len(names))
	for i, name := range names {
		if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
			row.Err = fmt.Errorf("%w: %s is empty", models.ErrInvalidValue, name)
			return row
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			row.Err = fmt.Errorf("%w: %s: %q is not a number", models.ErrInvalidValue, name, rec[i])
			return row
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			row.Err = fmt.Errorf("%w: %s is not finite", models.ErrInvalidValue, name)
			return row
		}
		values[i] = v
	}
	for i := len(names); i < len(rec); i++ {
		if strings.TrimSpace(rec[i]) != "" {
			row.Err = fmt.Errorf("%w: row has %d values, want %d", models.ErrSchemaMismatch, len(rec), len(names))
			return row
		}
	}
	row.Features = models.FromValues(names, values)
	return row
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
