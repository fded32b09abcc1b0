package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var resultHeader = []string{"line", "probability", "label", "error"}

const resultSheet = "Predictions"

// WriteFile writes results to path; the extension picks .csv, .xlsx or .json.
func WriteFile(path string, results []Result) error {
	var write func(io.Writer, []Result) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		write = WriteCSV
	case ".xlsx":
		write = WriteXLSX
	case ".json":
		write = WriteJSON
	default:
		return fmt.Errorf("unsupported batch output %q: want .csv, .xlsx or .json", filepath.Ext(path))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func resultRecord(r Result) []string {
	if !r.OK() {
		return []string{strconv.Itoa(r.Line), "", "", r.Error}
	}
	return []string{
		strconv.Itoa(r.Line),
		strconv.FormatFloat(r.Probability, 'f', -1, 64),
		string(r.Label),
		"",
	}
}

// WriteCSV writes results as CSV with a header row.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(resultRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteXLSX writes results to a single-sheet workbook.
func WriteXLSX(w io.Writer, results []Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultSheet); err != nil {
		return err
	}
	header := make([]interface{}, len(resultHeader))
	for i, h := range resultHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(resultSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Line, "", "", ""}
		if r.OK() {
			row[1] = r.Probability
			row[2] = string(r.Label)
		} else {
			row[3] = r.Error
		}
		if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
