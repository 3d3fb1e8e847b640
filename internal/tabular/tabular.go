// Package tabular encodes and decodes records as CSV or XLSX sheets keyed by
// column header.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a supported file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// SheetName is the sheet written to and preferred when reading XLSX files.
const SheetName = "Sheet1"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use csv or xlsx")
	ErrMissingHeader     = errors.New("file has no header row")
	ErrMissingColumn     = errors.New("required column missing")
)

// Column maps one header to a field of T.
type Column[T any] struct {
	Header   string
	Required bool
	Get      func(T) string
	Set      func(T, string) error
}

// RowError reports a row that could not be decoded. Row is 1-based with the header on row 1.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Record is a decoded row together with its sheet row number.
type Record[T any] struct {
	Row  int
	Item T
}

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// FormatFromFilename maps a file extension to a format.
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ContentType returns the MIME type used when serving a file of this format.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// SplitList splits a comma-joined cell into trimmed non-empty values.
func SplitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(vs []string) string {
	return strings.Join(vs, ", ")
}

// Write encodes a header row followed by one row per item.
func Write[T any](w io.Writer, format Format, cols []Column[T], items []T) error {
	rows := make([][]string, 0, len(items)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	rows = append(rows, header)
	for _, it := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Get(it)
		}
		rows = append(rows, row)
	}

	switch format {
	case CSV:
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	case XLSX:
		return writeXLSX(w, rows)
	}
	return ErrUnsupportedFormat
}

func writeXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// Read decodes rows by header name. A missing required column fails the whole
// read; per-row problems are returned as RowErrors and those rows are skipped.
func Read[T any](r io.Reader, format Format, cols []Column[T], newT func() T) ([]Record[T], []RowError, error) {
	var rows [][]string
	var lines []int
	var err error
	switch format {
	case CSV:
		rows, lines, err = readCSV(r)
	case XLSX:
		rows, err = readXLSX(r)
		lines = make([]int, len(rows))
		for i := range lines {
			lines[i] = i + 1
		}
	default:
		return nil, nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, ErrMissingHeader
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[normalizeHeader(h)] = i
	}
	pos := make([]int, len(cols))
	for i, c := range cols {
		p, ok := index[normalizeHeader(c.Header)]
		if !ok {
			if c.Required {
				return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.Header)
			}
			p = -1
		}
		pos[i] = p
	}

	var out []Record[T]
	var rowErrs []RowError
	for n, row := range rows[1:] {
		rowNum := lines[n+1]
		if blank(row) {
			continue
		}
		item := newT()
		var rowErr error
		for i, c := range cols {
			v := ""
			if pos[i] >= 0 && pos[i] < len(row) {
				v = strings.TrimSpace(row[pos[i]])
			}
			if v == "" {
				if c.Required {
					rowErr = fmt.Errorf("%s is required", c.Header)
					break
				}
				continue
			}
			if err := c.Set(item, v); err != nil {
				rowErr = fmt.Errorf("%s: %v", c.Header, err)
				break
			}
		}
		if rowErr != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Error: rowErr.Error()})
			continue
		}
		out = append(out, Record[T]{Row: rowNum, Item: item})
	}
	return out, rowErrs, nil
}

// readCSV returns the records and the line each one starts on. Empty lines are
// dropped by encoding/csv, so positions come from FieldPos.
func readCSV(r io.Reader) ([][]string, []int, error) {
	br := bufio.NewReader(r)
	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var rows [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
	return rows, lines, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrMissingHeader
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
