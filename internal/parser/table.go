// Package parser turns exported analytics tables into post records.
package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a sheet of string cells; column A is the label, column B the value.
type Table [][]string

// Cell returns the trimmed cell at row, col or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return strings.TrimSpace(t[row][col])
}

// raw returns the cell without trimming so embedded line breaks survive.
func (t Table) raw(row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return strings.ReplaceAll(t[row][col], "\r\n", "\n")
}

// IsLockFile reports whether name is an Office owner/lock file such as "~$export.xlsx".
func IsLockFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "~$")
}

// IsWorkbook reports whether the file is an OOXML workbook that may carry embedded media.
func IsWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// IsCandidate reports whether name looks like a source table the converter should try.
// Legacy .xls and lock files are candidates so they can be reported as unreadable.
func IsCandidate(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls", ".csv":
		return true
	}
	return false
}

// LoadTable reads the first sheet of a workbook or a CSV file.
func LoadTable(path string) (Table, error) {
	name := filepath.Base(path)
	if IsLockFile(name) {
		return nil, fmt.Errorf("%w: %s is an open-file lock", ErrSourceUnreadable, name)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path)
	case ".csv":
		return loadCSV(path)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls format not supported, re-save %s as .xlsx", ErrSourceUnreadable, name)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", ErrSourceUnreadable, name)
	}
}

func loadWorkbook(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrSourceUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrSourceUnreadable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrSourceUnreadable, sheets[0], err)
	}
	return Table(rows), nil
}

func loadCSV(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrSourceUnreadable, err)
	}
	return Table(rows), nil
}
