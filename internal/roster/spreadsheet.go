// Package roster moves employee rows in and out of spreadsheets.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/staffdesk/internal/employees"
)

const maxXLSCells = 100000

var (
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	ErrMissingHeader  = errors.New("header row needs name and department columns")
)

// ReadRows returns the cells of the first worksheet. Legacy .xls files must
// hold a single sheet.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		if workbook.NumSheets() > 1 {
			return nil, fmt.Errorf("multiple worksheets found; please upload a file with a single sheet")
		}
		rows := workbook.ReadAllCells(maxXLSCells)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	}
}

var headerAliases = map[string]string{
	"name":          "name",
	"employee":      "name",
	"employee name": "name",
	"full name":     "name",
	"department":    "department",
	"dept":          "department",
	"position":      "position",
	"title":         "position",
	"job title":     "position",
	"email":         "email",
	"e-mail":        "email",
	"email address": "email",
	"phone":         "phone",
	"phone number":  "phone",
	"mobile":        "phone",
}

// ParseEmployees finds the header row and maps every following non-blank row
// onto employee fields. Rows are not validated here.
func ParseEmployees(rows [][]string) ([]employees.Fields, error) {
	headerIdx := -1
	columns := map[string]int{}
	for i, row := range rows {
		found := map[string]int{}
		for col, cell := range row {
			if key, ok := headerAliases[normalizeHeader(cell)]; ok {
				if _, dup := found[key]; !dup {
					found[key] = col
				}
			}
		}
		_, hasName := found["name"]
		_, hasDept := found["department"]
		if hasName && hasDept {
			headerIdx = i
			columns = found
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrMissingHeader
	}

	out := make([]employees.Fields, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		fields := employees.Fields{
			Name:       cellValue(row, columnOf(columns, "name")),
			Department: cellValue(row, columnOf(columns, "department")),
			Position:   cellValue(row, columnOf(columns, "position")),
			Email:      cellValue(row, columnOf(columns, "email")),
			Phone:      cellValue(row, columnOf(columns, "phone")),
		}
		if fields == (employees.Fields{}) {
			continue
		}
		out = append(out, fields)
	}
	return out, nil
}

func columnOf(columns map[string]int, key string) int {
	idx, ok := columns[key]
	if !ok {
		return -1
	}
	return idx
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
