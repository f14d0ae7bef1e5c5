package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/xuri/excelize/v2"
)

// Import error codes
const (
	ErrCodeRequiredField = "IMPORT_REQUIRED_FIELD"
	ErrCodeDuplicateRow  = "IMPORT_DUPLICATE_ROW"
)

var (
	ErrNoSheets       = errors.New("workbook has no sheets")
	ErrMissingHeaders = errors.New("required columns name, store and contact were not found")
)

// RowError describes a rejected spreadsheet row. Row is 1-based as shown in
// spreadsheet applications.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// CustomerImport is the outcome of reading a customer sheet
type CustomerImport struct {
	Customers []crm.Customer
	Errors    []RowError
}

// header aliases, lower-cased
var customerColumns = map[string][]string{
	"name":    {"name", "customer", "姓名", "客户", "客户名称"},
	"store":   {"store", "门店", "店铺"},
	"contact": {"contact", "phone", "联系方式", "电话"},
	"notes":   {"notes", "note", "备注"},
}

// ReadCustomers reads the first sheet that has name, store and contact
// columns. Rows missing a required field, or repeating a (name, store) pair
// within the file, are reported and skipped. Ids and timestamps are left
// for the caller to assign.
func ReadCustomers(r io.Reader) (*CustomerImport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for h, row := range rows {
			idx := matchColumns(row)
			if idx == nil {
				continue
			}
			return readCustomerRows(rows[h+1:], h+2, idx), nil
		}
	}
	return nil, ErrMissingHeaders
}

func matchColumns(header []string) map[string]int {
	idx := map[string]int{}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for field, aliases := range customerColumns {
			if _, done := idx[field]; done {
				continue
			}
			for _, a := range aliases {
				if name == a {
					idx[field] = i
				}
			}
		}
	}
	for _, required := range []string{"name", "store", "contact"} {
		if _, ok := idx[required]; !ok {
			return nil
		}
	}
	return idx
}

func readCustomerRows(rows [][]string, firstRow int, idx map[string]int) *CustomerImport {
	out := &CustomerImport{}
	seen := map[[2]string]int{}

	for i, row := range rows {
		lineNum := firstRow + i
		get := func(field string) string {
			col, ok := idx[field]
			if !ok || col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}

		c := crm.Customer{Name: get("name"), Store: get("store"), Contact: get("contact"), Notes: get("notes")}
		if c.Name == "" && c.Store == "" && c.Contact == "" && c.Notes == "" {
			continue
		}

		var missing bool
		for _, field := range []string{"name", "store", "contact"} {
			if get(field) == "" {
				out.Errors = append(out.Errors, RowError{
					Row: lineNum, Column: field, Code: ErrCodeRequiredField,
					Message: fmt.Sprintf("field '%s' is required", field),
				})
				missing = true
			}
		}
		if missing {
			continue
		}

		key := [2]string{c.Name, c.Store}
		if first, dup := seen[key]; dup {
			out.Errors = append(out.Errors, RowError{
				Row: lineNum, Code: ErrCodeDuplicateRow,
				Message: fmt.Sprintf("duplicates row %d", first),
			})
			continue
		}
		seen[key] = lineNum
		out.Customers = append(out.Customers, c)
	}
	return out
}
