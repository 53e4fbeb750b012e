package bulkimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet record. Number is the 1-based sheet row, so with a
// header in row 1 the first data row reports as 2, matching what the admin
// sees in their spreadsheet tool.
type Row struct {
	Number int
	Values map[string]string
}

// Parse reads an uploaded spreadsheet into ordered rows. The format is picked
// from the filename extension; .xlsx is the default. The whole payload is held
// in memory; uploads are admin-bounded and nothing ever touches disk.
func Parse(filename string, data []byte) ([]Row, error) {
	if len(data) == 0 {
		return nil, errors.New("empty upload")
	}
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return parseCSV(data)
	}
	return parseXLSX(data)
}

func parseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return tabulate(cells), nil
}

func parseCSV(data []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	cells, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return tabulate(cells), nil
}

// tabulate turns a header row plus data rows into keyed records. Rows that are
// entirely blank are skipped but still consume a row number.
func tabulate(cells [][]string) []Row {
	if len(cells) < 2 {
		return nil
	}
	headers := cells[0]
	var rows []Row
	for i, rec := range cells[1:] {
		values := make(map[string]string, len(headers))
		blank := true
		for col, h := range headers {
			if h == "" || col >= len(rec) {
				continue
			}
			values[h] = rec[col]
			if strings.TrimSpace(rec[col]) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Values: values})
	}
	return rows
}
