package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"silentskies-service/pkg/table"
)

// XLSXLoader reads the first worksheet of an Office Open XML workbook.
// Cells are read raw, so date cells arrive as spreadsheet serial numbers.
type XLSXLoader struct {
	extensionMatcher
}

// NewXLSXLoader creates a new XLSX loader
func NewXLSXLoader() *XLSXLoader {
	return &XLSXLoader{extensionMatcher{extensions: []string{".xlsx"}}}
}

func (l *XLSXLoader) Format() string { return "xlsx" }

// Load reads the header and every row of the first sheet.
func (l *XLSXLoader) Load(ctx context.Context, r io.Reader) (*table.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no columns to parse from file")
	}

	// trailing blank header cells are trimmed by excelize
	header := rows[0]
	for _, row := range rows[1:] {
		for len(header) < len(row) {
			header = append(header, "")
		}
	}

	return &table.Grid{
		Header:           header,
		Records:          rows[1:],
		SpreadsheetDates: true,
	}, nil
}
