package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/extrame/xls"
)

// xlsParser reads the first sheet of a legacy BIFF (.xls) workbook.
type xlsParser struct{}

func (xlsParser) Parse(ctx context.Context, data []byte) (rows []RawRow, err error) {
	// The BIFF reader panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("%w: corrupt workbook: %v", ErrParse, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrParse, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	headerRow := sheetRow(sheet, 0)
	if headerRow == nil {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrParse, sheet.Name)
	}

	headerCells := make([]string, headerRow.LastCol())
	for c := headerRow.FirstCol(); c < headerRow.LastCol(); c++ {
		headerCells[c] = headerRow.Col(c)
	}
	header := newHeaderMap(headerCells)

	maxRow := int(sheet.MaxRow)
	out := make([]RawRow, 0, maxRow)

	for r := 1; r <= maxRow; r++ {
		if err := checkContext(ctx, r); err != nil {
			return nil, err
		}

		row := sheetRow(sheet, r)
		if row == nil {
			continue
		}

		cells := make([]Cell, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = xlsCell(row.Col(c))
		}

		if raw, ok := header.row(r, cells); ok {
			out = append(out, raw)
		}
	}

	return out, nil
}

// sheetRow returns row i, or nil when the sheet has no record for it.
// Blank rows are usually left out of a BIFF sheet and Sheet.Row panics on them.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsCell coerces the reader's formatted text back into a typed cell.
func xlsCell(v string) Cell {
	t := strings.TrimSpace(v)
	if t == "" {
		return EmptyCell()
	}
	if n, ok := parseNumber(t); ok {
		return NumberCell(n)
	}
	return TextCell(v)
}
