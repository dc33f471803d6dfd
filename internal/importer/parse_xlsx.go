package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxParser reads the first worksheet of a zipped (OOXML) workbook.
type xlsxParser struct{}

func (xlsxParser) Parse(ctx context.Context, data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrParse, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrParse, sheet)
	}

	header := newHeaderMap(rows[0])
	out := make([]RawRow, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if err := checkContext(ctx, i); err != nil {
			return nil, err
		}

		cells := make([]Cell, len(row))
		for col, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			// Sheet row i+2: one for 1-based addressing, one for the header.
			cells[col] = xlsxCell(f, sheet, col+1, i+2, v)
		}

		if raw, ok := header.row(i+1, cells); ok {
			out = append(out, raw)
		}
	}

	return out, nil
}

// xlsxCell types a raw cell value. String-typed cells stay text; everything
// else is numeric when it parses as a number.
func xlsxCell(f *excelize.File, sheet string, col, row int, v string) Cell {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err == nil {
		typ, err := f.GetCellType(sheet, name)
		if err == nil {
			switch typ {
			case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
				excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeBool:
				return TextCell(v)
			}
		}
	}

	if n, ok := parseNumber(v); ok {
		return NumberCell(n)
	}
	return TextCell(v)
}
