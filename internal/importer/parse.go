package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ContextCheckInterval is how often (in rows) parsers check for cancellation.
var ContextCheckInterval = 100

// Parser turns a file payload into raw rows. Implementations must preserve
// source order, number rows 1-based excluding the header, and skip rows with
// no non-blank cell.
type Parser interface {
	Parse(ctx context.Context, data []byte) ([]RawRow, error)
}

// ParserFor returns the adapter for a detected format.
func ParserFor(f Format) (Parser, error) {
	switch f {
	case FormatXLSX:
		return xlsxParser{}, nil
	case FormatLegacyXLS:
		return xlsParser{}, nil
	case FormatDelimited:
		return delimitedParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// ParseFile runs the adapter for f and enforces the shared contract:
// failures and empty results are reported as ErrParse.
func ParseFile(ctx context.Context, f Format, data []byte) ([]RawRow, error) {
	p, err := ParserFor(f)
	if err != nil {
		return nil, err
	}

	rows, err := p.Parse(ctx, data)
	if err != nil {
		if errors.Is(err, ErrParse) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows after header", ErrEmptyFile)
	}
	return rows, nil
}

// headerAliases maps normalized header text to canonical field names.
// Normalization lowercases and drops spaces, underscores and hyphens.
var headerAliases = map[string]string{
	"category":        FieldCategory,
	"categoryname":    FieldCategory,
	"drillcategory":   FieldCategory,
	"name":            FieldName,
	"drill":           FieldName,
	"drillname":       FieldName,
	"title":           FieldName,
	"minutes":         FieldMinutes,
	"mins":            FieldMinutes,
	"duration":        FieldMinutes,
	"durationminutes": FieldMinutes,
	"durationmins":    FieldMinutes,
	"time":            FieldMinutes,
	"notes":           FieldNotes,
	"note":            FieldNotes,
	"description":     FieldNotes,
	"instructions":    FieldNotes,
	"medialinks":      FieldMediaLinks,
	"media":           FieldMediaLinks,
	"links":           FieldMediaLinks,
	"videolinks":      FieldMediaLinks,
	"videos":          FieldMediaLinks,
	"urls":            FieldMediaLinks,
}

// canonicalField returns the canonical field for a header cell, or the
// normalized header itself when it is not a known alias.
func canonicalField(header string) string {
	h := strings.ToLower(strings.TrimSpace(FixEncoding(header)))
	h = strings.TrimPrefix(h, "\ufeff")
	key := strings.NewReplacer(" ", "", "_", "", "-", "", "(", "", ")", "").Replace(h)
	if f, ok := headerAliases[key]; ok {
		return f
	}
	return h
}

// headerMap maps column positions to canonical field names.
type headerMap []string

func newHeaderMap(header []string) headerMap {
	m := make(headerMap, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		f := canonicalField(h)
		if f == "" || seen[f] {
			// First column wins when a field appears twice.
			continue
		}
		seen[f] = true
		m[i] = f
	}
	return m
}

// row builds a RawRow from positional cells. ok is false when every cell is
// blank, in which case the row is skipped.
func (m headerMap) row(line int, cells []Cell) (RawRow, bool) {
	raw := RawRow{Line: line, Cells: make(map[string]Cell, len(m))}
	empty := true
	for i, c := range cells {
		if !c.IsBlank() {
			empty = false
		}
		if i >= len(m) || m[i] == "" {
			continue
		}
		raw.Cells[m[i]] = c
	}
	if empty {
		return RawRow{}, false
	}
	return raw, true
}

func checkContext(ctx context.Context, i int) error {
	if i%ContextCheckInterval == 0 {
		return ctx.Err()
	}
	return nil
}
