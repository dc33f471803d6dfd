package importer

// validate.go checks raw rows and produces normalized rows.
//
// Checks run in a fixed order and stop at the first failure, so each invalid
// row carries exactly one message. Every error is reported against the row's
// original source position, never its index among valid rows.

import (
	"math"
	"strings"
)

const (
	msgCategoryRequired = "Category is required"
	msgNameRequired     = "Name is required"
	msgMinutesInvalid   = "Minutes must be a non-negative number"
)

// ValidationResult is the outcome of validating one raw row.
type ValidationResult struct {
	Row   NormalizedRow
	Valid bool
	Error RowError // zero when Valid
}

// ValidateRow checks category, name and minutes, in that order.
// Minutes is left nil when absent; defaults are applied at commit.
func ValidateRow(raw RawRow) ValidationResult {
	invalid := func(msg string) ValidationResult {
		return ValidationResult{Error: RowError{Row: raw.Line, Message: msg}}
	}

	category := cleanText(raw.Get(FieldCategory))
	if category == "" {
		return invalid(msgCategoryRequired)
	}

	name := cleanText(raw.Get(FieldName))
	if name == "" {
		return invalid(msgNameRequired)
	}

	var minutes *int
	if cell := raw.Get(FieldMinutes); !cell.IsBlank() {
		m, ok := parseMinutes(cell)
		if !ok {
			return invalid(msgMinutesInvalid)
		}
		minutes = &m
	}

	return ValidationResult{
		Valid: true,
		Row: NormalizedRow{
			Category:   category,
			Name:       name,
			Minutes:    minutes,
			Notes:      optionalText(raw.Get(FieldNotes)),
			MediaLinks: optionalText(raw.Get(FieldMediaLinks)),
		},
	}
}

// cleanText repairs encoding and trims a cell.
func cleanText(c Cell) string {
	return strings.TrimSpace(FixEncoding(c.String()))
}

func optionalText(c Cell) *string {
	s := cleanText(c)
	if s == "" {
		return nil
	}
	return &s
}

// parseMinutes accepts non-negative integral values, either numeric cells or
// text such as "15" or "15.0".
func parseMinutes(c Cell) (int, bool) {
	n, ok := c.Number()
	if !ok {
		n, ok = parseNumber(c.String())
		if !ok {
			return 0, false
		}
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// normalizeConfirmed re-applies text cleanup to a row the caller may have
// edited since preview.
func normalizeConfirmed(r NormalizedRow) NormalizedRow {
	out := NormalizedRow{
		Category: strings.TrimSpace(FixEncoding(r.Category)),
		Name:     strings.TrimSpace(FixEncoding(r.Name)),
		Minutes:  r.Minutes,
	}
	if s := strings.TrimSpace(FixEncodingPtr(r.Notes)); s != "" {
		out.Notes = &s
	}
	if s := strings.TrimSpace(FixEncodingPtr(r.MediaLinks)); s != "" {
		out.MediaLinks = &s
	}
	return out
}
