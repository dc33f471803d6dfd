package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical field names. Source headers are mapped onto these by canonicalField.
const (
	FieldCategory   = "category"
	FieldName       = "name"
	FieldMinutes    = "minutes"
	FieldNotes      = "notes"
	FieldMediaLinks = "media_links"
)

// UncategorizedName is the category assigned to rows with a blank category.
const UncategorizedName = "Uncategorized"

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single spreadsheet value. Every parser converges on this
// representation before validation.
type Cell struct {
	kind CellKind
	text string
	num  float64
}

// TextCell returns a text cell. An empty string yields an empty cell.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: CellText, text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{kind: CellNumber, num: f}
}

// EmptyCell returns a blank cell.
func EmptyCell() Cell {
	return Cell{}
}

// Kind reports which variant the cell holds.
func (c Cell) Kind() CellKind { return c.kind }

// Number returns the numeric value and whether the cell is numeric.
func (c Cell) Number() (float64, bool) {
	return c.num, c.kind == CellNumber
}

// IsBlank reports whether the cell is empty or whitespace-only text.
func (c Cell) IsBlank() bool {
	switch c.kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.text) == ""
	default:
		return false
	}
}

// String renders the cell as text. Numbers use the shortest exact form.
func (c Cell) String() string {
	switch c.kind {
	case CellText:
		return c.text
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// parseNumber parses a finite decimal number. Text such as "NaN" or "Inf"
// stays text.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// RawRow is one source row keyed by canonical field name.
type RawRow struct {
	Line  int // 1-based, header row excluded
	Cells map[string]Cell
}

// Get returns the cell for a canonical field, or an empty cell.
func (r RawRow) Get(field string) Cell {
	return r.Cells[field]
}

// NormalizedRow is a validated, encoding-repaired row. It is the unit the
// caller reviews between preview and confirm.
type NormalizedRow struct {
	Category   string  `json:"category"`
	Name       string  `json:"name"`
	Minutes    *int    `json:"minutes,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	MediaLinks *string `json:"mediaLinks,omitempty"`
}

// RowError is a row-level problem reported against the original row number.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ImportSummary is derived at preview time and never reused at confirm.
type ImportSummary struct {
	TotalRows   int        `json:"totalRows"`
	ValidRows   int        `json:"validRows"`
	InvalidRows int        `json:"invalidRows"`
	Errors      []RowError `json:"errors"`
}

// StagedImport is the immutable payload handed back to the caller for review.
// Nothing about it is retained server-side.
type StagedImport struct {
	Rows    []NormalizedRow `json:"rows"`
	Summary ImportSummary   `json:"summary"`
}

// ConfirmRequest is the (possibly edited) staged row set resubmitted for commit.
type ConfirmRequest struct {
	Rows           []NormalizedRow `json:"rows"`
	DefaultMinutes *int            `json:"defaultMinutes,omitempty"`
	FileName       string          `json:"fileName,omitempty"`
}

// CommitError records a row that was not imported at confirm time.
type CommitError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// CommitResult is the outcome of a confirm.
type CommitResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []CommitError `json:"errors,omitempty"`
}

// Category is a user-owned drill category.
type Category struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

// DrillInput is a fully resolved drill ready for insertion.
type DrillInput struct {
	Row        int // position in the confirmed row set, for error reporting
	CategoryID uuid.UUID
	Name       string
	Minutes    int
	Notes      *string
	MediaLinks *string
}

// ImportRun is the persisted record of one confirm.
type ImportRun struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	FileName   string    `json:"fileName,omitempty"`
	TotalRows  int       `json:"totalRows"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Phase is a step of the import state machine. Transitions only move forward.
type Phase string

const (
	PhaseUploaded  Phase = "uploaded"
	PhaseParsed    Phase = "parsed"
	PhaseStaged    Phase = "staged"
	PhaseConfirmed Phase = "confirmed"
	PhaseCommitted Phase = "committed"
)
