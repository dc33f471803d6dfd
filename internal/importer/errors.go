package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when neither the extension nor the
	// content type matches a supported format.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when the payload exceeds the size ceiling.
	ErrFileTooLarge = errors.New("file too large")

	// ErrParse is returned for corrupt files and files without data rows.
	// It aborts the whole request.
	ErrParse = errors.New("parse error")

	// ErrEmptyFile is an ErrParse for payloads with no data rows.
	ErrEmptyFile = fmt.Errorf("%w: empty file", ErrParse)

	// ErrNoRows is returned when Confirm receives an empty row set.
	ErrNoRows = errors.New("no rows to import")

	// ErrDuplicate is returned by stores when an insert violates the per-user
	// unique drill name index.
	ErrDuplicate = errors.New("duplicate drill name")

	// ErrNotFound is returned by stores when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrTooManyImports is returned when all import slots are occupied and
	// the wait timeout expires. Clients should retry after a short delay.
	ErrTooManyImports = errors.New("too many concurrent imports, please try again later")
)
