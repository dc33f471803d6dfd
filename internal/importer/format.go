// Package importer implements the legacy drill import pipeline: format
// detection, parsing, encoding repair, validation, duplicate resolution,
// and batched commit with per-row failure isolation.
//
// The pipeline is stateless across the preview/confirm boundary. Preview
// returns a StagedImport that the caller holds, edits and resubmits verbatim
// to Confirm; no session is kept between the two requests.
package importer

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest accepted upload (10MB).
const MaxFileSize int64 = 10 << 20

// Format identifies a supported source file shape.
type Format string

const (
	FormatUnknown   Format = ""
	FormatLegacyXLS Format = "xls"
	FormatXLSX      Format = "xlsx"
	FormatDelimited Format = "delimited"
)

var extensionFormats = map[string]Format{
	".xls":  FormatLegacyXLS,
	".xlsx": FormatXLSX,
	".csv":  FormatDelimited,
	".tsv":  FormatDelimited,
	".txt":  FormatDelimited,
}

var mimeFormats = map[string]Format{
	"application/vnd.ms-excel": FormatLegacyXLS,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
	"text/csv":                  FormatDelimited,
	"application/csv":           FormatDelimited,
	"text/plain":                FormatDelimited,
	"text/tab-separated-values": FormatDelimited,
}

// DetectFormat selects a parser for an upload. The size ceiling is checked
// first so oversized payloads are rejected before any parsing work.
//
// The extension wins over the declared content type: browsers on Windows
// report .csv files as application/vnd.ms-excel.
func DetectFormat(filename, contentType string, size int64) (Format, error) {
	return detectFormat(filename, contentType, size, MaxFileSize)
}

func detectFormat(filename, contentType string, size, limit int64) (Format, error) {
	if size > limit {
		return FormatUnknown, fmt.Errorf("%w: %d bytes exceeds %dMB limit", ErrFileTooLarge, size, limit>>20)
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}

	if ext == "" && contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if f, ok := mimeFormats[strings.ToLower(mediaType)]; ok {
				return f, nil
			}
		}
	}

	return FormatUnknown, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, filename, contentType)
}
