package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidateDelimiters are tried in order; ties go to the earlier entry.
var candidateDelimiters = []rune{',', ';', '\t'}

// delimitedParser reads comma, semicolon or tab separated text. All values
// start as text.
type delimitedParser struct{}

func (delimitedParser) Parse(ctx context.Context, data []byte) ([]RawRow, error) {
	data = decodeDelimited(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headerRecord, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrParse, err)
	}
	header := newHeaderMap(headerRecord)

	// encoding/csv drops blank lines, so rows are numbered from the line a
	// record starts on, less the header line and any line breaks quoted
	// inside earlier records.
	headerLine, _ := r.FieldPos(0)
	offset := headerLine + embeddedLineBreaks(headerRecord)

	var out []RawRow
	for i := 0; ; i++ {
		if err := checkContext(ctx, i); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		line, _ := r.FieldPos(0)
		cells := make([]Cell, len(record))
		for c, v := range record {
			cells[c] = TextCell(v)
		}
		if raw, ok := header.row(line-offset, cells); ok {
			out = append(out, raw)
		}
		offset += embeddedLineBreaks(record)
	}

	return out, nil
}

func embeddedLineBreaks(record []string) int {
	n := 0
	for _, v := range record {
		n += strings.Count(v, "\n")
	}
	return n
}

// decodeDelimited strips a UTF-8 BOM and, when the payload is not valid
// UTF-8, decodes it as Windows-1252, the legacy exporter's code page.
func decodeDelimited(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}
	return decoded
}

// sniffDelimiter picks the candidate that occurs most often, outside quotes,
// on the first non-blank line.
func sniffDelimiter(data []byte) rune {
	var line []byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			line, data = data, nil
		} else {
			line, data = data[:i], data[i+1:]
		}
		if len(bytes.TrimSpace(line)) > 0 {
			break
		}
	}

	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best := candidateDelimiters[0]
	for _, d := range candidateDelimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}
