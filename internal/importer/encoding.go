package importer

// encoding.go repairs mojibake left behind by the legacy exporter.
//
// Two corruptions show up in historical exports:
//  1. Windows-1252 bytes read as Latin-1, which turns curly quotes and dashes
//     into invisible C1 control characters (U+0080..U+009F).
//  2. UTF-8 bytes read as Windows-1252, which turns an em dash into "â€”".
//
// FixEncoding undoes the first by reinterpreting the string as raw bytes and
// decoding them as Windows-1252, then undoes the second with a fixed
// substitution table. Both steps are no-ops on clean text, and the output of
// either never re-triggers the other, so the function is idempotent.

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// mojibakeReplacer maps UTF-8-read-as-1252 sequences back to the intended
// punctuation. Specific sequences are listed before the catch-all lead pair.
var mojibakeReplacer = strings.NewReplacer(
	"â€”", "—",
	"â€“", "–",
	"â€œ", "“",
	"â€\u009d", "”",
	"â€˜", "‘",
	"â€™", "’",
	"â€¢", "•",
	"â€¦", "…",
	"â€", "—",
)

// FixEncoding repairs historical encoding corruption in a text field.
// It is the identity on ASCII and on already-correct text.
func FixEncoding(s string) string {
	if s == "" {
		return ""
	}
	return mojibakeReplacer.Replace(reinterpretWindows1252(s))
}

// FixEncodingPtr is FixEncoding for optional fields. nil yields "".
func FixEncodingPtr(s *string) string {
	if s == nil {
		return ""
	}
	return FixEncoding(*s)
}

// reinterpretWindows1252 treats each rune of s as a byte and decodes the
// resulting byte string as Windows-1252. Strings holding any rune above
// U+00FF cannot be the product of a byte-level misread and are returned as-is.
func reinterpretWindows1252(s string) string {
	buf := make([]byte, 0, len(s))
	changed := false
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		if r >= 0x80 && r <= 0x9F {
			changed = true
		}
		buf = append(buf, byte(r))
	}
	if !changed {
		// 0x00-0x7F and 0xA0-0xFF decode to themselves in Windows-1252.
		return s
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(buf)
	if err != nil {
		return s
	}
	return string(decoded)
}
