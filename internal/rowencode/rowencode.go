// Package rowencode is the pure function at the bottom of the data
// pipeline (spec component C): it turns one already-shaped source row into
// one line of PostgreSQL COPY text format. It touches no database and no
// file; the Data Pipeline (internal/pipeline) is the only caller.
package rowencode

import "strings"

// Field is one already-shaped value read back from the source SELECT
// (§4.F point 2 has already turned spatial/bit/temporal columns into the
// plain strings or hex text the encoder expects).
type Field struct {
	// Null means the source value was SQL NULL; Value is ignored.
	Null bool
	// HexBinary means Value already holds hex digits that must be emitted
	// as a bytea \x literal, not escaped as text.
	HexBinary bool
	Value     string
}

// EncodeRow renders one row as a COPY text line, without the trailing
// newline. The pipeline uses it to write rejected rows to the reject log.
func EncodeRow(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\t')
		}
		writeField(&b, f)
	}
	return b.String()
}

func writeField(b *strings.Builder, f Field) {
	if f.Null {
		b.WriteString(`\N`)
		return
	}
	if f.HexBinary {
		b.WriteString(`\x`)
		b.WriteString(f.Value)
		return
	}
	EscapeInto(b, f.Value)
}

// Escape applies the four COPY text escapes to s: backslash, newline,
// carriage return and tab. The result never contains a bare tab or
// newline, satisfying the encoder's round-trip invariant.
func Escape(s string) string {
	var b strings.Builder
	EscapeInto(&b, s)
	return b.String()
}

// EscapeInto writes the escaped form of s into b without an intermediate
// allocation, used by EncodeRow when assembling a full line.
func EscapeInto(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
}

// Unescape reverses Escape, per PostgreSQL's documented COPY text decode
// rules. It exists to let tests assert the encoder's round-trip property;
// production code never needs to decode its own output.
func Unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			b.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
