package levels

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// The level file is read by tooling that compares it textually, so the
// writer controls every byte of spacing itself rather than relying on
// encoding/json. Values are built from the small tree below.

type ordField struct {
	Key   string
	Value any
}

// ordObject is an ordered JSON object.
type ordObject []ordField

type ordList []any

// dumpIndent writes v with 4-space indentation, nested lines starting at
// depth*4 spaces, ": " after keys and "," ending lines.
func dumpIndent(b *bytes.Buffer, v any, depth int) {
	pad := strings.Repeat("    ", depth)
	inner := pad + "    "
	switch v := v.(type) {
	case ordObject:
		if len(v) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, f := range v {
			if i > 0 {
				b.WriteString(",\n")
			}
			b.WriteString(inner)
			writeQuoted(b, f.Key)
			b.WriteString(": ")
			dumpIndent(b, f.Value, depth+1)
		}
		b.WriteString("\n" + pad + "}")
	case ordList:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range v {
			if i > 0 {
				b.WriteString(",\n")
			}
			b.WriteString(inner)
			dumpIndent(b, item, depth+1)
		}
		b.WriteString("\n" + pad + "]")
	default:
		writeScalar(b, v)
	}
}

// dumpCompact writes v on one line with ", " and ": " separators.
func dumpCompact(b *bytes.Buffer, v any) {
	switch v := v.(type) {
	case ordObject:
		b.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeQuoted(b, f.Key)
			b.WriteString(": ")
			dumpCompact(b, f.Value)
		}
		b.WriteByte('}')
	case ordList:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			dumpCompact(b, item)
		}
		b.WriteByte(']')
	default:
		writeScalar(b, v)
	}
}

func writeScalar(b *bytes.Buffer, v any) {
	switch v := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int:
		b.WriteString(strconv.Itoa(v))
	case string:
		writeQuoted(b, v)
	default:
		panic(fmt.Sprintf("levels: unsupported value %T", v))
	}
}

// writeQuoted quotes s with ASCII-only output: everything outside
// printable ASCII becomes a \uXXXX escape, astral runes as surrogate pairs.
func writeQuoted(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(b, `\u%04x`, r)
			case r < 0x80:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}
