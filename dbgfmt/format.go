package dbgfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatOptions controls rendering.
type FormatOptions struct {
	// Pretty writes one element per line with trailing commas, like the
	// alternate `{:#?}` form.
	Pretty bool

	// Indent is the per-level indent in pretty mode. Defaults to four
	// spaces.
	Indent string
}

// String renders v in compact form.
func (v *Value) String() string {
	return Format(v, FormatOptions{})
}

// Format renders v. Both forms decode back to a value equal to v.
func Format(v *Value, opts FormatOptions) string {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	f := &formatter{opts: opts}
	f.value(v)
	return f.sb.String()
}

type formatter struct {
	sb    strings.Builder
	opts  FormatOptions
	depth int
}

func (f *formatter) value(v *Value) {
	if v == nil {
		f.sb.WriteString("None")
		return
	}

	switch v.typ {
	case TypeNone:
		f.sb.WriteString("None")
	case TypeSome:
		f.sb.WriteString("Some")
		f.group("(", ")", len(v.items), func(i int) { f.value(v.items[i]) })
	case TypeBool:
		f.sb.WriteString(strconv.FormatBool(v.boolVal))
	case TypeInt:
		f.sb.WriteString(strconv.FormatInt(v.intVal, 10))
	case TypeUint:
		f.sb.WriteString(strconv.FormatUint(v.uintVal, 10))
	case TypeBigInt:
		f.sb.WriteString(v.bigVal.String())
	case TypeFloat:
		f.sb.WriteString(formatFloat(v.floatVal))
	case TypeString:
		f.sb.WriteString(Quote(v.strVal))
	case TypeChar:
		f.sb.WriteString(QuoteChar(v.charVal))
	case TypeUnit:
		f.sb.WriteString("()")
	case TypeIdent:
		f.sb.WriteString(v.strVal)
	case TypeSeq:
		f.group("[", "]", len(v.items), func(i int) { f.value(v.items[i]) })
	case TypeSet:
		f.group("{", "}", len(v.items), func(i int) { f.value(v.items[i]) })
	case TypeTuple:
		f.tuple(v.items)
	case TypeTupleStruct:
		f.sb.WriteString(v.strVal)
		f.group("(", ")", len(v.items), func(i int) { f.value(v.items[i]) })
	case TypeMap:
		f.group("{", "}", len(v.entries), func(i int) {
			f.value(v.entries[i].Key)
			f.sb.WriteString(": ")
			f.value(v.entries[i].Value)
		})
	case TypeStruct:
		f.structure(v)
	default:
		fmt.Fprintf(&f.sb, "<%s>", v.typ)
	}
}

// group writes n elements between open and close.
func (f *formatter) group(open, close string, n int, elem func(i int)) {
	f.sb.WriteString(open)
	if n == 0 {
		f.sb.WriteString(close)
		return
	}
	if !f.opts.Pretty {
		for i := 0; i < n; i++ {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			elem(i)
		}
		f.sb.WriteString(close)
		return
	}

	f.depth++
	for i := 0; i < n; i++ {
		f.newline()
		elem(i)
		f.sb.WriteByte(',')
	}
	f.depth--
	f.newline()
	f.sb.WriteString(close)
}

// tuple writes a tuple. A single element keeps its trailing comma in
// compact form so that `(1,)` stays distinct from a parenthesised value.
func (f *formatter) tuple(items []*Value) {
	if len(items) == 1 && !f.opts.Pretty {
		f.sb.WriteByte('(')
		f.value(items[0])
		f.sb.WriteString(",)")
		return
	}
	f.group("(", ")", len(items), func(i int) { f.value(items[i]) })
}

func (f *formatter) structure(v *Value) {
	f.sb.WriteString(v.strVal)
	n := len(v.fields)
	if n == 0 && !v.rest {
		f.sb.WriteString(" {}")
		return
	}

	if !f.opts.Pretty {
		f.sb.WriteString(" { ")
		for i, fld := range v.fields {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			f.sb.WriteString(fld.Name)
			f.sb.WriteString(": ")
			f.value(fld.Value)
		}
		if v.rest {
			if n > 0 {
				f.sb.WriteString(", ")
			}
			f.sb.WriteString("..")
		}
		f.sb.WriteString(" }")
		return
	}

	f.sb.WriteString(" {")
	f.depth++
	for _, fld := range v.fields {
		f.newline()
		f.sb.WriteString(fld.Name)
		f.sb.WriteString(": ")
		f.value(fld.Value)
		f.sb.WriteByte(',')
	}
	if v.rest {
		f.newline()
		f.sb.WriteString("..")
	}
	f.depth--
	f.newline()
	f.sb.WriteByte('}')
}

func (f *formatter) newline() {
	f.sb.WriteByte('\n')
	for i := 0; i < f.depth; i++ {
		f.sb.WriteString(f.opts.Indent)
	}
}

// formatFloat writes f so that it lexes as a float again.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Quote renders s as a string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		if r == '\'' {
			sb.WriteRune(r)
			continue
		}
		writeEscaped(&sb, r, '"')
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteChar renders r as a char literal.
func QuoteChar(r rune) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	if r == '"' {
		sb.WriteRune(r)
	} else {
		writeEscaped(&sb, r, '\'')
	}
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, r rune, quote rune) {
	switch r {
	case '\\':
		sb.WriteString(`\\`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\t':
		sb.WriteString(`\t`)
	case 0:
		sb.WriteString(`\0`)
	case quote:
		sb.WriteByte('\\')
		sb.WriteRune(r)
	default:
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(sb, `\u{%x}`, r)
			return
		}
		sb.WriteRune(r)
	}
}
