package dbgfmt

import (
	"fmt"
	"strings"
	"testing"
)

// ============================================================
// Decoder Benchmarks
// ============================================================
//
// Run with:
//   go test -bench=. -benchmem ./dbgfmt/

func benchInput(n int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, `Event { id: %d, name: "evt-%d", score: %d.5, tags: Some(["a", "b"]), kind: Click }`, i, i, i)
	}
	sb.WriteString("]")
	return sb.String()
}

// BenchmarkTokenize measures the scanner alone.
func BenchmarkTokenize(b *testing.B) {
	input := benchInput(100)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewLexer(input).Tokenize(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParse measures decoding into a Value tree.
func BenchmarkParse(b *testing.B) {
	input := benchInput(100)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(input); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSkip measures validation without building values.
func BenchmarkSkip(b *testing.B) {
	input := benchInput(100)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDecoder(input)
		if err := d.Skip(); err != nil {
			b.Fatal(err)
		}
	}
}

type benchEvent struct {
	ID    uint64
	Name  string
	Score float64
	Tags  *[]string
	Kind  benchKind
}

func (benchEvent) DebugName() string { return "Event" }

type benchKind string

func (k *benchKind) UnmarshalDebug(d *Decoder) error {
	name, err := d.DecodeIdent()
	*k = benchKind(name)
	return err
}

// BenchmarkUnmarshal measures reflection-driven decoding.
func BenchmarkUnmarshal(b *testing.B) {
	input := benchInput(100)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var events []benchEvent
		if err := Unmarshal(input, &events); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFormatPretty measures rendering.
func BenchmarkFormatPretty(b *testing.B) {
	v, err := Parse(benchInput(100))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Format(v, FormatOptions{Pretty: true})
	}
}
