// Package stream splits log output into Rust debug renderings.
//
// A record is one rendering. Compact renderings fit on one line; pretty
// renderings (`{:#?}`) span several lines, and the reader keeps joining
// lines while any `{`, `[` or `(` opened outside a string or char literal
// is still unclosed.
//
// Records carry their position in the input so decode errors can be
// reported against the input file. The text itself is handed to the
// dbgfmt decoder unchanged.
package stream

import (
	"fmt"
)

// DefaultMaxRecord is the default maximum record size (1 MiB).
const DefaultMaxRecord = 1 << 20

// Record is a single debug rendering read from a stream.
type Record struct {
	Line   int    // 1-based line of the record's first line
	Column int    // 1-based column of Text's first rune on that line
	Offset int64  // byte offset of Text's first byte in the stream
	Text   string // rendering with the log prefix removed
}

// ParseError reports a record the reader could not delimit.
type ParseError struct {
	Reason string
	Line   int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("stream: %s at line %d", e.Reason, e.Line)
	}
	return fmt.Sprintf("stream: %s", e.Reason)
}
