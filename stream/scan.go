package stream

import (
	"strings"
	"unicode/utf8"
)

// maxEscapeLen bounds the body of an escaped char literal (`\u{10ffff}`).
const maxEscapeLen = 10

// scanState tracks delimiter depth across the lines of one record.
type scanState struct {
	depth    int
	inString bool
	escaped  bool
}

// scan advances the state over one line. It returns the byte index of a
// closing delimiter that has nothing to close, or -1.
func (s *scanState) scan(line string) int {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}

		switch c {
		case '"':
			s.inString = true
		case '\'':
			if n := charLiteralLen(line[i:]); n > 0 {
				i += n - 1
			}
		case '{', '[', '(':
			s.depth++
		case '}', ']', ')':
			if s.depth == 0 {
				return i
			}
			s.depth--
		}
	}
	return -1
}

func (s *scanState) balanced() bool {
	return s.depth == 0 && !s.inString
}

// charLiteralLen returns the length of the char literal at the start of s,
// or 0 when the quote does not open one (an apostrophe in plain text).
func charLiteralLen(s string) int {
	if len(s) < 3 || s[0] != '\'' {
		return 0
	}
	if s[1] == '\\' {
		if s[2] == '\'' || s[2] == '\\' {
			if len(s) > 3 && s[3] == '\'' {
				return 4
			}
			return 0
		}
		end := strings.IndexByte(s[2:], '\'')
		if end < 0 || end > maxEscapeLen {
			return 0
		}
		return end + 3
	}
	_, size := utf8.DecodeRuneInString(s[1:])
	if 1+size < len(s) && s[1+size] == '\'' {
		return size + 2
	}
	return 0
}
