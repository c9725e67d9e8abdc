package dbgfmt

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unescape resolves the escape sequences of a string or char literal
// body. pos is the position of the first byte of body and is used to
// tag errors with the offset of the offending backslash.
func Unescape(body string, pos Position) (string, error) {
	next := strings.IndexByte(body, '\\')
	if next < 0 {
		return body, nil
	}

	var sb strings.Builder
	sb.Grow(len(body))

	i := 0
	for next >= 0 {
		sb.WriteString(body[i : i+next])
		i += next
		at := pos.shift(body[:i])

		if i+1 >= len(body) {
			return "", newError(KindEscape, at, "incomplete escape sequence")
		}

		switch c := body[i+1]; c {
		case '\\':
			sb.WriteByte('\\')
			i += 2
		case '"':
			sb.WriteByte('"')
			i += 2
		case '\'':
			sb.WriteByte('\'')
			i += 2
		case 'n':
			sb.WriteByte('\n')
			i += 2
		case 'r':
			sb.WriteByte('\r')
			i += 2
		case 't':
			sb.WriteByte('\t')
			i += 2
		case '0':
			sb.WriteByte(0)
			i += 2
		case 'u':
			r, n, err := unescapeUnicode(body[i:], at)
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			i += n
		default:
			end := i + 1 + utf8RuneLen(body[i+1:])
			return "", newError(KindEscape, at, "invalid escape sequence %q", body[i:end])
		}

		next = strings.IndexByte(body[i:], '\\')
	}

	sb.WriteString(body[i:])
	return sb.String(), nil
}

// unescapeUnicode decodes a \u{XXXX} escape at the start of s and
// returns the rune and the number of bytes consumed.
func unescapeUnicode(s string, at Position) (rune, int, error) {
	if len(s) < 3 || s[2] != '{' {
		return 0, 0, newError(KindEscape, at, "invalid unicode escape: missing '{'")
	}

	end := strings.IndexByte(s, '}')
	if end < 0 {
		return 0, 0, newError(KindEscape, at, "invalid unicode escape: missing '}'")
	}

	digits := s[3:end]
	if len(digits) == 0 || len(digits) > 6 {
		return 0, 0, newError(KindEscape, at, "invalid unicode escape %q", s[:end+1])
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return 0, 0, newError(KindEscape, at, "invalid unicode escape %q", s[:end+1])
		}
	}

	code, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, 0, newError(KindEscape, at, "invalid unicode escape %q", s[:end+1])
	}
	r := rune(code)
	if !utf8.ValidRune(r) {
		return 0, 0, newError(KindEscape, at, "unicode escape %q is not a valid code point", s[:end+1])
	}
	return r, end + 1, nil
}

func utf8RuneLen(s string) int {
	_, size := utf8.DecodeRuneInString(s)
	return size
}
