package stream

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 of Normalize(text). The compact and
// pretty renderings of one value share a fingerprint.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Normalize drops whitespace outside string and char literals, and commas
// directly before a closing delimiter.
func Normalize(text string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			end := stringLiteralEnd(text, i)
			out = append(out, text[i:end]...)
			i = end - 1
		case '\'':
			if n := charLiteralLen(text[i:]); n > 0 {
				out = append(out, text[i:i+n]...)
				i += n - 1
				continue
			}
			out = append(out, c)
		case '}', ']', ')':
			if n := len(out); n > 0 && out[n-1] == ',' {
				out = out[:n-1]
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// stringLiteralEnd returns the index just past the string literal opened
// at text[start], or len(text) when it is unterminated.
func stringLiteralEnd(text string, start int) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(text)
}
