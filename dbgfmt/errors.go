package dbgfmt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies decode failures.
type ErrorKind uint8

const (
	KindLex           ErrorKind = iota + 1 // malformed token
	KindEscape                             // bad escape inside a string or char literal
	KindSyntax                             // a value of the wrong shape
	KindStructural                         // delimiter mismatch or unterminated collection
	KindNameMismatch                       // struct or variant name differs from the expected one
	KindUnknownField                       // field not in the expected field set
	KindOverflow                           // number does not fit the requested width or sign
	KindTrailingInput                      // input left over after the value
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "lex error"
	case KindEscape:
		return "invalid escape"
	case KindSyntax:
		return "syntax error"
	case KindStructural:
		return "structural error"
	case KindNameMismatch:
		return "name mismatch"
	case KindUnknownField:
		return "unknown field"
	case KindOverflow:
		return "overflow"
	case KindTrailingInput:
		return "trailing input"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrLex           = errors.New("dbgfmt: lex error")
	ErrEscape        = errors.New("dbgfmt: invalid escape")
	ErrSyntax        = errors.New("dbgfmt: syntax error")
	ErrStructural    = errors.New("dbgfmt: structural error")
	ErrNameMismatch  = errors.New("dbgfmt: name mismatch")
	ErrUnknownField  = errors.New("dbgfmt: unknown field")
	ErrOverflow      = errors.New("dbgfmt: overflow")
	ErrTrailingInput = errors.New("dbgfmt: trailing input")
)

var kindSentinels = map[ErrorKind]error{
	KindLex:           ErrLex,
	KindEscape:        ErrEscape,
	KindSyntax:        ErrSyntax,
	KindStructural:    ErrStructural,
	KindNameMismatch:  ErrNameMismatch,
	KindUnknownField:  ErrUnknownField,
	KindOverflow:      ErrOverflow,
	KindTrailingInput: ErrTrailingInput,
}

// Error is a decode failure tagged with the position where it was
// detected.
type Error struct {
	Kind     ErrorKind
	Pos      Position
	Msg      string
	Expected string // what the decoder wanted, if known
	Found    string // what the input held, if known
	Err      error  // underlying cause, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("dbgfmt: %s at %s", e.Message(), e.Pos)
}

// Message returns the error text without the package prefix and position.
func (e *Error) Message() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	switch {
	case e.Expected != "" && e.Found != "":
		fmt.Fprintf(&sb, " (expected %s, found %s)", e.Expected, e.Found)
	case e.Expected != "":
		fmt.Fprintf(&sb, " (expected %s)", e.Expected)
	case e.Found != "":
		fmt.Fprintf(&sb, " (found %s)", e.Found)
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && kindSentinels[e.Kind] == target
}

func newError(kind ErrorKind, pos Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func lexError(pos Position, format string, args ...interface{}) *Error {
	return newError(KindLex, pos, format, args...)
}

// unexpected reports a token of the wrong class where expected was needed.
func unexpected(tok Token, expected string) *Error {
	return &Error{Kind: KindSyntax, Pos: tok.Pos, Msg: "unexpected token", Expected: expected, Found: tok.describe()}
}

// structural reports a delimiter problem inside a collection.
func structural(tok Token, expected string) *Error {
	msg := "unexpected token"
	if tok.Type == TokenEOF {
		msg = "unterminated collection"
	}
	return &Error{Kind: KindStructural, Pos: tok.Pos, Msg: msg, Expected: expected, Found: tok.describe()}
}

func nameMismatch(tok Token, expected string) *Error {
	return &Error{Kind: KindNameMismatch, Pos: tok.Pos, Expected: "`" + expected + "`", Found: tok.describe()}
}

func overflow(tok Token, format string, args ...interface{}) *Error {
	e := newError(KindOverflow, tok.Pos, format, args...)
	e.Found = tok.describe()
	return e
}
