package dbgfmt

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Literals
	TokenInt    // 123, -456, 0xff
	TokenFloat  // 1.5, -2e10, -inf
	TokenString // "quoted string"
	TokenChar   // 'c'
	TokenIdent  // Point, true, None, inf

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenLParen   // (
	TokenRParen   // )
	TokenColon    // :
	TokenComma    // ,
	TokenDotDot   // ..
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	case TokenChar:
		return "CHAR"
	case TokenIdent:
		return "IDENT"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenDotDot:
		return ".."
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexer token. Value holds the raw source text,
// including the quotes of string and char literals.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// describe renders the token for error messages.
func (t Token) describe() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return "`" + t.Value + "`"
}

// Position represents a source location.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, counted in runes
	Offset int // 0-based byte offset
}

// String returns position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// shift returns the position reached after reading s from p.
func (p Position) shift(s string) Position {
	for _, r := range s {
		if r == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	p.Offset += len(s)
	return p
}

type scanned struct {
	tok Token
	err error
}

// Lexer tokenizes debug text on demand. It keeps at most two tokens of
// lookahead and never moves backwards.
type Lexer struct {
	input string
	pos   int // Current position in input
	line  int // Current line number (1-based)
	col   int // Current column number (1-based)
	ahead []scanned
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
		ahead: make([]scanned, 0, 2),
	}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if len(l.ahead) == 0 {
		tok, err := l.scan()
		l.ahead = append(l.ahead, scanned{tok, err})
	}
	return l.ahead[0].tok, l.ahead[0].err
}

// PeekSecond returns the token after the next one without consuming
// either. It is only used to classify identifiers.
func (l *Lexer) PeekSecond() (Token, error) {
	if _, err := l.Peek(); err != nil {
		return Token{}, err
	}
	if len(l.ahead) == 1 {
		tok, err := l.scan()
		l.ahead = append(l.ahead, scanned{tok, err})
	}
	return l.ahead[1].tok, l.ahead[1].err
}

// Next consumes and returns the next token. A lex error is sticky: the
// failing token is never consumed.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.Peek()
	if err != nil {
		return tok, err
	}
	if tok.Type != TokenEOF {
		l.ahead = l.ahead[:copy(l.ahead, l.ahead[1:])]
	}
	return tok, nil
}

// Tokenize returns all remaining tokens, ending with EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// scan reads one token from the input.
func (l *Lexer) scan() (Token, error) {
	l.skipWhitespace()

	startPos := l.currentPos()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: startPos}, nil
	}

	ch := l.input[l.pos]

	// Single character tokens
	switch ch {
	case '{':
		return l.single(TokenLBrace, startPos), nil
	case '}':
		return l.single(TokenRBrace, startPos), nil
	case '[':
		return l.single(TokenLBracket, startPos), nil
	case ']':
		return l.single(TokenRBracket, startPos), nil
	case '(':
		return l.single(TokenLParen, startPos), nil
	case ')':
		return l.single(TokenRParen, startPos), nil
	case ':':
		return l.single(TokenColon, startPos), nil
	case ',':
		return l.single(TokenComma, startPos), nil
	case '.':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '.' {
			l.advance()
			l.advance()
			return Token{Type: TokenDotDot, Value: "..", Pos: startPos}, nil
		}
		return Token{}, lexError(startPos, "unexpected character '.'")
	case '"':
		return l.scanQuoted('"', TokenString, startPos)
	case '\'':
		return l.scanQuoted('\'', TokenChar, startPos)
	}

	if ch == '-' || ch == '+' || isDigit(ch) {
		return l.scanNumber(startPos)
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	if isIdentStart(r) {
		return l.scanIdent(startPos), nil
	}
	if r == utf8.RuneError {
		return Token{}, lexError(startPos, "invalid UTF-8 encoding")
	}
	return Token{}, lexError(startPos, "unexpected character %q", r)
}

func (l *Lexer) single(typ TokenType, pos Position) Token {
	l.advance()
	return Token{Type: typ, Value: l.input[pos.Offset:l.pos], Pos: pos}
}

// scanQuoted scans a string or char literal through its closing quote.
// Escapes are only skipped here; Unescape resolves them when the token
// is consumed.
func (l *Lexer) scanQuoted(quote byte, typ TokenType, startPos Position) (Token, error) {
	l.advance() // consume opening quote

	for {
		if l.pos >= len(l.input) {
			return Token{}, lexError(startPos, "unterminated %s literal", literalName(typ))
		}

		ch := l.input[l.pos]
		if ch == quote {
			l.advance() // consume closing quote
			break
		}
		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				return Token{}, lexError(startPos, "unterminated %s literal", literalName(typ))
			}
		}
		l.advance()
	}

	return Token{Type: typ, Value: l.input[startPos.Offset:l.pos], Pos: startPos}, nil
}

func literalName(typ TokenType) string {
	if typ == TokenChar {
		return "character"
	}
	return "string"
}

// scanNumber scans an integer or float, including a leading sign, radix
// prefixes and signed infinities.
func (l *Lexer) scanNumber(startPos Position) (Token, error) {
	start := l.pos

	// Optional sign
	if ch := l.peek(); ch == '-' || ch == '+' {
		l.advance()
		if l.hasWord("inf") {
			l.advance()
			l.advance()
			l.advance()
			return Token{Type: TokenFloat, Value: l.input[start:l.pos], Pos: startPos}, nil
		}
		if l.pos >= len(l.input) || !isDigit(l.peek()) {
			return Token{}, lexError(startPos, "expected digit after sign")
		}
	}

	// Radix integers: 0x, 0o, 0b
	if l.peek() == '0' && l.pos+1 < len(l.input) {
		if valid := radixDigit(l.input[l.pos+1]); valid != nil {
			l.advance()
			l.advance()
			if l.pos >= len(l.input) || !valid(l.peek()) {
				return Token{}, lexError(startPos, "malformed integer literal %q", l.input[start:l.pos])
			}
			for l.pos < len(l.input) && valid(l.peek()) {
				l.advance()
			}
			return l.finishNumber(TokenInt, start, startPos)
		}
	}

	// Integer part
	for l.pos < len(l.input) && isDigit(l.peek()) {
		l.advance()
	}

	typ := TokenInt

	// Fraction part. A following ".." belongs to a range and ends the number.
	if l.peek() == '.' && !l.hasPrefix("..") {
		l.advance()
		if l.pos >= len(l.input) || !isDigit(l.peek()) {
			return Token{}, lexError(startPos, "malformed number %q", l.input[start:l.pos])
		}
		typ = TokenFloat
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
		}
	}

	// Exponent part
	if ch := l.peek(); ch == 'e' || ch == 'E' {
		l.advance()
		if ch := l.peek(); ch == '+' || ch == '-' {
			l.advance()
		}
		if l.pos >= len(l.input) || !isDigit(l.peek()) {
			return Token{}, lexError(startPos, "malformed exponent in %q", l.input[start:l.pos])
		}
		typ = TokenFloat
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
		}
	}

	return l.finishNumber(typ, start, startPos)
}

// finishNumber rejects numbers that run straight into identifier
// characters or a second fraction, such as "12abc" or "1.2.3".
func (l *Lexer) finishNumber(typ TokenType, start int, startPos Position) (Token, error) {
	if l.pos < len(l.input) {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		if isIdentContinue(r) || (r == '.' && !l.hasPrefix("..")) {
			return Token{}, lexError(startPos, "malformed number %q", l.input[start:l.pos+1])
		}
	}
	return Token{Type: typ, Value: l.input[start:l.pos], Pos: startPos}, nil
}

// scanIdent scans a maximal run of identifier characters.
func (l *Lexer) scanIdent(startPos Position) Token {
	for l.pos < len(l.input) {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentContinue(r) {
			break
		}
		l.advance()
	}
	return Token{Type: TokenIdent, Value: l.input[startPos.Offset:l.pos], Pos: startPos}
}

// skipWhitespace skips spaces, tabs and line breaks.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// Helper methods

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.input)-l.pos >= len(s) && l.input[l.pos:l.pos+len(s)] == s
}

// hasWord reports whether w starts at the current position and is not
// followed by further identifier characters.
func (l *Lexer) hasWord(w string) bool {
	if !l.hasPrefix(w) {
		return false
	}
	rest := l.input[l.pos+len(w):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !isIdentContinue(r)
}

// advance moves past one rune.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
		l.pos++
		return
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	l.col++
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isOctDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

func isBinDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

// radixDigit returns the digit class for a radix prefix letter, or nil.
func radixDigit(prefix byte) func(byte) bool {
	switch prefix {
	case 'x', 'X':
		return isHexDigit
	case 'o', 'O':
		return isOctDigit
	case 'b', 'B':
		return isBinDigit
	}
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
