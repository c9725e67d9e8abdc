package dbgfmt

import (
	"fmt"
	"math/big"
	"unicode/utf8"
)

// Visitor receives the value found by DecodeAny. Exactly one method is
// called per value. Methods that receive a cursor may read as many
// elements as they like; DecodeAny then requires the collection to close.
type Visitor interface {
	VisitNone() error
	VisitSome(d *Decoder) error
	VisitBool(v bool) error
	VisitInt(v int64) error
	VisitUint(v uint64) error
	VisitBigInt(v *big.Int) error
	VisitFloat(v float64) error
	VisitString(v string) error
	VisitChar(v rune) error
	VisitUnit() error
	VisitIdent(name string) error
	VisitSeq(s *SeqCursor) error
	VisitTuple(s *SeqCursor) error
	VisitMap(m *MapCursor) error
	VisitStruct(name string, m *MapCursor) error
	VisitTupleStruct(name string, s *SeqCursor) error
}

// Decoder reads debug-formatted values from a string. It exposes one
// operation per expected shape; each consumes exactly one value.
type Decoder struct {
	lex   *Lexer
	depth int
}

// MaxDepth is the deepest nesting of collections, struct bodies, variant
// payloads and Some the decoder accepts.
const MaxDepth = 10000

// NewDecoder creates a decoder over input.
func NewDecoder(input string) *Decoder {
	return &Decoder{lex: NewLexer(input)}
}

// Pos returns the position of the next token.
func (d *Decoder) Pos() Position {
	tok, err := d.lex.Peek()
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e.Pos
		}
	}
	return tok.Pos
}

// enter records one more open nesting level, failing at open once
// MaxDepth levels are open.
func (d *Decoder) enter(open Token) error {
	if d.depth >= MaxDepth {
		return &Error{
			Kind:  KindStructural,
			Pos:   open.Pos,
			Msg:   fmt.Sprintf("nesting exceeds %d levels", MaxDepth),
			Found: open.describe(),
		}
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() {
	if d.depth > 0 {
		d.depth--
	}
}

// Peek returns the next token without consuming it.
func (d *Decoder) Peek() (Token, error) {
	return d.lex.Peek()
}

// End checks that only whitespace remains.
func (d *Decoder) End() error {
	tok, err := d.lex.Peek()
	if err != nil {
		return err
	}
	if tok.Type != TokenEOF {
		return &Error{Kind: KindTrailingInput, Pos: tok.Pos, Msg: "unexpected input after value", Found: tok.describe(), Expected: "end of input"}
	}
	return nil
}

// expect consumes the next token, which must be of type typ.
func (d *Decoder) expect(typ TokenType) (Token, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return tok, err
	}
	if tok.Type != typ {
		return tok, structural(tok, "`"+typ.String()+"`")
	}
	return tok, nil
}

// skipComma consumes an optional trailing comma, as written by the
// pretty form `Some(\n    1,\n)`.
func (d *Decoder) skipComma() error {
	tok, err := d.lex.Peek()
	if err != nil {
		return err
	}
	if tok.Type == TokenComma {
		d.lex.Next()
	}
	return nil
}

// ident consumes an identifier equal to name.
func (d *Decoder) ident(name string) (Token, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return tok, err
	}
	if tok.Type != TokenIdent {
		return tok, unexpected(tok, "`"+name+"`")
	}
	if tok.Value != name {
		return tok, nameMismatch(tok, name)
	}
	return tok, nil
}

// ============================================================
// Primitives
// ============================================================

// DecodeBool decodes `true` or `false`.
func (d *Decoder) DecodeBool() (bool, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return false, err
	}
	if tok.Type == TokenIdent {
		switch tok.Value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, unexpected(tok, "a boolean")
}

// DecodeInt decodes a signed integer that fits in bits (8, 16, 32 or 64).
func (d *Decoder) DecodeInt(bits int) (int64, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return 0, err
	}
	return parseInt(tok, bits)
}

// DecodeUint decodes an unsigned integer that fits in bits.
func (d *Decoder) DecodeUint(bits int) (uint64, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return 0, err
	}
	return parseUint(tok, bits)
}

// DecodeBigInt decodes an integer of any magnitude, such as a 128-bit
// value.
func (d *Decoder) DecodeBigInt() (*big.Int, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return nil, err
	}
	return parseBigInt(tok)
}

// DecodeFloat decodes a float of the given width (32 or 64).
func (d *Decoder) DecodeFloat(bits int) (float64, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return 0, err
	}
	return parseFloat(tok, bits)
}

// DecodeString decodes a quoted string literal.
func (d *Decoder) DecodeString() (string, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return "", err
	}
	if tok.Type != TokenString {
		return "", unexpected(tok, "a string")
	}
	return literalBody(tok)
}

// DecodeChar decodes a quoted char literal holding exactly one code
// point.
func (d *Decoder) DecodeChar() (rune, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return 0, err
	}
	if tok.Type != TokenChar {
		return 0, unexpected(tok, "a character")
	}
	return charValue(tok)
}

func literalBody(tok Token) (string, error) {
	body := tok.Value[1 : len(tok.Value)-1]
	return Unescape(body, tok.Pos.shift(tok.Value[:1]))
}

func charValue(tok Token) (rune, error) {
	s, err := literalBody(tok)
	if err != nil {
		return 0, err
	}
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || size != len(s) {
		return 0, newError(KindSyntax, tok.Pos, "character literal %s must hold exactly one character", tok.Value)
	}
	return r, nil
}

// DecodeIdent decodes a bare identifier.
func (d *Decoder) DecodeIdent() (string, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return "", err
	}
	if tok.Type != TokenIdent {
		return "", unexpected(tok, "an identifier")
	}
	return tok.Value, nil
}

// DecodeUnit decodes the unit value `()`.
func (d *Decoder) DecodeUnit() error {
	tok, err := d.lex.Next()
	if err != nil {
		return err
	}
	if tok.Type != TokenLParen {
		return unexpected(tok, "`()`")
	}
	_, err = d.expect(TokenRParen)
	return err
}

// DecodeOption decodes `None` or `Some(value)`. For Some, fn decodes the
// inner value and DecodeOption reports true.
func (d *Decoder) DecodeOption(fn DecodeFunc) (bool, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return false, err
	}
	if tok.Type == TokenIdent {
		switch tok.Value {
		case "None":
			return false, nil
		case "Some":
			open, err := d.expect(TokenLParen)
			if err != nil {
				return false, err
			}
			if err := d.enter(open); err != nil {
				return false, err
			}
			if err := fn(d); err != nil {
				return false, err
			}
			if err := d.skipComma(); err != nil {
				return false, err
			}
			if _, err := d.expect(TokenRParen); err != nil {
				return false, err
			}
			d.leave()
			return true, nil
		}
	}
	return false, unexpected(tok, "`None` or `Some`")
}

// ============================================================
// Collections
// ============================================================

// DecodeSeq opens a list `[..]` or a set `{..}`.
func (d *Decoder) DecodeSeq() (*SeqCursor, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case TokenLBracket:
		return newSeqCursor(d, tok, TokenRBracket)
	case TokenLBrace:
		return newSeqCursor(d, tok, TokenRBrace)
	}
	return nil, unexpected(tok, "`[` or `{`")
}

// DecodeTuple opens a tuple `(..)`.
func (d *Decoder) DecodeTuple() (*SeqCursor, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenLParen {
		return nil, unexpected(tok, "`(`")
	}
	return newSeqCursor(d, tok, TokenRParen)
}

// DecodeMap opens a map `{k: v, ..}`. Keys may be any value.
func (d *Decoder) DecodeMap() (*MapCursor, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenLBrace {
		return nil, unexpected(tok, "`{`")
	}
	return newMapCursor(d, tok)
}

// DecodeStruct decodes the struct name, which must equal name, and opens
// its field list. Field names are checked against fields unless fields
// is nil. A bare `Name` is a struct with no fields present.
func (d *Decoder) DecodeStruct(name string, fields []string) (*MapCursor, error) {
	if _, err := d.ident(name); err != nil {
		return nil, err
	}
	tok, err := d.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case TokenLBrace:
		d.lex.Next()
		return newStructCursor(d, tok, name, fields)
	case TokenLParen:
		return nil, unexpected(tok, "`{`")
	}
	return closedStruct(d, name), nil
}

// DecodeTupleStruct decodes the struct name, which must equal name, and
// opens its positional fields `(..)`.
func (d *Decoder) DecodeTupleStruct(name string) (*SeqCursor, error) {
	if _, err := d.ident(name); err != nil {
		return nil, err
	}
	open, err := d.expect(TokenLParen)
	if err != nil {
		return nil, err
	}
	return newSeqCursor(d, open, TokenRParen)
}

// DecodeNewtypeStruct decodes `Name(value)` with fn decoding the value.
func (d *Decoder) DecodeNewtypeStruct(name string, fn DecodeFunc) error {
	s, err := d.DecodeTupleStruct(name)
	if err != nil {
		return err
	}
	return exactlyOne(s, fn)
}

// DecodeUnitStruct decodes the bare identifier name.
func (d *Decoder) DecodeUnitStruct(name string) error {
	_, err := d.ident(name)
	return err
}

// DecodeEnum reads a variant name, which must be one of variants unless
// variants is nil, and returns a cursor over its payload. name is the
// enum type name used in errors.
func (d *Decoder) DecodeEnum(name string, variants []string) (*EnumCursor, error) {
	tok, err := d.lex.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenIdent {
		return nil, unexpected(tok, "a variant of `"+name+"`")
	}
	if variants != nil && !contains(variants, tok.Value) {
		e := nameMismatch(tok, name)
		e.Msg = "unknown variant of `" + name + "`"
		e.Expected = "one of " + quoteAll(variants)
		return nil, e
	}

	e := &EnumCursor{d: d, variant: tok}
	next, err := d.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch next.Type {
	case TokenLParen:
		e.kind = VariantTuple
	case TokenLBrace:
		e.kind = VariantStruct
	default:
		e.kind = VariantUnit
	}
	return e, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func quoteAll(list []string) string {
	out := ""
	for i, v := range list {
		if i > 0 {
			out += ", "
		}
		out += "`" + v + "`"
	}
	return out
}

// ============================================================
// Self-describing decoding
// ============================================================

// Classify returns the class of the next value without consuming input.
func (d *Decoder) Classify() (Class, error) {
	first, err := d.lex.Peek()
	if err != nil {
		return ClassInvalid, err
	}
	var second Token
	if first.Type == TokenIdent {
		if second, err = d.lex.PeekSecond(); err != nil {
			return ClassInvalid, err
		}
	}
	return Classify(first, second), nil
}

// DecodeAny decodes the next value without an expected shape, calling
// the Visitor method that matches its class.
func (d *Decoder) DecodeAny(v Visitor) error {
	class, err := d.Classify()
	if err != nil {
		return err
	}

	switch class {
	case ClassNone:
		d.lex.Next()
		return v.VisitNone()

	case ClassSome:
		_, err := d.DecodeOption(v.VisitSome)
		return err

	case ClassBool:
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		return v.VisitBool(b)

	case ClassInt:
		return d.visitInt(v)

	case ClassFloat:
		f, err := d.DecodeFloat(64)
		if err != nil {
			return err
		}
		return v.VisitFloat(f)

	case ClassString:
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		return v.VisitString(s)

	case ClassChar:
		r, err := d.DecodeChar()
		if err != nil {
			return err
		}
		return v.VisitChar(r)

	case ClassIdent:
		tok, _ := d.lex.Next()
		return v.VisitIdent(tok.Value)

	case ClassStruct:
		tok, _ := d.lex.Next()
		m, err := d.DecodeStructBody(tok.Value)
		if err != nil {
			return err
		}
		if err := v.VisitStruct(tok.Value, m); err != nil {
			return err
		}
		return m.End()

	case ClassTupleStruct:
		tok, _ := d.lex.Next()
		open, _ := d.lex.Next()
		s, err := newSeqCursor(d, open, TokenRParen)
		if err != nil {
			return err
		}
		if err := v.VisitTupleStruct(tok.Value, s); err != nil {
			return err
		}
		return s.End()

	case ClassSeq:
		s, err := d.DecodeSeq()
		if err != nil {
			return err
		}
		if err := v.VisitSeq(s); err != nil {
			return err
		}
		return s.End()

	case ClassMap:
		m, err := d.DecodeMap()
		if err != nil {
			return err
		}
		if err := v.VisitMap(m); err != nil {
			return err
		}
		return m.End()

	case ClassTuple:
		open, _ := d.lex.Next()
		next, err := d.lex.Peek()
		if err != nil {
			return err
		}
		if next.Type == TokenRParen {
			d.lex.Next()
			return v.VisitUnit()
		}
		s, err := newSeqCursor(d, open, TokenRParen)
		if err != nil {
			return err
		}
		if err := v.VisitTuple(s); err != nil {
			return err
		}
		return s.End()
	}

	tok, _ := d.lex.Peek()
	return unexpected(tok, "a value")
}

// DecodeStructBody opens the `{..}` field list of a struct whose name
// has already been consumed, accepting any field names.
func (d *Decoder) DecodeStructBody(name string) (*MapCursor, error) {
	open, err := d.expect(TokenLBrace)
	if err != nil {
		return nil, err
	}
	return newStructCursor(d, open, name, nil)
}

// visitInt picks the narrowest visitor method that holds the literal:
// VisitUint for non-negative values, VisitInt for negative ones and
// VisitBigInt beyond 64 bits.
func (d *Decoder) visitInt(v Visitor) error {
	tok, _ := d.lex.Next()
	neg, _, _ := splitNumber(tok.Value)
	if neg {
		if i, err := parseInt(tok, 64); err == nil {
			return v.VisitInt(i)
		}
	} else if u, err := parseUint(tok, 64); err == nil {
		return v.VisitUint(u)
	}
	b, err := parseBigInt(tok)
	if err != nil {
		return err
	}
	return v.VisitBigInt(b)
}

// Skip consumes and discards the next value.
func (d *Decoder) Skip() error {
	return d.DecodeAny(skipVisitor{})
}

// skipVisitor drains every value it is handed.
type skipVisitor struct{}

func (skipVisitor) VisitNone() error            { return nil }
func (skipVisitor) VisitSome(d *Decoder) error  { return d.Skip() }
func (skipVisitor) VisitBool(bool) error        { return nil }
func (skipVisitor) VisitInt(int64) error        { return nil }
func (skipVisitor) VisitUint(uint64) error      { return nil }
func (skipVisitor) VisitBigInt(*big.Int) error  { return nil }
func (skipVisitor) VisitFloat(float64) error    { return nil }
func (skipVisitor) VisitString(string) error    { return nil }
func (skipVisitor) VisitChar(rune) error        { return nil }
func (skipVisitor) VisitUnit() error            { return nil }
func (skipVisitor) VisitIdent(string) error     { return nil }
func (skipVisitor) VisitSeq(s *SeqCursor) error { return skipSeq(s) }

func (skipVisitor) VisitTuple(s *SeqCursor) error { return skipSeq(s) }

func (skipVisitor) VisitTupleStruct(_ string, s *SeqCursor) error { return skipSeq(s) }

func (skipVisitor) VisitStruct(_ string, m *MapCursor) error {
	for {
		_, ok, err := m.NextField()
		if err != nil || !ok {
			return err
		}
		if err := m.NextValue(skipValue); err != nil {
			return err
		}
	}
}

func (skipVisitor) VisitMap(m *MapCursor) error {
	for {
		ok, err := m.NextKey(skipValue)
		if err != nil || !ok {
			return err
		}
		hasValue, err := m.HasValue()
		if err != nil {
			return err
		}
		if hasValue {
			if err := m.NextValue(skipValue); err != nil {
				return err
			}
		}
	}
}

func skipValue(d *Decoder) error {
	return d.Skip()
}

func skipSeq(s *SeqCursor) error {
	for {
		ok, err := s.Next(skipValue)
		if err != nil || !ok {
			return err
		}
	}
}
