package dbgfmt

import (
	"fmt"
	"sort"
	"strings"
)

// DecodeFunc decodes one value from d. Cursors call it once per element,
// key or value.
type DecodeFunc func(d *Decoder) error

type cursorState uint8

const (
	stateAwaitingElement cursorState = iota
	stateAwaitingValue
	stateAwaitingCommaOrClose
	stateClosed
)

// list holds the delimiter bookkeeping shared by every cursor.
type list struct {
	d     *Decoder
	open  Token
	close TokenType
	state cursorState
	n     int

	allowRest bool // struct bodies may end with `..`
	rest      bool
}

func (c *list) closeText() string {
	return "`" + c.close.String() + "`"
}

// advance moves to the start of the next element. It reports false once
// the close delimiter has been consumed; after that it always reports
// false.
func (c *list) advance() (bool, error) {
	switch c.state {
	case stateClosed:
		return false, nil

	case stateAwaitingValue:
		return false, fmt.Errorf("dbgfmt: cursor advanced past a key without reading its value")

	case stateAwaitingCommaOrClose:
		tok, err := c.d.lex.Next()
		if err != nil {
			return false, err
		}
		switch tok.Type {
		case c.close:
			c.finish()
			return false, nil
		case TokenComma:
			c.state = stateAwaitingElement
		case TokenEOF:
			return false, c.unterminated(tok)
		default:
			return false, structural(tok, "`,` or "+c.closeText())
		}
	}

	tok, err := c.d.lex.Peek()
	if err != nil {
		return false, err
	}
	switch tok.Type {
	case c.close:
		c.d.lex.Next()
		c.finish()
		return false, nil
	case TokenComma, TokenColon, TokenRParen, TokenRBracket, TokenRBrace:
		return false, structural(tok, "an element or "+c.closeText())
	case TokenDotDot:
		if !c.allowRest {
			return false, structural(tok, "an element or "+c.closeText())
		}
		c.d.lex.Next()
		c.rest = true
		tok, err := c.d.lex.Next()
		if err != nil {
			return false, err
		}
		if tok.Type != c.close {
			return false, structural(tok, c.closeText())
		}
		c.finish()
		return false, nil
	case TokenEOF:
		return false, c.unterminated(tok)
	}
	return true, nil
}

// finish marks the close delimiter as consumed and leaves the nesting
// level the cursor opened.
func (c *list) finish() {
	c.state = stateClosed
	c.d.leave()
}

func (c *list) unterminated(eof Token) *Error {
	e := structural(eof, c.closeText())
	e.Msg = fmt.Sprintf("unterminated collection opened at %s", c.open.Pos)
	return e
}

// end requires the collection to close without further elements.
func (c *list) end() error {
	more, err := c.advance()
	if err != nil {
		return err
	}
	if more {
		tok, _ := c.d.lex.Peek()
		return structural(tok, c.closeText())
	}
	return nil
}

// SeqCursor iterates over the elements of a `[..]` list, a `{..}` set or
// a `(..)` tuple.
type SeqCursor struct {
	list
}

func newSeqCursor(d *Decoder, open Token, close TokenType) (*SeqCursor, error) {
	if err := d.enter(open); err != nil {
		return nil, err
	}
	return &SeqCursor{list{d: d, open: open, close: close}}, nil
}

// Next decodes the next element with fn. It reports false, without
// calling fn, once the closing delimiter has been consumed.
func (s *SeqCursor) Next(fn DecodeFunc) (bool, error) {
	more, err := s.advance()
	if err != nil || !more {
		return false, err
	}
	if err := fn(s.d); err != nil {
		return false, err
	}
	s.state = stateAwaitingCommaOrClose
	s.n++
	return true, nil
}

// End requires the sequence to close with no further elements.
func (s *SeqCursor) End() error {
	return s.end()
}

// Closed reports whether the closing delimiter has been consumed.
func (s *SeqCursor) Closed() bool {
	return s.state == stateClosed
}

// Len returns the number of elements decoded so far.
func (s *SeqCursor) Len() int {
	return s.n
}

// MapCursor iterates over the entries of a `{k: v}` map or the fields of
// a `Name { f: v }` struct.
type MapCursor struct {
	list
	name   string              // struct name, empty for maps
	fields map[string]struct{} // expected field set; nil accepts any
	keyPos Position
}

func newMapCursor(d *Decoder, open Token) (*MapCursor, error) {
	if err := d.enter(open); err != nil {
		return nil, err
	}
	return &MapCursor{list: list{d: d, open: open, close: TokenRBrace}}, nil
}

func newStructCursor(d *Decoder, open Token, name string, fields []string) (*MapCursor, error) {
	m, err := newMapCursor(d, open)
	if err != nil {
		return nil, err
	}
	m.name = name
	m.allowRest = true
	if fields != nil {
		m.fields = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			m.fields[f] = struct{}{}
		}
	}
	return m, nil
}

// closedStruct is the cursor for a braceless struct rendering such as
// `Empty`, which has no fields to report.
func closedStruct(d *Decoder, name string) *MapCursor {
	return &MapCursor{
		list: list{d: d, close: TokenRBrace, state: stateClosed},
		name: name,
	}
}

// IsStruct reports whether the cursor reads struct fields.
func (m *MapCursor) IsStruct() bool {
	return m.name != ""
}

// NonExhaustive reports whether the struct ended with the `..` marker.
func (m *MapCursor) NonExhaustive() bool {
	return m.rest
}

// NextKey decodes the next key with fn. In struct mode the key must be a
// field identifier from the expected set. It reports false once the
// closing brace has been consumed.
func (m *MapCursor) NextKey(fn DecodeFunc) (bool, error) {
	more, err := m.advance()
	if err != nil || !more {
		return false, err
	}
	tok, err := m.d.lex.Peek()
	if err != nil {
		return false, err
	}
	if m.IsStruct() {
		if err := m.checkField(tok); err != nil {
			return false, err
		}
	}
	m.keyPos = tok.Pos
	if err := fn(m.d); err != nil {
		return false, err
	}
	m.state = stateAwaitingValue
	m.n++
	return true, nil
}

// NextField reads the next struct field name. It reports false once the
// closing brace has been consumed.
func (m *MapCursor) NextField() (string, bool, error) {
	more, err := m.advance()
	if err != nil || !more {
		return "", false, err
	}
	tok, err := m.d.lex.Next()
	if err != nil {
		return "", false, err
	}
	if err := m.checkField(tok); err != nil {
		return "", false, err
	}
	m.keyPos = tok.Pos
	m.state = stateAwaitingValue
	m.n++
	return tok.Value, true, nil
}

func (m *MapCursor) checkField(tok Token) error {
	if tok.Type != TokenIdent {
		return unexpected(tok, "a field name")
	}
	if m.fields == nil {
		return nil
	}
	if _, ok := m.fields[tok.Value]; ok {
		return nil
	}
	names := make([]string, 0, len(m.fields))
	for f := range m.fields {
		names = append(names, "`"+f+"`")
	}
	sort.Strings(names)
	return &Error{
		Kind:     KindUnknownField,
		Pos:      tok.Pos,
		Msg:      fmt.Sprintf("`%s` has no field `%s`", m.name, tok.Value),
		Expected: "one of " + strings.Join(names, ", "),
		Found:    tok.describe(),
	}
}

// KeyPos returns the position of the most recent key or field name.
func (m *MapCursor) KeyPos() Position {
	return m.keyPos
}

// HasValue reports whether the pending key is followed by `:`. When it
// is not, the key was a set element and the cursor moves on. It lets a
// caller with no expected shape tell `{a: 1}` from `{a, b}`.
func (m *MapCursor) HasValue() (bool, error) {
	if m.state != stateAwaitingValue {
		return false, nil
	}
	tok, err := m.d.lex.Peek()
	if err != nil {
		return false, err
	}
	if tok.Type == TokenColon {
		return true, nil
	}
	m.state = stateAwaitingCommaOrClose
	return false, nil
}

// NextValue consumes the `:` after a key and decodes the value with fn.
func (m *MapCursor) NextValue(fn DecodeFunc) error {
	if m.state != stateAwaitingValue {
		return fmt.Errorf("dbgfmt: NextValue called without a pending key")
	}
	tok, err := m.d.lex.Next()
	if err != nil {
		return err
	}
	if tok.Type != TokenColon {
		return structural(tok, "`:`")
	}
	next, err := m.d.lex.Peek()
	if err != nil {
		return err
	}
	switch next.Type {
	case TokenComma, TokenColon, TokenRParen, TokenRBracket, TokenRBrace:
		return structural(next, "a value")
	}
	if err := fn(m.d); err != nil {
		return err
	}
	m.state = stateAwaitingCommaOrClose
	return nil
}

// End requires the map to close with no further entries.
func (m *MapCursor) End() error {
	return m.end()
}

// Closed reports whether the closing brace has been consumed.
func (m *MapCursor) Closed() bool {
	return m.state == stateClosed
}

// Len returns the number of keys read so far.
func (m *MapCursor) Len() int {
	return m.n
}

// VariantKind is the payload shape of an enum variant.
type VariantKind uint8

const (
	VariantUnit   VariantKind = iota // Name
	VariantTuple                     // Name(..)
	VariantStruct                    // Name { .. }
)

// String returns the kind name.
func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantTuple:
		return "tuple"
	case VariantStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// EnumCursor gives access to the payload of one enum variant.
type EnumCursor struct {
	d       *Decoder
	variant Token
	kind    VariantKind
	used    bool
}

// Variant returns the variant name.
func (e *EnumCursor) Variant() string {
	return e.variant.Value
}

// Kind returns the payload shape that follows the variant name.
func (e *EnumCursor) Kind() VariantKind {
	return e.kind
}

func (e *EnumCursor) take(want VariantKind) error {
	if e.used {
		return fmt.Errorf("dbgfmt: payload of variant %s already read", e.variant.Value)
	}
	e.used = true
	if e.kind != want {
		return &Error{
			Kind:     KindSyntax,
			Pos:      e.variant.Pos,
			Msg:      fmt.Sprintf("variant `%s` has a %s payload", e.variant.Value, e.kind),
			Expected: "a " + want.String() + " variant",
			Found:    e.variant.describe(),
		}
	}
	return nil
}

// Unit accepts a variant without payload.
func (e *EnumCursor) Unit() error {
	return e.take(VariantUnit)
}

// Tuple opens the positional payload `(..)`.
func (e *EnumCursor) Tuple() (*SeqCursor, error) {
	if err := e.take(VariantTuple); err != nil {
		return nil, err
	}
	open, err := e.d.lex.Next()
	if err != nil {
		return nil, err
	}
	return newSeqCursor(e.d, open, TokenRParen)
}

// Newtype decodes a positional payload holding exactly one value.
func (e *EnumCursor) Newtype(fn DecodeFunc) error {
	s, err := e.Tuple()
	if err != nil {
		return err
	}
	return exactlyOne(s, fn)
}

// Struct opens the named payload `{..}`, validating field names against
// fields unless it is nil.
func (e *EnumCursor) Struct(fields []string) (*MapCursor, error) {
	if err := e.take(VariantStruct); err != nil {
		return nil, err
	}
	open, err := e.d.lex.Next()
	if err != nil {
		return nil, err
	}
	return newStructCursor(e.d, open, e.variant.Value, fields)
}

// exactlyOne decodes a single element and requires the sequence to close.
func exactlyOne(s *SeqCursor, fn DecodeFunc) error {
	ok, err := s.Next(fn)
	if err != nil {
		return err
	}
	if !ok {
		tok, _ := s.d.lex.Peek()
		e := structural(tok, "one element")
		e.Msg = "empty payload"
		e.Pos = s.open.Pos
		return e
	}
	return s.End()
}
