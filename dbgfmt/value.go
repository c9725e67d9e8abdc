package dbgfmt

import (
	"fmt"
	"math"
	"math/big"
)

// Type is the shape of a decoded value.
type Type uint8

const (
	TypeNone Type = iota
	TypeSome
	TypeBool
	TypeInt    // negative integer
	TypeUint   // non-negative integer
	TypeBigInt // integer beyond 64 bits
	TypeFloat
	TypeString
	TypeChar
	TypeUnit        // ()
	TypeIdent       // unit struct or unit variant
	TypeSeq         // [..]
	TypeSet         // {a, b}
	TypeTuple       // (a, b)
	TypeMap         // {k: v}
	TypeStruct      // Name { f: v }
	TypeTupleStruct // Name(a, b)
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeSome:
		return "some"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeChar:
		return "char"
	case TypeUnit:
		return "unit"
	case TypeIdent:
		return "ident"
	case TypeSeq:
		return "seq"
	case TypeSet:
		return "set"
	case TypeTuple:
		return "tuple"
	case TypeMap:
		return "map"
	case TypeStruct:
		return "struct"
	case TypeTupleStruct:
		return "tuple-struct"
	default:
		return "unknown"
	}
}

// Value is a decoded debug rendering.
type Value struct {
	typ Type

	boolVal  bool
	intVal   int64
	uintVal  uint64
	bigVal   *big.Int
	floatVal float64
	charVal  rune
	strVal   string // string contents, identifier or struct name

	items   []*Value   // Some, Seq, Set, Tuple, TupleStruct
	entries []MapEntry // Map
	fields  []Field    // Struct
	rest    bool       // struct ended with `..`

	pos Position
}

// MapEntry is one key-value pair of a map. Keys may be any value.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// Field is one named field of a struct.
type Field struct {
	Name  string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// None creates the absent option.
func None() *Value {
	return &Value{typ: TypeNone}
}

// Some wraps v in a present option.
func Some(v *Value) *Value {
	return &Value{typ: TypeSome, items: []*Value{v}}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{typ: TypeBool, boolVal: v}
}

// Int creates an integer value. Non-negative values are stored as uint
// so that Int(5) and Uint(5) compare equal under Equal.
func Int(v int64) *Value {
	if v >= 0 {
		return Uint(uint64(v))
	}
	return &Value{typ: TypeInt, intVal: v}
}

// Uint creates a non-negative integer value.
func Uint(v uint64) *Value {
	return &Value{typ: TypeUint, uintVal: v}
}

// BigInt creates an integer of arbitrary size. Values that fit in 64 bits
// collapse to Int or Uint.
func BigInt(v *big.Int) *Value {
	if v.IsUint64() {
		return Uint(v.Uint64())
	}
	if v.IsInt64() {
		return Int(v.Int64())
	}
	return &Value{typ: TypeBigInt, bigVal: new(big.Int).Set(v)}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{typ: TypeFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{typ: TypeString, strVal: v}
}

// Char creates a char value.
func Char(v rune) *Value {
	return &Value{typ: TypeChar, charVal: v}
}

// Unit creates the unit value `()`.
func Unit() *Value {
	return &Value{typ: TypeUnit}
}

// Ident creates a bare identifier such as a unit variant.
func Ident(name string) *Value {
	return &Value{typ: TypeIdent, strVal: name}
}

// Seq creates a list value.
func Seq(items ...*Value) *Value {
	return &Value{typ: TypeSeq, items: items}
}

// Set creates a set value.
func Set(items ...*Value) *Value {
	return &Value{typ: TypeSet, items: items}
}

// Tuple creates a tuple value.
func Tuple(items ...*Value) *Value {
	return &Value{typ: TypeTuple, items: items}
}

// Map creates a map value.
func Map(entries ...MapEntry) *Value {
	return &Value{typ: TypeMap, entries: entries}
}

// Struct creates a struct value with named fields.
func Struct(name string, fields ...Field) *Value {
	return &Value{typ: TypeStruct, strVal: name, fields: fields}
}

// TupleStruct creates a struct value with positional fields.
func TupleStruct(name string, items ...*Value) *Value {
	return &Value{typ: TypeTupleStruct, strVal: name, items: items}
}

// FieldVal creates a Field for use in Struct construction.
func FieldVal(name string, v *Value) Field {
	return Field{Name: name, Value: v}
}

// Entry creates a MapEntry for use in Map construction.
func Entry(k, v *Value) MapEntry {
	return MapEntry{Key: k, Value: v}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the value type.
func (v *Value) Type() Type {
	if v == nil {
		return TypeNone
	}
	return v.typ
}

// IsNone reports whether v is the absent option.
func (v *Value) IsNone() bool {
	return v == nil || v.typ == TypeNone
}

// Pos returns the position where the value started in its source.
func (v *Value) Pos() Position {
	if v == nil {
		return Position{}
	}
	return v.pos
}

// Name returns the name of a struct, tuple struct or identifier.
func (v *Value) Name() string {
	if v == nil {
		return ""
	}
	switch v.typ {
	case TypeStruct, TypeTupleStruct, TypeIdent:
		return v.strVal
	}
	return ""
}

// NonExhaustive reports whether a struct rendering ended with `..`.
func (v *Value) NonExhaustive() bool {
	return v != nil && v.rest
}

// SetNonExhaustive marks a struct as ending with `..`.
func (v *Value) SetNonExhaustive(rest bool) {
	v.rest = rest
}

func (v *Value) expect(t Type) error {
	if v == nil {
		return fmt.Errorf("dbgfmt: nil value")
	}
	if v.typ != t {
		return fmt.Errorf("dbgfmt: expected %s, got %s", t, v.typ)
	}
	return nil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(TypeBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsInt returns an integer value that fits in int64.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("dbgfmt: nil value")
	}
	switch v.typ {
	case TypeInt:
		return v.intVal, nil
	case TypeUint:
		if v.uintVal > math.MaxInt64 {
			return 0, fmt.Errorf("dbgfmt: %d overflows int64", v.uintVal)
		}
		return int64(v.uintVal), nil
	case TypeBigInt:
		return 0, fmt.Errorf("dbgfmt: %s overflows int64", v.bigVal)
	}
	return 0, fmt.Errorf("dbgfmt: expected int, got %s", v.typ)
}

// AsUint returns a non-negative integer value that fits in uint64.
func (v *Value) AsUint() (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("dbgfmt: nil value")
	}
	switch v.typ {
	case TypeUint:
		return v.uintVal, nil
	case TypeInt:
		return 0, fmt.Errorf("dbgfmt: %d is negative", v.intVal)
	case TypeBigInt:
		return 0, fmt.Errorf("dbgfmt: %s overflows uint64", v.bigVal)
	}
	return 0, fmt.Errorf("dbgfmt: expected uint, got %s", v.typ)
}

// AsBigInt returns any integer value as a new big.Int.
func (v *Value) AsBigInt() (*big.Int, error) {
	if v == nil {
		return nil, fmt.Errorf("dbgfmt: nil value")
	}
	switch v.typ {
	case TypeInt:
		return big.NewInt(v.intVal), nil
	case TypeUint:
		return new(big.Int).SetUint64(v.uintVal), nil
	case TypeBigInt:
		return new(big.Int).Set(v.bigVal), nil
	}
	return nil, fmt.Errorf("dbgfmt: expected int, got %s", v.typ)
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if err := v.expect(TypeFloat); err != nil {
		return 0, err
	}
	return v.floatVal, nil
}

// AsString returns the string contents.
func (v *Value) AsString() (string, error) {
	if err := v.expect(TypeString); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsChar returns the char value.
func (v *Value) AsChar() (rune, error) {
	if err := v.expect(TypeChar); err != nil {
		return 0, err
	}
	return v.charVal, nil
}

// AsIdent returns the identifier.
func (v *Value) AsIdent() (string, error) {
	if err := v.expect(TypeIdent); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsSome returns the wrapped value of a present option.
func (v *Value) AsSome() (*Value, error) {
	if err := v.expect(TypeSome); err != nil {
		return nil, err
	}
	return v.items[0], nil
}

// Items returns the elements of a seq, set, tuple or tuple struct.
func (v *Value) Items() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("dbgfmt: nil value")
	}
	switch v.typ {
	case TypeSeq, TypeSet, TypeTuple, TypeTupleStruct:
		return v.items, nil
	}
	return nil, fmt.Errorf("dbgfmt: expected sequence, got %s", v.typ)
}

// AsMap returns the map entries in source order.
func (v *Value) AsMap() ([]MapEntry, error) {
	if err := v.expect(TypeMap); err != nil {
		return nil, err
	}
	return v.entries, nil
}

// Fields returns the fields of a struct in source order.
func (v *Value) Fields() ([]Field, error) {
	if err := v.expect(TypeStruct); err != nil {
		return nil, err
	}
	return v.fields, nil
}

// Len returns the number of elements, entries or fields.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.typ {
	case TypeSeq, TypeSet, TypeTuple, TypeTupleStruct:
		return len(v.items)
	case TypeMap:
		return len(v.entries)
	case TypeStruct:
		return len(v.fields)
	default:
		return 0
	}
}

// Field returns a struct field by name, or nil.
func (v *Value) Field(name string) *Value {
	if v == nil || v.typ != TypeStruct {
		return nil
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Get returns a struct field, or the value of a map entry whose key is a
// string or identifier equal to key.
func (v *Value) Get(key string) *Value {
	if v == nil {
		return nil
	}
	switch v.typ {
	case TypeStruct:
		return v.Field(key)
	case TypeMap:
		for _, e := range v.entries {
			switch e.Key.Type() {
			case TypeString, TypeIdent:
				if e.Key.strVal == key {
					return e.Value
				}
			}
		}
	}
	return nil
}

// Index returns the i-th element of a seq, set, tuple or tuple struct.
func (v *Value) Index(i int) (*Value, error) {
	items, err := v.Items()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("dbgfmt: index %d out of bounds (len=%d)", i, len(items))
	}
	return items[i], nil
}

// ============================================================
// Comparison
// ============================================================

// Equal reports whether a and b hold the same value. Integers compare by
// magnitude regardless of storage, NaN equals NaN, and positions are
// ignored.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.isInteger() && b.isInteger() {
		x, _ := a.AsBigInt()
		y, _ := b.AsBigInt()
		return x.Cmp(y) == 0
	}
	if a.typ != b.typ {
		return false
	}

	switch a.typ {
	case TypeNone, TypeUnit:
		return true
	case TypeBool:
		return a.boolVal == b.boolVal
	case TypeFloat:
		if math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal) {
			return true
		}
		return a.floatVal == b.floatVal
	case TypeString, TypeIdent:
		return a.strVal == b.strVal
	case TypeChar:
		return a.charVal == b.charVal
	case TypeSome, TypeSeq, TypeSet, TypeTuple:
		return equalItems(a.items, b.items)
	case TypeTupleStruct:
		return a.strVal == b.strVal && equalItems(a.items, b.items)
	case TypeMap:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if !Equal(a.entries[i].Key, b.entries[i].Key) || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	case TypeStruct:
		if a.strVal != b.strVal || a.rest != b.rest || len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Value) isInteger() bool {
	return v.typ == TypeInt || v.typ == TypeUint || v.typ == TypeBigInt
}

func equalItems(a, b []*Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
