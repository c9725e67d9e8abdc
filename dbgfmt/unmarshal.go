package dbgfmt

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Unmarshaler is implemented by types that decode themselves. Enums are
// usually modelled this way on top of DecodeEnum.
type Unmarshaler interface {
	UnmarshalDebug(d *Decoder) error
}

type debugNamer interface {
	DebugName() string
}

// Unmarshal decodes a complete rendering into the value pointed to by v.
//
// Structs are matched by type name, or by the result of a DebugName()
// string method. Field names come from `dbg:"name"` tags and default to
// the snake_case form of the Go name; `dbg:"-"` skips a field. A struct
// whose fields carry positional tags (`dbg:"0"`, `dbg:"1"`) decodes as a
// tuple struct, and a struct without fields as a unit struct. Pointers
// decode None and Some(x), and any other value as a present pointer.
func Unmarshal(input string, v any) error {
	d := NewDecoder(input)
	if err := d.Decode(v); err != nil {
		return err
	}
	return d.End()
}

// Decode decodes the next value into the value pointed to by v.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("dbgfmt: Decode target must be a non-nil pointer, got %T", v)
	}
	return d.decodeReflect(rv.Elem())
}

var (
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	valuePtrType    = reflect.TypeOf((*Value)(nil))
	bigIntPtrType   = reflect.TypeOf((*big.Int)(nil))
)

func (d *Decoder) decodeReflect(rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalDebug(d)
	}

	switch rv.Type() {
	case valuePtrType:
		v, err := d.DecodeValue()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(v))
		return nil
	case bigIntPtrType:
		v, err := d.DecodeBigInt()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(v))
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		rv.SetBool(b)

	case reflect.Int32:
		tok, err := d.Peek()
		if err != nil {
			return err
		}
		if tok.Type == TokenChar {
			r, err := d.DecodeChar()
			if err != nil {
				return err
			}
			rv.SetInt(int64(r))
			return nil
		}
		return d.decodeSigned(rv)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64:
		return d.decodeSigned(rv)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := d.DecodeUint(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := d.DecodeFloat(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)

	case reflect.String:
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		rv.SetString(s)

	case reflect.Pointer:
		return d.decodePointer(rv)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return fmt.Errorf("dbgfmt: cannot decode into non-empty interface %s", rv.Type())
		}
		v, err := d.DecodeValue()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(v))

	case reflect.Slice:
		return d.decodeSlice(rv)

	case reflect.Array:
		return d.decodeArray(rv)

	case reflect.Map:
		return d.decodeMap(rv)

	case reflect.Struct:
		return d.decodeStruct(rv)

	default:
		return fmt.Errorf("dbgfmt: cannot decode into %s", rv.Type())
	}
	return nil
}

func (d *Decoder) decodeSigned(rv reflect.Value) error {
	i, err := d.DecodeInt(rv.Type().Bits())
	if err != nil {
		return err
	}
	rv.SetInt(i)
	return nil
}

// decodePointer reads None as nil and Some(x) as a pointer to x. Anything
// else is decoded as a present value, which covers transparent boxes.
func (d *Decoder) decodePointer(rv reflect.Value) error {
	class, err := d.Classify()
	if err != nil {
		return err
	}

	elem := func(d *Decoder) error {
		p := reflect.New(rv.Type().Elem())
		if err := d.decodeReflect(p.Elem()); err != nil {
			return err
		}
		rv.Set(p)
		return nil
	}

	switch class {
	case ClassNone, ClassSome:
		present, err := d.DecodeOption(elem)
		if err != nil {
			return err
		}
		if !present {
			rv.Set(reflect.Zero(rv.Type()))
		}
		return nil
	}
	return elem(d)
}

func (d *Decoder) decodeSlice(rv reflect.Value) error {
	s, err := d.DecodeSeq()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(rv.Type(), 0, 0)
	for {
		elem := reflect.New(rv.Type().Elem()).Elem()
		ok, err := s.Next(func(d *Decoder) error { return d.decodeReflect(elem) })
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, elem)
	}
	rv.Set(out)
	return nil
}

// decodeArray accepts a list or a tuple holding exactly len(array)
// elements.
func (d *Decoder) decodeArray(rv reflect.Value) error {
	tok, err := d.Peek()
	if err != nil {
		return err
	}
	var s *SeqCursor
	if tok.Type == TokenLParen {
		s, err = d.DecodeTuple()
	} else {
		s, err = d.DecodeSeq()
	}
	if err != nil {
		return err
	}
	return decodePositional(s, rv.Len(), func(i int) reflect.Value { return rv.Index(i) })
}

// decodePositional fills n targets from s and requires s to close after
// the last one.
func decodePositional(s *SeqCursor, n int, target func(i int) reflect.Value) error {
	for i := 0; i < n; i++ {
		elem := target(i)
		ok, err := s.Next(func(d *Decoder) error { return d.decodeReflect(elem) })
		if err != nil {
			return err
		}
		if !ok {
			tok, _ := s.d.Peek()
			e := structural(tok, fmt.Sprintf("%d elements", n))
			e.Msg = fmt.Sprintf("collection opened at %s holds only %d elements", s.open.Pos, i)
			return e
		}
	}
	return s.End()
}

func (d *Decoder) decodeMap(rv reflect.Value) error {
	m, err := d.DecodeMap()
	if err != nil {
		return err
	}
	t := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}
	for {
		key := reflect.New(t.Key()).Elem()
		ok, err := m.NextKey(func(d *Decoder) error { return d.decodeReflect(key) })
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		val := reflect.New(t.Elem()).Elem()
		if err := m.NextValue(func(d *Decoder) error { return d.decodeReflect(val) }); err != nil {
			return err
		}
		rv.SetMapIndex(key, val)
	}
}

func (d *Decoder) decodeStruct(rv reflect.Value) error {
	info, err := structInfoFor(rv.Type())
	if err != nil {
		return err
	}
	name := info.name
	target := rv
	if rv.CanAddr() {
		target = rv.Addr()
	}
	if n, ok := target.Interface().(debugNamer); ok {
		name = n.DebugName()
	}

	switch info.shape {
	case shapeUnit:
		m, err := d.DecodeStruct(name, []string{})
		if err != nil {
			return err
		}
		return m.End()

	case shapeTuple:
		s, err := d.DecodeTupleStruct(name)
		if err != nil {
			return err
		}
		return decodePositional(s, len(info.fields), func(i int) reflect.Value {
			return rv.FieldByIndex(info.fields[i].index)
		})
	}

	m, err := d.DecodeStruct(name, info.names)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(info.fields))
	for {
		field, ok, err := m.NextField()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if seen[field] {
			return newError(KindSyntax, m.KeyPos(), "duplicate field `%s` in `%s`", field, name)
		}
		seen[field] = true

		target := rv.FieldByIndex(info.byName[field].index)
		if err := m.NextValue(func(d *Decoder) error { return d.decodeReflect(target) }); err != nil {
			return err
		}
	}
}

// ============================================================
// Struct metadata
// ============================================================

type structShape uint8

const (
	shapeNamed structShape = iota
	shapeTuple
	shapeUnit
)

type fieldInfo struct {
	name  string
	index []int
	pos   int
}

type structInfo struct {
	name   string
	shape  structShape
	fields []*fieldInfo
	byName map[string]*fieldInfo
	names  []string
}

var structCache sync.Map // reflect.Type -> *structInfo

func structInfoFor(t reflect.Type) (*structInfo, error) {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo), nil
	}
	info, err := buildStructInfo(t)
	if err != nil {
		return nil, err
	}
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo), nil
}

func buildStructInfo(t reflect.Type) (*structInfo, error) {
	info := &structInfo{name: t.Name(), byName: map[string]*fieldInfo{}}
	positional, named := 0, 0

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("dbg")
		if tag == "-" {
			continue
		}

		fi := &fieldInfo{index: sf.Index, pos: -1}
		if n, err := strconv.Atoi(tag); err == nil && tag != "" {
			if n < 0 {
				return nil, fmt.Errorf("dbgfmt: %s.%s: negative position %d", t, sf.Name, n)
			}
			fi.pos = n
			positional++
		} else {
			fi.name = tag
			if fi.name == "" {
				fi.name = snakeCase(sf.Name)
			}
			if _, dup := info.byName[fi.name]; dup {
				return nil, fmt.Errorf("dbgfmt: %s: duplicate field name %q", t, fi.name)
			}
			info.byName[fi.name] = fi
			info.names = append(info.names, fi.name)
			named++
		}
		info.fields = append(info.fields, fi)
	}

	switch {
	case positional > 0 && named > 0:
		return nil, fmt.Errorf("dbgfmt: %s mixes positional and named fields", t)
	case positional > 0:
		info.shape = shapeTuple
		sort.SliceStable(info.fields, func(i, j int) bool { return info.fields[i].pos < info.fields[j].pos })
		for i, fi := range info.fields {
			if fi.pos != i {
				return nil, fmt.Errorf("dbgfmt: %s: positions must run from 0 without gaps", t)
			}
		}
	case named == 0:
		info.shape = shapeUnit
	}
	return info, nil
}

// snakeCase converts a Go identifier such as UserID to user_id.
func snakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
