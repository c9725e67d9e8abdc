package dbgfmt

import "math/big"

// Parse decodes a complete rendering into a Value tree without a target
// type.
func Parse(input string) (*Value, error) {
	d := NewDecoder(input)
	v, err := d.DecodeValue()
	if err != nil {
		return nil, err
	}
	if err := d.End(); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeValue decodes the next value into a Value tree.
func (d *Decoder) DecodeValue() (*Value, error) {
	pos := d.Pos()
	b := &valueBuilder{}
	if err := d.DecodeAny(b); err != nil {
		return nil, err
	}
	b.out.pos = pos
	return b.out, nil
}

// valueBuilder is the Visitor behind DecodeValue.
type valueBuilder struct {
	out *Value
}

func (b *valueBuilder) VisitNone() error {
	b.out = None()
	return nil
}

func (b *valueBuilder) VisitSome(d *Decoder) error {
	inner, err := d.DecodeValue()
	if err != nil {
		return err
	}
	b.out = Some(inner)
	return nil
}

func (b *valueBuilder) VisitBool(v bool) error {
	b.out = Bool(v)
	return nil
}

func (b *valueBuilder) VisitInt(v int64) error {
	b.out = Int(v)
	return nil
}

func (b *valueBuilder) VisitUint(v uint64) error {
	b.out = Uint(v)
	return nil
}

func (b *valueBuilder) VisitBigInt(v *big.Int) error {
	b.out = BigInt(v)
	return nil
}

func (b *valueBuilder) VisitFloat(v float64) error {
	b.out = Float(v)
	return nil
}

func (b *valueBuilder) VisitString(v string) error {
	b.out = Str(v)
	return nil
}

func (b *valueBuilder) VisitChar(v rune) error {
	b.out = Char(v)
	return nil
}

func (b *valueBuilder) VisitUnit() error {
	b.out = Unit()
	return nil
}

func (b *valueBuilder) VisitIdent(name string) error {
	b.out = Ident(name)
	return nil
}

func (b *valueBuilder) VisitSeq(s *SeqCursor) error {
	items, err := collectItems(s)
	if err != nil {
		return err
	}
	b.out = Seq(items...)
	return nil
}

func (b *valueBuilder) VisitTuple(s *SeqCursor) error {
	items, err := collectItems(s)
	if err != nil {
		return err
	}
	b.out = Tuple(items...)
	return nil
}

func (b *valueBuilder) VisitTupleStruct(name string, s *SeqCursor) error {
	items, err := collectItems(s)
	if err != nil {
		return err
	}
	b.out = TupleStruct(name, items...)
	return nil
}

// VisitMap handles both `{k: v}` maps and `{a, b}` sets. The first entry
// decides which; the rest must agree.
func (b *valueBuilder) VisitMap(m *MapCursor) error {
	var (
		entries []MapEntry
		items   []*Value
		isSet   bool
	)
	for {
		var key *Value
		ok, err := m.NextKey(func(d *Decoder) (err error) {
			key, err = d.DecodeValue()
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		hasValue, err := m.HasValue()
		if err != nil {
			return err
		}
		if len(entries) == 0 && len(items) == 0 {
			isSet = !hasValue
		}
		if isSet {
			if hasValue {
				tok, _ := m.d.Peek()
				return structural(tok, "`,` or `}`")
			}
			items = append(items, key)
			continue
		}

		if !hasValue {
			tok, _ := m.d.Peek()
			return structural(tok, "`:`")
		}
		var val *Value
		err = m.NextValue(func(d *Decoder) (err error) {
			val, err = d.DecodeValue()
			return err
		})
		if err != nil {
			return err
		}
		entries = append(entries, MapEntry{Key: key, Value: val})
	}

	if isSet {
		b.out = Set(items...)
	} else {
		b.out = Map(entries...)
	}
	return nil
}

func (b *valueBuilder) VisitStruct(name string, m *MapCursor) error {
	var fields []Field
	for {
		field, ok, err := m.NextField()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var val *Value
		err = m.NextValue(func(d *Decoder) (err error) {
			val, err = d.DecodeValue()
			return err
		})
		if err != nil {
			return err
		}
		fields = append(fields, Field{Name: field, Value: val})
	}
	b.out = Struct(name, fields...)
	b.out.rest = m.NonExhaustive()
	return nil
}

func collectItems(s *SeqCursor) ([]*Value, error) {
	var items []*Value
	for {
		var item *Value
		ok, err := s.Next(func(d *Decoder) (err error) {
			item, err = d.DecodeValue()
			return err
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, item)
	}
}
