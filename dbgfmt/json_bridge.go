package dbgfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// Value to JSON
// ============================================================
//
// The mapping is lossy but stable:
//   - Name { f: v }   -> {"$type": "Name", "f": v}
//   - Name(a, b)      -> {"$type": "Name", "$items": [a, b]}
//   - Some(x) -> x, None -> null, unit variant -> "Name", () -> null
//   - maps with string keys -> objects, other maps -> [[k, v], ...]
//   - NaN and infinities -> "NaN", "inf", "-inf"

// ToJSON converts v to JSON. Struct fields keep their source order.
func ToJSON(v *Value) ([]byte, error) {
	jv, err := ToJSONValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jv)
}

// ToJSONValue converts v to a Go value suitable for json.Marshal.
func ToJSONValue(v *Value) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch v.typ {
	case TypeNone, TypeUnit:
		return nil, nil

	case TypeSome:
		return ToJSONValue(v.items[0])

	case TypeBool:
		return v.boolVal, nil

	case TypeInt:
		return json.Number(strconv.FormatInt(v.intVal, 10)), nil

	case TypeUint:
		return json.Number(strconv.FormatUint(v.uintVal, 10)), nil

	case TypeBigInt:
		return json.Number(v.bigVal.String()), nil

	case TypeFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return formatFloat(v.floatVal), nil
		}
		return v.floatVal, nil

	case TypeString:
		return v.strVal, nil

	case TypeChar:
		return string(v.charVal), nil

	case TypeIdent:
		return v.strVal, nil

	case TypeSeq, TypeSet, TypeTuple:
		return toJSONItems(v.items)

	case TypeTupleStruct:
		items, err := toJSONItems(v.items)
		if err != nil {
			return nil, err
		}
		return orderedObject{{"$type", v.strVal}, {"$items", items}}, nil

	case TypeStruct:
		obj := make(orderedObject, 0, len(v.fields)+1)
		obj = append(obj, member{"$type", v.strVal})
		for _, f := range v.fields {
			jv, err := ToJSONValue(f.Value)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{f.Name, jv})
		}
		return obj, nil

	case TypeMap:
		return toJSONMap(v.entries)

	default:
		return nil, fmt.Errorf("dbgfmt: unsupported value type: %s", v.typ)
	}
}

func toJSONItems(items []*Value) ([]interface{}, error) {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		jv, err := ToJSONValue(item)
		if err != nil {
			return nil, err
		}
		out = append(out, jv)
	}
	return out, nil
}

func toJSONMap(entries []MapEntry) (interface{}, error) {
	stringKeys := true
	for _, e := range entries {
		if e.Key.Type() != TypeString {
			stringKeys = false
			break
		}
	}

	if stringKeys {
		obj := make(orderedObject, 0, len(entries))
		for _, e := range entries {
			jv, err := ToJSONValue(e.Value)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{e.Key.strVal, jv})
		}
		return obj, nil
	}

	pairs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		k, err := ToJSONValue(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := ToJSONValue(e.Value)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, []interface{}{k, val})
	}
	return pairs, nil
}

type member struct {
	Key   string
	Value interface{}
}

// orderedObject is a JSON object that marshals its members in order.
type orderedObject []member

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
