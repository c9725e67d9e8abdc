// Package dbgfmt decodes the text produced by Rust's Debug formatting
// (`{:?}` and the pretty `{:#?}` form) back into Go values.
//
// The format has no schema of its own. A caller either says which shape
// it expects next (DecodeStruct, DecodeSeq, DecodeInt, ...) or asks the
// decoder to infer it with DecodeAny, which calls back into a Visitor.
// Parse and Unmarshal are built on those two paths.
//
// # Syntax
//
//	Struct:        Point { x: 1, y: 2 }
//	Partial:       Conn { fd: 3, .. }
//	Tuple struct:  Meters(1.5)
//	Unit struct:   Empty
//	Enum variant:  Circle, Circle(1.0), Circle { r: 1.0 }
//	Option:        None, Some(5)
//	List:          [1, 2, 3]
//	Set:           {1, 2, 3}
//	Map:           {"a": 1, "b": 2}
//	Tuple:         (1, "x"), (1,), ()
//	String:        "tab\there \u{1f600}"
//	Char:          'c', '\n', '\''
//	Numbers:       42, -7, +3, 0xff, 0o17, 0b101, 1.5, -2e10, inf, -inf, NaN
//
// Trailing commas and any whitespace between tokens are accepted, so the
// pretty form decodes the same as the compact one.
//
// # Example
//
//	type Point struct {
//	    X int `dbg:"x"`
//	    Y int `dbg:"y"`
//	}
//
//	var p Point
//	err := dbgfmt.Unmarshal("Point { x: 1, y: -2 }", &p)
//
// # Errors
//
// Every decode failure is an *Error carrying the position where it was
// detected. errors.Is matches it against the sentinel of its kind, such
// as ErrOverflow or ErrStructural.
package dbgfmt
