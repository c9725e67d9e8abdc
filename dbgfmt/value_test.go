package dbgfmt

import (
	"math"
	"math/big"
	"strings"
	"testing"
)

// ============================================================
// Parse Tests
// ============================================================

func TestParse(t *testing.T) {
	big128, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10)

	tests := []struct {
		input string
		want  *Value
	}{
		{"None", None()},
		{"Some(1)", Some(Uint(1))},
		{"Some(None)", Some(None())},
		{"true", Bool(true)},
		{"-5", Int(-5)},
		{"5", Int(5)},
		{"170141183460469231731687303715884105727", BigInt(big128)},
		{"2.5", Float(2.5)},
		{"NaN", Float(math.NaN())},
		{`"s"`, Str("s")},
		{`'c'`, Char('c')},
		{"()", Unit()},
		{"Empty", Ident("Empty")},
		{"[1, 2]", Seq(Uint(1), Uint(2))},
		{"[]", Seq()},
		{"{1, 2}", Set(Uint(1), Uint(2))},
		{"{}", Map()},
		{"(1,)", Tuple(Uint(1))},
		{`{"a": 1}`, Map(Entry(Str("a"), Uint(1)))},
		{"Point { x: 1, y: 2 }", Struct("Point", FieldVal("x", Uint(1)), FieldVal("y", Uint(2)))},
		{"Point {}", Struct("Point")},
		{"Meters(1.5)", TupleStruct("Meters", Float(1.5))},
		{"Wrapper()", TupleStruct("Wrapper")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParse_NonExhaustive(t *testing.T) {
	v, err := Parse("Conn { fd: 3, .. }")
	if err != nil {
		t.Fatal(err)
	}
	if !v.NonExhaustive() {
		t.Error("expected non-exhaustive struct")
	}
	if v.Len() != 1 {
		t.Errorf("expected 1 field, got %d", v.Len())
	}
	if Equal(v, Struct("Conn", FieldVal("fd", Uint(3)))) {
		t.Error("non-exhaustive struct must differ from exhaustive one")
	}
}

func TestParse_MixedSetAndMap(t *testing.T) {
	for _, input := range []string{"{1, 2: 3}", "{1: 2, 3}"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("%s: expected error", input)
		}
	}
}

func TestParse_Positions(t *testing.T) {
	v, err := Parse("Outer {\n    inner: [1, 2],\n}")
	if err != nil {
		t.Fatal(err)
	}
	inner := v.Field("inner")
	if inner == nil {
		t.Fatal("missing field inner")
	}
	if inner.Pos().Line != 2 || inner.Pos().Column != 12 {
		t.Errorf("expected inner at 2:12, got %s", inner.Pos())
	}
}

func TestParse_RealWorld(t *testing.T) {
	input := `Request {
    method: GET,
    uri: "/index.html",
    version: HTTP/1.1,
}`
	// `/` is not part of the grammar.
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for invalid character")
	}

	input = `Config {
    name: "svc",
    port: 8080,
    tags: ["a", "b"],
    limits: Some(
        Limits {
            rps: 1.5e3,
            burst: None,
        },
    ),
    mode: Mode::Fast,
}`
	// Paths like Mode::Fast are not emitted by Debug, so `::` fails too.
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for path separator")
	}

	input = strings.Replace(input, "Mode::Fast", "Fast", 1)
	v, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	limits, err := v.Get("limits").AsSome()
	if err != nil {
		t.Fatal(err)
	}
	rps, err := limits.Field("rps").AsFloat()
	if err != nil || rps != 1500 {
		t.Errorf("rps: %v %v", rps, err)
	}
	if !limits.Field("burst").IsNone() {
		t.Error("expected burst to be None")
	}
	if mode, _ := v.Get("mode").AsIdent(); mode != "Fast" {
		t.Errorf("expected mode Fast, got %q", mode)
	}
}

// ============================================================
// Accessor Tests
// ============================================================

func TestValue_Accessors(t *testing.T) {
	v := Struct("S",
		FieldVal("n", Int(-4)),
		FieldVal("u", Uint(math.MaxUint64)),
		FieldVal("items", Seq(Str("a"), Str("b"))),
		FieldVal("m", Map(Entry(Str("k"), Bool(true)), Entry(Ident("id"), Char('x')))),
	)

	if n, err := v.Field("n").AsInt(); err != nil || n != -4 {
		t.Errorf("AsInt: %d %v", n, err)
	}
	if _, err := v.Field("n").AsUint(); err == nil {
		t.Error("AsUint of negative should fail")
	}
	if _, err := v.Field("u").AsInt(); err == nil {
		t.Error("AsInt of MaxUint64 should fail")
	}
	if b, err := v.Field("u").AsBigInt(); err != nil || b.String() != "18446744073709551615" {
		t.Errorf("AsBigInt: %v %v", b, err)
	}
	if _, err := v.Field("items").AsString(); err == nil {
		t.Error("AsString of seq should fail")
	}

	second, err := v.Field("items").Index(1)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := second.AsString(); s != "b" {
		t.Errorf("Index(1): expected b, got %q", s)
	}
	if _, err := v.Field("items").Index(5); err == nil {
		t.Error("Index out of range should fail")
	}

	if b, _ := v.Field("m").Get("k").AsBool(); !b {
		t.Error("Get on string key failed")
	}
	if c, _ := v.Field("m").Get("id").AsChar(); c != 'x' {
		t.Error("Get on ident key failed")
	}
	if v.Field("missing") != nil || v.Get("missing") != nil {
		t.Error("missing field should be nil")
	}
	if v.Len() != 4 || v.Name() != "S" {
		t.Errorf("Len=%d Name=%q", v.Len(), v.Name())
	}

	var nilValue *Value
	if !nilValue.IsNone() || nilValue.Len() != 0 || nilValue.Field("x") != nil {
		t.Error("nil value accessors misbehave")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"int storage", Int(5), Uint(5), true},
		{"big collapses", BigInt(big.NewInt(-3)), Int(-3), true},
		{"nan", Float(math.NaN()), Float(math.NaN()), true},
		{"int vs float", Uint(1), Float(1), false},
		{"seq vs set", Seq(Uint(1)), Set(Uint(1)), false},
		{"struct name", Struct("A"), Struct("B"), false},
		{"field order", Struct("A", FieldVal("x", Uint(1)), FieldVal("y", Uint(2))), Struct("A", FieldVal("y", Uint(2)), FieldVal("x", Uint(1))), false},
		{"tuple struct", TupleStruct("T", Str("a")), TupleStruct("T", Str("a")), true},
		{"nil", nil, nil, true},
		{"nil vs none", nil, None(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// ============================================================
// Format Tests
// ============================================================

func TestFormat_Compact(t *testing.T) {
	tests := []struct {
		value *Value
		want  string
	}{
		{None(), "None"},
		{Some(Int(-1)), "Some(-1)"},
		{Float(1), "1.0"},
		{Float(-0.5), "-0.5"},
		{Float(1e21), "1e+21"},
		{Float(math.Inf(-1)), "-inf"},
		{Str("a\"b\n"), `"a\"b\n"`},
		{Char('\''), `'\''`},
		{Tuple(Uint(1)), "(1,)"},
		{Tuple(Uint(1), Str("x")), `(1, "x")`},
		{Seq(), "[]"},
		{Set(Uint(1), Uint(2)), "{1, 2}"},
		{Map(Entry(Str("k"), Uint(1))), `{"k": 1}`},
		{Struct("P", FieldVal("x", Uint(1)), FieldVal("y", Uint(2))), "P { x: 1, y: 2 }"},
		{Struct("E"), "E {}"},
		{TupleStruct("M", Float(1.5)), "M(1.5)"},
		{Ident("Unit"), "Unit"},
		{Unit(), "()"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormat_NonExhaustive(t *testing.T) {
	v := Struct("Conn", FieldVal("fd", Uint(3)))
	v.SetNonExhaustive(true)
	if got := v.String(); got != "Conn { fd: 3, .. }" {
		t.Errorf("compact: got %s", got)
	}
	want := "Conn {\n    fd: 3,\n    ..\n}"
	if got := Format(v, FormatOptions{Pretty: true}); got != want {
		t.Errorf("pretty: expected\n%s\ngot\n%s", want, got)
	}
}

func TestFormat_Pretty(t *testing.T) {
	v := Struct("Config",
		FieldVal("name", Str("svc")),
		FieldVal("tags", Seq(Str("a"))),
		FieldVal("empty", Seq()),
		FieldVal("limit", Some(Uint(3))),
	)
	want := `Config {
  name: "svc",
  tags: [
    "a",
  ],
  empty: [],
  limit: Some(
    3,
  ),
}`
	if got := Format(v, FormatOptions{Pretty: true, Indent: "  "}); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"None",
		"Some(Some(()))",
		"[1, -2, 3.5, inf, -inf, NaN]",
		`("s\t\u{1b}", 'c', '\'', true)`,
		"(1,)",
		"{1, 2, 3}",
		`{"a": [1], "b": []}`,
		"{(1, 2): Point { x: 1 }, [3]: E}",
		"Point { x: 1, y: Some(Inner { v: [] }), .. }",
		"Empty {}",
		"Wrapper(Meters(1e-7))",
		"340282366920938463463374607431768211455",
		"-170141183460469231731687303715884105728",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			for _, opts := range []FormatOptions{{}, {Pretty: true}, {Pretty: true, Indent: "\t"}} {
				text := Format(v, opts)
				back, err := Parse(text)
				if err != nil {
					t.Fatalf("reparse of %q failed: %v", text, err)
				}
				if !Equal(v, back) {
					t.Errorf("round trip changed value:\n  in:  %s\n  out: %s", v, back)
				}
			}
		})
	}
}
