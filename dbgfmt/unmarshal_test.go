package dbgfmt

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"
)

// ============================================================
// Fixtures
// ============================================================

type Point struct {
	X int32 `dbg:"x"`
	Y int32 `dbg:"y"`
}

type Limits struct {
	RequestsPerSecond float64
	Burst             *uint16
}

type Config struct {
	Name    string
	Port    uint16
	Tags    []string
	Limits  *Limits
	Origin  Point
	Weights map[string]float32
	Mode    Mode
	Secret  string `dbg:"-"`
	Extra   any
	private int
}

type Meters struct {
	Value float64 `dbg:"0"`
}

type Pair struct {
	Left  string `dbg:"0"`
	Right int8   `dbg:"1"`
}

type Marker struct{}

type renamed struct {
	ID uint64
}

func (renamed) DebugName() string { return "Renamed" }

// Mode is an enum decoded through DecodeEnum.
type Mode struct {
	Kind  string
	Level int
}

func (m *Mode) UnmarshalDebug(d *Decoder) error {
	e, err := d.DecodeEnum("Mode", []string{"Fast", "Slow", "Custom"})
	if err != nil {
		return err
	}
	m.Kind = e.Variant()
	if e.Variant() != "Custom" {
		return e.Unit()
	}
	return e.Newtype(func(d *Decoder) error {
		v, err := d.DecodeInt(32)
		m.Level = int(v)
		return err
	})
}

// ============================================================
// Unmarshal Tests
// ============================================================

func TestUnmarshal_Primitives(t *testing.T) {
	var (
		b   bool
		i8  int8
		u   uint
		f32 float32
		s   string
		r   rune
		bi  *big.Int
	)

	mustUnmarshal(t, "true", &b)
	mustUnmarshal(t, "-128", &i8)
	mustUnmarshal(t, "007", &u)
	mustUnmarshal(t, "-inf", &f32)
	mustUnmarshal(t, `"h\u{e9}\u{301}"`, &s)
	mustUnmarshal(t, `'λ'`, &r)
	mustUnmarshal(t, "340282366920938463463374607431768211455", &bi)

	if !b || i8 != -128 || u != 7 || !math.IsInf(float64(f32), -1) || s != "h\u00e9\u0301" || r != 'λ' {
		t.Errorf("unexpected values: %v %v %v %v %q %q", b, i8, u, f32, s, r)
	}
	if bi.String() != "340282366920938463463374607431768211455" {
		t.Errorf("unexpected big int %s", bi)
	}

	// A rune target still takes plain integers.
	mustUnmarshal(t, "65", &r)
	if r != 'A' {
		t.Errorf("expected 'A', got %q", r)
	}
}

func TestUnmarshal_Struct(t *testing.T) {
	input := `Config {
    name: "svc",
    port: 8080,
    tags: ["a", "b"],
    limits: Some(
        Limits {
            requests_per_second: 1.5e3,
            burst: None,
        },
    ),
    origin: Point { x: -1, y: 2 },
    weights: {"cpu": 0.5},
    mode: Custom(3),
    extra: [1, Some("x")],
}`

	var cfg Config
	mustUnmarshal(t, input, &cfg)

	if cfg.Name != "svc" || cfg.Port != 8080 {
		t.Errorf("unexpected name/port: %q %d", cfg.Name, cfg.Port)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[1] != "b" {
		t.Errorf("unexpected tags %v", cfg.Tags)
	}
	if cfg.Limits == nil || cfg.Limits.RequestsPerSecond != 1500 || cfg.Limits.Burst != nil {
		t.Errorf("unexpected limits %+v", cfg.Limits)
	}
	if cfg.Origin != (Point{-1, 2}) {
		t.Errorf("unexpected origin %+v", cfg.Origin)
	}
	if cfg.Weights["cpu"] != 0.5 {
		t.Errorf("unexpected weights %v", cfg.Weights)
	}
	if cfg.Mode.Kind != "Custom" || cfg.Mode.Level != 3 {
		t.Errorf("unexpected mode %+v", cfg.Mode)
	}
	extra, ok := cfg.Extra.(*Value)
	if !ok || !Equal(extra, Seq(Uint(1), Some(Str("x")))) {
		t.Errorf("unexpected extra %v", cfg.Extra)
	}
}

func TestUnmarshal_MissingFieldsKeepZero(t *testing.T) {
	cfg := Config{Name: "keep"}
	mustUnmarshal(t, `Config { port: 1 }`, &cfg)
	if cfg.Name != "keep" || cfg.Port != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestUnmarshal_SkippedFieldIsUnknown(t *testing.T) {
	var cfg Config
	err := Unmarshal(`Config { secret: "x" }`, &cfg)
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected unknown field, got %v", err)
	}
}

func TestUnmarshal_TupleAndUnitStructs(t *testing.T) {
	var m Meters
	mustUnmarshal(t, "Meters(2.5)", &m)
	if m.Value != 2.5 {
		t.Errorf("expected 2.5, got %v", m.Value)
	}

	var p Pair
	mustUnmarshal(t, `Pair("l", -1,)`, &p)
	if p.Left != "l" || p.Right != -1 {
		t.Errorf("unexpected pair %+v", p)
	}

	var mk Marker
	mustUnmarshal(t, "Marker", &mk)
	mustUnmarshal(t, "Marker {}", &mk)

	var r renamed
	mustUnmarshal(t, "Renamed { id: 9 }", &r)
	if r.ID != 9 {
		t.Errorf("expected 9, got %d", r.ID)
	}
}

func TestUnmarshal_Pointers(t *testing.T) {
	var p *Point
	mustUnmarshal(t, "Some(Point { x: 1, y: 1 })", &p)
	if p == nil || p.X != 1 {
		t.Fatalf("expected point, got %v", p)
	}

	mustUnmarshal(t, "None", &p)
	if p != nil {
		t.Fatalf("expected nil, got %v", p)
	}

	// A boxed value prints without Some.
	mustUnmarshal(t, "Point { x: 3, y: 4 }", &p)
	if p == nil || p.Y != 4 {
		t.Fatalf("expected boxed point, got %v", p)
	}

	var pp **int
	mustUnmarshal(t, "Some(Some(5))", &pp)
	if pp == nil || *pp == nil || **pp != 5 {
		t.Fatalf("expected nested option")
	}
}

func TestUnmarshal_Collections(t *testing.T) {
	var set []string
	mustUnmarshal(t, `{"a", "b"}`, &set)
	if len(set) != 2 {
		t.Errorf("unexpected set %v", set)
	}

	var arr [3]uint8
	mustUnmarshal(t, "[1, 2, 3]", &arr)
	if arr != [3]uint8{1, 2, 3} {
		t.Errorf("unexpected array %v", arr)
	}
	mustUnmarshal(t, "(4, 5, 6)", &arr)
	if arr != [3]uint8{4, 5, 6} {
		t.Errorf("unexpected tuple array %v", arr)
	}

	var byPoint map[Point]string
	mustUnmarshal(t, `{Point { x: 0, y: 0 }: "origin"}`, &byPoint)
	if byPoint[Point{}] != "origin" {
		t.Errorf("unexpected map %v", byPoint)
	}

	var empty []int
	mustUnmarshal(t, "[]", &empty)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target any
		want   error
	}{
		{"unsigned negative", "-3", new(uint32), ErrOverflow},
		{"int overflow", "300", new(int8), ErrOverflow},
		{"name mismatch", "Pos { x: 1, y: 2 }", new(Point), ErrNameMismatch},
		{"unknown field", "Point { x: 1, z: 2 }", new(Point), ErrUnknownField},
		{"unterminated", "[1, 2", new([]int), ErrStructural},
		{"trailing input", "5 extra", new(int), ErrTrailingInput},
		{"short array", "[1, 2]", new([3]int), ErrStructural},
		{"long array", "[1, 2, 3, 4]", new([3]int), ErrStructural},
		{"short tuple struct", `Pair("l")`, new(Pair), ErrStructural},
		{"unknown variant", "Config { mode: Medium }", new(Config), ErrNameMismatch},
		{"duplicate field", "Point { x: 1, x: 2 }", new(Point), ErrSyntax},
		{"char into string", `'c'`, new(string), ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Unmarshal(tt.input, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnmarshal_DuplicateFieldPosition(t *testing.T) {
	var p Point
	err := Unmarshal("Point { x: 1, x: 2 }", &p)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Pos.Offset != 14 || e.Pos.Column != 15 {
		t.Errorf("expected error at the repeated field name, got %s (offset %d)", e.Pos, e.Pos.Offset)
	}
}

func TestUnmarshal_MismatchedClose(t *testing.T) {
	if err := Unmarshal("[1, }", new([]int)); !errors.Is(err, ErrStructural) {
		t.Errorf("expected structural error, got %v", err)
	}
}

func TestUnmarshal_DepthLimit(t *testing.T) {
	var v any
	err := Unmarshal(strings.Repeat("[", MaxDepth+1), &v)
	if !errors.Is(err, ErrStructural) {
		t.Errorf("expected structural error, got %v", err)
	}
}

func TestUnmarshal_InvalidTargets(t *testing.T) {
	var p Point
	if err := Unmarshal("Point { x: 1, y: 2 }", p); err == nil {
		t.Error("expected error for non-pointer target")
	}

	var ch chan int
	if err := Unmarshal("1", &ch); err == nil {
		t.Error("expected error for channel target")
	}

	type mixed struct {
		A int `dbg:"0"`
		B int
	}
	if err := Unmarshal("mixed(1)", new(mixed)); err == nil {
		t.Error("expected error for mixed positional and named fields")
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":              "name",
		"RequestsPerSecond": "requests_per_second",
		"UserID":            "user_id",
		"HTTPServer":        "http_server",
		"V2Name":            "v2_name",
		"already_snake":     "already_snake",
	}
	for in, want := range tests {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustUnmarshal(t *testing.T, input string, v any) {
	t.Helper()
	if err := Unmarshal(input, v); err != nil {
		t.Fatalf("Unmarshal(%q) failed: %v", input, err)
	}
}
