package dbgfmt

import (
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestDecodeInt(t *testing.T) {
	tests := []struct {
		input string
		bits  int
		want  int64
	}{
		{"0", 8, 0},
		{"127", 8, 127},
		{"-128", 8, -128},
		{"+5", 16, 5},
		{"-32768", 16, -32768},
		{"2147483647", 32, 2147483647},
		{"-9223372036854775808", 64, math.MinInt64},
		{"0xff", 16, 255},
		{"-0x80", 8, -128},
		{"0o17", 8, 15},
		{"0b1010", 8, 10},
		{"0XFF", 32, 255},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewDecoder(tt.input).DecodeInt(tt.bits)
			if err != nil {
				t.Fatalf("DecodeInt failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDecodeInt_Overflow(t *testing.T) {
	tests := []struct {
		input string
		bits  int
	}{
		{"128", 8},
		{"-129", 8},
		{"32768", 16},
		{"9223372036854775808", 64},
		{"0x100", 8},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewDecoder(tt.input).DecodeInt(tt.bits)
			if !errors.Is(err, ErrOverflow) {
				t.Fatalf("expected overflow, got %v", err)
			}
		})
	}
}

func TestDecodeUint(t *testing.T) {
	tests := []struct {
		input string
		bits  int
		want  uint64
	}{
		{"0", 8, 0},
		{"255", 8, 255},
		{"65535", 16, 65535},
		{"18446744073709551615", 64, math.MaxUint64},
		{"0xffffffffffffffff", 64, math.MaxUint64},
		{"+1", 32, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewDecoder(tt.input).DecodeUint(tt.bits)
			if err != nil {
				t.Fatalf("DecodeUint failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDecodeUint_Overflow(t *testing.T) {
	tests := []struct {
		input string
		bits  int
	}{
		{"256", 8},
		{"-1", 8},
		{"-0", 32},
		{"18446744073709551616", 64},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewDecoder(tt.input).DecodeUint(tt.bits)
			if !errors.Is(err, ErrOverflow) {
				t.Fatalf("expected overflow, got %v", err)
			}
		})
	}
}

func TestDecodeInt_WrongToken(t *testing.T) {
	for _, input := range []string{"1.5", `"1"`, "true", "[1]"} {
		_, err := NewDecoder(input).DecodeInt(32)
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("%s: expected syntax error, got %v", input, err)
		}
	}
}

func TestDecodeBigInt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"170141183460469231731687303715884105727", "170141183460469231731687303715884105727"},
		{"-170141183460469231731687303715884105728", "-170141183460469231731687303715884105728"},
		{"340282366920938463463374607431768211455", "340282366920938463463374607431768211455"},
		{"0xffffffffffffffffffffffffffffffff", "340282366920938463463374607431768211455"},
		{"42", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewDecoder(tt.input).DecodeBigInt()
			if err != nil {
				t.Fatalf("DecodeBigInt failed: %v", err)
			}
			want, _ := new(big.Int).SetString(tt.want, 10)
			if got.Cmp(want) != 0 {
				t.Errorf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestDecodeFloat(t *testing.T) {
	tests := []struct {
		input string
		bits  int
		want  float64
	}{
		{"1.5", 64, 1.5},
		{"-2.25", 64, -2.25},
		{"+0.5", 64, 0.5},
		{"1e16", 64, 1e16},
		{"1.5E-7", 64, 1.5e-7},
		{"3", 64, 3},
		{"-7", 32, -7},
		{"0.1", 32, float64(float32(0.1))},
		{"inf", 64, math.Inf(1)},
		{"-inf", 64, math.Inf(-1)},
		{"+inf", 32, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewDecoder(tt.input).DecodeFloat(tt.bits)
			if err != nil {
				t.Fatalf("DecodeFloat failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDecodeFloat_NaN(t *testing.T) {
	for _, bits := range []int{32, 64} {
		got, err := NewDecoder("NaN").DecodeFloat(bits)
		if err != nil {
			t.Fatalf("DecodeFloat failed: %v", err)
		}
		if !math.IsNaN(got) {
			t.Errorf("expected NaN, got %v", got)
		}
	}
}

func TestDecodeFloat_Errors(t *testing.T) {
	tests := []struct {
		input string
		bits  int
		want  error
	}{
		{"1e400", 64, ErrOverflow},
		{"1e39", 32, ErrOverflow},
		{"0xff", 64, ErrSyntax},
		{"nan", 64, ErrSyntax},
		{`"1.0"`, 64, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewDecoder(tt.input).DecodeFloat(tt.bits)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
