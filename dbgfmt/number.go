package dbgfmt

import (
	"errors"
	"math"
	"math/big"
	"strconv"
)

// splitNumber separates an integer literal into sign, digits and base.
func splitNumber(text string) (neg bool, digits string, base int) {
	switch {
	case text[0] == '-':
		neg, text = true, text[1:]
	case text[0] == '+':
		text = text[1:]
	}
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			return neg, text[2:], 16
		case 'o', 'O':
			return neg, text[2:], 8
		case 'b', 'B':
			return neg, text[2:], 2
		}
	}
	return neg, text, 10
}

// parseInt converts an integer token to a signed value of the given bit
// width. Out-of-range magnitudes fail with KindOverflow.
func parseInt(tok Token, bits int) (int64, error) {
	if tok.Type != TokenInt {
		return 0, unexpected(tok, "an integer")
	}
	neg, digits, base := splitNumber(tok.Value)
	if neg {
		digits = "-" + digits
	}
	v, err := strconv.ParseInt(digits, base, bits)
	if err != nil {
		return 0, numberError(tok, err, "int"+strconv.Itoa(bits))
	}
	return v, nil
}

// parseUint converts an integer token to an unsigned value of the given
// bit width. Negative literals always fail, even "-0".
func parseUint(tok Token, bits int) (uint64, error) {
	if tok.Type != TokenInt {
		return 0, unexpected(tok, "an unsigned integer")
	}
	neg, digits, base := splitNumber(tok.Value)
	if neg {
		return 0, overflow(tok, "negative literal cannot be decoded as uint%d", bits)
	}
	v, err := strconv.ParseUint(digits, base, bits)
	if err != nil {
		return 0, numberError(tok, err, "uint"+strconv.Itoa(bits))
	}
	return v, nil
}

// parseBigInt converts an integer token of any magnitude.
func parseBigInt(tok Token) (*big.Int, error) {
	if tok.Type != TokenInt {
		return nil, unexpected(tok, "an integer")
	}
	neg, digits, base := splitNumber(tok.Value)
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, unexpected(tok, "an integer")
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// parseFloat converts a number token, or one of the bare words inf and
// NaN, to a float of the given bit width. Infinities and NaN are accepted
// at every width; finite literals beyond the width fail with KindOverflow.
func parseFloat(tok Token, bits int) (float64, error) {
	switch tok.Type {
	case TokenIdent:
		switch tok.Value {
		case "inf":
			return math.Inf(1), nil
		case "NaN":
			return math.NaN(), nil
		}
		return 0, unexpected(tok, "a float")

	case TokenFloat:
		switch tok.Value {
		case "-inf":
			return math.Inf(-1), nil
		case "+inf":
			return math.Inf(1), nil
		}

	case TokenInt:
		if _, _, base := splitNumber(tok.Value); base != 10 {
			return 0, unexpected(tok, "a decimal number")
		}

	default:
		return 0, unexpected(tok, "a float")
	}

	v, err := strconv.ParseFloat(tok.Value, bits)
	if err != nil {
		return 0, numberError(tok, err, "float"+strconv.Itoa(bits))
	}
	return v, nil
}

func numberError(tok Token, err error, target string) error {
	if errors.Is(err, strconv.ErrRange) {
		e := overflow(tok, "literal does not fit in %s", target)
		e.Err = err
		return e
	}
	e := unexpected(tok, "a valid "+target)
	e.Err = err
	return e
}
