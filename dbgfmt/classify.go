package dbgfmt

// Class is the shape of the next value as inferred from its leading
// tokens.
type Class uint8

const (
	ClassInvalid     Class = iota
	ClassEOF               // nothing left
	ClassNone              // None
	ClassSome              // Some(..)
	ClassBool              // true, false
	ClassInt               // 42, -7, 0xff
	ClassFloat             // 1.5, inf, -inf, NaN
	ClassString            // "text"
	ClassChar              // 'c'
	ClassIdent             // unit struct or unit variant
	ClassStruct            // Name { .. }
	ClassTupleStruct       // Name(..)
	ClassSeq               // [..]
	ClassMap               // {..}, a map or a set
	ClassTuple             // (..), including the unit value ()
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassEOF:
		return "eof"
	case ClassNone:
		return "none"
	case ClassSome:
		return "some"
	case ClassBool:
		return "bool"
	case ClassInt:
		return "int"
	case ClassFloat:
		return "float"
	case ClassString:
		return "string"
	case ClassChar:
		return "char"
	case ClassIdent:
		return "ident"
	case ClassStruct:
		return "struct"
	case ClassTupleStruct:
		return "tuple-struct"
	case ClassSeq:
		return "seq"
	case ClassMap:
		return "map"
	case ClassTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// Classify infers the shape of the value starting at first. second is
// the token after first and is only consulted when first is an
// identifier. Classify has no side effects.
func Classify(first, second Token) Class {
	switch first.Type {
	case TokenEOF:
		return ClassEOF
	case TokenInt:
		return ClassInt
	case TokenFloat:
		return ClassFloat
	case TokenString:
		return ClassString
	case TokenChar:
		return ClassChar
	case TokenLBracket:
		return ClassSeq
	case TokenLBrace:
		return ClassMap
	case TokenLParen:
		return ClassTuple
	case TokenIdent:
		switch second.Type {
		case TokenLBrace:
			return ClassStruct
		case TokenLParen:
			if first.Value == "Some" {
				return ClassSome
			}
			return ClassTupleStruct
		}
		switch first.Value {
		case "None":
			return ClassNone
		case "true", "false":
			return ClassBool
		case "inf", "NaN":
			return ClassFloat
		}
		return ClassIdent
	}
	return ClassInvalid
}
