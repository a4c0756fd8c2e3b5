// Package expression provides the line calculator's tokenizer and its
// left-to-right integer evaluator.
package expression

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOL TokenType = iota
	TokenInvalid
	TokenBlank

	// Operands
	TokenNumber   // decimal digit run
	TokenVariable // lowercase letter run

	// Operators
	TokenOperator // + - * / % ^
	TokenAssign   // =
	TokenCompare  // == != <> >< >= => <= =< > <

	// Delimiters
	TokenLParen // (
	TokenRParen // )
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOL:
		return "EOL"
	case TokenInvalid:
		return "INVALID"
	case TokenBlank:
		return "BLANK"
	case TokenNumber:
		return "NUMBER"
	case TokenVariable:
		return "VARIABLE"
	case TokenOperator:
		return "OPERATOR"
	case TokenAssign:
		return "="
	case TokenCompare:
		return "COMPARE"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // Position in the input string
}

// Comparison is a normalized comparison operator. The tokenizer accepts
// several spellings for the same comparison (e.g. "<>" and "!=").
type Comparison int

const (
	CompareInvalid Comparison = iota
	CompareEQ
	CompareNE
	CompareGE
	CompareLE
	CompareGT
	CompareLT
)

// ParseComparison maps a comparison literal onto its operator.
func ParseComparison(literal string) Comparison {
	switch literal {
	case "==":
		return CompareEQ
	case "!=", "<>", "><":
		return CompareNE
	case ">=", "=>":
		return CompareGE
	case "<=", "=<":
		return CompareLE
	case ">":
		return CompareGT
	case "<":
		return CompareLT
	default:
		return CompareInvalid
	}
}

// Apply returns 1 when the comparison holds and 0 otherwise.
func (c Comparison) Apply(left, right int64) (int64, bool) {
	var ok bool
	switch c {
	case CompareEQ:
		ok = left == right
	case CompareNE:
		ok = left != right
	case CompareGE:
		ok = left >= right
	case CompareLE:
		ok = left <= right
	case CompareGT:
		ok = left > right
	case CompareLT:
		ok = left < right
	default:
		return 0, false
	}
	if ok {
		return 1, true
	}
	return 0, true
}
