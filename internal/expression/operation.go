package expression

import (
	"fmt"
	"math"
)

// PowerMode selects how '^' is computed.
type PowerMode int

const (
	// PowerExact uses integer exponentiation by squaring. Results that do
	// not fit in int64 wrap and produce an overflow warning.
	PowerExact PowerMode = iota
	// PowerFloat computes the power in float64 and truncates toward zero.
	// It loses precision once the result passes 2^53.
	PowerFloat
)

// String returns the configuration name of the mode.
func (m PowerMode) String() string {
	if m == PowerFloat {
		return "float"
	}
	return "exact"
}

// ParsePowerMode parses "exact" or "float".
func ParsePowerMode(s string) (PowerMode, error) {
	switch s {
	case "", "exact":
		return PowerExact, nil
	case "float":
		return PowerFloat, nil
	default:
		return PowerExact, fmt.Errorf("unknown power mode '%s', must be one of: exact, float", s)
	}
}

// Operate applies op to a and b. Division and modulo by zero are reported
// to r and yield 0.
func (e *Evaluator) Operate(a, b int64, op byte, r Reporter) int64 {
	if r == nil {
		r = Discard
	}
	return e.operate(a, b, op, -1, r)
}

func (e *Evaluator) operate(a, b int64, op byte, pos int, r Reporter) int64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		if b == 0 {
			reportError(r, KindArithmetic, pos, "divide by zero")
			return 0
		}
		return a / b
	case '%':
		if b == 0 {
			reportError(r, KindArithmetic, pos, "modulo by zero")
			return 0
		}
		return a % b
	case '^':
		if e.power == PowerFloat {
			return floatPow(a, b, pos, r)
		}
		return intPow(a, b, pos, r)
	default:
		reportError(r, KindGrammar, pos, "bad operation")
		return 0
	}
}

func reportError(r Reporter, kind ErrorKind, pos int, msg string) {
	r.Report(Diagnostic{Severity: SeverityError, Err: NewExpressionError(kind, pos, msg)})
}

func intPow(base, exp int64, pos int, r Reporter) int64 {
	if exp < 0 {
		switch base {
		case 0:
			reportError(r, KindArithmetic, pos, "divide by zero")
			return 0
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}

	result := int64(1)
	overflow := false
	for {
		if exp&1 == 1 {
			var of bool
			result, of = mulOverflows(result, base)
			overflow = overflow || of
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		var of bool
		base, of = mulOverflows(base, base)
		overflow = overflow || of
	}
	if overflow {
		r.Report(Diagnostic{Severity: SeverityWarning, Err: NewExpressionError(KindOverflow, pos, "overflow")})
	}
	return result
}

// mulOverflows returns the wrapped product and whether it overflowed.
func mulOverflows(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return c, true
	}
	return c, c/b != a
}

func floatPow(a, b int64, pos int, r Reporter) int64 {
	f := math.Pow(float64(a), float64(b))
	switch {
	case math.IsNaN(f):
		r.Report(Diagnostic{Severity: SeverityWarning, Err: NewExpressionError(KindOverflow, pos, "overflow")})
		return 0
	case f >= math.MaxInt64:
		r.Report(Diagnostic{Severity: SeverityWarning, Err: NewExpressionError(KindOverflow, pos, "overflow")})
		return math.MaxInt64
	case f < math.MinInt64:
		r.Report(Diagnostic{Severity: SeverityWarning, Err: NewExpressionError(KindOverflow, pos, "overflow")})
		return math.MinInt64
	}
	return int64(f)
}
