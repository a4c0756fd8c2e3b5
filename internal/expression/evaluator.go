package expression

import (
	"errors"
	"fmt"
	"strconv"

	"yqhp/calc/internal/symtab"
)

// DepthForLine returns the nesting bound implied by a line bound. Every
// nesting level takes at least two bytes of input, so a line that fits in
// maxLine never reaches it.
func DepthForLine(maxLine int) int {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	return maxLine/2 + 1
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithReporter sets the default diagnostic sink.
func WithReporter(r Reporter) Option {
	return func(e *Evaluator) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithMaxLine sets the number of significant bytes per line.
func WithMaxLine(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxLine = n
		}
	}
}

// WithMaxName sets the number of significant bytes in a variable name.
func WithMaxName(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxName = n
		}
	}
}

// WithMaxDepth sets the nesting bound. Without it the bound follows the
// line bound, see DepthForLine.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithPowerMode selects how '^' is computed.
func WithPowerMode(m PowerMode) Option {
	return func(e *Evaluator) {
		e.power = m
	}
}

// Evaluator evaluates calculator lines against a symbol table.
//
// Operators have no precedence: each one is applied to the running result
// as soon as its right operand is known, so "2 + 3 * 4" is 20. Parentheses
// are the only grouping. An assignment or a comparison consumes the rest of
// the line.
//
// An Evaluator keeps no state between calls other than the table it
// mutates. It is not safe for concurrent use.
type Evaluator struct {
	table    *symtab.Table
	reporter Reporter
	maxLine  int
	maxName  int
	maxDepth int
	power    PowerMode
}

// NewEvaluator creates an Evaluator bound to table. A nil table gets a
// fresh one.
func NewEvaluator(table *symtab.Table, opts ...Option) *Evaluator {
	if table == nil {
		table = symtab.New()
	}
	e := &Evaluator{
		table:    table,
		reporter: Discard,
		maxLine:  DefaultMaxLine,
		maxName:  symtab.MaxNameLen,
		power:    PowerExact,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxDepth == 0 {
		e.maxDepth = DepthForLine(e.maxLine)
	}
	return e
}

// Table returns the symbol table the evaluator reads and writes.
func (e *Evaluator) Table() *symtab.Table {
	return e.table
}

// MaxLine returns the number of significant bytes per line.
func (e *Evaluator) MaxLine() int {
	return e.maxLine
}

// Evaluate evaluates one line and returns its value. Problems are sent to
// the evaluator's reporter; a line that cannot be evaluated yields 0.
func (e *Evaluator) Evaluate(line string) int64 {
	return e.EvaluateWith(line, e.reporter)
}

// EvaluateWith is Evaluate with a reporter for this call only.
func (e *Evaluator) EvaluateWith(line string, r Reporter) int64 {
	if r == nil {
		r = Discard
	}
	if len(line) > e.maxLine {
		line = line[:e.maxLine]
	}
	v, _ := e.evaluate(line, 0, 0, r)
	return v
}

// evaluate runs one (sub)expression and reports whether it completed. An
// aborted expression yields 0. base is the offset of src in the original
// line and is only used for diagnostic positions.
func (e *Evaluator) evaluate(src string, base, depth int, r Reporter) (int64, bool) {
	v, err := e.run(src, base, depth, r)
	if err != nil {
		r.Report(Diagnostic{Severity: SeverityError, Err: err})
		return 0, false
	}
	return v, true
}

type lvalueState int

const (
	lvalueNone    lvalueState = iota // left value is not a variable
	lvalueBound                      // left value read from a bound variable
	lvalueUnbound                    // left value names a variable with no value yet
)

type signState int

const (
	signNone signState = iota
	signPositive
	signNegative
)

// frame is the state of one evaluate call.
type frame struct {
	e     *Evaluator
	r     Reporter
	lex   *Lexer
	src   string
	base  int
	depth int

	left       int64
	leftSet    bool
	op         byte
	sign       signState
	lvalue     lvalueState
	assignable bool
	lvname     string
	lvpos      int
}

func (e *Evaluator) run(src string, base, depth int, r Reporter) (int64, *ExpressionError) {
	if depth > e.maxDepth {
		return 0, NewExpressionError(KindGrammar, base, "expression nested too deeply")
	}

	f := &frame{
		e:     e,
		r:     r,
		lex:   NewLexer(src, e.maxLine),
		src:   src,
		base:  base,
		depth: depth,
	}

	for {
		tok := f.lex.NextToken()
		pos := base + tok.Pos

		switch tok.Type {
		case TokenNumber:
			if err := f.operand(f.number(tok), pos); err != nil {
				return 0, err
			}

		case TokenVariable:
			v, err := f.variable(tok)
			if err != nil {
				return 0, err
			}
			if err := f.operand(v, pos); err != nil {
				return 0, err
			}

		case TokenOperator:
			if err := f.operator(tok); err != nil {
				return 0, err
			}

		case TokenLParen:
			inner, innerPos, err := f.group(tok)
			if err != nil {
				return 0, err
			}
			v, _ := e.evaluate(inner, base+innerPos, depth+1, r)
			if err := f.operand(v, pos); err != nil {
				return 0, err
			}

		case TokenRParen:
			return 0, NewExpressionError(KindLexical, pos, "')' without matching '('")

		case TokenAssign:
			return f.assign(tok)

		case TokenCompare:
			return f.compare(tok)

		case TokenBlank:
			continue

		case TokenInvalid:
			return 0, NewExpressionError(KindLexical, pos, fmt.Sprintf("unknown character '%s'", tok.Literal))

		case TokenEOL:
			return f.end()

		default:
			return 0, NewExpressionError(KindLexical, pos, fmt.Sprintf("unexpected token %s", tok.Type))
		}
	}
}

func (f *frame) warn(kind ErrorKind, pos int, msg string) {
	f.r.Report(Diagnostic{Severity: SeverityWarning, Err: NewExpressionError(kind, pos, msg)})
}

// number converts a digit run. Literals that do not fit in int64 saturate
// and produce an overflow warning.
func (f *frame) number(tok Token) int64 {
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			f.warn(KindOverflow, f.base+tok.Pos, "overflow")
		} else {
			f.warn(KindLexical, f.base+tok.Pos, fmt.Sprintf("cannot interpret as number: '%s'", tok.Literal))
		}
	}
	return v
}

// variable resolves a variable token. The first operand of a frame may name
// an unbound variable, since a following '=' may still assign it.
func (f *frame) variable(tok Token) (int64, *ExpressionError) {
	pos := f.base + tok.Pos
	name := tok.Literal
	if len(name) > f.e.maxName {
		name = name[:f.e.maxName]
		f.warn(KindGrammar, pos, fmt.Sprintf("variable name truncated to '%s'", name))
	}

	if !f.leftSet && f.op == 0 && f.lvalue == lvalueNone {
		f.lvname = name
		f.lvpos = pos
		f.assignable = f.sign == signNone
		if v, ok := f.e.table.Lookup(name); ok {
			f.lvalue = lvalueBound
			return v, nil
		}
		f.lvalue = lvalueUnbound
		return 0, nil
	}

	if f.op != 0 {
		v, ok := f.e.table.Lookup(name)
		if !ok {
			return 0, NewExpressionError(KindUnbound, pos, "no such variable: "+name)
		}
		return v, nil
	}

	// A value with no operator in front of it; operand() reports it.
	v, _ := f.e.table.Lookup(name)
	return v, nil
}

func (f *frame) operator(tok Token) *ExpressionError {
	pos := f.base + tok.Pos
	if f.lvalue == lvalueUnbound {
		return NewExpressionError(KindUnbound, f.lvpos, "no such variable: "+f.lvname)
	}

	if !f.leftSet || f.op != 0 {
		// A sign in front of the next operand.
		switch tok.Literal {
		case "+", "-":
			if f.sign != signNone {
				f.warn(KindGrammar, pos, "too many sign specifiers")
			}
			if tok.Literal == "-" {
				f.sign = signNegative
			} else {
				f.sign = signPositive
			}
			return nil
		}
		if !f.leftSet {
			return NewExpressionError(KindGrammar, pos, "no lvalue specified")
		}
		return NewExpressionError(KindGrammar, pos, "two operations specified")
	}

	f.op = tok.Literal[0]
	return nil
}

// operand applies the pending sign to v and either fixes it as the left
// value or combines it with the left value through the pending operator.
func (f *frame) operand(v int64, pos int) *ExpressionError {
	if f.sign == signNegative {
		v = -v
	}
	f.sign = signNone

	switch {
	case !f.leftSet:
		f.left = v
		f.leftSet = true
		return nil
	case f.op != 0:
		f.left = f.e.operate(f.left, v, f.op, pos, f.r)
		f.op = 0
		f.assignable = false
		return nil
	default:
		return NewExpressionError(KindGrammar, pos, "operation required")
	}
}

// group consumes tokens up to the ')' matching an already read '(' and
// returns the enclosed text with its offset in src.
func (f *frame) group(open Token) (string, int, *ExpressionError) {
	start := f.lex.Pos()
	depth := 1
	for {
		tok := f.lex.NextToken()
		switch tok.Type {
		case TokenEOL:
			return "", 0, NewExpressionError(KindLexical, f.base+open.Pos, "end-of-line; expected ')'")
		case TokenInvalid:
			return "", 0, NewExpressionError(KindLexical, f.base+tok.Pos, "unknown character; expected ')'")
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return f.src[start:tok.Pos], start, nil
			}
		}
	}
}

// assign stores the value of the rest of the line in the left-hand
// variable and ends the frame. A right-hand side that aborts or is empty
// counts as 0, like any other subexpression.
func (f *frame) assign(tok Token) (int64, *ExpressionError) {
	pos := f.base + tok.Pos
	if !f.leftSet || f.op != 0 || f.lvalue == lvalueNone || !f.assignable {
		return 0, NewExpressionError(KindGrammar, pos, "lvalue not a variable")
	}

	v := f.rest()
	f.e.table.Assign(f.lvname, v)
	return v, nil
}

// compare evaluates the rest of the line and compares it with the left
// value. Comparisons end the frame, so they never chain.
func (f *frame) compare(tok Token) (int64, *ExpressionError) {
	pos := f.base + tok.Pos
	cmp := ParseComparison(tok.Literal)
	if cmp == CompareInvalid {
		return 0, NewExpressionError(KindGrammar, pos, fmt.Sprintf("bad comparison operator '%s'", tok.Literal))
	}
	if !f.leftSet {
		return 0, NewExpressionError(KindGrammar, pos, "left side of comparison empty")
	}
	if f.op != 0 {
		return 0, NewExpressionError(KindGrammar, pos, "two operations specified")
	}
	if f.lvalue == lvalueUnbound {
		return 0, NewExpressionError(KindUnbound, f.lvpos, "no such variable: "+f.lvname)
	}

	result, _ := cmp.Apply(f.left, f.rest())
	return result, nil
}

// rest evaluates the remainder of the line as a subexpression. Nothing but
// blanks evaluates to 0.
func (f *frame) rest() int64 {
	if f.lex.Peek() == TokenEOL {
		return 0
	}
	v, _ := f.e.evaluate(f.lex.Rest(), f.base+f.lex.Pos(), f.depth+1, f.r)
	return v
}

func (f *frame) end() (int64, *ExpressionError) {
	pos := f.base + len(f.src)
	if f.sign != signNone {
		return 0, NewExpressionError(KindGrammar, pos, "no values given")
	}
	if f.op != 0 {
		return 0, NewExpressionError(KindGrammar, pos, fmt.Sprintf("operator '%c' has no right operand", f.op))
	}
	if f.lvalue == lvalueUnbound {
		return 0, NewExpressionError(KindUnbound, f.lvpos, "no such variable: "+f.lvname)
	}
	return f.left, nil
}
