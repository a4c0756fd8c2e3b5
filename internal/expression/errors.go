package expression

import (
	"fmt"
	"sync"
)

// ErrorKind classifies a diagnostic.
type ErrorKind int

const (
	// KindLexical covers unknown characters and unbalanced parentheses.
	KindLexical ErrorKind = iota
	// KindGrammar covers missing operands, duplicate operators, bad
	// assignment targets and malformed comparisons.
	KindGrammar
	// KindUnbound is a variable used as a value before it was assigned.
	KindUnbound
	// KindArithmetic is division or modulo by zero.
	KindArithmetic
	// KindOverflow is a literal or power result that does not fit in int64.
	KindOverflow
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindLexical:
		return "lexical"
	case KindGrammar:
		return "grammar"
	case KindUnbound:
		return "unbound"
	case KindArithmetic:
		return "arithmetic"
	case KindOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Severity tells whether a diagnostic aborted evaluation.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// ExpressionError represents a problem found while evaluating a line.
type ExpressionError struct {
	Kind     ErrorKind
	Position int    // Position in the line where the error occurred, -1 if unknown
	Message  string // Error message
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s error at position %d: %s", e.Kind, e.Position, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// NewExpressionError creates a new ExpressionError.
func NewExpressionError(kind ErrorKind, pos int, message string) *ExpressionError {
	return &ExpressionError{
		Kind:     kind,
		Position: pos,
		Message:  message,
	}
}

// Diagnostic is one message on the evaluator's side channel.
type Diagnostic struct {
	Severity Severity
	Err      *ExpressionError
}

// String renders the diagnostic the way the calculator prints it.
func (d Diagnostic) String() string {
	return d.Severity.String() + ": " + d.Err.Message
}

// Reporter receives diagnostics as they are produced.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Tee returns a Reporter that passes each diagnostic to every r in order.
func Tee(rs ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range rs {
			if r != nil {
				r.Report(d)
			}
		}
	})
}

// Collector records diagnostics in the order they were reported.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diags...)
}

// Errors returns the reported diagnostics with SeverityError.
func (c *Collector) Errors() []Diagnostic {
	return c.filter(SeverityError)
}

// Warnings returns the reported diagnostics with SeverityWarning.
func (c *Collector) Warnings() []Diagnostic {
	return c.filter(SeverityWarning)
}

// HasKind reports whether any diagnostic of the given kind was reported.
func (c *Collector) HasKind(kind ErrorKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.diags {
		if d.Err.Kind == kind {
			return true
		}
	}
	return false
}

// Reset forgets all recorded diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.diags = nil
	c.mu.Unlock()
}

func (c *Collector) filter(s Severity) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, d := range c.diags {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
