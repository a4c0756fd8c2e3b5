// Package symtab holds the calculator's named integer variables.
package symtab

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxNameLen is the number of significant bytes in a variable name.
const MaxNameLen = 15

// Variable is a named integer.
type Variable struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

// Table maps variable names to values. Entries are never removed and keep
// the order in which they were first assigned.
//
// A Table is not safe for concurrent use.
type Table struct {
	vars *orderedmap.OrderedMap[string, int64]
}

// New creates an empty Table.
func New() *Table {
	return &Table{vars: orderedmap.New[string, int64]()}
}

// Lookup returns the value bound to name. The second result is false when
// the name has never been assigned.
func (t *Table) Lookup(name string) (int64, bool) {
	return t.vars.Get(name)
}

// Assign binds value to name, overwriting an existing binding in place or
// appending a new one.
func (t *Table) Assign(name string, value int64) {
	t.vars.Set(name, value)
}

// Len returns the number of bound variables.
func (t *Table) Len() int {
	return t.vars.Len()
}

// Each calls fn for every variable in insertion order until fn returns
// false.
func (t *Table) Each(fn func(v Variable) bool) {
	for pair := t.vars.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(Variable{Name: pair.Key, Value: pair.Value}) {
			return
		}
	}
}

// Variables returns a snapshot of every variable in insertion order.
func (t *Table) Variables() []Variable {
	out := make([]Variable, 0, t.vars.Len())
	t.Each(func(v Variable) bool {
		out = append(out, v)
		return true
	})
	return out
}
