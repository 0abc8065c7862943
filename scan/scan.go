// Package scan harvests candidate identifiers from a host application's
// loadable code units.
//
// The scan is a deliberate over-approximation: every name it misses is
// a correctness risk for the trimmed binding build, every name it
// wrongly includes only costs lost savings. It therefore collects every
// referenced name and every string literal that lexically forms a valid
// identifier (to catch reflection-style lookups), and makes no attempt
// at type inference.
package scan

import (
	"maps"
	"slices"
)

// IdentifierSet is a set of identifier strings harvested from
// application code. Insertion order is irrelevant and duplicates
// collapse.
type IdentifierSet map[string]struct{}

func NewIdentifierSet(names ...string) IdentifierSet {
	ids := make(IdentifierSet, len(names))
	for _, name := range names {
		ids.Add(name)
	}
	return ids
}

func (s IdentifierSet) Add(name string)      { s[name] = struct{}{} }
func (s IdentifierSet) Has(name string) bool { _, ok := s[name]; return ok }

// Merge adds every identifier in other to s.
func (s IdentifierSet) Merge(other IdentifierSet) {
	maps.Copy(s, other)
}

// Sorted returns the identifiers in ascending order.
func (s IdentifierSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Unit is one loadable code unit of the host application. The harvester
// is decoupled from any specific code representation: a Unit only has
// to expose the names it references directly and the code units nested
// within it (inner functions, literals, and the like).
type Unit interface {
	ReferencedNames() []string
	Nested() []Unit
}

// Collect harvests unit and everything nested within it into ids.
// Traversal is an explicit stack, so arbitrarily deep nesting cannot
// exhaust the call stack.
func Collect(unit Unit, ids IdentifierSet) {
	stack := []Unit{unit}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, name := range u.ReferencedNames() {
			ids.Add(name)
		}
		stack = append(stack, u.Nested()...)
	}
}
