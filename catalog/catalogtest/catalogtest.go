// Package catalogtest provides an in-memory catalog.Catalog for tests.
package catalogtest

import (
	"maps"
	"slices"
	"sync"
)

// Type describes one cataloged type of a [Fake].
type Type struct {
	// Direct ancestors, nearest-first.
	Parents []string
	// Directly declared members.
	Members []string
	// Member name to the types flowing through it.
	Related map[string][]string
	// Members declared pure virtual on this type.
	Pure []string
}

// Fake implements catalog.Catalog from a static type table. Unknown
// type names yield empty answers, matching the contract. Every query
// is counted by method name, so tests can assert deduplication.
type Fake struct {
	Types map[string]Type
	// AllTypes order. Defaults to sorted type names.
	Order []string
	// When set, every query fails with this error.
	Err error

	// Queries counts backend hits by method name. Guarded by mu so
	// concurrent prefetching callers stay race-free.
	Queries map[string]int
	mu      sync.Mutex
}

func (f *Fake) count(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Queries == nil {
		f.Queries = map[string]int{}
	}
	f.Queries[query]++
}

func (f *Fake) AllTypes() ([]string, error) {
	f.count("AllTypes")
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Order != nil {
		return slices.Clone(f.Order), nil
	}
	return slices.Sorted(maps.Keys(f.Types)), nil
}

func (f *Fake) Ancestors(typ string) ([]string, error) {
	f.count("Ancestors")
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.Types[typ]; !ok {
		return nil, nil
	}
	// Breadth-first over a possibly-diamond parent graph, so the
	// result is nearest-first and revisit-free.
	result := []string{typ}
	seen := map[string]struct{}{typ: {}}
	for i := 0; i < len(result); i++ {
		for _, parent := range f.Types[result[i]].Parents {
			if _, ok := seen[parent]; ok {
				continue
			}
			seen[parent] = struct{}{}
			result = append(result, parent)
		}
	}
	return result, nil
}

func (f *Fake) Descendants(typ string) ([]string, error) {
	f.count("Descendants")
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.Types[typ]; !ok {
		return nil, nil
	}
	result := []string{typ}
	seen := map[string]struct{}{typ: {}}
	for i := 0; i < len(result); i++ {
		for _, name := range slices.Sorted(maps.Keys(f.Types)) {
			if !slices.Contains(f.Types[name].Parents, result[i]) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}
	return result, nil
}

func (f *Fake) Members(typ string) ([]string, error) {
	f.count("Members")
	if f.Err != nil {
		return nil, f.Err
	}
	return slices.Clone(f.Types[typ].Members), nil
}

func (f *Fake) RelatedTypes(typ, member string) ([]string, error) {
	f.count("RelatedTypes")
	if f.Err != nil {
		return nil, f.Err
	}
	return slices.Clone(f.Types[typ].Related[member]), nil
}

func (f *Fake) IsPureVirtual(typ, member string) (bool, error) {
	f.count("IsPureVirtual")
	if f.Err != nil {
		return false, f.Err
	}
	return slices.Contains(f.Types[typ].Pure, member), nil
}
