package catalog

import (
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type memberKey struct {
	typ    string
	member string
}

// Memo wraps a Catalog and caches every answer for the lifetime of one
// analysis run. The closure engine consults the same type/member pairs
// many times during seeding and expansion; against a parse- or
// network-bound backend that would be prohibitively slow.
//
// Memo assumes the backend is deterministic: the same query always
// yields the same answer. Concurrent use is safe; a cache miss raced by
// two goroutines may query the backend twice, but both store the same
// result.
type Memo struct {
	inner Catalog

	mu          sync.Mutex
	allTypes    []string
	haveAll     bool
	ancestors   map[string][]string
	descendants map[string][]string
	members     map[string][]string
	related     map[memberKey][]string
	pureVirtual map[memberKey]bool
}

func NewMemo(inner Catalog) *Memo {
	return &Memo{
		inner:       inner,
		ancestors:   map[string][]string{},
		descendants: map[string][]string{},
		members:     map[string][]string{},
		related:     map[memberKey][]string{},
		pureVirtual: map[memberKey]bool{},
	}
}

func (m *Memo) AllTypes() ([]string, error) {
	m.mu.Lock()
	if m.haveAll {
		defer m.mu.Unlock()
		return slices.Clone(m.allTypes), nil
	}
	m.mu.Unlock()

	types, err := m.inner.AllTypes()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allTypes = types
	m.haveAll = true
	return slices.Clone(types), nil
}

// memoizedStrings handles the common lookup-or-query path for the
// string-keyed, string-slice-valued queries.
func (m *Memo) memoizedStrings(cache map[string][]string, key string, query func(string) ([]string, error)) ([]string, error) {
	m.mu.Lock()
	if res, ok := cache[key]; ok {
		defer m.mu.Unlock()
		return slices.Clone(res), nil
	}
	m.mu.Unlock()

	res, err := query(key)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cache[key] = res
	return slices.Clone(res), nil
}

func (m *Memo) Ancestors(typ string) ([]string, error) {
	return m.memoizedStrings(m.ancestors, typ, m.inner.Ancestors)
}

func (m *Memo) Descendants(typ string) ([]string, error) {
	return m.memoizedStrings(m.descendants, typ, m.inner.Descendants)
}

func (m *Memo) Members(typ string) ([]string, error) {
	return m.memoizedStrings(m.members, typ, m.inner.Members)
}

func (m *Memo) RelatedTypes(typ, member string) ([]string, error) {
	key := memberKey{typ, member}
	m.mu.Lock()
	if res, ok := m.related[key]; ok {
		defer m.mu.Unlock()
		return slices.Clone(res), nil
	}
	m.mu.Unlock()

	res, err := m.inner.RelatedTypes(typ, member)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.related[key] = res
	return slices.Clone(res), nil
}

func (m *Memo) IsPureVirtual(typ, member string) (bool, error) {
	key := memberKey{typ, member}
	m.mu.Lock()
	if res, ok := m.pureVirtual[key]; ok {
		m.mu.Unlock()
		return res, nil
	}
	m.mu.Unlock()

	res, err := m.inner.IsPureVirtual(typ, member)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pureVirtual[key] = res
	return res, nil
}

// Prefetch warms the ancestor and member caches for the given types in
// parallel. It is purely an optimization for backends that support
// concurrent reads: the fixpoint's result is invariant to whether, or
// in which order, answers were prefetched.
func (m *Memo) Prefetch(types []string) error {
	var (
		wg     sync.WaitGroup
		errsMu sync.Mutex
		errs   *multierror.Error
	)
	for _, typ := range types {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ancErr := m.Ancestors(typ)
			_, memErr := m.Members(typ)
			for _, err := range []error{ancErr, memErr} {
				if err != nil {
					errsMu.Lock()
					errs = multierror.Append(errs, err)
					errsMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
