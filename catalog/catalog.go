// Package catalog defines the contract against which the reachability
// analysis queries the binding layer's API surface, plus a memoizing
// adapter for expensive backends.
package catalog

// Catalog answers structural questions about the binding layer.
//
// Implementations are typically parse- or network-bound, so callers are
// expected to go through [Memo] rather than hitting a backend directly.
//
// A lookup for a name that is not actually a type returns an empty
// answer, not an error. Only genuine backend failures (e.g. transport
// errors) are reported as errors.
type Catalog interface {
	// AllTypes returns every type the binding layer could in
	// principle expose.
	AllTypes() ([]string, error)

	// Ancestors returns typ and all types it is transitively derived
	// from, nearest-first. Parametrized and typedef names are resolved
	// to their canonical generic and element types.
	Ancestors(typ string) ([]string, error)

	// Descendants returns typ and all types transitively derived from
	// it.
	Descendants(typ string) ([]string, error)

	// Members returns the members declared directly on typ. Inherited
	// members are reached via Ancestors.
	Members(typ string) ([]string, error)

	// RelatedTypes approximates the set of types that can flow through
	// the member's parameters or return value. The result is only ever
	// used to widen the reachable set, never to narrow it; names that
	// cannot be resolved to a cataloged type are dropped.
	RelatedTypes(typ, member string) ([]string, error)

	// IsPureVirtual reports whether typ declares member as pure
	// virtual.
	IsPureVirtual(typ, member string) (bool, error)
}
