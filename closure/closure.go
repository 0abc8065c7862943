// Package closure computes which binding-layer types and members are
// reachable from the harvested identifier set, and turns the complement
// into a deterministic rejection stream.
//
// The computation is a worklist fixpoint over the power set of the
// cataloged types. The reachable set only ever grows and the catalog is
// finite, so termination is guaranteed; each type is processed as a
// worklist item at most once, bounding total work to O(types + members)
// catalog queries. The result is invariant to the order in which the
// worklist is drained.
package closure

import (
	"github.com/refaktor/bindtrim/catalog"
	"github.com/refaktor/bindtrim/logger"
	"github.com/refaktor/bindtrim/policy"
	"github.com/refaktor/bindtrim/scan"
)

// Result holds the reachable sets of one analysis run. A Result is
// built fresh per run and owns no shared state.
type Result struct {
	// Useful is the set of reachable types. Invariant: every ancestor
	// of a useful type is itself useful, since inherited members
	// require the whole ancestor chain to exist in the build.
	Useful map[string]struct{}
	// Kept maps each useful type to its reachable members: those
	// harvested from application code plus those forced by policy.
	Kept map[string]map[string]struct{}
}

func (r *Result) IsUseful(typ string) bool {
	_, ok := r.Useful[typ]
	return ok
}

type run struct {
	cat catalog.Catalog
	pol *policy.Policy
	ids scan.IdentifierSet
	log *logger.Logger

	res      *Result
	worklist []string // FIFO frontier of types not yet expanded
}

// Run computes the reachable-type and reachable-member sets.
//
// Seeding starts from every cataloged type whose name was harvested;
// expansion follows the types that can flow through each reachable
// type's kept members, pulling in their full ancestor chains. A type
// reached only through expansion is subject to the same member-level
// pruning as any other.
func Run(cat catalog.Catalog, pol *policy.Policy, ids scan.IdentifierSet, log *logger.Logger) (*Result, error) {
	r := &run{
		cat: cat,
		pol: pol,
		ids: ids,
		log: log,
		res: &Result{
			Useful: map[string]struct{}{},
			Kept:   map[string]map[string]struct{}{},
		},
	}

	types, err := cat.AllTypes()
	if err != nil {
		return nil, err
	}
	for _, typ := range types {
		if ids.Has(typ) {
			if err := r.addWithAncestors(typ); err != nil {
				return nil, err
			}
		}
	}

	for len(r.worklist) > 0 {
		typ := r.worklist[0]
		r.worklist = r.worklist[1:]
		if err := r.expand(typ); err != nil {
			return nil, err
		}
	}
	return r.res, nil
}

// addWithAncestors marks typ and its full ancestor chain useful and
// queues any newly added type for expansion.
func (r *run) addWithAncestors(typ string) error {
	ancestors, err := r.cat.Ancestors(typ)
	if err != nil {
		return err
	}
	for _, anc := range ancestors {
		if _, ok := r.res.Useful[anc]; ok {
			continue
		}
		r.res.Useful[anc] = struct{}{}
		r.worklist = append(r.worklist, anc)
		r.log.Infof("useful type %v", anc)
	}
	return nil
}

// expand processes one worklist item: compute the type's kept members,
// then widen the useful set with every type that can flow through them.
func (r *run) expand(typ string) error {
	r.log.Infof("expanding %v [%v more queued]", typ, len(r.worklist))
	kept, err := keptMembers(r.cat, r.pol, r.ids, typ)
	if err != nil {
		return err
	}
	r.res.Kept[typ] = kept

	for member := range kept {
		related, err := r.cat.RelatedTypes(typ, member)
		if err != nil {
			return err
		}
		for _, rel := range related {
			if err := r.addWithAncestors(rel); err != nil {
				return err
			}
		}
	}
	return nil
}

// keptMembers computes the reachable members of typ: the union of the
// policy-forced members and the directly declared members whose name
// was harvested. Computed once per type; the catalog answers behind it
// are expensive enough that per-revisit recomputation is a trap.
func keptMembers(cat catalog.Catalog, pol *policy.Policy, ids scan.IdentifierSet, typ string) (map[string]struct{}, error) {
	members, err := cat.Members(typ)
	if err != nil {
		return nil, err
	}
	kept := map[string]struct{}{}
	for _, member := range members {
		if ids.Has(member) {
			kept[member] = struct{}{}
			continue
		}
		keep, err := pol.KeepsMember(cat, typ, member)
		if err != nil {
			return nil, err
		}
		if keep {
			kept[member] = struct{}{}
		}
	}
	return kept, nil
}
