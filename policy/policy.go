// Package policy holds the static exception tables consulted before any
// type or member is rejected.
//
// The usage scan is a syntactic over-approximation with known gaps;
// this package is the single place where those gaps are patched. Every entry here exists because
// rejecting the named type or member broke a real build in a way no
// syntactic scan could have predicted, so treat the tables as a
// tunable, test-covered artifact.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/refaktor/bindtrim/catalog"
)

// Wildcard marks "every member of this type" in a member table entry,
// and "every type" when used as the type key.
const Wildcard = "*"

type Policy struct {
	// Types that are never rejected wholesale, even with zero usage
	// evidence. The runtime substrate relies on these directly.
	keepTypes map[string]struct{}
	// Member names forced per type. The Wildcard type key applies its
	// entries to every type; a Wildcard member entry keeps every
	// member of that type.
	keepMembers map[string]map[string]struct{}
}

func New() *Policy {
	return &Policy{
		keepTypes:   map[string]struct{}{},
		keepMembers: map[string]map[string]struct{}{},
	}
}

// KeepType forces typ to survive wholesale rejection.
func (p *Policy) KeepType(typ string) {
	p.keepTypes[typ] = struct{}{}
}

// KeepMember forces member on typ. Pass [Wildcard] as typ to force the
// member on every type, or as member to keep every member of typ.
func (p *Policy) KeepMember(typ, member string) {
	m, ok := p.keepMembers[typ]
	if !ok {
		m = map[string]struct{}{}
		p.keepMembers[typ] = m
	}
	m[member] = struct{}{}
}

// KeepsType reports whether typ must never be rejected wholesale.
func (p *Policy) KeepsType(typ string) bool {
	_, ok := p.keepTypes[typ]
	return ok
}

// KeepsAllMembers reports whether typ carries a wildcard member
// exemption. Such types have their internal representation manipulated
// through unsafe casts; removing any accessor risks corrupting layout.
func (p *Policy) KeepsAllMembers(typ string) bool {
	_, ok := p.keepMembers[typ][Wildcard]
	return ok
}

func (p *Policy) tableKeepsMember(typ, member string) bool {
	if _, ok := p.keepMembers[typ][member]; ok {
		return true
	}
	_, ok := p.keepMembers[Wildcard][member]
	return ok
}

// KeepsMember reports whether member on typ is forced regardless of
// usage evidence. Beyond the static tables, two structural rules apply:
//
//   - a member whose name equals its owning type's name is kept, so
//     constructor-shaped operations survive construction paths that
//     never spell the name out;
//   - a member that overrides a pure-virtual declaration anywhere in
//     the ancestor chain is kept, since the generated concrete type
//     would otherwise fail to fulfill the contract.
func (p *Policy) KeepsMember(cat catalog.Catalog, typ, member string) (bool, error) {
	if p.KeepsAllMembers(typ) || p.tableKeepsMember(typ, member) {
		return true, nil
	}
	if member == typ {
		return true, nil
	}
	ancestors, err := cat.Ancestors(typ)
	if err != nil {
		return false, err
	}
	for _, anc := range ancestors {
		pure, err := cat.IsPureVirtual(anc, member)
		if err != nil {
			return false, err
		}
		if pure {
			return true, nil
		}
	}
	return false, nil
}

// KeptMembers returns the members of typ forced by this policy, in
// catalog order.
func (p *Policy) KeptMembers(cat catalog.Catalog, typ string) ([]string, error) {
	members, err := cat.Members(typ)
	if err != nil {
		return nil, err
	}
	var kept []string
	for _, member := range members {
		keep, err := p.KeepsMember(cat, typ, member)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, member)
		}
	}
	return kept, nil
}

// KeepTypes returns the always-keep type names in ascending order.
func (p *Policy) KeepTypes() []string {
	types := make([]string, 0, len(p.keepTypes))
	for typ := range p.keepTypes {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

type policyFile struct {
	Keep struct {
		Types   []string            `toml:"types"`
		Members map[string][]string `toml:"members"`
	} `toml:"keep"`
}

// Parse reads a policy from its TOML form:
//
//	[keep]
//	types = ["QApplication", "QWidget"]
//
//	[keep.members]
//	"*" = ["metaObject"]
//	QBitArray = ["setBit"]
//	QPixmap = ["*"]
func Parse(data []byte) (*Policy, error) {
	var f policyFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	p := New()
	for _, typ := range f.Keep.Types {
		p.KeepType(typ)
	}
	for typ, members := range f.Keep.Members {
		for _, member := range members {
			p.KeepMember(typ, member)
		}
	}
	return p, nil
}

func LoadFile(filename string) (*Policy, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return p, nil
}

//go:embed default_policy.toml
var defaultPolicyTOML []byte

// Default returns the built-in exception tables for Qt-style binding
// layers.
func Default() *Policy {
	p, err := Parse(defaultPolicyTOML)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded default policy: %v", err))
	}
	return p
}
