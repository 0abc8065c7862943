package closure

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/refaktor/bindtrim/catalog"
	"github.com/refaktor/bindtrim/policy"
	"github.com/refaktor/bindtrim/scan"
)

// Kind distinguishes the rejection variants. The catalog cannot tell a
// field from a callable member, so member rejections come in
// function/field pairs; downstream patchers pick whichever descriptor
// syntax applies.
type Kind int

const (
	// KindType rejects the whole type.
	KindType Kind = iota
	// KindFunction rejects one callable member of a kept type.
	KindFunction
	// KindField rejects one field member of a kept type.
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindFunction:
		return "function"
	case KindField:
		return "field"
	default:
		panic(fmt.Sprintf("invalid rejection kind: %d", int(k)))
	}
}

// MarshalText renders the kind as its tag name, so serialized
// rejection streams stay readable for downstream patchers.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindType, KindFunction, KindField:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("invalid rejection kind: %d", int(k))
	}
}

// Rejection is one exclusion decision. Member is empty for KindType.
type Rejection struct {
	Type   string `json:"type"`
	Member string `json:"member,omitempty"`
	Kind   Kind   `json:"kind"`
}

func (r Rejection) String() string {
	if r.Kind == KindType {
		return fmt.Sprintf("reject type %v", r.Type)
	}
	return fmt.Sprintf("reject %v %v.%v", r.Kind, r.Type, r.Member)
}

// Rejections converts the complement of the reachable sets into the
// exclusion stream: a whole-type rejection for every cataloged type
// that is neither useful nor protected by policy, and member rejections
// for the unreachable members of every kept type without a wildcard
// exemption.
//
// The stream is ordered canonically (type name ascending, then member
// name ascending, function before field) so downstream patchers and
// tests are reproducible. No file I/O happens here; the stream is the
// emitter's entire output.
func Rejections(cat catalog.Catalog, pol *policy.Policy, ids scan.IdentifierSet, res *Result) ([]Rejection, error) {
	types, err := cat.AllTypes()
	if err != nil {
		return nil, err
	}

	var rejections []Rejection
	for _, typ := range types {
		if !res.IsUseful(typ) && !pol.KeepsType(typ) {
			rejections = append(rejections, Rejection{Type: typ, Kind: KindType})
			continue
		}
		if pol.KeepsAllMembers(typ) {
			continue
		}
		// Always-keep types never entered the worklist, so their kept
		// sets are computed here, once.
		kept, ok := res.Kept[typ]
		if !ok {
			kept, err = keptMembers(cat, pol, ids, typ)
			if err != nil {
				return nil, err
			}
		}
		members, err := cat.Members(typ)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			if _, ok := kept[member]; ok {
				continue
			}
			rejections = append(rejections,
				Rejection{Type: typ, Member: member, Kind: KindFunction},
				Rejection{Type: typ, Member: member, Kind: KindField},
			)
		}
	}

	slices.SortFunc(rejections, func(a, b Rejection) int {
		return cmp.Or(
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.Member, b.Member),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
	rejections = slices.Compact(rejections)
	return rejections, nil
}
