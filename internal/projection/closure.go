package projection

import (
	"fmt"

	"github.com/funvibe/traitscope/internal/traits"
	"github.com/funvibe/traitscope/internal/typesystem"
)

// ClosureEntry is one trait reference reachable from a bound set, with
// the substitution composed along the path that discovered it. Path is
// retained only for diagnostic provenance; resolution logic never
// consults it.
type ClosureEntry struct {
	Trait traits.TraitId
	Subst typesystem.Subst
	Path  []traits.SupertraitEdge
}

// BuildClosure computes the transitive supertrait closure of a bound
// set: breadth-first over direct bounds in declaration order, then over
// each trait's supertrait edges in their declaration order. Entries are
// deduplicated by (trait, composed substitution); the first-discovered
// entry wins and its supertraits are not re-traversed.
//
// The trait hierarchy is a DAG by upstream construction. A cycle, a
// dangling trait id, or an unsealed table is an internal consistency
// error, not a user diagnostic.
func BuildClosure(table *traits.Table, bounds []BoundRef) ([]ClosureEntry, error) {
	if table == nil {
		return nil, fmt.Errorf("internal: nil trait table")
	}
	if !table.Sealed() {
		return nil, fmt.Errorf("internal: trait table not sealed before resolution")
	}
	if len(bounds) == 0 {
		return nil, fmt.Errorf("internal: empty bound set")
	}

	var closure []ClosureEntry
	seen := make(map[string]bool)
	var queue []ClosureEntry

	discover := func(e ClosureEntry) {
		key := fmt.Sprintf("%d|%s", e.Trait, e.Subst.Fingerprint())
		if seen[key] {
			return
		}
		seen[key] = true
		closure = append(closure, e)
		queue = append(queue, e)
	}

	for _, b := range bounds {
		if !table.Valid(b.Trait) {
			return nil, fmt.Errorf("internal: dangling trait id %d in bound set", b.Trait)
		}
		discover(ClosureEntry{
			Trait: b.Trait,
			Subst: b.Subst.Clone(),
		})
	}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		for _, edge := range table.Supertraits(entry.Trait) {
			if !table.Valid(edge.To) {
				return nil, fmt.Errorf("internal: dangling trait id %d in supertrait edge of %q", edge.To, table.Name(edge.From))
			}
			if onPath(entry, edge.To) {
				return nil, fmt.Errorf("internal: supertrait cycle through %q", table.Name(edge.To))
			}
			discover(ClosureEntry{
				Trait: edge.To,
				Subst: composeEdge(edge.Subst, entry.Subst),
				Path:  appendPath(entry.Path, edge),
			})
		}
	}

	return closure, nil
}

// composeEdge expresses the supertrait's parameters in the bound set's
// own terms: each edge mapping is rewritten under the substitution
// accumulated so far. Keys of the accumulated substitution are NOT
// carried over — the edge's parameter namespace belongs to the
// supertrait alone.
func composeEdge(edge, acc typesystem.Subst) typesystem.Subst {
	out := make(typesystem.Subst, len(edge))
	for k, v := range edge {
		out[k] = v.Apply(acc)
	}
	return out
}

// onPath reports whether the trait already occurs on the path that led
// to entry (including the entry itself).
func onPath(entry ClosureEntry, id traits.TraitId) bool {
	if entry.Trait == id {
		return true
	}
	for _, e := range entry.Path {
		if e.From == id || e.To == id {
			return true
		}
	}
	return false
}

// appendPath copies the path before extending it, so sibling entries
// never share backing arrays.
func appendPath(path []traits.SupertraitEdge, edge traits.SupertraitEdge) []traits.SupertraitEdge {
	out := make([]traits.SupertraitEdge, len(path)+1)
	copy(out, path)
	out[len(path)] = edge
	return out
}
