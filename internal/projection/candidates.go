package projection

import (
	"github.com/funvibe/traitscope/internal/traits"
)

// Candidate is a possible resolution of a named projection: an
// associated-type declaration reached through some closure entry.
type Candidate struct {
	Decl  traits.AssocTypeDecl
	Entry ClosureEntry
}

// CollectCandidates scans the closure for every trait that directly
// declares an associated type of the requested name, preserving closure
// order. No specificity rule applies: any declaring trait anywhere in
// the hierarchy is a candidate, because associated-type declarations of
// unrelated supertraits do not override one another.
func CollectCandidates(table *traits.Table, closure []ClosureEntry, name string) []Candidate {
	var candidates []Candidate
	for _, entry := range closure {
		if decl, ok := table.AssocType(entry.Trait, name); ok {
			candidates = append(candidates, Candidate{
				Decl:  decl,
				Entry: entry,
			})
		}
	}
	return candidates
}

// assocNames lists every associated-type name declared anywhere in the
// closure, first-reachable order, without duplicates.
func assocNames(table *traits.Table, closure []ClosureEntry) []string {
	var names []string
	seen := make(map[string]bool)
	for _, entry := range closure {
		for _, decl := range table.AssocTypes(entry.Trait) {
			if !seen[decl.Name] {
				seen[decl.Name] = true
				names = append(names, decl.Name)
			}
		}
	}
	return names
}
