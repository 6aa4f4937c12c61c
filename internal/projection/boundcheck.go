package projection

import (
	"fmt"

	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/traits"
)

// CheckBound verifies the explicit-binding surface form
// (Trait<Assoc = Concrete> in an existential bound): every associated
// type reachable through the bound's supertrait closure must have a
// value supplied. For each reachable name it runs two independent
// checks against the same candidate set — ambiguity, and per-candidate
// missing values — and accumulates every diagnostic in one ordered
// slice. Ambiguous and Unset are not alternatives: a single supplied
// value cannot satisfy two distinct declarations, so both fire together.
func CheckBound(table *traits.Table, bound BoundRef) ([]*diagnostics.DiagnosticError, error) {
	closure, err := BuildClosure(table, []BoundRef{bound})
	if err != nil {
		return nil, err
	}

	var diags []*diagnostics.DiagnosticError
	for _, name := range assocNames(table, closure) {
		candidates := CollectCandidates(table, closure, name)
		diags = append(diags, CheckBoundValue(table, bound, name, candidates)...)
	}
	return diags, nil
}

// CheckBoundValue runs the value check for one associated-type name
// against its candidate set. Exposed separately so a caller that has
// already collected candidates (e.g. while resolving a projection on
// the same bound) does not rebuild the closure.
func CheckBoundValue(table *traits.Table, bound BoundRef, name string, candidates []Candidate) []*diagnostics.DiagnosticError {
	if len(candidates) == 0 {
		return nil
	}

	var diags []*diagnostics.DiagnosticError

	// Binding syntax binds a name; an ambiguous name cannot be bound
	// unambiguously to one declaration, whether or not a value was
	// supplied.
	if len(candidates) >= 2 {
		diags = append(diags, ambiguityDiag(table, table.Name(bound.Trait), bound.Site, name, candidates))
	}

	_, supplied := bound.AssocValues[name]
	for _, c := range candidates {
		if supplied && len(candidates) == 1 {
			continue
		}
		if supplied && c.Decl.Owner == bound.Trait {
			// The one declaration the written value unambiguously binds.
			continue
		}
		diags = append(diags, unsetDiag(table, bound, name, c))
	}
	return diags
}

// unsetDiag names the specific declaring trait that required the value,
// not just the outer trait the user wrote.
func unsetDiag(table *traits.Table, bound BoundRef, name string, c Candidate) *diagnostics.DiagnosticError {
	return diagnostics.NewError(
		diagnostics.ErrT002,
		bound.Site,
		fmt.Sprintf("the value of the associated type %q (from the trait %q) must be specified",
			name, table.Name(c.Decl.Owner)),
	)
}
