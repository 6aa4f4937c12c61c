package projection

import (
	"fmt"
	"strings"

	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/traits"
)

// OutcomeKind tags a ResolutionOutcome.
type OutcomeKind int

const (
	// OutcomeNotFound — no trait in the closure declares the name. The
	// simpler "no such associated type" pre-check upstream owns the user
	// diagnostic for this; the outcome just carries the fact.
	OutcomeNotFound OutcomeKind = iota

	// OutcomeResolved — exactly one declaring trait; the projected type
	// is the declaration under Candidate.Entry.Subst, left for the
	// substitution engine to apply.
	OutcomeResolved

	// OutcomeAmbiguous — two or more distinct declaring traits.
	OutcomeAmbiguous
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "Resolved"
	case OutcomeAmbiguous:
		return "Ambiguous"
	default:
		return "NotFound"
	}
}

// Outcome is the result of resolving one projection. It is a plain
// value: ambiguity is a diagnostic outcome, not an error, and never
// halts sibling resolutions.
type Outcome struct {
	Kind        OutcomeKind
	Candidate   Candidate   // set when Kind == OutcomeResolved
	Candidates  []Candidate // set when Kind == OutcomeAmbiguous, closure order
	Diagnostics []*diagnostics.DiagnosticError
}

// ResolveProjection resolves the projection-access surface form
// (Param::Name) against the bounds of one type parameter. The site
// token is the projection's use site; each use site gets its own
// diagnostic.
func ResolveProjection(table *traits.Table, param string, site token.Token, bounds []BoundRef, name string) (Outcome, error) {
	closure, err := BuildClosure(table, bounds)
	if err != nil {
		return Outcome{}, err
	}
	candidates := CollectCandidates(table, closure, name)

	switch len(candidates) {
	case 0:
		return Outcome{Kind: OutcomeNotFound}, nil
	case 1:
		return Outcome{
			Kind:      OutcomeResolved,
			Candidate: candidates[0],
		}, nil
	default:
		return Outcome{
			Kind:       OutcomeAmbiguous,
			Candidates: candidates,
			Diagnostics: []*diagnostics.DiagnosticError{
				ambiguityDiag(table, param, site, name, candidates),
			},
		}, nil
	}
}

// ambiguityDiag builds the single per-use-site diagnostic listing every
// candidate's declaring trait and declaration site.
func ambiguityDiag(table *traits.Table, owner string, site token.Token, name string, candidates []Candidate) *diagnostics.DiagnosticError {
	sources := make([]string, len(candidates))
	for i, c := range candidates {
		sources[i] = fmt.Sprintf("trait %q at %s", table.Name(c.Decl.Owner), c.Decl.Site.Pos())
	}
	return diagnostics.NewError(
		diagnostics.ErrT001,
		site,
		fmt.Sprintf("ambiguous associated type %q in bounds of %q: declared in %s",
			name, owner, strings.Join(sources, ", ")),
	)
}
