package projection

import (
	"fmt"
	"sync"

	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/traits"
)

// Resolver is the memoizing front-end over a sealed trait table.
// Independent resolutions may run fully in parallel: the table is
// immutable and the caches are never invalidated, so entries computed
// once stay valid for the lifetime of the process.
type Resolver struct {
	table    *traits.Table
	closures sync.Map // bound-set fingerprint -> []ClosureEntry
	outcomes sync.Map // param/bounds/name key  -> Outcome
}

// NewResolver wraps a sealed table. An unsealed table is an upstream
// invariant breach.
func NewResolver(table *traits.Table) (*Resolver, error) {
	if table == nil {
		return nil, fmt.Errorf("internal: nil trait table")
	}
	if !table.Sealed() {
		return nil, fmt.Errorf("internal: trait table must be sealed before building a resolver")
	}
	return &Resolver{table: table}, nil
}

// Table returns the underlying sealed table.
func (r *Resolver) Table() *traits.Table {
	return r.table
}

// Closure returns the memoized supertrait closure of a bound set.
func (r *Resolver) Closure(bounds []BoundRef) ([]ClosureEntry, error) {
	key := FingerprintBounds(bounds)
	if cached, ok := r.closures.Load(key); ok {
		return cached.([]ClosureEntry), nil
	}
	closure, err := BuildClosure(r.table, bounds)
	if err != nil {
		return nil, err
	}
	r.closures.Store(key, closure)
	return closure, nil
}

// ResolveProjection resolves Param::Name against the parameter's
// bounds, memoized by (parameter identity, bound set, name). Repeated
// calls yield identical outcomes.
func (r *Resolver) ResolveProjection(param string, site token.Token, bounds []BoundRef, name string) (Outcome, error) {
	// The use site participates in the key so that each use site keeps
	// its own diagnostic attribution.
	key := param + "\x00" + FingerprintBounds(bounds) + "\x00" + name + "\x00" + site.Pos()
	if cached, ok := r.outcomes.Load(key); ok {
		return cached.(Outcome), nil
	}

	closure, err := r.Closure(bounds)
	if err != nil {
		return Outcome{}, err
	}
	candidates := CollectCandidates(r.table, closure, name)

	var outcome Outcome
	switch len(candidates) {
	case 0:
		outcome = Outcome{Kind: OutcomeNotFound}
	case 1:
		outcome = Outcome{Kind: OutcomeResolved, Candidate: candidates[0]}
	default:
		outcome = Outcome{
			Kind:       OutcomeAmbiguous,
			Candidates: candidates,
			Diagnostics: []*diagnostics.DiagnosticError{
				ambiguityDiag(r.table, param, site, name, candidates),
			},
		}
	}
	r.outcomes.Store(key, outcome)
	return outcome, nil
}

// CheckBound runs the explicit-binding value check through the closure
// cache.
func (r *Resolver) CheckBound(bound BoundRef) ([]*diagnostics.DiagnosticError, error) {
	closure, err := r.Closure([]BoundRef{bound})
	if err != nil {
		return nil, err
	}
	var diags []*diagnostics.DiagnosticError
	for _, name := range assocNames(r.table, closure) {
		candidates := CollectCandidates(r.table, closure, name)
		diags = append(diags, CheckBoundValue(r.table, bound, name, candidates)...)
	}
	return diags, nil
}
