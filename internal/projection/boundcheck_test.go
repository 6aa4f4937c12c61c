package projection

import (
	"strings"
	"testing"

	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/traits"
	"github.com/funvibe/traitscope/internal/typesystem"
)

func countCodes(diags []*diagnostics.DiagnosticError) (ambiguous, unset int) {
	for _, d := range diags {
		switch d.Code {
		case diagnostics.ErrT001:
			ambiguous++
		case diagnostics.ErrT002:
			unset++
		}
	}
	return
}

func TestCheckBoundAllValuesSupplied(t *testing.T) {
	f := newFixture(t)

	bound := BoundRef{
		Trait: f.vehicle,
		Subst: typesystem.Subst{"T": typesystem.TCon{Name: "Int"}},
		AssocValues: map[string]typesystem.Type{
			"Color":  typesystem.TCon{Name: "Red"},
			"Wheels": typesystem.TCon{Name: "Four"},
			"Energy": typesystem.TCon{Name: "Petrol"},
		},
	}
	diags, err := CheckBound(f.table, bound)
	if err != nil {
		t.Fatalf("CheckBound: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), diags)
	}
}

func TestCheckBoundMissingValues(t *testing.T) {
	f := newFixture(t)

	// Vehicle's closure reaches Color, Wheels and Machine's Energy;
	// only Color is pinned. Every unpinned declaration gets its own
	// Unset naming the declaring trait, not the written trait.
	bound := BoundRef{
		Trait: f.vehicle,
		Subst: typesystem.Subst{"T": typesystem.TCon{Name: "Int"}},
		AssocValues: map[string]typesystem.Type{
			"Color": typesystem.TCon{Name: "Red"},
		},
		Site: token.Token{Line: 50, Column: 2},
	}
	diags, err := CheckBound(f.table, bound)
	if err != nil {
		t.Fatalf("CheckBound: %v", err)
	}
	ambiguous, unset := countCodes(diags)
	if ambiguous != 0 || unset != 2 {
		t.Fatalf("expected 0 ambiguous / 2 unset, got %d / %d: %v", ambiguous, unset, diags)
	}
	// Deterministic order: first-reachable name first (Wheels before Energy).
	if !strings.Contains(diags[0].Message, `"Wheels"`) || !strings.Contains(diags[0].Message, `"Vehicle"`) {
		t.Errorf("first diagnostic should name Wheels from Vehicle: %s", diags[0].Message)
	}
	if !strings.Contains(diags[1].Message, `"Energy"`) || !strings.Contains(diags[1].Message, `"Machine"`) {
		t.Errorf("second diagnostic should name Energy from the trait Machine: %s", diags[1].Message)
	}
	for _, d := range diags {
		if d.Token.Line != 50 {
			t.Errorf("diagnostic should be attributed to the bound site, got %s", d.Token.Pos())
		}
	}
}

func TestCheckBoundAmbiguousAndUnsetTogether(t *testing.T) {
	f := newFixture(t)

	// Binding Color on a BoxCar existential: the name is declared by
	// both Vehicle and Box, so the single value cannot satisfy either
	// declaration unambiguously. Ambiguous and Unset are reported
	// together, alongside the other missing values.
	bound := BoundRef{
		Trait: f.boxcar,
		Subst: typesystem.Subst{"T": typesystem.TCon{Name: "Int"}},
		AssocValues: map[string]typesystem.Type{
			"Color": typesystem.TCon{Name: "Red"},
		},
	}
	diags, err := CheckBound(f.table, bound)
	if err != nil {
		t.Fatalf("CheckBound: %v", err)
	}

	ambiguous, unset := countCodes(diags)
	if ambiguous != 1 {
		t.Errorf("expected 1 ambiguous diagnostic, got %d", ambiguous)
	}
	// Color unset for both declaring traits, plus Wheels and Energy.
	if unset != 4 {
		t.Errorf("expected 4 unset diagnostics, got %d: %v", unset, diags)
	}

	var unsetTraits []string
	for _, d := range diags {
		if d.Code == diagnostics.ErrT002 && strings.Contains(d.Message, `"Color"`) {
			unsetTraits = append(unsetTraits, d.Message)
		}
	}
	if len(unsetTraits) != 2 {
		t.Fatalf("expected Color unset for both declaring traits, got %d", len(unsetTraits))
	}
	if !strings.Contains(unsetTraits[0], `"Vehicle"`) || !strings.Contains(unsetTraits[1], `"Box"`) {
		t.Errorf("unset diagnostics should name Vehicle and Box: %v", unsetTraits)
	}
}

func TestCheckBoundValueOwnDeclarationBinds(t *testing.T) {
	// When the written trait itself declares the ambiguous name, the
	// supplied value binds that declaration; only the supertrait's
	// stays unset.
	table := traitsTableWithShadowedColor(t)
	crate, _ := table.Lookup("Crate")

	bound := BoundRef{
		Trait: crate,
		AssocValues: map[string]typesystem.Type{
			"Color": typesystem.TCon{Name: "Red"},
		},
	}
	diags, err := CheckBound(table, bound)
	if err != nil {
		t.Fatalf("CheckBound: %v", err)
	}
	ambiguous, unset := countCodes(diags)
	if ambiguous != 1 || unset != 1 {
		t.Fatalf("expected 1 ambiguous / 1 unset, got %d / %d: %v", ambiguous, unset, diags)
	}
	for _, d := range diags {
		if d.Code == diagnostics.ErrT002 && !strings.Contains(d.Message, `"Box"`) {
			t.Errorf("unset should name the supertrait declaration: %s", d.Message)
		}
	}
}

// traitsTableWithShadowedColor builds: Box { Color }, Crate: Box { Color }.
func traitsTableWithShadowedColor(t *testing.T) *traits.Table {
	t.Helper()
	table := traits.NewTable()
	box, err := table.RegisterTrait("Box", nil, token.Token{Line: 1, Column: 1})
	if err != nil {
		t.Fatalf("RegisterTrait: %v", err)
	}
	if err := table.AddAssocType(box, "Color", token.Token{Line: 2, Column: 3}); err != nil {
		t.Fatalf("AddAssocType: %v", err)
	}
	crate, err := table.RegisterTrait("Crate", nil, token.Token{Line: 4, Column: 1})
	if err != nil {
		t.Fatalf("RegisterTrait: %v", err)
	}
	if err := table.AddAssocType(crate, "Color", token.Token{Line: 5, Column: 3}); err != nil {
		t.Fatalf("AddAssocType: %v", err)
	}
	if err := table.AddSupertrait(crate, box, nil, token.Token{Line: 4, Column: 10}); err != nil {
		t.Fatalf("AddSupertrait: %v", err)
	}
	table.Seal()
	return table
}

func TestCheckBoundValueNoCandidates(t *testing.T) {
	f := newFixture(t)
	bound := BoundRef{Trait: f.vehicle}
	if diags := CheckBoundValue(f.table, bound, "Cargo", nil); len(diags) != 0 {
		t.Errorf("no candidates should yield no diagnostics, got %v", diags)
	}
}
