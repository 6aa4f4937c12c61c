package projection

import (
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/typesystem"
)

func TestResolveUnique(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		assoc     string
		wantOwner string
	}{
		{"declared on the bound itself", "Wheels", "Vehicle"},
		{"declared on a supertrait", "Energy", "Machine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ResolveProjection(f.table, "P", token.Token{Line: 30}, []BoundRef{intBound(f.vehicle, "T")}, tt.assoc)
			if err != nil {
				t.Fatalf("ResolveProjection: %v", err)
			}
			if outcome.Kind != OutcomeResolved {
				t.Fatalf("Kind = %s, want Resolved", outcome.Kind)
			}
			if got := f.table.Name(outcome.Candidate.Decl.Owner); got != tt.wantOwner {
				t.Errorf("owner = %q, want %q", got, tt.wantOwner)
			}
			if len(outcome.Diagnostics) != 0 {
				t.Errorf("resolved outcome should carry no diagnostics, got %v", outcome.Diagnostics)
			}
		})
	}
}

func TestResolveProjectedSubstitution(t *testing.T) {
	f := newFixture(t)

	outcome, err := ResolveProjection(f.table, "P", token.Token{}, []BoundRef{intBound(f.vehicle, "T")}, "Energy")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	// The projected type is left to the substitution engine; the
	// candidate must carry the fully composed substitution for it.
	e := outcome.Candidate.Entry.Subst["E"]
	if e == nil || e.String() != "Int" {
		t.Errorf("candidate substitution E = %v, want Int", e)
	}
}

func TestResolveNotFound(t *testing.T) {
	f := newFixture(t)

	outcome, err := ResolveProjection(f.table, "P", token.Token{}, []BoundRef{intBound(f.vehicle, "T")}, "Cargo")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	if outcome.Kind != OutcomeNotFound {
		t.Fatalf("Kind = %s, want NotFound", outcome.Kind)
	}
}

func TestResolveAmbiguousBoxCar(t *testing.T) {
	f := newFixture(t)

	// BoxCar: Vehicle + Box, both declaring Color.
	outcome, err := ResolveProjection(f.table, "P", token.Token{Line: 42, Column: 7}, []BoundRef{intBound(f.boxcar, "T")}, "Color")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	if outcome.Kind != OutcomeAmbiguous {
		t.Fatalf("Kind = %s, want Ambiguous", outcome.Kind)
	}
	if len(outcome.Candidates) != 2 {
		t.Fatalf("expected exactly 2 candidates, got %d", len(outcome.Candidates))
	}
	// No duplicate declarations, and closure order: Vehicle before Box.
	if outcome.Candidates[0].Decl.Owner != f.vehicle || outcome.Candidates[1].Decl.Owner != f.box {
		t.Errorf("candidate owners = %q, %q, want Vehicle, Box",
			f.table.Name(outcome.Candidates[0].Decl.Owner),
			f.table.Name(outcome.Candidates[1].Decl.Owner))
	}

	if len(outcome.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic per use site, got %d", len(outcome.Diagnostics))
	}
	d := outcome.Diagnostics[0]
	if d.Code != diagnostics.ErrT001 {
		t.Errorf("code = %s, want %s", d.Code, diagnostics.ErrT001)
	}
	if d.Token.Line != 42 || d.Token.Column != 7 {
		t.Errorf("diagnostic attributed to %s, want use site 42:7", d.Token.Pos())
	}
	for _, part := range []string{`"Color"`, `"P"`, `"Vehicle"`, `"Box"`, "5:3", "9:3"} {
		if !strings.Contains(d.Message, part) {
			t.Errorf("diagnostic message missing %s: %s", part, d.Message)
		}
	}
}

func TestResolveDiamondNotAmbiguous(t *testing.T) {
	f := newFixture(t)

	// A and B both reach Z's declaration of N through the diamond with
	// the same substitution: one candidate, not two.
	outcome, err := ResolveProjection(f.table, "P", token.Token{}, []BoundRef{
		intBound(f.a, "T"),
		intBound(f.b, "T"),
	}, "N")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	if outcome.Kind != OutcomeResolved {
		t.Fatalf("Kind = %s, want Resolved", outcome.Kind)
	}
	if outcome.Candidate.Decl.Owner != f.z {
		t.Errorf("owner = %q, want Z", f.table.Name(outcome.Candidate.Decl.Owner))
	}
}

func TestResolveSameTraitDifferentSubstitutions(t *testing.T) {
	f := newFixture(t)

	// Differing-substitution reaches of the same trait count as
	// distinct ambiguity sources.
	outcome, err := ResolveProjection(f.table, "P", token.Token{}, []BoundRef{
		{Trait: f.z, Subst: typesystem.Subst{"U": typesystem.TCon{Name: "Int"}}},
		{Trait: f.z, Subst: typesystem.Subst{"U": typesystem.TCon{Name: "Bool"}}},
	}, "N")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	if outcome.Kind != OutcomeAmbiguous {
		t.Fatalf("Kind = %s, want Ambiguous", outcome.Kind)
	}
	if len(outcome.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(outcome.Candidates))
	}
	if outcome.Candidates[0].Entry.Subst.Fingerprint() == outcome.Candidates[1].Entry.Subst.Fingerprint() {
		t.Error("candidates should carry distinct substitutions")
	}
}

func TestResolveCandidateOrderFollowsBoundOrder(t *testing.T) {
	f := newFixture(t)

	first, err := ResolveProjection(f.table, "P", token.Token{}, []BoundRef{
		intBound(f.box, "T"),
		intBound(f.vehicle, "T"),
	}, "Color")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	if first.Kind != OutcomeAmbiguous {
		t.Fatalf("Kind = %s, want Ambiguous", first.Kind)
	}
	if first.Candidates[0].Decl.Owner != f.box || first.Candidates[1].Decl.Owner != f.vehicle {
		t.Errorf("candidate order should follow bound declaration order (Box first)")
	}
}

func TestResolveIdempotent(t *testing.T) {
	f := newFixture(t)
	bounds := []BoundRef{intBound(f.boxcar, "T")}
	site := token.Token{Line: 3, Column: 1}

	first, err := ResolveProjection(f.table, "P", site, bounds, "Color")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	second, err := ResolveProjection(f.table, "P", site, bounds, "Color")
	if err != nil {
		t.Fatalf("ResolveProjection: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("outcomes differ between identical resolutions:\n%+v\n%+v", first, second)
	}
}
