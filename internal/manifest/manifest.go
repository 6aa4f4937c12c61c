// Package manifest implements the YAML fixture format consumed by the
// traitscope CLI.
//
// A manifest plays the role of the upstream declaration-registration
// phase and parser: it declares a trait table (traits, their associated
// types, their supertrait edges), the bounds of named type parameters,
// and the queries to run against them. The core resolver packages never
// depend on this format.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/traitscope/internal/config"
	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/projection"
	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/traits"
	"github.com/funvibe/traitscope/internal/typesystem"
)

// Manifest is the top-level document.
type Manifest struct {
	Traits  []TraitDecl `yaml:"traits"`
	Params  []ParamDecl `yaml:"params"`
	Queries []Query     `yaml:"queries"`

	// File is the path the manifest was loaded from, attached to every
	// diagnostic produced while building the table.
	File string `yaml:"-"`
}

// TraitDecl declares one trait.
type TraitDecl struct {
	Name    string      `yaml:"name"`
	Params  []string    `yaml:"params"`
	Assoc   []AssocDecl `yaml:"assoc"`
	Extends []ExtendRef `yaml:"extends"`
	Site    token.Token `yaml:"-"`
}

func (d *TraitDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain TraitDecl
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = TraitDecl(p)
	d.Site = token.Token{Line: value.Line, Column: value.Column}
	return nil
}

// AssocDecl is one associated-type name; written as a plain scalar in
// the document, the declaration site is the scalar's position.
type AssocDecl struct {
	Name string
	Site token.Token
}

func (a *AssocDecl) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: associated type must be a scalar name", value.Line)
	}
	a.Name = value.Value
	a.Site = token.Token{Lexeme: value.Value, Line: value.Line, Column: value.Column}
	return nil
}

// ExtendRef is one supertrait edge, with the supertrait's type
// arguments written in the subtrait's parameters.
type ExtendRef struct {
	Trait string      `yaml:"trait"`
	Args  []string    `yaml:"args"`
	Site  token.Token `yaml:"-"`
}

func (e *ExtendRef) UnmarshalYAML(value *yaml.Node) error {
	type plain ExtendRef
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = ExtendRef(p)
	e.Site = token.Token{Line: value.Line, Column: value.Column}
	return nil
}

// ParamDecl declares a type parameter and its bound list.
type ParamDecl struct {
	Name   string      `yaml:"name"`
	Bounds []BoundDecl `yaml:"bounds"`
}

// BoundDecl is one written bound. Values holds explicit associated-type
// bindings (the Trait<Assoc = X> form).
type BoundDecl struct {
	Trait  string            `yaml:"trait"`
	Args   []string          `yaml:"args"`
	Values map[string]string `yaml:"values"`
	Site   token.Token       `yaml:"-"`
}

func (b *BoundDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain BoundDecl
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*b = BoundDecl(p)
	b.Site = token.Token{Line: value.Line, Column: value.Column}
	return nil
}

// Query is one resolution request.
type Query struct {
	Kind   string            `yaml:"kind"`
	Param  string            `yaml:"param"`
	Assoc  string            `yaml:"assoc"`
	Trait  string            `yaml:"trait"`
	Args   []string          `yaml:"args"`
	Values map[string]string `yaml:"values"`
	Site   token.Token       `yaml:"-"`
}

func (q *Query) UnmarshalYAML(value *yaml.Node) error {
	type plain Query
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*q = Query(p)
	q.Site = token.Token{Line: value.Line, Column: value.Column}
	return nil
}

// Load parses a manifest document.
func Load(data []byte, file string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", file, err)
	}
	m.File = file
	for _, q := range m.Queries {
		switch q.Kind {
		case config.QueryKindProjection, config.QueryKindExistential, config.QueryKindClosure:
		default:
			return nil, fmt.Errorf("manifest %s: unknown query kind %q", file, q.Kind)
		}
	}
	return &m, nil
}

// LoadFile reads and parses a manifest from disk.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, path)
}

// BuildTable registers every declared trait, associated type and
// supertrait edge, then seals the table. Reference problems inside the
// manifest (unknown trait names, argument arity) come back as T003
// diagnostics; a non-empty diagnostic slice means the table is unusable.
func (m *Manifest) BuildTable() (*traits.Table, []*diagnostics.DiagnosticError) {
	table := traits.NewTable()
	var diags []*diagnostics.DiagnosticError

	fail := func(site token.Token, format string, args ...interface{}) {
		d := diagnostics.NewError(diagnostics.ErrT003, site, fmt.Sprintf(format, args...))
		d.File = m.File
		diags = append(diags, d)
	}

	// Pass 1: trait identities, so forward references in extends work.
	ids := make(map[string]traits.TraitId, len(m.Traits))
	for _, decl := range m.Traits {
		id, err := table.RegisterTrait(decl.Name, decl.Params, decl.Site)
		if err != nil {
			fail(decl.Site, "%s", err)
			continue
		}
		ids[decl.Name] = id
	}

	// Pass 2: associated types and supertrait edges.
	for _, decl := range m.Traits {
		id, ok := ids[decl.Name]
		if !ok {
			continue
		}
		for _, a := range decl.Assoc {
			if err := table.AddAssocType(id, a.Name, a.Site); err != nil {
				fail(a.Site, "%s", err)
			}
		}
		vars := paramSet(decl.Params)
		for _, ext := range decl.Extends {
			super, ok := ids[ext.Trait]
			if !ok {
				fail(ext.Site, "trait %q extends unknown trait %q", decl.Name, ext.Trait)
				continue
			}
			subst, err := m.argsToSubst(ext.Args, m.traitParams(ext.Trait), vars)
			if err != nil {
				fail(ext.Site, "trait %q extends %q: %s", decl.Name, ext.Trait, err)
				continue
			}
			if err := table.AddSupertrait(id, super, subst, ext.Site); err != nil {
				fail(ext.Site, "%s", err)
			}
		}
	}

	if len(diags) > 0 {
		return nil, diags
	}
	table.Seal()
	return table, nil
}

// BoundsFor resolves the bound list of a declared type parameter
// against a built table.
func (m *Manifest) BoundsFor(table *traits.Table, param string) ([]projection.BoundRef, error) {
	for _, p := range m.Params {
		if p.Name != param {
			continue
		}
		vars := m.paramNames()
		bounds := make([]projection.BoundRef, 0, len(p.Bounds))
		for _, b := range p.Bounds {
			ref, err := m.boundRef(table, b.Trait, b.Args, b.Values, vars, b.Site)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, ref)
		}
		if len(bounds) == 0 {
			return nil, fmt.Errorf("type parameter %q has no bounds", param)
		}
		return bounds, nil
	}
	return nil, fmt.Errorf("unknown type parameter %q", param)
}

// ExistentialBound builds the single bound of an existential query.
func (m *Manifest) ExistentialBound(table *traits.Table, q Query) (projection.BoundRef, error) {
	return m.boundRef(table, q.Trait, q.Args, q.Values, m.paramNames(), q.Site)
}

func (m *Manifest) boundRef(table *traits.Table, trait string, args []string, values map[string]string, vars map[string]bool, site token.Token) (projection.BoundRef, error) {
	id, ok := table.Lookup(trait)
	if !ok {
		return projection.BoundRef{}, fmt.Errorf("bound names unknown trait %q", trait)
	}
	subst, err := m.argsToSubst(args, table.TypeParams(id), vars)
	if err != nil {
		return projection.BoundRef{}, fmt.Errorf("bound on trait %q: %w", trait, err)
	}
	var assocValues map[string]typesystem.Type
	if len(values) > 0 {
		assocValues = make(map[string]typesystem.Type, len(values))
		for name, expr := range values {
			t, err := ParseTypeExpr(expr, vars)
			if err != nil {
				return projection.BoundRef{}, fmt.Errorf("value of %q: %w", name, err)
			}
			assocValues[name] = t
		}
	}
	return projection.BoundRef{
		Trait:       id,
		Subst:       subst,
		AssocValues: assocValues,
		Site:        site,
	}, nil
}

// argsToSubst binds positional type arguments to the target trait's
// declared parameters.
func (m *Manifest) argsToSubst(args []string, params []string, vars map[string]bool) (typesystem.Subst, error) {
	if len(args) != len(params) {
		return nil, fmt.Errorf("expected %d type argument(s), got %d", len(params), len(args))
	}
	subst := make(typesystem.Subst, len(args))
	for i, arg := range args {
		t, err := ParseTypeExpr(arg, vars)
		if err != nil {
			return nil, err
		}
		subst[params[i]] = t
	}
	return subst, nil
}

func (m *Manifest) traitParams(name string) []string {
	for _, decl := range m.Traits {
		if decl.Name == name {
			return decl.Params
		}
	}
	return nil
}

func (m *Manifest) paramNames() map[string]bool {
	names := make(map[string]bool, len(m.Params))
	for _, p := range m.Params {
		names[p.Name] = true
	}
	return names
}

func paramSet(params []string) map[string]bool {
	set := make(map[string]bool, len(params))
	for _, p := range params {
		set[p] = true
	}
	return set
}
