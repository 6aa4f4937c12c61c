package traits

import (
	"fmt"

	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/typesystem"
)

// TraitId is the opaque identity of a trait declaration inside one Table.
// Ids are dense indexes handed out by RegisterTrait and are never reused.
type TraitId int

// NoTrait is the invalid trait id.
const NoTrait TraitId = -1

// AssocTypeDecl records one associated-type declaration: the trait that
// owns it, the declared name, and where it was declared.
type AssocTypeDecl struct {
	Owner TraitId
	Name  string
	Site  token.Token
}

// SupertraitEdge records "From extends To". The substitution expresses
// To's type parameters in terms of From's, and is owned by the edge.
type SupertraitEdge struct {
	From  TraitId
	To    TraitId
	Subst typesystem.Subst
	Site  token.Token
}

type traitDecl struct {
	name       string
	typeParams []string
	site       token.Token
	assocTypes []AssocTypeDecl  // declaration order
	supers     []SupertraitEdge // declaration order
}

// Table is the trait declaration registry. It is populated during the
// declaration-registration phase and then sealed; after Seal it is
// read-only and safe for concurrent resolution.
type Table struct {
	decls  []traitDecl
	byName map[string]TraitId
	sealed bool
}

func NewTable() *Table {
	return &Table{
		byName: make(map[string]TraitId),
	}
}

// RegisterTrait adds a trait declaration and returns its id.
func (t *Table) RegisterTrait(name string, typeParams []string, site token.Token) (TraitId, error) {
	if t.sealed {
		return NoTrait, fmt.Errorf("trait table is sealed, cannot register %q", name)
	}
	if _, exists := t.byName[name]; exists {
		return NoTrait, fmt.Errorf("trait %q is already registered", name)
	}
	id := TraitId(len(t.decls))
	t.decls = append(t.decls, traitDecl{
		name:       name,
		typeParams: typeParams,
		site:       site,
	})
	t.byName[name] = id
	return id, nil
}

// AddAssocType declares an associated type on a registered trait.
// Names are unique per trait but deliberately NOT unique per table:
// unrelated traits declaring the same name is exactly the situation
// the projection resolver exists to arbitrate.
func (t *Table) AddAssocType(owner TraitId, name string, site token.Token) error {
	if t.sealed {
		return fmt.Errorf("trait table is sealed, cannot add associated type %q", name)
	}
	if !t.valid(owner) {
		return fmt.Errorf("dangling trait id %d for associated type %q", owner, name)
	}
	decl := &t.decls[owner]
	for _, a := range decl.assocTypes {
		if a.Name == name {
			return fmt.Errorf("trait %q already declares associated type %q", decl.name, name)
		}
	}
	decl.assocTypes = append(decl.assocTypes, AssocTypeDecl{
		Owner: owner,
		Name:  name,
		Site:  site,
	})
	return nil
}

// AddSupertrait declares "from extends to" with the given substitution
// (to's parameters expressed in from's). Duplicate edges to the same
// supertrait are allowed only with differing substitutions.
func (t *Table) AddSupertrait(from, to TraitId, subst typesystem.Subst, site token.Token) error {
	if t.sealed {
		return fmt.Errorf("trait table is sealed, cannot add supertrait edge")
	}
	if !t.valid(from) {
		return fmt.Errorf("dangling trait id %d in supertrait edge", from)
	}
	if !t.valid(to) {
		return fmt.Errorf("dangling trait id %d in supertrait edge", to)
	}
	decl := &t.decls[from]
	for _, e := range decl.supers {
		if e.To == to && e.Subst.Fingerprint() == subst.Fingerprint() {
			return fmt.Errorf("trait %q already extends %q with the same arguments", decl.name, t.decls[to].name)
		}
	}
	decl.supers = append(decl.supers, SupertraitEdge{
		From:  from,
		To:    to,
		Subst: subst,
		Site:  site,
	})
	return nil
}

// Seal freezes the table. All mutation fails afterwards; resolution must
// not start before.
func (t *Table) Seal() {
	t.sealed = true
}

func (t *Table) Sealed() bool {
	return t.sealed
}

// Lookup finds a trait id by name.
func (t *Table) Lookup(name string) (TraitId, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Len returns the number of registered traits.
func (t *Table) Len() int {
	return len(t.decls)
}

// Name returns the trait's declared name, or "" for an invalid id.
func (t *Table) Name(id TraitId) string {
	if !t.valid(id) {
		return ""
	}
	return t.decls[id].name
}

func (t *Table) TypeParams(id TraitId) []string {
	if !t.valid(id) {
		return nil
	}
	return t.decls[id].typeParams
}

func (t *Table) DeclSite(id TraitId) token.Token {
	if !t.valid(id) {
		return token.Token{}
	}
	return t.decls[id].site
}

// AssocTypes returns the trait's directly-declared associated types in
// declaration order.
func (t *Table) AssocTypes(id TraitId) []AssocTypeDecl {
	if !t.valid(id) {
		return nil
	}
	return t.decls[id].assocTypes
}

// AssocType finds a directly-declared associated type by name.
func (t *Table) AssocType(id TraitId, name string) (AssocTypeDecl, bool) {
	if !t.valid(id) {
		return AssocTypeDecl{}, false
	}
	for _, a := range t.decls[id].assocTypes {
		if a.Name == name {
			return a, true
		}
	}
	return AssocTypeDecl{}, false
}

// Supertraits returns the trait's direct supertrait edges in declaration
// order.
func (t *Table) Supertraits(id TraitId) []SupertraitEdge {
	if !t.valid(id) {
		return nil
	}
	return t.decls[id].supers
}

// Valid reports whether id names a registered trait.
func (t *Table) Valid(id TraitId) bool {
	return t.valid(id)
}

func (t *Table) valid(id TraitId) bool {
	return id >= 0 && int(id) < len(t.decls)
}
