package manifest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/funvibe/traitscope/internal/typesystem"
)

// ParseTypeExpr reads a type expression of the form
//
//	Ident
//	Ident<Expr, ...>
//	(Expr, ...)
//
// Identifiers listed in vars become type variables; everything else is
// a type constant. Manifests are fixtures, not source programs, so the
// grammar is deliberately tiny.
func ParseTypeExpr(src string, vars map[string]bool) (typesystem.Type, error) {
	p := &exprReader{src: src, vars: vars}
	t, err := p.readExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in type expression %q", p.src[p.pos:], p.pos, src)
	}
	return t, nil
}

type exprReader struct {
	src  string
	pos  int
	vars map[string]bool
}

func (p *exprReader) readExpr() (typesystem.Type, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of type expression %q", p.src)
	}

	if p.src[p.pos] == '(' {
		return p.readTuple()
	}

	name := p.readIdent()
	if name == "" {
		return nil, fmt.Errorf("expected identifier at offset %d in type expression %q", p.pos, p.src)
	}

	var base typesystem.Type
	if p.vars[name] {
		base = typesystem.TVar{Name: name}
	} else {
		base = typesystem.TCon{Name: name}
	}

	p.skipSpaces()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		args, err := p.readArgs('<', '>')
		if err != nil {
			return nil, err
		}
		return typesystem.TApp{Constructor: base, Args: args}, nil
	}
	return base, nil
}

func (p *exprReader) readTuple() (typesystem.Type, error) {
	elems, err := p.readArgs('(', ')')
	if err != nil {
		return nil, err
	}
	return typesystem.TTuple{Elements: elems}, nil
}

func (p *exprReader) readArgs(open, close byte) ([]typesystem.Type, error) {
	if p.src[p.pos] != open {
		return nil, fmt.Errorf("expected %q at offset %d in type expression %q", string(open), p.pos, p.src)
	}
	p.pos++ // consume open

	var args []typesystem.Type
	for {
		arg, err := p.readExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpaces()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated %q in type expression %q", string(open), p.src)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case close:
			p.pos++
			return args, nil
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d in type expression %q", string(p.src[p.pos]), p.pos, p.src)
		}
	}
}

func (p *exprReader) readIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			p.pos++
			continue
		}
		break
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func (p *exprReader) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}
