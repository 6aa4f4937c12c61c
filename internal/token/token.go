package token

import "fmt"

// Token marks a position in a source document. The resolver never lexes;
// tokens are attached to declarations and bounds by whoever built them
// (the manifest loader, or an upstream parser) and carried through for
// diagnostic provenance.
type Token struct {
	Lexeme string
	Line   int
	Column int
}

// Pos renders the position as "line:column".
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
