package projection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/traits"
	"github.com/funvibe/traitscope/internal/typesystem"
)

// BoundRef is one trait bound as written on a type parameter or inside
// an existential type. AssocValues is empty except for the
// explicit-binding surface form (Trait<Assoc = Concrete>).
type BoundRef struct {
	Trait       traits.TraitId
	Subst       typesystem.Subst
	AssocValues map[string]typesystem.Type
	Site        token.Token
}

// Fingerprint renders the bound in canonical form for memoization keys.
func (b BoundRef) Fingerprint() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d[%s]", b.Trait, b.Subst.Fingerprint())
	if len(b.AssocValues) > 0 {
		names := make([]string, 0, len(b.AssocValues))
		for n := range b.AssocValues {
			names = append(names, n)
		}
		sort.Strings(names)
		sb.WriteByte('{')
		for i, n := range names {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(n)
			sb.WriteByte('=')
			sb.WriteString(b.AssocValues[n].String())
		}
		sb.WriteByte('}')
	}
	return sb.String()
}

// FingerprintBounds renders a whole bound set in canonical form.
// Bound order is significant (it fixes diagnostic order), so the
// fingerprint preserves it.
func FingerprintBounds(bounds []BoundRef) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = b.Fingerprint()
	}
	return strings.Join(parts, "+")
}
