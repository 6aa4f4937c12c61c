package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/funvibe/traitscope/internal/projection"
	"github.com/funvibe/traitscope/internal/token"
	"github.com/funvibe/traitscope/internal/traits"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] Param::Assoc",
	Short: "resolve an associated-type projection against a parameter's bounds.",
	Long: `Resolve a projection of the form Param::Assoc, where Param is a type
parameter declared in the manifest. Prints the unique declaring trait,
or the ambiguity diagnostic listing every candidate.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		param, assoc, ok := strings.Cut(args[0], "::")
		if !ok || param == "" || assoc == "" {
			fmt.Printf("malformed projection %q, expected Param::Assoc\n", args[0])
			os.Exit(1)
		}

		m, resolver := loadResolver(cmd)
		bounds, err := m.BoundsFor(resolver.Table(), param)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		log.Debugf("resolving %s::%s against %d bound(s)", param, assoc, len(bounds))

		outcome, err := resolver.ResolveProjection(param, token.Token{}, bounds, assoc)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		switch outcome.Kind {
		case projection.OutcomeResolved:
			c := outcome.Candidate
			printOK(cmd, "%s::%s resolved: declared in trait %q at %s%s",
				param, assoc,
				resolver.Table().Name(c.Decl.Owner), c.Decl.Site.Pos(),
				substSuffix(c.Entry))
		case projection.OutcomeNotFound:
			fmt.Printf("no trait in the bounds of %q declares associated type %q\n", param, assoc)
			os.Exit(1)
		case projection.OutcomeAmbiguous:
			for _, d := range outcome.Diagnostics {
				printDiag(cmd, d)
			}
			os.Exit(1)
		}
	},
}

func substSuffix(e projection.ClosureEntry) string {
	fp := e.Subst.Fingerprint()
	if fp == "" {
		return ""
	}
	return fmt.Sprintf(" under [%s]", fp)
}

func pathString(table *traits.Table, e projection.ClosureEntry) string {
	if len(e.Path) == 0 {
		return "(direct bound)"
	}
	parts := make([]string, 0, len(e.Path)+1)
	parts = append(parts, table.Name(e.Path[0].From))
	for _, edge := range e.Path {
		parts = append(parts, table.Name(edge.To))
	}
	return strings.Join(parts, " -> ")
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
