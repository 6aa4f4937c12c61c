package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/funvibe/traitscope/internal/config"
	"github.com/funvibe/traitscope/internal/manifest"
	"github.com/funvibe/traitscope/internal/projection"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags]",
	Short: "run every query declared in the manifest.",
	Long: `Run each query from the manifest's queries section: projection
queries resolve Param::Assoc, existential queries verify that every
reachable associated type of a bound has a value. All diagnostics are
reported; the exit code is non-zero if any query failed.`,
	Run: func(cmd *cobra.Command, args []string) {
		m, resolver := loadResolver(cmd)
		if len(m.Queries) == 0 {
			fmt.Println("manifest declares no queries")
			return
		}

		failed := 0
		for _, q := range m.Queries {
			if !runQuery(cmd, m, resolver, q) {
				failed++
			}
		}
		if failed > 0 {
			fmt.Printf("%d of %d quer%s failed\n", failed, len(m.Queries), plural(len(m.Queries), "y", "ies"))
			os.Exit(1)
		}
	},
}

func runQuery(cmd *cobra.Command, m *manifest.Manifest, resolver *projection.Resolver, q manifest.Query) bool {
	table := resolver.Table()
	switch q.Kind {
	case config.QueryKindProjection:
		bounds, err := m.BoundsFor(table, q.Param)
		if err != nil {
			fmt.Println(err)
			return false
		}
		outcome, err := resolver.ResolveProjection(q.Param, q.Site, bounds, q.Assoc)
		if err != nil {
			fmt.Println(err)
			return false
		}
		switch outcome.Kind {
		case projection.OutcomeResolved:
			c := outcome.Candidate
			printOK(cmd, "%s::%s -> trait %q at %s", q.Param, q.Assoc, table.Name(c.Decl.Owner), c.Decl.Site.Pos())
			return true
		case projection.OutcomeNotFound:
			fmt.Printf("no trait in the bounds of %q declares associated type %q\n", q.Param, q.Assoc)
			return false
		default:
			for _, d := range outcome.Diagnostics {
				printDiag(cmd, d)
			}
			return false
		}

	case config.QueryKindExistential:
		bound, err := m.ExistentialBound(table, q)
		if err != nil {
			fmt.Println(err)
			return false
		}
		diags, err := resolver.CheckBound(bound)
		if err != nil {
			fmt.Println(err)
			return false
		}
		if len(diags) == 0 {
			printOK(cmd, "existential %q: all associated types bound", q.Trait)
			return true
		}
		for _, d := range diags {
			printDiag(cmd, d)
		}
		return false

	case config.QueryKindClosure:
		bounds, err := m.BoundsFor(table, q.Param)
		if err != nil {
			fmt.Println(err)
			return false
		}
		closure, err := resolver.Closure(bounds)
		if err != nil {
			fmt.Println(err)
			return false
		}
		log.Debugf("closure of %q has %d entr%s", q.Param, len(closure), plural(len(closure), "y", "ies"))
		printClosure(table, q.Param, closure)
		return true

	default:
		fmt.Printf("unknown query kind %q\n", q.Kind)
		return false
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
