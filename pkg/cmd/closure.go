package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/traitscope/internal/projection"
	"github.com/funvibe/traitscope/internal/traits"
)

var closureCmd = &cobra.Command{
	Use:   "closure [flags] Param",
	Short: "print the supertrait closure of a parameter's bounds.",
	Long: `Compute and print the full supertrait closure of the named type
parameter's bounds: every reachable trait, the substitution composed
along its discovery path, and the path itself.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		m, resolver := loadResolver(cmd)
		bounds, err := m.BoundsFor(resolver.Table(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		closure, err := resolver.Closure(bounds)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		printClosure(resolver.Table(), args[0], closure)
	},
}

func printClosure(table *traits.Table, param string, closure []projection.ClosureEntry) {
	fmt.Printf("closure of %q (%d entries):\n", param, len(closure))
	for _, e := range closure {
		fmt.Printf("  %s\n", closureLine(table, e))
	}
}

// closureLine renders one closure entry with its declaration site and
// discovery provenance.
func closureLine(table *traits.Table, e projection.ClosureEntry) string {
	return fmt.Sprintf("%s (declared at %s)%s via %s",
		table.Name(e.Trait), table.DeclSite(e.Trait).Pos(), substSuffix(e), pathString(table, e))
}

func init() {
	rootCmd.AddCommand(closureCmd)
}
