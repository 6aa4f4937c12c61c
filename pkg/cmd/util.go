package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/funvibe/traitscope/internal/config"
	"github.com/funvibe/traitscope/internal/diagnostics"
	"github.com/funvibe/traitscope/internal/manifest"
	"github.com/funvibe/traitscope/internal/projection"
)

const (
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiReset = "\033[0m"
)

// useColor decides whether diagnostic output gets ANSI colors.
func useColor(cmd *cobra.Command) bool {
	if GetFlag(cmd, "no-color") {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// manifestPath resolves the -m flag, falling back to the default
// manifest name in the working directory.
func manifestPath(cmd *cobra.Command) string {
	p := GetString(cmd, "manifest")
	if p == "" {
		p = config.DefaultManifestName
	}
	ext := path.Ext(p)
	known := false
	for _, e := range config.ManifestFileExtensions {
		if ext == e {
			known = true
			break
		}
	}
	if !known {
		fmt.Printf("unknown manifest file format: %s\n", ext)
		os.Exit(2)
	}
	return p
}

// loadResolver loads the manifest, builds and seals the trait table,
// and wraps it in a memoizing resolver. Any failure is fatal for the
// command.
func loadResolver(cmd *cobra.Command) (*manifest.Manifest, *projection.Resolver) {
	p := manifestPath(cmd)
	m, err := manifest.LoadFile(p)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	table, diags := m.BuildTable()
	if len(diags) > 0 {
		for _, d := range diags {
			printDiag(cmd, d)
		}
		os.Exit(2)
	}
	log.Debugf("trait table: %d trait(s) from %s", table.Len(), p)
	resolver, err := projection.NewResolver(table)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return m, resolver
}

func printDiag(cmd *cobra.Command, d *diagnostics.DiagnosticError) {
	if useColor(cmd) {
		fmt.Printf("%serror%s %s\n", ansiRed, ansiReset, d.Error())
	} else {
		fmt.Printf("error %s\n", d.Error())
	}
}

func printOK(cmd *cobra.Command, format string, args ...interface{}) {
	if useColor(cmd) {
		fmt.Printf("%sok%s "+format+"\n", append([]interface{}{ansiGreen, ansiReset}, args...)...)
	} else {
		fmt.Printf("ok "+format+"\n", args...)
	}
}
