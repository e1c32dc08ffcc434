// Package cmd wires the CLI surface of rewrite.
package cmd

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	configPath string
	dryRun     bool
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Rule-based rewriting of Gradle build scripts",
	Long: `A CLI tool that parses Gradle build and settings scripts, applies the
configured rewriting rules until they reach a fixed point, and writes the
result back, preserving the formatting of everything it does not touch.

Rules are declared in a configuration file. The built-in AddPlugin rule
declares a plugin in the plugins block, resolving the version to insert
against the configured Maven repositories.`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print the diff without writing files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
