package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ajturnerora/rewrite/application"
	"github.com/ajturnerora/rewrite/config"
	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/rules"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run <file>...",
	Short: "Apply the configured rules to Gradle scripts",
	Long: `Parse each given Gradle script, run the configured rules over it until
they reach a fixed point, print the resulting diff, and write the file back.

With --dry-run the diff is printed but nothing is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRewrite,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(runCmd)
}

func runRewrite(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create rewrite.yaml",
				err,
			)
		}
	}
	logger.Infof("Using config file: %s", cfgPath)

	container, err := buildContainer(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to assemble dependencies: %w", err)
	}

	return container.Invoke(func(eng engine) error {
		for _, path := range args {
			if rewriteErr := rewriteFile(ctx, eng, path); rewriteErr != nil {
				return rewriteErr
			}
		}
		return nil
	})
}

// rewriteFile runs the full per-file flow: parse, discover, run, report,
// write back.
func rewriteFile(ctx context.Context, eng engine, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	file, err := eng.Parser.ParseFile(path, string(source))
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", path, err)
	}

	ruleSet := application.Discover(eng.Registry, eng.Config, rules.ScopeProject, file)
	if len(ruleSet) == 0 {
		logger.Debugf("No rules apply to %s", path)
		return nil
	}

	change, err := eng.Pipeline.Run(ctx, file, ruleSet)
	if err != nil {
		return err
	}

	for _, marker := range change.Modified.Markers() {
		logger.Warnf("%s: %s", path, marker.Message())
	}

	if !change.Changed() {
		logger.Infof("%s: no changes", path)
		return nil
	}

	rewritten := change.Modified.Print()
	printDiff(path, string(source), rewritten)

	if dryRun {
		logger.Infof("%s: changed by %s (dry run, not written)", path, ruleNames(change))
		return nil
	}

	if writeErr := os.WriteFile(path, []byte(rewritten), info.Mode()); writeErr != nil {
		return fmt.Errorf("failed to write %q: %w", path, writeErr)
	}
	logger.Infof("%s: changed by %s", path, ruleNames(change))
	return nil
}

// printDiff prints a colored line diff between the original and rewritten
// source.
func printDiff(path, before, after string) {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	fmt.Printf("--- a/%s\n+++ b/%s\n", path, path)
	for _, diff := range diffs {
		for _, line := range diffLines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				color.Green("+%s", line)
			case diffmatchpatch.DiffDelete:
				color.Red("-%s", line)
			case diffmatchpatch.DiffEqual:
				fmt.Printf(" %s\n", line)
			}
		}
	}
}

func diffLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// ruleNames renders the changed rule set for log output, sorted for stable
// messages.
func ruleNames(change domain.Change) string {
	names := make([]string, 0, len(change.ChangedRuleNames))
	for name := range change.ChangedRuleNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
