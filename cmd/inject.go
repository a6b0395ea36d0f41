package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Run one extraction pass over a finished build",
	Long: `Run one extraction pass: load the locale catalog, read the build manifest,
ask the extractor which keys each entry point references, and prefix the
reduced resources onto the entry's script artifacts.

Artifacts are rewritten in place unless --dest (output.dest) names another
directory. A locale directory with no locale files aborts the pass before
any artifact is touched. Missing keys are reported and never fail the pass.

Examples:
  i18nextract inject --locales locales --manifest dist/manifest.json
  i18nextract inject --extractor ./scripts/extract-keys
  i18nextract inject --keys-file keys.json --dest dist-i18n
  i18nextract inject --dry-run            # print blocks, write nothing`,
	RunE: runInject,
}

var injectFlags *StandardFlags

func init() {
	rootCmd.AddCommand(injectCmd)

	injectFlags = AddStandardFlags(injectCmd, "pass")
	injectCmd.Flags().BoolP("quiet", "q", false, "Suppress the summary")
}

func runInject(cmd *cobra.Command, args []string) error {
	if err := injectFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	runner, err := newPassRunner(cfg, logger)
	if err != nil {
		return err
	}

	outcome, err := runner.run(cmd.Context(), injectFlags.DryRun)
	if err != nil {
		if outcome != nil && outcome.Result != nil {
			_ = printSummary(cmd.ErrOrStderr(), outcome.Result, outcome.MissesByEntry)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if injectFlags.DryRun {
		entries := outcome.Result.Entries
		sort.Slice(entries, func(i, j int) bool { return entries[i].Entry < entries[j].Entry })
		for _, e := range entries {
			fmt.Fprintf(out, "// entry: %s -> %v\n%s\n", e.Entry, e.Artifacts, e.Block)
		}
		return nil
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return nil
	}
	if err := printSummary(out, outcome.Result, outcome.MissesByEntry); err != nil {
		return err
	}
	printMissing(out, outcome.Missing)
	fmt.Fprintf(out, "Wrote %d artifact(s) to %s, %d missing key(s)\n",
		outcome.Written, outcome.Dest, len(outcome.Missing))
	return nil
}
