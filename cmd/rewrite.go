package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/placeholder"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Print the placeholder module for a resource file",
	Long: `Print the module a bundler loader should emit for a resource file.

A file directly under the locales directory with the locale extension
becomes a module exporting its placeholder symbol; any other file exports
its parsed literal value (YAML files are converted to JSON).

Examples:
  i18nextract rewrite locales/en.json
  i18nextract rewrite locales/zh-CN.json --module esm`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rewriteCmd.Flags().StringP("module", "m", "", "module format (cjs, esm)")
	AddFlagValidation(rewriteCmd.Flags(), "module", func(v string) error {
		return ValidateFormatWithSuggestion(v, []string{"cjs", "esm"})
	})
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, _ := placeholder.ParseFormat(cfg.Rewrite.Format)
	rw := &placeholder.Rewriter{
		LocalesDir: locale.ResolveDir(cfg.Root, cfg.Locales.Dir),
		Ext:        locale.NormalizeExt(cfg.Locales.Ext),
		Format:     format,
	}

	path := args[0]
	if !filepath.IsAbs(path) {
		if path, err = filepath.Abs(path); err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	out, err := rw.Rewrite(path, source)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout())
	return err
}
