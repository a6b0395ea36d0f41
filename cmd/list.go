package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/placeholder"
	"github.com/conneroisu/i18nextract/internal/resource"
)

var localesCmd = &cobra.Command{
	Use:     "locales",
	Aliases: []string{"list", "l"},
	Short:   "List locales in the catalog",
	Long: `List every locale in the locales directory with its file, key count and
placeholder symbol. Loading fails the same way a pass would: an empty
locales directory or an unreadable locale file is an error.

Examples:
  i18nextract locales                # Table output
  i18nextract locales -f json        # Output as JSON (short flag)
  i18nextract locales --format yaml  # Output as YAML`,
	RunE: runLocales,
}

var localesFlags *StandardFlags

func init() {
	rootCmd.AddCommand(localesCmd)

	localesFlags = AddStandardFlags(localesCmd, "output")
	localesCmd.Flags().String("ext", "", "locale file extension (.json, .yaml, .yml)")
}

// localeRow is one listed locale.
type localeRow struct {
	ID          string `json:"id" yaml:"id"`
	Tag         string `json:"tag" yaml:"tag"`
	Path        string `json:"path" yaml:"path"`
	Keys        int    `json:"keys" yaml:"keys"`
	Leaves      int    `json:"leaves" yaml:"leaves"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`
}

func runLocales(cmd *cobra.Command, args []string) error {
	if err := localesFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cat, err := locale.Load(locale.ResolveDir(cfg.Root, cfg.Locales.Dir), cfg.Locales.Ext)
	if err != nil {
		return err
	}

	rows := make([]localeRow, 0, len(cat.Locales()))
	for _, l := range cat.Locales() {
		tree, _ := cat.Tree(l.ID)
		rows = append(rows, localeRow{
			ID:          l.ID,
			Tag:         l.Tag.String(),
			Path:        l.Path,
			Keys:        tree.Len(),
			Leaves:      countLeaves(tree),
			Placeholder: placeholder.Symbol(l.ID),
		})
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(localesFlags.Format) {
	case "json":
		return outputLocalesJSON(out, rows)
	case "yaml":
		return outputLocalesYAML(out, rows)
	default:
		return outputLocalesTable(out, rows, localesFlags.Verbose)
	}
}

// countLeaves counts non-object values reachable from t.
func countLeaves(t *resource.Tree) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, k := range t.Keys() {
		v, _ := t.Get(k)
		if sub, ok := v.(*resource.Tree); ok {
			n += countLeaves(sub)
			continue
		}
		n++
	}
	return n
}

func outputLocalesJSON(w io.Writer, rows []localeRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func outputLocalesYAML(w io.Writer, rows []localeRow) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(rows)
}

func outputLocalesTable(w io.Writer, rows []localeRow, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "LOCALE\tTAG\tKEYS\tLEAVES"
	separator := "------\t---\t----\t------"
	if verbose {
		header += "\tPLACEHOLDER\tFILE"
		separator += "\t-----------\t----"
	}
	fmt.Fprintln(tw, header)
	fmt.Fprintln(tw, separator)

	for _, r := range rows {
		row := fmt.Sprintf("%s\t%s\t%d\t%d", r.ID, r.Tag, r.Keys, r.Leaves)
		if verbose {
			row += fmt.Sprintf("\t%s\t%s", r.Placeholder, r.Path)
		}
		fmt.Fprintln(tw, row)
	}

	fmt.Fprintf(tw, "\nTotal: %d locales\n", len(rows))
	return tw.Flush()
}
