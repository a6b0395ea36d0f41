package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/i18nextract/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Write a starter .i18nextract.yml",
	Long: `Write a starter configuration file into dir (default: the current
directory). An existing file is only replaced with --force.

Examples:
  i18nextract init
  i18nextract init web --locales src/locales --extractor ./bin/keys
  i18nextract init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initForce     bool
	initLocales   string
	initExtractor string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initLocales, "locales-dir", "locales", "Locales directory written to the config")
	initCmd.Flags().StringVar(&initExtractor, "extractor-cmd", "", "Extractor command written to the config")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.DefaultConfigName+".yml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	data, err := starterConfig(initLocales, initExtractor)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", path)
	if _, err := os.Stat(filepath.Join(dir, initLocales)); os.IsNotExist(err) {
		fmt.Fprintf(out, "Note: locales directory %s does not exist yet\n", filepath.Join(dir, initLocales))
	}
	return nil
}

// starterConfig renders the defaults with the given locales directory and
// extractor.
func starterConfig(localesDir, extractor string) ([]byte, error) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("locales.dir", localesDir)
	v.Set("manifest", "dist/manifest.json")
	v.Set("extractor.command", extractor)

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	var b strings.Builder
	b.WriteString("# i18nextract configuration\n")
	b.WriteString("# Every key can be overridden with an I18NEXTRACT_ environment variable,\n")
	b.WriteString("# e.g. I18NEXTRACT_LOCALES_DIR.\n")
	encoder := yaml.NewEncoder(&b)
	encoder.SetIndent(2)
	if err := encoder.Encode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
