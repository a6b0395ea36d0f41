// Package cmd provides the command-line interface for i18nextract.
//
// Configuration System:
//
//	Settings come from several sources with clear precedence:
//	1. Command-line flags (--locales, --manifest, etc.) - highest priority
//	2. Individual environment variables (I18NEXTRACT_LOCALES_DIR, etc.),
//	   including those set in a .env file in the working directory
//	3. The configuration file (.i18nextract.yml, --config, or
//	   I18NEXTRACT_CONFIG_FILE) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/i18nextract/internal/config"
	"github.com/conneroisu/i18nextract/internal/logging"
)

var (
	cfgFile string
	initErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "i18nextract",
	Short: "Ship only the translations each entry point uses",
	Long: `i18nextract reduces translation catalogs to the keys that application code
actually references, per build entry point, and prefixes the reduced
resources onto the compiled scripts of that entry.

It reads a bundler manifest (modules, chunks, chunk groups, entry points),
asks an extractor which keys each entry's source files reference, and
rewrites the entry's output artifacts.

Quick Start:
  i18nextract init                   Write a starter .i18nextract.yml
  i18nextract locales                List locales and key counts
  i18nextract inject                 Run one extraction pass
  i18nextract watch --notify :7331   Re-run on change, notify listeners
  i18nextract rewrite locales/en.json  Show the placeholder module for a locale`,
	SilenceUsage: true,
}

// flagBindings maps flag names to configuration keys. Any command that
// defines one of these flags has it bound before configuration is loaded.
var flagBindings = map[string]string{
	"root":       "root",
	"locales":    "locales.dir",
	"ext":        "locales.ext",
	"manifest":   "manifest",
	"output-dir": "output.dir",
	"dest":       "output.dest",
	"keyword":    "inject.keyword",
	"extractor":  "extractor.command",
	"keys-file":  "extractor.keys_file",
	"timeout":    "extractor.timeout",
	"module":     "rewrite.format",
	"debounce":   "watch.debounce",
	"notify":     "watch.notify_addr",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .i18nextract.yml, can also use I18NEXTRACT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("root", "", "project root (default is the working directory)")
	rootCmd.PersistentFlags().String("locales", "", "locales directory, relative to the root")
	rootCmd.PersistentFlags().String("manifest", "", "build manifest (JSON or YAML)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	AddFlagValidation(rootCmd.PersistentFlags(), "log-level", ValidateLogLevel)
	AddFlagValidation(rootCmd.PersistentFlags(), "log-format", func(v string) error {
		return ValidateFormatWithSuggestion(v, []string{"text", "json"})
	})
}

// initConfig loads .env and the config file into the global viper instance.
//
// Config file priority (highest to lowest):
//  1. --config flag
//  2. I18NEXTRACT_CONFIG_FILE environment variable
//  3. .i18nextract.yml in the current directory
//
// Errors are kept and surfaced by the first command that loads configuration.
func initConfig() {
	initErr = nil
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		initErr = fmt.Errorf("failed to load .env: %w", err)
		return
	}

	file := cfgFile
	if file == "" {
		file = os.Getenv(config.EnvPrefix + "_CONFIG_FILE")
	}
	if err := config.Configure(viper.GetViper(), file, "."); err != nil {
		initErr = err
		return
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

// loadConfig binds cmd's flags and returns the validated configuration with
// an absolute root.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if initErr != nil {
		return nil, initErr
	}
	for name, key := range flagBindings {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			if err := viper.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}
	cfg.Root = root
	return cfg, nil
}

// newLogger builds the CLI logger from the log section, writing to the
// command's error stream.
func newLogger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
}
