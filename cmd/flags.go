package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/i18nextract/internal/inject"
	"github.com/conneroisu/i18nextract/internal/logging"
	"github.com/conneroisu/i18nextract/internal/validation"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Pass flags
	Ext       string
	OutputDir string
	Dest      string
	Keyword   string
	Extractor string
	KeysFile  string
	Timeout   time.Duration
	DryRun    bool

	// Output flags
	Format  string
	Verbose bool
	Quiet   bool
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "pass":
			addPassFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addPassFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVar(&flags.Ext, "ext", "", "locale file extension (.json, .yaml, .yml)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "artifact directory (default is the manifest's output path)")
	cmd.Flags().StringVarP(&flags.Dest, "dest", "d", "", "write artifacts here instead of in place")
	cmd.Flags().StringVarP(&flags.Keyword, "keyword", "k", "", "declaration keyword (const, let, var)")
	cmd.Flags().StringVarP(&flags.Extractor, "extractor", "e", "", "extractor executable")
	cmd.Flags().StringVar(&flags.KeysFile, "keys-file", "", "static keys file used instead of an extractor")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "extractor timeout")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "print blocks without writing artifacts")

	AddFlagValidation(cmd.Flags(), "keyword", func(v string) error {
		if !inject.ValidKeyword(v) {
			return fmt.Errorf("invalid keyword %q, must be one of: const, let, var", v)
		}
		return nil
	})
	AddFlagValidation(cmd.Flags(), "extractor", validation.ValidateCommand)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")

	AddFlagValidation(cmd.Flags(), "format", func(v string) error {
		return ValidateFormatWithSuggestion(v, []string{"table", "json", "yaml"})
	})
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}
	if f.Extractor != "" && f.KeysFile != "" {
		return fmt.Errorf("cannot specify both --extractor and --keys-file")
	}
	return nil
}

// AddFlagValidation wraps a flag's value so that invalid input is rejected
// while the command line is parsed.
func AddFlagValidation(fs *pflag.FlagSet, flagName string, validator func(string) error) {
	flag := fs.Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormatWithSuggestion accepts one of allowed, case-insensitively,
// and suggests the closest candidate otherwise.
func ValidateFormatWithSuggestion(format string, allowed []string) error {
	lower := strings.ToLower(format)
	for _, a := range allowed {
		if lower == a {
			return nil
		}
	}

	msg := fmt.Sprintf("invalid format %q, must be one of: %s", format, strings.Join(allowed, ", "))
	if best := closest(lower, allowed); best != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", best)
	}
	return fmt.Errorf("%s", msg)
}

// ValidateLogLevel accepts debug, info, warn and error.
func ValidateLogLevel(level string) error {
	_, err := logging.ParseLevel(level)
	return err
}

// closest returns the candidate within edit distance 2 of s, if any.
func closest(s string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := editDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
