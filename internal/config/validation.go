package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/i18nextract/internal/inject"
	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/logging"
	"github.com/conneroisu/i18nextract/internal/placeholder"
	"github.com/conneroisu/i18nextract/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	if len(vr.Warnings) > 0 {
		if len(vr.Errors) > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails checks every section and collects all findings
// instead of stopping at the first one.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateLocales(config, result)
	validateExtractor(&config.Extractor, result)
	validateInject(&config.Inject, result)
	validateRewrite(&config.Rewrite, result)
	validateWatch(&config.Watch, result)
	validateLog(&config.Log, result)

	result.Valid = !result.HasErrors()
	return result
}

func validateLocales(config *Config, result *ValidationResult) {
	dir := strings.TrimSpace(config.Locales.Dir)
	if dir == "" {
		result.addError("locales.dir", config.Locales.Dir, "locales directory is required",
			"Set locales.dir in .i18nextract.yml",
			"Or export I18NEXTRACT_LOCALES_DIR")
	} else {
		if err := validation.ValidateArgument(dir); err != nil {
			result.addError("locales.dir", dir, err.Error())
		} else {
			resolved := locale.ResolveDir(config.Root, dir)
			if info, err := os.Stat(resolved); err != nil {
				result.addWarning("locales.dir", dir, "directory does not exist yet",
					fmt.Sprintf("Create %s before running a pass", resolved))
			} else if !info.IsDir() {
				result.addError("locales.dir", dir, "path is not a directory")
			}
		}
	}

	if !locale.SupportedExt(config.Locales.Ext) {
		result.addError("locales.ext", config.Locales.Ext, "unsupported locale file extension",
			"Supported extensions: "+strings.Join(locale.SupportedExts, ", "))
	}
}

func validateExtractor(config *ExtractorConfig, result *ValidationResult) {
	if config.Command != "" {
		if err := validation.ValidateCommand(config.Command); err != nil {
			result.addError("extractor.command", config.Command, err.Error(),
				"Point extractor.command at an executable and pass options via extractor.args")
		}
	}
	for i, arg := range config.Args {
		if err := validation.ValidateArgument(arg); err != nil {
			result.addError(fmt.Sprintf("extractor.args[%d]", i), arg, err.Error())
		}
	}
	if config.KeysFile != "" {
		if err := validation.ValidateArgument(config.KeysFile); err != nil {
			result.addError("extractor.keys_file", config.KeysFile, err.Error())
		}
		if config.Command != "" {
			result.addWarning("extractor.keys_file", config.KeysFile,
				"both extractor.command and extractor.keys_file are set; the command wins")
		}
	}
	if config.Timeout < 0 {
		result.addError("extractor.timeout", config.Timeout, "timeout cannot be negative")
	}
	if config.CacheSize < 0 {
		result.addError("extractor.cache_size", config.CacheSize, "cache size cannot be negative",
			"Use 0 for the default size")
	}
}

func validateInject(config *InjectConfig, result *ValidationResult) {
	if !inject.ValidKeyword(config.Keyword) {
		result.addError("inject.keyword", config.Keyword, "unsupported declaration keyword",
			"Use one of: const, let, var")
	}
	if _, err := regexp.Compile(config.ScriptPattern); err != nil {
		result.addError("inject.script_pattern", config.ScriptPattern, err.Error())
	}
	if _, err := regexp.Compile(config.SourcePattern); err != nil {
		result.addError("inject.source_pattern", config.SourcePattern, err.Error())
	}
}

func validateRewrite(config *RewriteConfig, result *ValidationResult) {
	if _, ok := placeholder.ParseFormat(config.Format); !ok {
		result.addError("rewrite.format", config.Format, "unknown module format",
			"Use cjs or esm")
	}
}

func validateWatch(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 {
		result.addError("watch.debounce", config.Debounce, "debounce cannot be negative")
	}
	if config.NotifyAddr != "" {
		if err := validation.ValidateListenAddr(config.NotifyAddr); err != nil {
			result.addError("watch.notify_addr", config.NotifyAddr, err.Error(),
				"Use host:port, for example localhost:7331")
		}
	}
	for i, origin := range config.AllowedOrigins {
		if err := validation.ValidateOrigin(origin, []string{origin}); err != nil {
			result.addError(fmt.Sprintf("watch.allowed_origins[%d]", i), origin, err.Error())
		}
	}
}

func validateLog(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.addError("log.level", config.Level, err.Error(),
			"Use debug, info, warn or error")
	}
	switch config.Format {
	case "text", "json":
	default:
		result.addError("log.format", config.Format, "unknown log format",
			"Use text or json")
	}
}

// ResolvePath resolves p against the configured root.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}
