// Package config provides configuration management for i18nextract using
// Viper for loading from files, environment variables, and command-line flags.
//
// Configuration lives in .i18nextract.yml by default. Every key can be
// overridden by an environment variable with the I18NEXTRACT_ prefix, dots
// replaced by underscores (I18NEXTRACT_LOCALES_DIR, I18NEXTRACT_EXTRACTOR_COMMAND).
// The locales directory is the only required setting.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/graph"
	"github.com/conneroisu/i18nextract/internal/inject"
	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/oracle"
	"github.com/conneroisu/i18nextract/internal/placeholder"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "I18NEXTRACT"

// DefaultConfigName is the config file name without extension.
const DefaultConfigName = ".i18nextract"

type Config struct {
	// Root is the project root. Relative paths resolve against it.
	Root      string          `mapstructure:"root" yaml:"root"`
	Locales   LocalesConfig   `mapstructure:"locales" yaml:"locales"`
	Manifest  string          `mapstructure:"manifest" yaml:"manifest"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
	Inject    InjectConfig    `mapstructure:"inject" yaml:"inject"`
	Rewrite   RewriteConfig   `mapstructure:"rewrite" yaml:"rewrite"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type LocalesConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	Ext string `mapstructure:"ext" yaml:"ext"`
}

type OutputConfig struct {
	// Dir overrides the manifest's output path.
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`
	// Dest receives injected artifacts. Empty means in place.
	Dest string `mapstructure:"dest" yaml:"dest,omitempty"`
}

type ExtractorConfig struct {
	Command   string                 `mapstructure:"command" yaml:"command,omitempty"`
	Args      []string               `mapstructure:"args" yaml:"args,omitempty"`
	Timeout   time.Duration          `mapstructure:"timeout" yaml:"timeout"`
	CacheSize int                    `mapstructure:"cache_size" yaml:"cache_size"`
	KeysFile  string                 `mapstructure:"keys_file" yaml:"keys_file,omitempty"`
	Config    map[string]interface{} `mapstructure:"config" yaml:"config,omitempty"`
}

type InjectConfig struct {
	Keyword       string `mapstructure:"keyword" yaml:"keyword"`
	ScriptPattern string `mapstructure:"script_pattern" yaml:"script_pattern"`
	SourcePattern string `mapstructure:"source_pattern" yaml:"source_pattern"`
}

type RewriteConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

type WatchConfig struct {
	Debounce       time.Duration `mapstructure:"debounce" yaml:"debounce"`
	NotifyAddr     string        `mapstructure:"notify_addr" yaml:"notify_addr,omitempty"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers default values on v so that environment overrides
// of unset keys are visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("locales.dir", "")
	v.SetDefault("locales.ext", locale.DefaultExt)
	v.SetDefault("manifest", "manifest.json")
	v.SetDefault("output.dir", "")
	v.SetDefault("output.dest", "")
	v.SetDefault("extractor.command", "")
	v.SetDefault("extractor.args", []string{})
	v.SetDefault("extractor.timeout", oracle.DefaultTimeout)
	v.SetDefault("extractor.cache_size", oracle.DefaultCacheSize)
	v.SetDefault("extractor.keys_file", "")
	v.SetDefault("inject.keyword", inject.DefaultKeyword)
	v.SetDefault("inject.script_pattern", graph.DefaultScriptPattern.String())
	v.SetDefault("inject.source_pattern", graph.DefaultSourcePattern.String())
	v.SetDefault("rewrite.format", string(placeholder.FormatCommonJS))
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("watch.notify_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Configure prepares v to read .i18nextract.yml from dir (or file when set)
// and I18NEXTRACT_ environment overrides, then reads the file. A missing
// default config file is not an error; a missing explicit file is.
func Configure(v *viper.Viper, file, dir string) error {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigType("yaml")
		v.SetConfigName(DefaultConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to read config file: %v", err))
	}
	return nil
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v. A blank locales
// directory yields ERR_LOCALES_DIR_REQUIRED; any other problem yields
// ERR_CONFIG_INVALID with every finding listed.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to decode configuration: %v", err))
	}

	if file := v.ConfigFileUsed(); file != "" {
		raw, err := rawExtractorConfig(file)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("failed to read extractor.config: %v", err))
		}
		if raw != nil {
			config.Extractor.Config = raw
		}
	}

	applyDefaults(&config)

	if strings.TrimSpace(config.Locales.Dir) == "" {
		return nil, errors.ErrLocalesDirRequired()
	}

	result := ValidateConfigWithDetails(&config)
	if result.HasErrors() {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			"invalid configuration:\n"+result.String())
	}

	return &config, nil
}

// rawExtractorConfig decodes extractor.config straight from the config file.
// Viper folds map keys to lower case, while extractor options are usually
// camelCase (defaultNS, keySeparator). It returns nil when the file has no
// such section or is not YAML or JSON.
func rawExtractorConfig(path string) (map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Extractor struct {
			Config map[string]interface{} `yaml:"config"`
		} `yaml:"extractor"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Extractor.Config, nil
}

func applyDefaults(config *Config) {
	if config.Root == "" {
		config.Root = "."
	}
	if config.Locales.Ext == "" {
		config.Locales.Ext = locale.DefaultExt
	}
	if config.Manifest == "" {
		config.Manifest = "manifest.json"
	}
	if config.Extractor.Timeout == 0 {
		config.Extractor.Timeout = oracle.DefaultTimeout
	}
	if config.Extractor.CacheSize == 0 {
		config.Extractor.CacheSize = oracle.DefaultCacheSize
	}
	if config.Extractor.Config == nil {
		config.Extractor.Config = make(map[string]interface{})
	}
	if config.Inject.Keyword == "" {
		config.Inject.Keyword = inject.DefaultKeyword
	}
	if config.Inject.ScriptPattern == "" {
		config.Inject.ScriptPattern = graph.DefaultScriptPattern.String()
	}
	if config.Inject.SourcePattern == "" {
		config.Inject.SourcePattern = graph.DefaultSourcePattern.String()
	}
	if config.Rewrite.Format == "" {
		config.Rewrite.Format = string(placeholder.FormatCommonJS)
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// ScriptRegexp compiles inject.script_pattern.
func (c *Config) ScriptRegexp() (*regexp.Regexp, error) {
	return regexp.Compile(c.Inject.ScriptPattern)
}

// SourceRegexp compiles inject.source_pattern.
func (c *Config) SourceRegexp() (*regexp.Regexp, error) {
	return regexp.Compile(c.Inject.SourcePattern)
}

// HasExtractor reports whether an extractor command or keys file is set.
func (c *Config) HasExtractor() bool {
	return c.Extractor.Command != "" || c.Extractor.KeysFile != ""
}
