//go:build property
// +build property

package config

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func validBase() *Config {
	c := &Config{Locales: LocalesConfig{Dir: "locales"}}
	applyDefaults(c)
	return c
}

// TestConfigurationProperties tests validation properties over generated settings.
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only const, let and var are accepted keywords", prop.ForAll(
		func(keyword string) bool {
			c := validBase()
			c.Inject.Keyword = keyword
			result := ValidateConfigWithDetails(c)
			want := keyword == "const" || keyword == "let" || keyword == "var"
			return result.Valid == want
		},
		gen.OneGenOf(
			gen.OneConstOf("const", "let", "var"),
			gen.AlphaString(),
		),
	))

	properties.Property("validation is deterministic", prop.ForAll(
		func(dir, level string) bool {
			c := validBase()
			c.Locales.Dir = dir
			c.Log.Level = level
			r1 := ValidateConfigWithDetails(c)
			r2 := ValidateConfigWithDetails(c)
			return r1.Valid == r2.Valid && len(r1.Errors) == len(r2.Errors)
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error", "trace", ""),
	))

	properties.Property("shell metacharacters in extractor args are rejected", prop.ForAll(
		func(prefix string, meta string) bool {
			c := validBase()
			c.Extractor.Command = "extract"
			c.Extractor.Args = []string{prefix + meta}
			return !ValidateConfigWithDetails(c).Valid
		},
		gen.AlphaString(),
		gen.OneConstOf(";", "&", "|", "`", "$", ">", "<"),
	))

	properties.Property("valid listen addresses are accepted", prop.ForAll(
		func(port int) bool {
			c := validBase()
			c.Watch.NotifyAddr = "localhost:" + strconv.Itoa(port)
			return ValidateConfigWithDetails(c).Valid
		},
		gen.IntRange(1, 65535),
	))

	properties.TestingRun(t)
}
