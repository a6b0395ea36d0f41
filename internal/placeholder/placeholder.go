// Package placeholder derives per-locale placeholder symbols and rewrites
// locale resource modules to reference them.
//
// A locale file imported by application code is compiled into a module that
// exports the placeholder symbol instead of the literal resource. The
// reduced resource is defined under that symbol once extraction finishes, so
// the unreduced catalog never reaches the output.
package placeholder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/i18nextract/internal/resource"
)

const (
	symbolPrefix = "__I18N_"
	symbolSuffix = "_EXTRACTED_TRANSLATIONS__"
)

// Symbol returns the placeholder identifier for a locale. It depends on the
// locale id only: the id is upper-cased and every character that cannot
// appear in an identifier becomes an underscore.
//
//	Symbol("zh-CN") == "__I18N_ZH_CN_EXTRACTED_TRANSLATIONS__"
func Symbol(locale string) string {
	var b strings.Builder
	b.Grow(len(symbolPrefix) + len(locale) + len(symbolSuffix))
	b.WriteString(symbolPrefix)
	for _, r := range strings.ToUpper(locale) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(symbolSuffix)
	return b.String()
}

// Format selects the module syntax produced by the rewriter.
type Format string

const (
	FormatCommonJS Format = "cjs"
	FormatESM      Format = "esm"
)

// ParseFormat validates a format name, defaulting to CommonJS.
func ParseFormat(name string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatCommonJS:
		return FormatCommonJS, true
	case FormatESM:
		return FormatESM, true
	default:
		return FormatCommonJS, false
	}
}

// Rewriter turns locale resource modules into placeholder references.
type Rewriter struct {
	// LocalesDir is the absolute locales directory.
	LocalesDir string
	// Ext is the locale file extension including the dot.
	Ext string
	// Format is the emitted module syntax.
	Format Format
}

// Locale reports the locale id of resourcePath when it is a locale file
// directly inside the locales directory.
func (r *Rewriter) Locale(resourcePath string) (string, bool) {
	if r.LocalesDir == "" {
		return "", false
	}
	dir := toSlash(filepath.Clean(r.LocalesDir))
	path := toSlash(filepath.Clean(resourcePath))

	rel, ok := strings.CutPrefix(path, strings.TrimSuffix(dir, "/")+"/")
	if !ok || strings.Contains(rel, "/") {
		return "", false
	}
	ext := r.Ext
	if ext == "" {
		ext = ".json"
	}
	if !strings.HasSuffix(strings.ToLower(rel), strings.ToLower(ext)) {
		return "", false
	}
	locale := rel[:len(rel)-len(ext)]
	if locale == "" {
		return "", false
	}
	return locale, true
}

// Rewrite returns the module source for a resource file. Locale files export
// their placeholder symbol; anything else exports its parsed literal value.
// JSON sources are already literals; YAML sources are converted to JSON.
func (r *Rewriter) Rewrite(resourcePath string, source []byte) ([]byte, error) {
	if locale, ok := r.Locale(resourcePath); ok {
		return r.export([]byte(Symbol(locale))), nil
	}
	switch strings.ToLower(filepath.Ext(resourcePath)) {
	case ".yaml", ".yml":
		tree, err := resource.ParseYAML(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", resourcePath, err)
		}
		literal, err := tree.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", resourcePath, err)
		}
		return r.export(literal), nil
	}
	return r.export(source), nil
}

func (r *Rewriter) export(value []byte) []byte {
	switch r.Format {
	case FormatESM:
		out := make([]byte, 0, len("export default ")+len(value)+1)
		out = append(out, "export default "...)
		out = append(out, value...)
		return append(out, ';')
	default:
		out := make([]byte, 0, len("module.exports = ")+len(value))
		out = append(out, "module.exports = "...)
		return append(out, value...)
	}
}

func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
