// Package oracle is the boundary to the external key extractor.
//
// An Oracle maps source files and locales to the translation keys those files
// reference. The extractor reports one record per output resource file; the
// locale of a record is the path segment following a "locales" directory, and
// the referenced keys are the top-level keys of its new translations.
package oracle

import (
	"context"
	"regexp"

	"github.com/conneroisu/i18nextract/internal/resource"
)

// Oracle extracts referenced translation keys from source files.
type Oracle interface {
	// Extract analyzes files for the given locales. extra is passed through
	// to the extractor unchanged.
	Extract(ctx context.Context, files, locales []string, extra map[string]any) ([]Record, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, files, locales []string, extra map[string]any) ([]Record, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, files, locales []string, extra map[string]any) ([]Record, error) {
	return f(ctx, files, locales, extra)
}

// Record is one extractor output file.
type Record struct {
	Path            string         `json:"path"`
	NewTranslations *resource.Tree `json:"newTranslations"`
}

var localeSegment = regexp.MustCompile(`[/\\]locales[/\\]([^/\\]+)[/\\]`)

// LocaleFromPath returns the locale named by the "/locales/<locale>/" segment
// of path.
func LocaleFromPath(path string) (string, bool) {
	m := localeSegment.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// KeySet holds, per locale, the referenced keys in first-reported order.
type KeySet map[string][]string

// Keys returns the keys referenced for locale. A locale the extractor did
// not report has no keys.
func (ks KeySet) Keys(locale string) []string {
	return ks[locale]
}

// Total returns the number of keys across all locales.
func (ks KeySet) Total() int {
	n := 0
	for _, keys := range ks {
		n += len(keys)
	}
	return n
}

// KeysByLocale folds extractor records into a KeySet. Records whose path
// names no locale are ignored. Keys are unioned across records of the same
// locale, keeping the order in which they were first reported.
func KeysByLocale(records []Record) KeySet {
	ks := make(KeySet)
	seen := make(map[string]map[string]bool)
	for _, r := range records {
		locale, ok := LocaleFromPath(r.Path)
		if !ok {
			continue
		}
		if seen[locale] == nil {
			seen[locale] = make(map[string]bool)
			ks[locale] = []string{}
		}
		for _, key := range r.NewTranslations.Keys() {
			if seen[locale][key] {
				continue
			}
			seen[locale][key] = true
			ks[locale] = append(ks[locale], key)
		}
	}
	return ks
}
