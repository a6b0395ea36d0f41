// Package inject renders placeholder definitions and prefixes them onto
// output artifacts.
package inject

import (
	"fmt"
	"strings"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/host"
	"github.com/conneroisu/i18nextract/internal/placeholder"
	"github.com/conneroisu/i18nextract/internal/resource"
)

// DefaultKeyword is the declaration keyword of rendered statements.
const DefaultKeyword = "const"

// ValidKeyword reports whether kw can declare a placeholder.
func ValidKeyword(kw string) bool {
	switch kw {
	case "const", "let", "var":
		return true
	default:
		return false
	}
}

// Render returns one declaration per locale, in the given order, joined by
// newlines:
//
//	const __I18N_EN_EXTRACTED_TRANSLATIONS__ = {"title":"Welcome"};
//
// A locale with no reduced tree is declared as an empty object.
func Render(locales []string, reduced map[string]*resource.Tree, keyword string) (string, error) {
	if keyword == "" {
		keyword = DefaultKeyword
	}
	if !ValidKeyword(keyword) {
		return "", errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid declaration keyword %q", keyword))
	}

	lines := make([]string, 0, len(locales))
	for _, l := range locales {
		tree := reduced[l]
		if tree == nil {
			tree = resource.NewTree()
		}
		literal, err := tree.MarshalJSON()
		if err != nil {
			return "", errors.NewInjectionError(
				fmt.Sprintf("failed to serialize reduced resources for %s", l), err).WithLocale(l)
		}
		lines = append(lines, keyword+" "+placeholder.Symbol(l)+" = "+string(literal)+";")
	}
	return strings.Join(lines, "\n"), nil
}

// Prefix returns the transform that places block ahead of an artifact's
// existing content.
func Prefix(block string) host.TransformFunc {
	return func(old string) string {
		return block + "\n" + old
	}
}

// Apply prefixes block onto every artifact through the store's atomic update.
// Artifacts the store does not hold are skipped. It returns the number of
// artifacts updated.
func Apply(store host.AssetStore, artifacts []string, block string) (int, error) {
	updated := 0
	for _, name := range artifacts {
		if _, ok := store.GetArtifact(name); !ok {
			continue
		}
		if err := store.UpdateArtifact(name, Prefix(block)); err != nil {
			return updated, errors.NewInjectionError(
				fmt.Sprintf("failed to update artifact %s", name), err).WithFile(name)
		}
		updated++
	}
	return updated, nil
}
