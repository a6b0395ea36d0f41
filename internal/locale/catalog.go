// Package locale discovers locale resource files and loads them into a
// read-only catalog.
//
// A locales directory holds one file per locale named <locale-id><ext>. The
// catalog is loaded once per extraction pass and shared by every entry; any
// failure while listing or loading aborts the pass before entry work starts.
package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/placeholder"
	"github.com/conneroisu/i18nextract/internal/resource"
	"github.com/conneroisu/i18nextract/internal/validation"
)

// DefaultExt is the locale file extension used when none is configured.
const DefaultExt = ".json"

// Locale identifies one locale file.
type Locale struct {
	// ID is the filename without extension, e.g. "en" or "zh-CN".
	ID string
	// Path is the absolute path of the locale file.
	Path string
	// Tag is the parsed BCP 47 tag, language.Und when ID is not a valid tag.
	Tag language.Tag
}

// Catalog is the full, pre-reduction resource tree of every locale.
type Catalog struct {
	dir     string
	ext     string
	locales []Locale
	trees   map[string]*resource.Tree
}

// ResolveDir returns dir unchanged when absolute, otherwise resolved against root.
func ResolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	abs, err := filepath.Abs(filepath.Join(root, dir))
	if err != nil {
		return filepath.Join(root, dir)
	}
	return abs
}

// FilePath returns the path of a locale's resource file.
func FilePath(dir, locale, ext string) string {
	return filepath.Join(dir, locale+NormalizeExt(ext))
}

// NormalizeExt returns ext with a leading dot, DefaultExt when empty.
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// SupportedExts lists the locale file extensions that can be parsed.
var SupportedExts = []string{".json", ".yaml", ".yml"}

// SupportedExt reports whether files with ext can be parsed.
func SupportedExt(ext string) bool {
	return validation.ValidateExtension(NormalizeExt(ext), SupportedExts) == nil
}

// ListLocales returns the locales found in dir, sorted by id. Only regular
// files carrying ext count; subdirectories are ignored.
func ListLocales(dir, ext string) ([]Locale, error) {
	ext = NormalizeExt(ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewCatalogError(
			errors.ErrCodeEmptyLocaleDir,
			fmt.Sprintf("cannot read locales directory %s", dir),
			err,
		).WithFile(dir)
	}

	var locales []Locale
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		id := name[:len(name)-len(ext)]
		if id == "" {
			continue
		}
		tag, err := language.Parse(id)
		if err != nil {
			tag = language.Und
		}
		locales = append(locales, Locale{
			ID:   id,
			Path: filepath.Join(dir, name),
			Tag:  tag,
		})
	}

	if len(locales) == 0 {
		return nil, errors.ErrEmptyLocaleDir(dir, ext)
	}

	sort.Slice(locales, func(i, j int) bool { return locales[i].ID < locales[j].ID })

	// Two ids with the same symbol would declare one identifier twice.
	seen := make(map[string]Locale, len(locales))
	for _, l := range locales {
		sym := placeholder.Symbol(l.ID)
		if prev, ok := seen[sym]; ok {
			return nil, errors.NewCatalogError(
				errors.ErrCodeLocaleUnreadable,
				fmt.Sprintf("locales %q and %q both map to placeholder %s", prev.ID, l.ID, sym),
				nil,
			).WithFile(l.Path).WithLocale(l.ID)
		}
		seen[sym] = l
	}
	return locales, nil
}

// LoadLocale parses the full resource tree of one locale.
func LoadLocale(l Locale) (*resource.Tree, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, errors.ErrLocaleUnreadable(l.ID, l.Path, err)
	}

	var tree *resource.Tree
	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".yaml", ".yml":
		tree, err = resource.ParseYAML(data)
	default:
		tree, err = resource.ParseJSON(data)
	}
	if err != nil {
		return nil, errors.ErrLocaleUnreadable(l.ID, l.Path, err)
	}
	return tree, nil
}

// Load lists and loads every locale in dir. The first failure aborts the
// load; a partial catalog is never returned.
func Load(dir, ext string) (*Catalog, error) {
	ext = NormalizeExt(ext)
	if err := validation.ValidateExtension(ext, SupportedExts); err != nil {
		return nil, errors.NewConfigError(
			errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unsupported locale file extension: %v", err),
		)
	}

	locales, err := ListLocales(dir, ext)
	if err != nil {
		return nil, err
	}

	trees := make(map[string]*resource.Tree, len(locales))
	for _, l := range locales {
		tree, err := LoadLocale(l)
		if err != nil {
			return nil, err
		}
		trees[l.ID] = tree
	}

	return &Catalog{
		dir:     dir,
		ext:     ext,
		locales: locales,
		trees:   trees,
	}, nil
}

// NewCatalog builds a catalog from already-parsed trees. Locales keep the
// given order.
func NewCatalog(dir, ext string, locales []Locale, trees map[string]*resource.Tree) *Catalog {
	copied := make([]Locale, len(locales))
	copy(copied, locales)
	return &Catalog{
		dir:     dir,
		ext:     NormalizeExt(ext),
		locales: copied,
		trees:   trees,
	}
}

// Dir returns the absolute locales directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Ext returns the locale file extension.
func (c *Catalog) Ext() string {
	return c.ext
}

// Locales returns the locales in listing order.
func (c *Catalog) Locales() []Locale {
	out := make([]Locale, len(c.locales))
	copy(out, c.locales)
	return out
}

// IDs returns the locale ids in listing order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.locales))
	for i, l := range c.locales {
		ids[i] = l.ID
	}
	return ids
}

// Tree returns the full resource tree for a locale.
func (c *Catalog) Tree(id string) (*resource.Tree, bool) {
	t, ok := c.trees[id]
	return t, ok
}

// Path returns the absolute file path for a locale.
func (c *Catalog) Path(id string) string {
	for _, l := range c.locales {
		if l.ID == id {
			return l.Path
		}
	}
	return FilePath(c.dir, id, c.ext)
}
