package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/conneroisu/i18nextract/internal/resource"
)

// StaticOracle answers from a fixed table of source file to referenced keys.
// Every locale receives the same keys, in the order the files were given.
type StaticOracle struct {
	Keys map[string][]string
}

// NewStaticOracle returns an oracle over keys.
func NewStaticOracle(keys map[string][]string) *StaticOracle {
	return &StaticOracle{Keys: keys}
}

// LoadStaticOracle reads a JSON object mapping source paths to key lists.
// Relative paths are resolved against root.
func LoadStaticOracle(file, root string) (*StaticOracle, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read keys file: %w", err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse keys file %s: %w", file, err)
	}
	keys := make(map[string][]string, len(raw))
	for p, k := range raw {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		keys[filepath.Clean(p)] = k
	}
	return &StaticOracle{Keys: keys}, nil
}

// Extract returns one record per locale.
func (o *StaticOracle) Extract(_ context.Context, files, locales []string, _ map[string]any) ([]Record, error) {
	records := make([]Record, 0, len(locales))
	for _, l := range locales {
		tree := resource.NewTree()
		for _, f := range files {
			for _, key := range o.Keys[filepath.Clean(f)] {
				if !tree.Has(key) {
					tree.Set(key, "")
				}
			}
		}
		records = append(records, Record{
			Path:            path.Join("/locales", l, "translation.json"),
			NewTranslations: tree,
		})
	}
	return records, nil
}
