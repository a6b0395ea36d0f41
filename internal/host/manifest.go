package host

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/graph"
)

// DefaultOutputPath is the output directory used when a manifest names none.
const DefaultOutputPath = "dist"

// Manifest is a build graph exported by the bundler, in JSON or YAML.
//
//	{
//	  "context": "/abs/project",
//	  "outputPath": "dist",
//	  "modules": [{"id": 0, "resource": "src/index.ts"}],
//	  "chunks": [{"id": 0, "files": ["index.js"], "runtime": true, "modules": [0]}],
//	  "chunkGroups": [{"id": 0, "name": "index", "initial": true, "chunks": [0]}],
//	  "entrypoints": [{"name": "index", "group": 0}]
//	}
type Manifest struct {
	// Context is the project root. Relative values resolve against the
	// manifest's directory.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
	// OutputPath is the artifact directory, relative to Context.
	OutputPath string `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`

	graph.Snapshot `yaml:",inline"`
}

// LoadManifest reads and validates a manifest. Module resources, the context
// and the output path come back absolute.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewManifestError("failed to read manifest", err).WithFile(path)
	}

	m := &Manifest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, m)
	default:
		err = json.Unmarshal(data, m)
	}
	if err != nil {
		return nil, errors.NewManifestError("failed to parse manifest", err).WithFile(path)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.NewManifestError("failed to resolve manifest directory", err).WithFile(path)
	}
	if err := m.resolve(base); err != nil {
		return nil, errors.NewManifestError("invalid manifest", err).WithFile(path)
	}
	return m, nil
}

func (m *Manifest) resolve(base string) error {
	if m.Context == "" {
		m.Context = base
	} else if !filepath.IsAbs(m.Context) {
		m.Context = filepath.Join(base, m.Context)
	}
	m.Context = filepath.Clean(m.Context)

	if m.OutputPath == "" {
		m.OutputPath = DefaultOutputPath
	}
	if !filepath.IsAbs(m.OutputPath) {
		m.OutputPath = filepath.Join(m.Context, m.OutputPath)
	}

	for i := range m.Modules {
		res := m.Modules[i].Resource
		if res == "" || filepath.IsAbs(res) {
			continue
		}
		file, query := res, ""
		if q := strings.IndexByte(res, '?'); q >= 0 {
			file, query = res[:q], res[q:]
		}
		m.Modules[i].Resource = filepath.Join(m.Context, file) + query
	}

	return m.Validate()
}

// ManifestHost serves a pass from a manifest and an asset store.
type ManifestHost struct {
	manifest *Manifest
	*Assets
}

// NewManifestHost pairs a loaded manifest with its artifacts.
func NewManifestHost(m *Manifest, assets *Assets) *ManifestHost {
	return &ManifestHost{manifest: m, Assets: assets}
}

// OpenManifestHost loads a manifest and the artifacts under its output path
// whose names match pattern.
func OpenManifestHost(path string, pattern *regexp.Regexp) (*ManifestHost, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	assets, err := LoadDir(m.OutputPath, pattern)
	if err != nil {
		return nil, errors.NewManifestError("failed to load artifacts", err).WithFile(m.OutputPath)
	}
	return NewManifestHost(m, assets), nil
}

// Snapshot implements GraphSource.
func (h *ManifestHost) Snapshot() (*graph.Snapshot, error) {
	if h.manifest == nil {
		return nil, fmt.Errorf("no manifest loaded")
	}
	return &h.manifest.Snapshot, nil
}

// Context implements Host.
func (h *ManifestHost) Context() string {
	return h.manifest.Context
}

// OutputPath returns the absolute artifact directory.
func (h *ManifestHost) OutputPath() string {
	return h.manifest.OutputPath
}
