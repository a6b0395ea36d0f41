// Package testutils builds throwaway projects for tests: a locales
// directory, source files, a build manifest and its output artifacts.
package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/i18nextract/internal/graph"
	"github.com/conneroisu/i18nextract/internal/host"
)

// Project is a temporary project on disk.
type Project struct {
	t    *testing.T
	Root string
}

// CreateTempProject creates a project with empty locales, src and dist
// directories.
func CreateTempProject(t *testing.T) *Project {
	t.Helper()
	root := t.TempDir()

	for _, dir := range []string{"locales", "src", "dist"} {
		err := os.MkdirAll(filepath.Join(root, dir), 0o755)
		require.NoError(t, err)
	}

	return &Project{t: t, Root: root}
}

// Path joins elem onto the project root.
func (p *Project) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Root}, elem...)...)
}

// LocalesDir returns the absolute locales directory.
func (p *Project) LocalesDir() string {
	return p.Path("locales")
}

// WriteFile writes content at a path relative to the root and returns the
// absolute path.
func (p *Project) WriteFile(rel, content string) string {
	p.t.Helper()
	path := p.Path(filepath.FromSlash(rel))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// AddLocale writes locales/<id>.json.
func (p *Project) AddLocale(id, content string) string {
	return p.WriteFile("locales/"+id+".json", content)
}

// AddSource writes src/<name>.
func (p *Project) AddSource(name, content string) string {
	return p.WriteFile("src/"+name, content)
}

// AddArtifact writes dist/<name>.
func (p *Project) AddArtifact(name, content string) string {
	return p.WriteFile("dist/"+name, content)
}

// ReadArtifact returns the content of dist/<name>.
func (p *Project) ReadArtifact(name string) string {
	p.t.Helper()
	data, err := os.ReadFile(p.Path("dist", filepath.FromSlash(name)))
	require.NoError(p.t, err)
	return string(data)
}

// WriteManifest writes manifest.json at the root, with context set to the
// root, and returns its path.
func (p *Project) WriteManifest(s *graph.Snapshot) string {
	p.t.Helper()
	m := host.Manifest{Context: p.Root, OutputPath: "dist", Snapshot: *s}
	data, err := json.MarshalIndent(m, "", "  ")
	require.NoError(p.t, err)
	return p.WriteFile("manifest.json", string(data))
}

// Host loads the written manifest and artifacts.
func (p *Project) Host() *host.ManifestHost {
	p.t.Helper()
	h, err := host.OpenManifestHost(p.Path("manifest.json"), graph.DefaultScriptPattern)
	require.NoError(p.t, err)
	return h
}

// AsyncSnapshot is a two-entry build. Entry "index" loads src/index.ts
// synchronously and src/lazy.ts on demand; entry "other" loads src/other.ts.
// Resources are relative to the project root.
func AsyncSnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		Modules: []graph.Module{
			{ID: 0, Resource: "src/index.ts"},
			{ID: 1, Resource: "src/lazy.ts"},
			{ID: 2, Resource: "src/other.ts"},
			{ID: 3, Resource: "locales/en.json"},
			{ID: 4},
		},
		Chunks: []graph.Chunk{
			{ID: 0, Files: []string{"index.js"}, Runtime: true, Modules: []int{0, 3, 4}},
			{ID: 1, Files: []string{"lazy.chunk.js"}, Modules: []int{1}},
			{ID: 2, Files: []string{"other.js"}, Runtime: true, Modules: []int{2}},
		},
		ChunkGroups: []graph.ChunkGroup{
			{ID: 0, Name: "index", Initial: true, Chunks: []int{0}},
			{ID: 1, Name: "lazy", Chunks: []int{1}, Parents: []int{0}},
			{ID: 2, Name: "other", Initial: true, Chunks: []int{2}},
		},
		Entrypoints: []graph.Entrypoint{
			{Name: "index", Group: 0},
			{Name: "other", Group: 2},
		},
	}
}

// SingleEntrySnapshot is a one-entry build named "index" over src/index.ts.
func SingleEntrySnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		Modules: []graph.Module{{ID: 0, Resource: "src/index.ts"}},
		Chunks: []graph.Chunk{
			{ID: 0, Files: []string{"index.js"}, Runtime: true, Modules: []int{0}},
		},
		ChunkGroups: []graph.ChunkGroup{{ID: 0, Name: "index", Initial: true, Chunks: []int{0}}},
		Entrypoints: []graph.Entrypoint{{Name: "index", Group: 0}},
	}
}

// CommandInjection lists argument values the extractor must refuse.
var CommandInjection = []string{
	"extract; rm -rf /",
	"extract && rm -rf /",
	"extract | rm -rf /",
	"extract`rm -rf /`",
	"extract$(rm -rf /)",
	"extract > /etc/passwd",
}
