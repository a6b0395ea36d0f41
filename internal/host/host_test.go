package host

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/i18nextract/internal/errors"
)

func TestAssetsUpdate(t *testing.T) {
	a := NewAssets()
	a.Put("index.js", "console.log(1);")

	require.NoError(t, a.UpdateArtifact("index.js", func(old string) string {
		return "const X = {};\n" + old
	}))

	content, ok := a.GetArtifact("index.js")
	require.True(t, ok)
	assert.Equal(t, "const X = {};\nconsole.log(1);", content)
	assert.Equal(t, []string{"index.js"}, a.Dirty())

	err := a.UpdateArtifact("missing.js", func(old string) string { return old })
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestAssetsConcurrentUpdatesCompose(t *testing.T) {
	a := NewAssets()
	a.Put("shared.js", "body")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.UpdateArtifact("shared.js", func(old string) string {
				return "p;" + old
			})
		}()
	}
	wg.Wait()

	content, _ := a.GetArtifact("shared.js")
	assert.Equal(t, strings.Repeat("p;", 50)+"body", content)
}

func TestLoadDirAndWriteDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "static", "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "static", "js", "index.js"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "static", "js", "lazy.mjs"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html>"), 0o644))

	a, err := LoadDir(src, regexp.MustCompile(`\.(c|m)?js$`))
	require.NoError(t, err)
	assert.Equal(t, []string{"static/js/index.js", "static/js/lazy.mjs"}, a.Names())

	require.NoError(t, a.UpdateArtifact("static/js/index.js", func(old string) string { return "x" + old }))

	dest := t.TempDir()
	n, err := a.WriteDir(dest, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(dest, "static", "js", "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "xa", string(data))
	assert.NoFileExists(t, filepath.Join(dest, "static", "js", "lazy.mjs"))

	n, err = a.WriteDir(dest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

const jsonManifest = `{
  "outputPath": "build",
  "modules": [
    {"id": 0, "resource": "src/index.ts"},
    {"id": 1, "resource": "src/button.tsx?inline"},
    {"id": 2}
  ],
  "chunks": [{"id": 0, "files": ["index.js"], "runtime": true, "modules": [0, 1, 2]}],
  "chunkGroups": [{"id": 0, "name": "index", "initial": true, "chunks": [0]}],
  "entrypoints": [{"name": "index", "group": 0}]
}`

const yamlManifest = `context: app
modules:
  - id: 0
    resource: /abs/src/index.ts
chunks:
  - id: 0
    files: [index.js]
    runtime: true
    modules: [0]
chunkGroups:
  - id: 0
    initial: true
    chunks: [0]
entrypoints:
  - name: index
    group: 0
`

func TestLoadManifestJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonManifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, dir, m.Context)
	assert.Equal(t, filepath.Join(dir, "build"), m.OutputPath)
	assert.Equal(t, filepath.Join(dir, "src", "index.ts"), m.Modules[0].Resource)
	assert.Equal(t, filepath.Join(dir, "src", "button.tsx")+"?inline", m.Modules[1].Resource)
	assert.Empty(t, m.Modules[2].Resource)
	assert.Equal(t, "index", m.Entrypoints[0].Name)
}

func TestLoadManifestYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlManifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "app"), m.Context)
	assert.Equal(t, filepath.Join(dir, "app", DefaultOutputPath), m.OutputPath)
	assert.Equal(t, "/abs/src/index.ts", m.Modules[0].Resource)
	require.Len(t, m.ChunkGroups, 1)
	assert.True(t, m.ChunkGroups[0].Initial)
	assert.True(t, m.Chunks[0].Runtime)
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadManifest(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeManifestInvalid))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"modules":`), 0o644))
	_, err = LoadManifest(bad)
	assert.True(t, errors.HasCode(err, errors.ErrCodeManifestInvalid))

	dangling := filepath.Join(dir, "dangling.json")
	require.NoError(t, os.WriteFile(dangling, []byte(`{"entrypoints":[{"name":"index","group":3}]}`), 0o644))
	_, err = LoadManifest(dangling)
	assert.True(t, errors.HasCode(err, errors.ErrCodeManifestInvalid))
}

func TestOpenManifestHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonManifest), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "index.js"), []byte("run()"), 0o644))

	h, err := OpenManifestHost(path, nil)
	require.NoError(t, err)

	var _ Host = h
	assert.Equal(t, dir, h.Context())
	assert.Equal(t, filepath.Join(dir, "build"), h.OutputPath())

	s, err := h.Snapshot()
	require.NoError(t, err)
	assert.Len(t, s.Entrypoints, 1)

	content, ok := h.GetArtifact("index.js")
	require.True(t, ok)
	assert.Equal(t, "run()", content)
}
