package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
)

// ErrArtifactNotFound is returned when updating an unknown artifact.
var ErrArtifactNotFound = errors.New("artifact not found")

// Assets is an in-memory AssetStore. Each artifact has its own lock, so
// updates of different artifacts never wait on each other.
type Assets struct {
	assets map[string]*asset
	mutex  sync.RWMutex
}

type asset struct {
	mu      sync.Mutex
	content string
	dirty   bool
}

// NewAssets creates an empty store.
func NewAssets() *Assets {
	return &Assets{
		assets: make(map[string]*asset),
	}
}

// Put adds or replaces an artifact. Put does not mark the artifact dirty.
func (a *Assets) Put(name, content string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.assets[name] = &asset{content: content}
}

// GetArtifact implements AssetStore.
func (a *Assets) GetArtifact(name string) (string, bool) {
	a.mutex.RLock()
	entry, ok := a.assets[name]
	a.mutex.RUnlock()
	if !ok {
		return "", false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.content, true
}

// UpdateArtifact implements AssetStore.
func (a *Assets) UpdateArtifact(name string, fn TransformFunc) error {
	a.mutex.RLock()
	entry, ok := a.assets[name]
	a.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.content = fn(entry.content)
	entry.dirty = true
	return nil
}

// Names returns every artifact name, sorted.
func (a *Assets) Names() []string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	names := make([]string, 0, len(a.assets))
	for name := range a.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty returns the sorted names of artifacts changed since loading.
func (a *Assets) Dirty() []string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	var names []string
	for name, entry := range a.assets {
		entry.mu.Lock()
		if entry.dirty {
			names = append(names, name)
		}
		entry.mu.Unlock()
	}
	sort.Strings(names)
	return names
}

// LoadDir reads every regular file under dir whose slash-separated relative
// name matches pattern. A nil pattern loads everything.
func LoadDir(dir string, pattern *regexp.Regexp) (*Assets, error) {
	a := NewAssets()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if pattern != nil && !pattern.MatchString(name) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		a.Put(name, string(content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load output directory %s: %w", dir, err)
	}
	return a, nil
}

// WriteDir writes artifacts under dir, creating directories as needed. When
// onlyDirty is set, untouched artifacts are skipped. It returns the number of
// files written.
func (a *Assets) WriteDir(dir string, onlyDirty bool) (int, error) {
	names := a.Names()
	if onlyDirty {
		names = a.Dirty()
	}
	written := 0
	for _, name := range names {
		content, _ := a.GetArtifact(name)
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
	}
	return written, nil
}
