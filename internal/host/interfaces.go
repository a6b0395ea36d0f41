// Package host defines what an extraction pass consumes from the bundler
// that produced the build, and provides the file-based adapter used by the
// command line: a build manifest describing the module graph plus the output
// directory holding the artifacts.
package host

import (
	"github.com/conneroisu/i18nextract/internal/graph"
)

// GraphSource exposes the finished module graph.
type GraphSource interface {
	// Snapshot returns the frozen graph. Callers must not mutate it.
	Snapshot() (*graph.Snapshot, error)
}

// TransformFunc maps an artifact's current content to its new content.
type TransformFunc func(old string) string

// AssetStore exposes the output artifacts.
type AssetStore interface {
	// GetArtifact returns the current content of an artifact.
	GetArtifact(name string) (string, bool)
	// UpdateArtifact replaces an artifact's content atomically. Concurrent
	// updates of one artifact apply in call order, each seeing the result
	// of the previous one.
	UpdateArtifact(name string, fn TransformFunc) error
}

// Host is everything a pass needs from the bundler.
type Host interface {
	GraphSource
	AssetStore
	// Context returns the absolute project root.
	Context() string
}
