// Package graph holds a frozen view of a finished compilation: modules,
// chunks, chunk groups and entry points, all addressed by index. The
// collector in this package walks that view to find, for every entry point,
// the output artifacts to inject into and the source files to extract from.
package graph

import (
	"fmt"
)

// Module is one compiled unit. A module with member indices aggregates
// other modules (module concatenation) and has no resource of its own.
type Module struct {
	ID       int    `json:"id" yaml:"id"`
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	Modules  []int  `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// Chunk groups modules destined for one or more output files.
type Chunk struct {
	ID      int      `json:"id" yaml:"id"`
	Files   []string `json:"files" yaml:"files"`
	Runtime bool     `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Modules []int    `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// ChunkGroup is a set of chunks loaded together. Initial groups load with
// their entry; the rest load on demand.
type ChunkGroup struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Initial bool   `json:"initial,omitempty" yaml:"initial,omitempty"`
	Chunks  []int  `json:"chunks" yaml:"chunks"`
	Parents []int  `json:"parents,omitempty" yaml:"parents,omitempty"`
}

// Entrypoint names the chunk group that roots one build output.
type Entrypoint struct {
	Name  string `json:"name" yaml:"name"`
	Group int    `json:"group" yaml:"group"`
}

// Snapshot is the graph of a finished compilation. It must not be mutated
// once handed to the collector.
type Snapshot struct {
	Modules     []Module     `json:"modules" yaml:"modules"`
	Chunks      []Chunk      `json:"chunks" yaml:"chunks"`
	ChunkGroups []ChunkGroup `json:"chunkGroups" yaml:"chunkGroups"`
	Entrypoints []Entrypoint `json:"entrypoints" yaml:"entrypoints"`
}

// Validate checks that every index in the snapshot refers to an existing
// node and that node IDs match their positions.
func (s *Snapshot) Validate() error {
	for i, m := range s.Modules {
		if m.ID != i {
			return fmt.Errorf("module at position %d has id %d", i, m.ID)
		}
		for _, member := range m.Modules {
			if member < 0 || member >= len(s.Modules) {
				return fmt.Errorf("module %d references unknown module %d", m.ID, member)
			}
		}
	}
	for i, c := range s.Chunks {
		if c.ID != i {
			return fmt.Errorf("chunk at position %d has id %d", i, c.ID)
		}
		for _, m := range c.Modules {
			if m < 0 || m >= len(s.Modules) {
				return fmt.Errorf("chunk %d references unknown module %d", c.ID, m)
			}
		}
	}
	for i, g := range s.ChunkGroups {
		if g.ID != i {
			return fmt.Errorf("chunk group at position %d has id %d", i, g.ID)
		}
		for _, c := range g.Chunks {
			if c < 0 || c >= len(s.Chunks) {
				return fmt.Errorf("chunk group %d references unknown chunk %d", g.ID, c)
			}
		}
		for _, p := range g.Parents {
			if p < 0 || p >= len(s.ChunkGroups) {
				return fmt.Errorf("chunk group %d references unknown parent %d", g.ID, p)
			}
		}
	}
	seen := make(map[string]bool, len(s.Entrypoints))
	for _, e := range s.Entrypoints {
		if e.Name == "" {
			return fmt.Errorf("entrypoint for group %d has no name", e.Group)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate entrypoint %q", e.Name)
		}
		seen[e.Name] = true
		if e.Group < 0 || e.Group >= len(s.ChunkGroups) {
			return fmt.Errorf("entrypoint %q references unknown chunk group %d", e.Name, e.Group)
		}
	}
	return nil
}
