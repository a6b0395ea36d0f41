package graph

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// DefaultScriptPattern matches output artifacts that can carry injected
	// declarations.
	DefaultScriptPattern = regexp.MustCompile(`\.(c|m)?js$`)
	// DefaultSourcePattern matches source files handed to the extractor.
	DefaultSourcePattern = regexp.MustCompile(`\.[jt]sx?$`)
)

// Options configures CollectEntryTargets.
type Options struct {
	// LocalesDir is excluded from the source closure. Locale files are data.
	LocalesDir string
	// ScriptPattern filters artifacts. DefaultScriptPattern when nil.
	ScriptPattern *regexp.Regexp
	// SourcePattern filters source files. DefaultSourcePattern when nil.
	SourcePattern *regexp.Regexp
}

// EntryTargets is everything one entry point needs for extraction and
// injection.
type EntryTargets struct {
	Entry string
	// Artifacts receive the entry's declaration block.
	Artifacts []string
	// SourceFiles are the absolute source paths reachable from the entry.
	SourceFiles []string
}

// CollectEntryTargets computes injection targets and the extraction input
// set for every entry point, in snapshot order.
//
// Artifacts are the script files of the entry's runtime-bearing initial
// chunks plus the script files of every async chunk group descending from the
// entry. Source files are the resources of all modules in the entry's initial
// chunks and in those async groups, with aggregated modules unwrapped.
func CollectEntryTargets(s *Snapshot, opts Options) []EntryTargets {
	if opts.ScriptPattern == nil {
		opts.ScriptPattern = DefaultScriptPattern
	}
	if opts.SourcePattern == nil {
		opts.SourcePattern = DefaultSourcePattern
	}

	children := s.childGroups()
	targets := make([]EntryTargets, 0, len(s.Entrypoints))
	for _, ep := range s.Entrypoints {
		targets = append(targets, s.collectEntry(ep, children, opts))
	}
	return targets
}

func (s *Snapshot) collectEntry(ep Entrypoint, children map[int][]int, opts Options) EntryTargets {
	entryGroup := s.ChunkGroups[ep.Group]
	artifacts := newOrderedSet()
	modules := newOrderedSet()

	for _, ci := range entryGroup.Chunks {
		chunk := s.Chunks[ci]
		if chunk.Runtime {
			addFiles(artifacts, chunk.Files, opts.ScriptPattern)
		}
		for _, mi := range chunk.Modules {
			s.collectModule(mi, modules)
		}
	}

	for _, gi := range s.asyncDescendants(ep.Group, children) {
		for _, ci := range s.ChunkGroups[gi].Chunks {
			chunk := s.Chunks[ci]
			addFiles(artifacts, chunk.Files, opts.ScriptPattern)
			for _, mi := range chunk.Modules {
				s.collectModule(mi, modules)
			}
		}
	}

	sources := make([]string, 0, modules.len())
	for _, file := range modules.items {
		if opts.LocalesDir != "" && isUnder(file, opts.LocalesDir) {
			continue
		}
		if !opts.SourcePattern.MatchString(file) {
			continue
		}
		sources = append(sources, file)
	}

	return EntryTargets{
		Entry:       ep.Name,
		Artifacts:   artifacts.items,
		SourceFiles: sources,
	}
}

// childGroups inverts the parent relation.
func (s *Snapshot) childGroups() map[int][]int {
	children := make(map[int][]int)
	for _, g := range s.ChunkGroups {
		for _, p := range g.Parents {
			children[p] = append(children[p], g.ID)
		}
	}
	return children
}

// asyncDescendants returns, in index order, every non-initial chunk group
// whose ancestor chain includes root.
func (s *Snapshot) asyncDescendants(root int, children map[int][]int) []int {
	visited := map[int]bool{root: true}
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}

	var out []int
	for _, g := range s.ChunkGroups {
		if g.ID != root && visited[g.ID] && !g.Initial {
			out = append(out, g.ID)
		}
	}
	return out
}

// collectModule adds the backing files of module mi to files, unwrapping
// aggregated modules depth-first. Modules without a resource are runtime or
// synthetic and contribute nothing.
func (s *Snapshot) collectModule(mi int, files *orderedSet) {
	visited := make(map[int]bool)
	stack := []int{mi}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		m := s.Modules[cur]
		if len(m.Modules) > 0 {
			for i := len(m.Modules) - 1; i >= 0; i-- {
				stack = append(stack, m.Modules[i])
			}
			continue
		}
		if resource := stripQuery(m.Resource); resource != "" {
			files.add(resource)
		}
	}
}

func addFiles(set *orderedSet, files []string, pattern *regexp.Regexp) {
	for _, f := range files {
		if pattern.MatchString(f) {
			set.add(f)
		}
	}
}

func stripQuery(resource string) string {
	if i := strings.IndexByte(resource, '?'); i >= 0 {
		return resource[:i]
	}
	return resource
}

func isUnder(path, dir string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	dir = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(dir)), "/")
	return strings.HasPrefix(path, dir+"/")
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (o *orderedSet) add(s string) {
	if o.seen[s] {
		return
	}
	o.seen[s] = true
	o.items = append(o.items, s)
}

func (o *orderedSet) len() int {
	return len(o.items)
}
