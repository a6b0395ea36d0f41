// Package pipeline drives one extraction pass over a finished build.
//
// A pass loads the locale catalog once, takes the graph snapshot, and then
// processes every entry point concurrently: extract referenced keys, reduce
// the catalog to them, and prefix the reduced resources onto the entry's
// artifacts. Catalog failures abort the pass before any artifact is touched.
// Key misses are reported and never fail anything.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/graph"
	"github.com/conneroisu/i18nextract/internal/host"
	"github.com/conneroisu/i18nextract/internal/inject"
	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/logging"
	"github.com/conneroisu/i18nextract/internal/oracle"
	"github.com/conneroisu/i18nextract/internal/reconcile"
	"github.com/conneroisu/i18nextract/internal/reporting"
)

// State is the progress of a pass or of one entry within it.
type State int

const (
	StateIdle State = iota
	StateCollectingLocales
	StateAborted
	StateExtractKeys
	StateReconcile
	StateInject
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollectingLocales:
		return "collecting_locales"
	case StateAborted:
		return "aborted"
	case StateExtractKeys:
		return "extract_keys"
	case StateReconcile:
		return "reconcile"
	case StateInject:
		return "inject"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a pass.
type Options struct {
	// LocalesDir is required. Relative values resolve against the host
	// context.
	LocalesDir string
	// Ext is the locale file extension, locale.DefaultExt when empty.
	Ext string
	// Oracle extracts referenced keys. Required.
	Oracle oracle.Oracle
	// OracleConfig is passed through to the oracle unchanged.
	OracleConfig map[string]any
	// Reporter receives key misses. Defaults to a LogReporter on Logger.
	Reporter reporting.Reporter
	// Keyword declares placeholders, inject.DefaultKeyword when empty.
	Keyword string
	// ScriptPattern selects injectable artifacts.
	ScriptPattern *regexp.Regexp
	// SourcePattern selects extractable source files.
	SourcePattern *regexp.Regexp
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// EntryResult describes what a pass did for one entry.
type EntryResult struct {
	Entry string
	State State
	// Artifacts lists the artifacts that received the declaration block.
	Artifacts []string
	// SourceFiles is the number of files handed to the oracle.
	SourceFiles int
	// Keys counts referenced keys per locale.
	Keys map[string]int
	// Misses counts referenced keys missing from the catalog.
	Misses int
	// Block is the rendered declaration block.
	Block string
	Err   error
}

// Result summarizes a pass.
type Result struct {
	Locales  []string
	Entries  []EntryResult
	Duration time.Duration
}

// Updated returns the number of artifact updates across entries.
func (r *Result) Updated() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Artifacts)
	}
	return n
}

// Misses returns the number of key misses across entries.
func (r *Result) Misses() int {
	n := 0
	for _, e := range r.Entries {
		n += e.Misses
	}
	return n
}

// Pass runs extraction passes with fixed options. A Pass may be run
// repeatedly, but not concurrently with itself.
type Pass struct {
	opts   Options
	logger logging.Logger

	mu    sync.RWMutex
	state State
}

// New validates opts and returns a pass.
func New(opts Options) (*Pass, error) {
	if strings.TrimSpace(opts.LocalesDir) == "" {
		return nil, errors.ErrLocalesDirRequired()
	}
	if opts.Oracle == nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "an extractor is required")
	}
	if opts.Keyword != "" && !inject.ValidKeyword(opts.Keyword) {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid declaration keyword %q", opts.Keyword))
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	logger := opts.Logger.WithComponent("pipeline")
	if opts.Reporter == nil {
		opts.Reporter = reporting.NewLogReporter(opts.Logger, "")
	}
	return &Pass{opts: opts, logger: logger, state: StateIdle}, nil
}

// State returns the pass-level state of the most recent run.
func (p *Pass) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pass) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes one pass against h. The returned Result is non-nil whenever
// entries were processed, even if one of them failed; the error is the first
// fatal error encountered.
func (p *Pass) Run(ctx context.Context, h host.Host) (*Result, error) {
	start := time.Now()
	perf := logging.StartOperation(p.logger, "extraction_pass")

	p.setState(StateCollectingLocales)
	dir := locale.ResolveDir(h.Context(), p.opts.LocalesDir)
	cat, err := locale.Load(dir, p.opts.Ext)
	if err != nil {
		p.setState(StateAborted)
		perf.EndWithError(ctx, err)
		return nil, err
	}

	snapshot, err := h.Snapshot()
	if err == nil {
		err = snapshot.Validate()
	}
	if err != nil {
		p.setState(StateAborted)
		err = errors.NewManifestError("invalid module graph", err)
		perf.EndWithError(ctx, err)
		return nil, err
	}

	targets := graph.CollectEntryTargets(snapshot, graph.Options{
		LocalesDir:    dir,
		ScriptPattern: p.opts.ScriptPattern,
		SourcePattern: p.opts.SourcePattern,
	})
	p.logger.Debug(ctx, "collected entry targets", "entries", len(targets), "locales", len(cat.IDs()))

	result := &Result{
		Locales: cat.IDs(),
		Entries: make([]EntryResult, len(targets)),
	}
	collector := errors.NewCollector()

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target graph.EntryTargets) {
			defer wg.Done()
			er := p.runEntry(ctx, cat, h, target)
			result.Entries[i] = er
			collector.AddError(er.Err)
		}(i, target)
	}
	wg.Wait()

	result.Duration = time.Since(start)
	if err := collector.Err(); err != nil {
		p.setState(StateFailed)
		perf.EndWithError(ctx, err)
		return result, err
	}

	p.setState(StateDone)
	perf.End(ctx,
		"entries", len(result.Entries),
		"artifacts", result.Updated(),
		"misses", result.Misses())
	return result, nil
}

func (p *Pass) runEntry(ctx context.Context, cat *locale.Catalog, store host.AssetStore, target graph.EntryTargets) EntryResult {
	er := EntryResult{
		Entry:       target.Entry,
		State:       StateExtractKeys,
		SourceFiles: len(target.SourceFiles),
	}
	logger := p.logger.With("entry", target.Entry)
	fail := func(err error) EntryResult {
		var e *errors.Error
		if errors.As(err, &e) && e.Entry == "" {
			err = e.WithEntry(target.Entry)
		}
		er.State = StateFailed
		er.Err = err
		logger.Error(ctx, err, "entry failed")
		return er
	}

	records, err := p.opts.Oracle.Extract(ctx, target.SourceFiles, cat.IDs(), p.opts.OracleConfig)
	if err != nil {
		var e *errors.Error
		if !errors.As(err, &e) {
			err = errors.NewExtractionError("extractor failed", err)
		}
		return fail(err)
	}
	keys := oracle.KeysByLocale(records)
	logger.Debug(ctx, "keys extracted", "keys", keys.Total(), "locales", len(keys))

	er.State = StateReconcile
	reduced := reconcile.ReconcileAll(ctx, cat, keys, target.Entry, p.opts.Reporter)
	er.Misses = reduced.Misses
	er.Keys = make(map[string]int, len(reduced.Trees))
	for id, tree := range reduced.Trees {
		er.Keys[id] = tree.Len()
	}

	er.State = StateInject
	block, err := inject.Render(cat.IDs(), reduced.Trees, p.opts.Keyword)
	if err != nil {
		return fail(err)
	}
	er.Block = block

	updated := make([]string, 0, len(target.Artifacts))
	for _, name := range target.Artifacts {
		if _, ok := store.GetArtifact(name); !ok {
			logger.Debug(ctx, "skipping unknown artifact", "artifact", name)
			continue
		}
		updated = append(updated, name)
	}
	if _, err := inject.Apply(store, updated, block); err != nil {
		return fail(err)
	}
	er.Artifacts = updated
	er.State = StateDone

	logger.Debug(ctx, "entry done",
		"files", er.SourceFiles,
		"artifacts", len(er.Artifacts),
		"misses", er.Misses)
	return er
}
