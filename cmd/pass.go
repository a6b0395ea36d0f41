package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/i18nextract/internal/config"
	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/host"
	"github.com/conneroisu/i18nextract/internal/logging"
	"github.com/conneroisu/i18nextract/internal/oracle"
	"github.com/conneroisu/i18nextract/internal/pipeline"
	"github.com/conneroisu/i18nextract/internal/reporting"
)

// passRunner runs extraction passes for the CLI. The oracle, and with it
// the extractor cache, lives across passes in watch mode.
type passRunner struct {
	cfg      *config.Config
	logger   logging.Logger
	oracle   oracle.Oracle
	recorder *reporting.Recorder
	pass     *pipeline.Pass
}

// passOutcome is what one CLI pass did.
type passOutcome struct {
	Result  *pipeline.Result
	Written int
	Dest    string
	// Missing lists key misses in the order they were reported.
	Missing []reporting.Event
	// MissesByEntry counts Missing per entry.
	MissesByEntry map[string]int
}

func newPassRunner(cfg *config.Config, logger logging.Logger) (*passRunner, error) {
	o, err := newOracle(cfg, logger)
	if err != nil {
		return nil, err
	}

	script, err := cfg.ScriptRegexp()
	if err != nil {
		return nil, err
	}
	source, err := cfg.SourceRegexp()
	if err != nil {
		return nil, err
	}

	recorder := reporting.NewRecorder(reporting.NewLogReporter(logger, cfg.Root))
	pass, err := pipeline.New(pipeline.Options{
		LocalesDir:    cfg.ResolvePath(cfg.Locales.Dir),
		Ext:           cfg.Locales.Ext,
		Oracle:        o,
		OracleConfig:  cfg.Extractor.Config,
		Reporter:      recorder,
		Keyword:       cfg.Inject.Keyword,
		ScriptPattern: script,
		SourcePattern: source,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	return &passRunner{
		cfg:      cfg,
		logger:   logger,
		oracle:   o,
		recorder: recorder,
		pass:     pass,
	}, nil
}

// newOracle prefers an extractor command, wrapped in a content-addressed
// cache, over a static keys file.
func newOracle(cfg *config.Config, logger logging.Logger) (oracle.Oracle, error) {
	if !cfg.HasExtractor() {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			"no extractor configured: set extractor.command or extractor.keys_file")
	}

	if cfg.Extractor.Command != "" {
		command, err := oracle.NewCommandOracle(
			cfg.Extractor.Command,
			cfg.Extractor.Args,
			cfg.Root,
			cfg.Extractor.Timeout,
			logger,
		)
		if err != nil {
			return nil, err
		}
		cached, err := oracle.NewCachedOracle(command, cfg.Extractor.CacheSize, logger)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}

	static, err := oracle.LoadStaticOracle(cfg.ResolvePath(cfg.Extractor.KeysFile), cfg.Root)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, err.Error())
	}
	return static, nil
}

// openHost loads the manifest and the script artifacts it points at.
func openHost(cfg *config.Config) (*host.ManifestHost, error) {
	m, err := host.LoadManifest(cfg.ResolvePath(cfg.Manifest))
	if err != nil {
		return nil, err
	}
	if cfg.Output.Dir != "" {
		m.OutputPath = cfg.ResolvePath(cfg.Output.Dir)
	}

	script, err := cfg.ScriptRegexp()
	if err != nil {
		return nil, err
	}
	assets, err := host.LoadDir(m.OutputPath, script)
	if err != nil {
		return nil, errors.NewManifestError("failed to load artifacts", err).WithFile(m.OutputPath)
	}
	return host.NewManifestHost(m, assets), nil
}

// run executes one pass and, unless dryRun is set, writes updated artifacts
// to output.dest or back in place.
func (r *passRunner) run(ctx context.Context, dryRun bool) (*passOutcome, error) {
	r.recorder.Reset()

	h, err := openHost(r.cfg)
	if err != nil {
		return nil, err
	}

	result, err := r.pass.Run(ctx, h)
	if cached, ok := r.oracle.(*oracle.CachedOracle); ok {
		hits, misses := cached.Stats()
		r.logger.Debug(ctx, "extraction cache", "hits", hits, "misses", misses)
	}
	outcome := &passOutcome{
		Result:        result,
		Missing:       r.recorder.Events(),
		MissesByEntry: r.recorder.CountByEntry(),
	}
	if err != nil {
		return outcome, err
	}

	outcome.Dest = h.OutputPath()
	if dryRun {
		return outcome, nil
	}

	inPlace := true
	if r.cfg.Output.Dest != "" {
		outcome.Dest = r.cfg.ResolvePath(r.cfg.Output.Dest)
		inPlace = filepath.Clean(outcome.Dest) == filepath.Clean(h.OutputPath())
	}
	written, err := h.WriteDir(outcome.Dest, inPlace)
	outcome.Written = written
	if err != nil {
		return outcome, errors.NewInjectionError("failed to write artifacts", err).WithFile(outcome.Dest)
	}

	r.logger.Info(ctx, "pass complete",
		"entries", len(result.Entries),
		"artifacts", result.Updated(),
		"written", written,
		"misses", result.Misses(),
		"duration", result.Duration.String())
	return outcome, nil
}

// printSummary writes one row per entry, sorted by entry name. Miss counts
// come from misses; an entry without misses shows 0.
func printSummary(w io.Writer, result *pipeline.Result, misses map[string]int) error {
	entries := append([]pipeline.EntryResult(nil), result.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Entry < entries[j].Entry })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRY\tSTATE\tFILES\tARTIFACTS\tMISSES")
	fmt.Fprintln(tw, "-----\t-----\t-----\t---------\t------")
	for _, e := range entries {
		artifacts := strings.Join(e.Artifacts, ", ")
		if artifacts == "" {
			artifacts = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\n", e.Entry, e.State, e.SourceFiles, artifacts, misses[e.Entry])
	}
	fmt.Fprintf(tw, "\nLocales: %s\n", strings.Join(result.Locales, ", "))
	return tw.Flush()
}

// printMissing writes one line per key miss as a structured error, so the
// line carries ERR_KEY_NOT_FOUND with entry, locale and file.
func printMissing(w io.Writer, events []reporting.Event) {
	if len(events) == 0 {
		return
	}
	fmt.Fprintf(w, "\nMissing keys:\n")
	for _, event := range events {
		fmt.Fprintf(w, "  %s\n", event.Err())
	}
}
