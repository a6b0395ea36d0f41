package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/notify"
	"github.com/conneroisu/i18nextract/internal/pipeline"
	"github.com/conneroisu/i18nextract/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-run extraction when locales or the manifest change",
	Long: `Run a pass, then watch the locales directory and the build manifest and run
again after every burst of changes. Output always goes to --dest
(output.dest), so that repeated passes start from the bundler's output
instead of stacking blocks onto already injected artifacts.

With --notify, a WebSocket endpoint at ws://<addr>/ws receives a JSON
message after each pass.

Examples:
  i18nextract watch --dest dist-i18n
  i18nextract watch --dest dist-i18n --notify localhost:7331
  i18nextract watch --dest dist-i18n --debounce 500ms`,
	RunE: runWatch,
}

var watchFlags *StandardFlags

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddStandardFlags(watchCmd, "pass")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a pass runs")
	watchCmd.Flags().String("notify", "", "serve pass notifications on this address")
	watchCmd.Flags().BoolP("verbose", "v", false, "Print changed files")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := watchFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Output.Dest == "" {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			"watch needs output.dest (--dest): injecting in place would stack blocks on every pass")
	}
	logger := newLogger(cmd, cfg)

	runner, err := newPassRunner(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *notify.Hub
	if cfg.Watch.NotifyAddr != "" {
		ln, err := net.Listen("tcp", cfg.Watch.NotifyAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Watch.NotifyAddr, err)
		}
		hub = notify.NewHub(cfg.Watch.AllowedOrigins, logger)
		go func() {
			if err := hub.Serve(ctx, ln); err != nil {
				logger.Error(ctx, err, "notify server stopped")
			}
		}()
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	handler := passHandler(runner, hub, cmd.OutOrStdout(), verbose)
	if err := handler(ctx, nil); err != nil {
		logger.Error(ctx, err, "initial pass failed")
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	localesDir := locale.ResolveDir(cfg.Root, cfg.Locales.Dir)
	manifest := cfg.ResolvePath(cfg.Manifest)
	fileWatcher.AddFilter(watcher.NoTempFilter)
	fileWatcher.AddFilter(watcher.FileOrDirFilter([]string{manifest}, []string{localesDir}))
	fileWatcher.AddHandler(handler)

	if err := fileWatcher.AddRecursive(localesDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", localesDir, err)
	}
	if err := fileWatcher.AddPath(manifest); err != nil {
		return fmt.Errorf("failed to watch %s: %w", manifest, err)
	}
	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s and %s (Ctrl+C to stop)\n",
		relOrAbs(cfg.Root, localesDir), relOrAbs(cfg.Root, manifest))
	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "Stopping watcher")
	return nil
}

// passHandler runs a pass per change batch and broadcasts the outcome when
// hub is set.
func passHandler(runner *passRunner, hub *notify.Hub, out io.Writer, verbose bool) watcher.ChangeHandler {
	return func(ctx context.Context, events []watcher.ChangeEvent) error {
		if verbose {
			for _, event := range events {
				fmt.Fprintf(out, "  %s: %s\n", event.Type, event.Path)
			}
		}

		outcome, err := runner.run(ctx, false)
		var result *pipeline.Result
		if outcome != nil {
			result = outcome.Result
		}
		if hub != nil {
			hub.Broadcast(passMessage(result, err))
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "[%s] %d artifact(s) updated, %d missing key(s)\n",
			time.Now().Format("15:04:05"), result.Updated(), result.Misses())
		return nil
	}
}

// passMessage converts a pass result into a notification.
func passMessage(result *pipeline.Result, err error) notify.Message {
	msg := notify.Message{Type: notify.TypePassComplete}
	if err != nil {
		msg.Type = notify.TypePassFailed
		msg.Error = err.Error()
	}
	if result == nil {
		return msg
	}

	msg.Locales = result.Locales
	for _, e := range result.Entries {
		em := notify.EntryMessage{
			Entry:     e.Entry,
			Artifacts: e.Artifacts,
			Misses:    e.Misses,
		}
		if em.Artifacts == nil {
			em.Artifacts = []string{}
		}
		if e.Err != nil {
			em.Error = e.Err.Error()
		}
		msg.Entries = append(msg.Entries, em)
	}
	sort.Slice(msg.Entries, func(i, j int) bool { return msg.Entries[i].Entry < msg.Entries[j].Entry })
	return msg
}

func relOrAbs(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
