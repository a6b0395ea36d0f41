// Package reporting carries non-fatal findings of an extraction pass to the
// caller. Every stage receives a Reporter explicitly; nothing reports through
// a global logger.
package reporting

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/logging"
)

// Kind classifies an event.
type Kind string

const (
	// KindKeyNotFound is emitted when the extractor reports a key the
	// locale catalog does not define.
	KindKeyNotFound Kind = "key_not_found"
)

// Event is one reported finding.
type Event struct {
	Kind Kind
	// Key is the translation key involved.
	Key string
	// Locale is the locale id.
	Locale string
	// LocaleFile is the absolute path of the locale resource file.
	LocaleFile string
	// Entry is the entry point being processed.
	Entry string
}

// KeyNotFound builds a KindKeyNotFound event.
func KeyNotFound(key, locale, localeFile, entry string) Event {
	return Event{
		Kind:       KindKeyNotFound,
		Key:        key,
		Locale:     locale,
		LocaleFile: localeFile,
		Entry:      entry,
	}
}

// Err returns the event as a non-fatal structured error.
func (e Event) Err() *errors.Error {
	return errors.NewKeyNotFound(e.Key, e.Locale, e.LocaleFile, e.Entry)
}

// Reporter receives events. Implementations must be safe for concurrent use;
// entries report from their own goroutines.
type Reporter interface {
	Report(ctx context.Context, event Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, event Event)

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, event Event) {
	f(ctx, event)
}

// Nop discards every event.
var Nop Reporter = ReporterFunc(func(context.Context, Event) {})

// LogReporter writes each event as a warning.
type LogReporter struct {
	logger logging.Logger
	root   string
}

// NewLogReporter returns a reporter logging through logger. Locale file
// paths are shown relative to root.
func NewLogReporter(logger logging.Logger, root string) *LogReporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LogReporter{logger: logger.WithComponent("reporter"), root: root}
}

// Report logs the event.
func (r *LogReporter) Report(ctx context.Context, event Event) {
	switch event.Kind {
	case KindKeyNotFound:
		r.logger.Warn(ctx, nil, Message(event, r.root),
			"key", event.Key,
			"locale", event.Locale,
			"entry", event.Entry)
	default:
		r.logger.Warn(ctx, nil, "unknown event", "kind", string(event.Kind))
	}
}

// Message renders the default text for a key miss.
func Message(event Event, root string) string {
	path := event.LocaleFile
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			path = filepath.ToSlash(rel)
		}
	}
	return fmt.Sprintf("The key %q is not found in %q. Current entry is %q.", event.Key, path, event.Entry)
}

// KeyNotFoundFunc is a user callback for key misses.
type KeyNotFoundFunc func(key, locale, localeFilePath, entryName string)

// CallbackReporter routes key misses to a user callback and every other
// event to a fallback.
type CallbackReporter struct {
	onKeyNotFound KeyNotFoundFunc
	fallback      Reporter
}

// NewCallbackReporter returns a reporter calling fn for key misses. A nil
// fallback discards other events.
func NewCallbackReporter(fn KeyNotFoundFunc, fallback Reporter) *CallbackReporter {
	if fallback == nil {
		fallback = Nop
	}
	return &CallbackReporter{onKeyNotFound: fn, fallback: fallback}
}

// Report dispatches the event.
func (r *CallbackReporter) Report(ctx context.Context, event Event) {
	if event.Kind == KindKeyNotFound && r.onKeyNotFound != nil {
		r.onKeyNotFound(event.Key, event.Locale, event.LocaleFile, event.Entry)
		return
	}
	r.fallback.Report(ctx, event)
}

// Recorder keeps every event in arrival order and forwards it to next.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   Reporter
}

// NewRecorder returns a recorder forwarding to next, which may be nil.
func NewRecorder(next Reporter) *Recorder {
	return &Recorder{next: next}
}

// Report records the event.
func (r *Recorder) Report(ctx context.Context, event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Report(ctx, event)
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// CountByEntry returns the number of events per entry.
func (r *Recorder) CountByEntry() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range r.events {
		counts[e.Entry]++
	}
	return counts
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
