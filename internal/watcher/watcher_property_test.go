//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks the batches a debouncer emits.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("one event per distinct path, sorted", prop.ForAll(
		func(ids []int) bool {
			if len(ids) == 0 {
				return true
			}
			d := &Debouncer{
				delay:  time.Hour,
				events: make(chan ChangeEvent, 1),
				output: make(chan []ChangeEvent, 1),
			}
			distinct := make(map[string]struct{})
			for _, id := range ids {
				path := fmt.Sprintf("locales/%d.json", id)
				distinct[path] = struct{}{}
				d.addEvent(ChangeEvent{Type: EventTypeModified, Path: path})
			}
			d.timer.Stop()
			d.flush()

			batch := <-d.output
			if len(batch) != len(distinct) {
				return false
			}
			return sort.SliceIsSorted(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.Property("last event per path wins", prop.ForAll(
		func(types []int) bool {
			if len(types) == 0 {
				return true
			}
			d := &Debouncer{
				delay:  time.Hour,
				events: make(chan ChangeEvent, 1),
				output: make(chan []ChangeEvent, 1),
			}
			for _, tp := range types {
				d.addEvent(ChangeEvent{Type: EventType(tp), Path: "manifest.json"})
			}
			d.timer.Stop()
			d.flush()

			batch := <-d.output
			return len(batch) == 1 && batch[0].Type == EventType(types[len(types)-1])
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
