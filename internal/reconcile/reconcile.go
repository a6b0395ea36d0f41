// Package reconcile reduces locale catalogs to the keys an entry references.
package reconcile

import (
	"context"

	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/oracle"
	"github.com/conneroisu/i18nextract/internal/reporting"
	"github.com/conneroisu/i18nextract/internal/resource"
)

// Reconcile returns a tree holding exactly keys, in order. Values present in
// catalog are copied verbatim, nested trees included. A key the catalog lacks
// is passed to miss and mapped to the empty string so it stays defined at
// runtime. Presence decides, not value: an empty string in the catalog is a
// hit.
func Reconcile(catalog *resource.Tree, keys []string, miss func(key string)) *resource.Tree {
	out := resource.NewTree()
	for _, key := range keys {
		if out.Has(key) {
			continue
		}
		if v, ok := catalog.Get(key); ok {
			out.Set(key, v)
			continue
		}
		if miss != nil {
			miss(key)
		}
		out.Set(key, "")
	}
	return out
}

// Reduced is the reconciliation result of one entry.
type Reduced struct {
	// Trees maps every catalog locale to its reduced tree.
	Trees map[string]*resource.Tree
	// Misses counts reported keys absent from the catalog.
	Misses int
}

// ReconcileAll reduces every catalog locale for entry. A locale the extractor
// did not report reduces to an empty tree. Misses are reported to r with the
// absolute locale file path.
func ReconcileAll(ctx context.Context, cat *locale.Catalog, ks oracle.KeySet, entry string, r reporting.Reporter) *Reduced {
	if r == nil {
		r = reporting.Nop
	}
	reduced := &Reduced{Trees: make(map[string]*resource.Tree, len(cat.Locales()))}
	for _, l := range cat.Locales() {
		catalog, _ := cat.Tree(l.ID)
		path := cat.Path(l.ID)
		reduced.Trees[l.ID] = Reconcile(catalog, ks.Keys(l.ID), func(key string) {
			reduced.Misses++
			r.Report(ctx, reporting.KeyNotFound(key, l.ID, path, entry))
		})
	}
	return reduced
}
