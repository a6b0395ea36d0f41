//go:build property
// +build property

package reconcile

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/i18nextract/internal/resource"
)

// TestReconcileProperties checks that reduced trees hold exactly the
// referenced keys, whatever the catalog contains.
func TestReconcileProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	keyGen := gen.SliceOf(gen.RegexMatch(`^[a-z]{1,3}$`))

	properties.Property("key set equals referenced set", prop.ForAll(
		func(catalogKeys, referenced []string) bool {
			catalog := resource.NewTree()
			for _, k := range catalogKeys {
				catalog.Set(k, "v:"+k)
			}

			out := Reconcile(catalog, referenced, nil)

			want := make(map[string]bool)
			for _, k := range referenced {
				want[k] = true
			}
			if out.Len() != len(want) {
				return false
			}
			for _, k := range out.Keys() {
				if !want[k] {
					return false
				}
			}
			return true
		},
		keyGen, keyGen,
	))

	properties.Property("misses map to empty string and are reported once", prop.ForAll(
		func(catalogKeys, referenced []string) bool {
			catalog := resource.NewTree()
			for _, k := range catalogKeys {
				catalog.Set(k, "v:"+k)
			}

			missed := make(map[string]int)
			out := Reconcile(catalog, referenced, func(k string) { missed[k]++ })

			for _, k := range out.Keys() {
				v, _ := out.Get(k)
				if catalog.Has(k) {
					if v != "v:"+k || missed[k] != 0 {
						return false
					}
				} else if v != "" || missed[k] != 1 {
					return false
				}
			}
			return true
		},
		keyGen, keyGen,
	))

	properties.Property("deterministic output", prop.ForAll(
		func(catalogKeys, referenced []string) bool {
			catalog := resource.NewTree()
			for _, k := range catalogKeys {
				catalog.Set(k, k)
			}
			a, errA := Reconcile(catalog, referenced, nil).MarshalJSON()
			b, errB := Reconcile(catalog, referenced, nil).MarshalJSON()
			return errA == nil && errB == nil && string(a) == string(b)
		},
		keyGen, keyGen,
	))

	properties.TestingRun(t)
}
