package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/i18nextract/internal/locale"
	"github.com/conneroisu/i18nextract/internal/oracle"
	"github.com/conneroisu/i18nextract/internal/reporting"
	"github.com/conneroisu/i18nextract/internal/resource"
)

func parse(t *testing.T, src string) *resource.Tree {
	t.Helper()
	tr, err := resource.ParseJSON([]byte(src))
	require.NoError(t, err)
	return tr
}

func marshal(t *testing.T, tr *resource.Tree) string {
	t.Helper()
	out, err := tr.MarshalJSON()
	require.NoError(t, err)
	return string(out)
}

func TestReconcileDropsUnreferencedKeys(t *testing.T) {
	catalog := parse(t, `{"title":"Welcome","unused":"X"}`)

	out := Reconcile(catalog, []string{"title"}, nil)

	assert.Equal(t, `{"title":"Welcome"}`, marshal(t, out))
}

func TestReconcileMissingKey(t *testing.T) {
	catalog := parse(t, `{"title":"Welcome"}`)
	var missed []string

	out := Reconcile(catalog, []string{"title", "missing"}, func(key string) {
		missed = append(missed, key)
	})

	assert.Equal(t, `{"title":"Welcome","missing":""}`, marshal(t, out))
	assert.Equal(t, []string{"missing"}, missed)
}

func TestReconcileKeepsOracleOrder(t *testing.T) {
	catalog := parse(t, `{"a":"1","b":"2","c":"3"}`)

	out := Reconcile(catalog, []string{"c", "a", "c"}, nil)

	assert.Equal(t, []string{"c", "a"}, out.Keys())
}

func TestReconcileCopiesNestedAndLiteralValues(t *testing.T) {
	catalog := parse(t, `{"nav":{"home":"Home","about":"About"},"count":3,"empty":"","list":["a","b"]}`)
	missed := 0

	out := Reconcile(catalog, []string{"nav", "count", "empty", "list"}, func(string) { missed++ })

	assert.Equal(t, `{"nav":{"home":"Home","about":"About"},"count":3,"empty":"","list":["a","b"]}`, marshal(t, out))
	assert.Zero(t, missed)
}

func TestReconcileNilCatalog(t *testing.T) {
	missed := 0
	out := Reconcile(nil, []string{"a"}, func(string) { missed++ })

	assert.Equal(t, `{"a":""}`, marshal(t, out))
	assert.Equal(t, 1, missed)
}

func newCatalog(t *testing.T, trees map[string]string) *locale.Catalog {
	t.Helper()
	var locales []locale.Locale
	parsed := make(map[string]*resource.Tree)
	for _, id := range []string{"en", "zh-CN"} {
		src, ok := trees[id]
		if !ok {
			continue
		}
		locales = append(locales, locale.Locale{ID: id, Path: locale.FilePath("/app/locales", id, ".json")})
		parsed[id] = parse(t, src)
	}
	return locale.NewCatalog("/app/locales", ".json", locales, parsed)
}

func TestReconcileAll(t *testing.T) {
	cat := newCatalog(t, map[string]string{
		"en":    `{"title":"Welcome","unused":"X"}`,
		"zh-CN": `{"title":"你好"}`,
	})
	ks := oracle.KeySet{
		"en":    {"title", "missing"},
		"zh-CN": {"title"},
	}
	rec := reporting.NewRecorder(nil)

	reduced := ReconcileAll(context.Background(), cat, ks, "index", rec)

	assert.Equal(t, `{"title":"Welcome","missing":""}`, marshal(t, reduced.Trees["en"]))
	assert.Equal(t, `{"title":"你好"}`, marshal(t, reduced.Trees["zh-CN"]))
	assert.Equal(t, 1, reduced.Misses)
	assert.Equal(t, []reporting.Event{
		reporting.KeyNotFound("missing", "en", locale.FilePath("/app/locales", "en", ".json"), "index"),
	}, rec.Events())
}

func TestReconcileAllUnreportedLocale(t *testing.T) {
	cat := newCatalog(t, map[string]string{
		"en":    `{"title":"Welcome"}`,
		"zh-CN": `{"title":"你好"}`,
	})

	reduced := ReconcileAll(context.Background(), cat, oracle.KeySet{"en": {"title"}}, "index", nil)

	assert.Equal(t, `{}`, marshal(t, reduced.Trees["zh-CN"]))
	assert.Zero(t, reduced.Misses)
}
