package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/resource"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestResolveDir(t *testing.T) {
	assert.Equal(t, "/abs/locales", ResolveDir("/project", "/abs/locales"))
	assert.Equal(t, filepath.Join("/project", "locales"), ResolveDir("/project", "./locales"))
	assert.Equal(t, filepath.Join("/project", "src", "locales"), ResolveDir("/project", "src/locales"))
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, ".json", NormalizeExt(""))
	assert.Equal(t, ".json", NormalizeExt("json"))
	assert.Equal(t, ".yaml", NormalizeExt(".YAML"))
	assert.True(t, SupportedExt("yml"))
	assert.False(t, SupportedExt(".toml"))
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/l", "zh-CN.json"), FilePath("/l", "zh-CN", ""))
	assert.Equal(t, filepath.Join("/l", "en.yaml"), FilePath("/l", "en", "yaml"))
}

func TestListLocales(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh-CN.json", `{}`)
	writeFile(t, dir, "en.json", `{}`)
	writeFile(t, dir, "notes.txt", `ignored`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fr.json"), 0755))

	locales, err := ListLocales(dir, ".json")
	require.NoError(t, err)
	require.Len(t, locales, 2)

	assert.Equal(t, "en", locales[0].ID)
	assert.Equal(t, filepath.Join(dir, "en.json"), locales[0].Path)
	assert.Equal(t, language.English, locales[0].Tag)
	assert.Equal(t, "zh-CN", locales[1].ID)
	assert.Equal(t, language.MustParse("zh-CN"), locales[1].Tag)
}

func TestListLocalesNonBCP47ID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "not_a_tag!.json", `{}`)

	locales, err := ListLocales(dir, ".json")
	require.NoError(t, err)
	require.Len(t, locales, 1)
	assert.Equal(t, language.Und, locales[0].Tag)
}

func TestListLocalesSymbolCollision(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		path  string
	}{
		{"separator", []string{"zh-CN.json", "zh_CN.json"}, "zh_CN.json"},
		{"case", []string{"en.json", "EN.json"}, "en.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, dir, f, `{}`)
			}

			_, err := ListLocales(dir, ".json")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeLocaleUnreadable))
			assert.Contains(t, err.Error(), "both map to placeholder")
			assert.Contains(t, err.Error(), filepath.Join(dir, tt.path))

			_, err = Load(dir, ".json")
			assert.True(t, errors.HasCode(err, errors.ErrCodeLocaleUnreadable))
		})
	}
}

func TestListLocalesEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# locales")

	_, err := ListLocales(dir, ".json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyLocaleDir))
	assert.True(t, errors.IsFatal(err))
}

func TestListLocalesMissingDir(t *testing.T) {
	_, err := ListLocales(filepath.Join(t.TempDir(), "nope"), ".json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyLocaleDir))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.json", `{"title":"Welcome","unused":"X"}`)
	writeFile(t, dir, "zh-CN.json", `{"title":"你好"}`)

	cat, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "zh-CN"}, cat.IDs())
	assert.Equal(t, dir, cat.Dir())
	assert.Equal(t, ".json", cat.Ext())
	assert.Equal(t, filepath.Join(dir, "zh-CN.json"), cat.Path("zh-CN"))

	en, ok := cat.Tree("en")
	require.True(t, ok)
	assert.Equal(t, []string{"title", "unused"}, en.Keys())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.yaml", "title: Welcome\nlook:\n  deep: Look deep\n")

	cat, err := Load(dir, "yaml")
	require.NoError(t, err)

	en, ok := cat.Tree("en")
	require.True(t, ok)
	v, ok := en.Get("look")
	require.True(t, ok)
	look, ok := v.(*resource.Tree)
	require.True(t, ok)
	deep, _ := look.Get("deep")
	assert.Equal(t, "Look deep", deep)
}

func TestLoadInvalidLocaleAbortsWholeCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.json", `{"title":"Welcome"}`)
	writeFile(t, dir, "zh-CN.json", `{"title": `)

	cat, err := Load(dir, ".json")
	require.Error(t, err)
	assert.Nil(t, cat)
	assert.True(t, errors.HasCode(err, errors.ErrCodeLocaleUnreadable))
	assert.Contains(t, err.Error(), "zh-CN.json")
}

func TestLoadUnsupportedExt(t *testing.T) {
	_, err := Load(t.TempDir(), ".toml")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestLoadLocaleMissingFile(t *testing.T) {
	_, err := LoadLocale(Locale{ID: "en", Path: filepath.Join(t.TempDir(), "en.json")})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeLocaleUnreadable))
}
