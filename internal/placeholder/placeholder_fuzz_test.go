package placeholder

import (
	"regexp"
	"strings"
	"testing"
)

var identifierPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// FuzzSymbol checks that every locale id yields a valid, stable identifier.
func FuzzSymbol(f *testing.F) {
	f.Add("en")
	f.Add("zh-CN")
	f.Add("sr-Latn-RS")
	f.Add("")
	f.Add("ü-Ö")
	f.Add("en\x00US")

	f.Fuzz(func(t *testing.T, locale string) {
		sym := Symbol(locale)
		if sym != Symbol(locale) {
			t.Fatalf("Symbol(%q) is not deterministic", locale)
		}
		if !strings.HasPrefix(sym, symbolPrefix) || !strings.HasSuffix(sym, symbolSuffix) {
			t.Fatalf("Symbol(%q) = %q lacks sentinel prefix/suffix", locale, sym)
		}
		if !identifierPattern.MatchString(sym) {
			t.Fatalf("Symbol(%q) = %q is not an identifier", locale, sym)
		}
	})
}

// FuzzRewrite checks that rewriting never panics and yields an export unless
// a YAML source fails to parse.
func FuzzRewrite(f *testing.F) {
	f.Add("/project/locales/en.json", `{"a":"b"}`)
	f.Add("/project/locales/../locales/en.json", `{}`)
	f.Add(`C:\project\locales\en.json`, `{}`)
	f.Add("", "")

	r := &Rewriter{LocalesDir: "/project/locales", Ext: ".json"}
	f.Fuzz(func(t *testing.T, path, source string) {
		out, err := r.Rewrite(path, []byte(source))
		if err != nil {
			return
		}
		if !strings.HasPrefix(string(out), "module.exports = ") {
			t.Fatalf("Rewrite(%q) = %q lacks export", path, out)
		}
	})
}
