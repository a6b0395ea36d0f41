package validation

import (
	"strings"
	"testing"
)

// FuzzValidateArgument checks that accepted arguments never carry shell
// metacharacters.
func FuzzValidateArgument(f *testing.F) {
	f.Add("--config=i18next.config.js")
	f.Add("extract; rm -rf /")
	f.Add("$(id)")
	f.Add("a\x00b")
	f.Add("")

	f.Fuzz(func(t *testing.T, arg string) {
		if ValidateArgument(arg) != nil {
			return
		}
		for _, char := range shellMetacharacters {
			if strings.Contains(arg, char) {
				t.Errorf("ValidateArgument accepted %q containing %q", arg, char)
			}
		}
	})
}

// FuzzValidateLocaleID checks that accepted ids never escape the locales
// directory.
func FuzzValidateLocaleID(f *testing.F) {
	f.Add("en")
	f.Add("../en")
	f.Add(`..\en`)
	f.Add("..")

	f.Fuzz(func(t *testing.T, id string) {
		if ValidateLocaleID(id) != nil {
			return
		}
		if strings.ContainsAny(id, `/\`) || id == ".." {
			t.Errorf("ValidateLocaleID accepted %q", id)
		}
	})
}
