package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateArgument(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr bool
	}{
		{name: "flag", arg: "--config=i18next.config.js", wantErr: false},
		{name: "relative path", arg: "./scripts/extract.mjs", wantErr: false},
		{name: "absolute path", arg: "/opt/tools/extract", wantErr: false},
		{name: "semicolon", arg: "extract; rm -rf /", wantErr: true},
		{name: "pipe", arg: "extract | cat /etc/passwd", wantErr: true},
		{name: "backtick", arg: "extract`whoami`", wantErr: true},
		{name: "substitution", arg: "file$(id).txt", wantErr: true},
		{name: "newline", arg: "a\nb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgument(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	assert.NoError(t, ValidateCommand("node"))
	assert.NoError(t, ValidateCommand("./node_modules/.bin/i18next-extract"))
	assert.Error(t, ValidateCommand(""))
	assert.Error(t, ValidateCommand("node extract.js"))
	assert.Error(t, ValidateCommand("node&&curl"))
}

func TestValidateLocaleID(t *testing.T) {
	assert.NoError(t, ValidateLocaleID("en"))
	assert.NoError(t, ValidateLocaleID("zh-CN"))
	assert.Error(t, ValidateLocaleID(""))
	assert.Error(t, ValidateLocaleID(".."))
	assert.Error(t, ValidateLocaleID("en/US"))
	assert.Error(t, ValidateLocaleID(`en\US`))
}

func TestValidateExtension(t *testing.T) {
	allowed := []string{".json", ".yaml"}

	assert.NoError(t, ValidateExtension(".json", allowed))
	assert.NoError(t, ValidateExtension(".YAML", allowed))
	assert.Error(t, ValidateExtension(".toml", allowed))
	assert.Error(t, ValidateExtension("", allowed))
}

func TestValidateListenAddr(t *testing.T) {
	assert.NoError(t, ValidateListenAddr("localhost:7331"))
	assert.NoError(t, ValidateListenAddr(":0"))
	assert.Error(t, ValidateListenAddr("localhost"))
	assert.Error(t, ValidateListenAddr("localhost:http"))
	assert.Error(t, ValidateListenAddr("localhost:70000"))
}

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"localhost:7331", "http://127.0.0.1:7331"}

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{"allowed host", "http://localhost:7331", false},
		{"allowed exact", "http://127.0.0.1:7331", false},
		{"empty", "", true},
		{"foreign", "https://evil.example", true},
		{"bad scheme", "file://localhost:7331", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrigin(tt.origin, allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
