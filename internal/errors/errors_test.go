package errors

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := ErrLocaleUnreadable("zh-CN", "/repo/locales/zh-CN.json", fmt.Errorf("unexpected EOF"))

	msg := err.Error()
	assert.Contains(t, msg, "[ERR_LOCALE_UNREADABLE]")
	assert.Contains(t, msg, "locale:zh-CN")
	assert.Contains(t, msg, "/repo/locales/zh-CN.json")
	assert.Contains(t, msg, "unexpected EOF")
}

func TestErrorIs(t *testing.T) {
	err := ErrEmptyLocaleDir("/repo/locales", ".json")
	wrapped := fmt.Errorf("pass failed: %w", err)

	assert.True(t, errors.Is(wrapped, &Error{Type: ErrorTypeCatalog, Code: ErrCodeEmptyLocaleDir}))
	assert.False(t, errors.Is(wrapped, &Error{Type: ErrorTypeCatalog, Code: ErrCodeLocaleUnreadable}))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := NewExtractionError("extractor failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIsFatal(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"config", ErrLocalesDirRequired(), true},
		{"catalog", ErrEmptyLocaleDir("dir", ".json"), true},
		{"key not found", NewKeyNotFound("title", "en", "/l/en.json", "index"), false},
		{"plain error", fmt.Errorf("boom"), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsFatal(tc.err))
		})
	}
}

func TestIsConfigError(t *testing.T) {
	assert.True(t, IsConfigError(ErrLocalesDirRequired()))
	assert.False(t, IsConfigError(ErrEmptyLocaleDir("dir", ".json")))
	assert.False(t, IsConfigError(fmt.Errorf("plain")))
}

func TestHasCode(t *testing.T) {
	inner := ErrLocaleUnreadable("en", "/l/en.json", nil)
	outer := NewInternalError(ErrCodeInternalError, "pass aborted", inner)

	assert.True(t, HasCode(outer, ErrCodeLocaleUnreadable))
	assert.True(t, HasCode(outer, ErrCodeInternalError))
	assert.False(t, HasCode(outer, ErrCodeEmptyLocaleDir))
	assert.False(t, HasCode(nil, ErrCodeInternalError))
}

func TestWithContext(t *testing.T) {
	err := NewManifestError("bad chunk reference", nil).
		WithContext("chunk", 7).
		WithEntry("index")

	require.NotNil(t, err.Context)
	assert.Equal(t, 7, err.Context["chunk"])
	assert.Equal(t, "index", err.Entry)
}

func TestCollector(t *testing.T) {
	collector := NewCollector()
	assert.False(t, collector.HasErrors())
	assert.NoError(t, collector.Err())

	collector.AddError(nil)
	assert.False(t, collector.HasErrors())

	first := NewExtractionError("extractor failed", nil).WithEntry("index")
	second := NewInjectionError("update failed", nil).WithEntry("other")
	collector.AddError(first)
	collector.AddError(second)

	assert.True(t, collector.HasErrors())
	assert.Equal(t, first, collector.Err())
	assert.Len(t, collector.GetErrors(), 2)
	assert.Equal(t, []error{second}, collector.GetErrorsByEntry("other"))
	assert.ErrorIs(t, collector.Join(), second)
}

func TestCollectorConcurrentAdd(t *testing.T) {
	collector := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			collector.AddError(fmt.Errorf("error %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, collector.GetErrors(), 50)
}
