package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeCatalog    ErrorType = "catalog"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeInjection  ErrorType = "injection"
	ErrorTypeManifest   ErrorType = "manifest"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeLocalesDirRequired = "ERR_LOCALES_DIR_REQUIRED"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeEmptyLocaleDir     = "ERR_EMPTY_LOCALE_DIR"
	ErrCodeLocaleUnreadable   = "ERR_LOCALE_UNREADABLE"
	ErrCodeKeyNotFound        = "ERR_KEY_NOT_FOUND"
	ErrCodeExtractionFailed   = "ERR_EXTRACTION_FAILED"
	ErrCodeInjectionFailed    = "ERR_INJECTION_FAILED"
	ErrCodeManifestInvalid    = "ERR_MANIFEST_INVALID"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// Error is a structured error type with context.
type Error struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	Entry    string
	Locale   string
	FilePath string
	Fatal    bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Entry != "" {
		parts = append(parts, "entry:"+e.Entry)
	}

	if e.Locale != "" {
		parts = append(parts, "locale:"+e.Locale)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds file location information.
func (e *Error) WithFile(filePath string) *Error {
	e.FilePath = filePath

	return e
}

// WithEntry adds entry point context.
func (e *Error) WithEntry(entry string) *Error {
	e.Entry = entry

	return e
}

// WithLocale adds locale context.
func (e *Error) WithLocale(locale string) *Error {
	e.Locale = locale

	return e
}

// Error creation functions

// NewConfigError creates a configuration error. Configuration problems are
// detected before any build work starts and always fail the run.
func NewConfigError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Fatal:   true,
	}
}

// NewCatalogError creates a locale catalog error.
func NewCatalogError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeCatalog,
		Code:    code,
		Message: message,
		Cause:   cause,
		Fatal:   true,
	}
}

// NewExtractionError creates an oracle failure.
func NewExtractionError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeExtraction,
		Code:    ErrCodeExtractionFailed,
		Message: message,
		Cause:   cause,
		Fatal:   true,
	}
}

// NewInjectionError creates an artifact update failure.
func NewInjectionError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInjection,
		Code:    ErrCodeInjectionFailed,
		Message: message,
		Cause:   cause,
		Fatal:   true,
	}
}

// NewManifestError creates a build manifest error.
func NewManifestError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeManifest,
		Code:    ErrCodeManifestInvalid,
		Message: message,
		Cause:   cause,
		Fatal:   true,
	}
}

// NewKeyNotFound describes a referenced key that the catalog lacks. It is
// never returned from a pass; reporters receive it as event detail.
func NewKeyNotFound(key, locale, localeFile, entry string) *Error {
	return &Error{
		Type:     ErrorTypeCatalog,
		Code:     ErrCodeKeyNotFound,
		Message:  fmt.Sprintf("key %q not found", key),
		Entry:    entry,
		Locale:   locale,
		FilePath: localeFile,
		Fatal:    false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
		Fatal:   true,
	}
}

// As calls the standard errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsFatal checks if an error must abort the build pass.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal
	}

	return err != nil
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrorTypeConfig
	}

	return false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}

	return false
}

// Helper functions for common errors

// ErrLocalesDirRequired is returned when the locales directory option is
// missing or blank.
func ErrLocalesDirRequired() *Error {
	return NewConfigError(ErrCodeLocalesDirRequired, `the "locales.dir" option is required`)
}

// ErrEmptyLocaleDir is returned when a locales directory holds no locale file.
func ErrEmptyLocaleDir(dir, ext string) *Error {
	return NewCatalogError(
		ErrCodeEmptyLocaleDir,
		fmt.Sprintf("there is no \"*%s\" in %s, check the \"locales.dir\" option", ext, dir),
		nil,
	).WithFile(dir)
}

// ErrLocaleUnreadable is returned when a locale file is missing or unparsable.
func ErrLocaleUnreadable(locale, path string, cause error) *Error {
	return NewCatalogError(
		ErrCodeLocaleUnreadable,
		fmt.Sprintf("failed to read locale file %q", path),
		cause,
	).WithLocale(locale).WithFile(path)
}
