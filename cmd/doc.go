// Package cmd provides the command-line interface for i18nextract.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - init: Write a starter .i18nextract.yml
//   - inject: Run one extraction pass over the build output
//   - watch: Re-run passes on locale and manifest changes
//   - locales: List the locale catalog with key counts
//   - rewrite: Print the placeholder module for a resource file
//   - config: Show or validate the resolved configuration
//   - version: Print build information
//
// # Command Examples
//
//	// Inject into a copy of the build output
//	i18nextract inject --dest dist-i18n
//
//	// Preview the blocks without writing anything
//	i18nextract inject --dry-run
//
//	// Use a static keys file instead of an extractor
//	i18nextract inject --keys-file keys.json
//
//	// Watch, and notify a dev server over WebSocket
//	i18nextract watch --dest dist-i18n --notify localhost:7331
//
// # Configuration
//
// Flags take precedence over I18NEXTRACT_ environment variables (including
// those from a .env file), which take precedence over .i18nextract.yml.
// See internal/config for the full key list.
//
// # Error Handling
//
// Commands return errors from internal/errors unchanged, so the exit
// message carries the error code (ERR_LOCALES_DIR_REQUIRED,
// ERR_MANIFEST_INVALID, ...). Usage is not printed for runtime failures.
package cmd
