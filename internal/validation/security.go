// Package validation guards the values that reach a process boundary: the
// extractor command line, locale identifiers used as file names, and the
// notify listener address and origins.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// shellMetacharacters are rejected anywhere in a command or argument. The
// extractor runs without a shell, but a value containing these almost always
// means a shell pipeline was pasted into config.
var shellMetacharacters = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\n", "\r", "\x00"}

// ValidateArgument validates a single extractor argument.
func ValidateArgument(arg string) error {
	for _, char := range shellMetacharacters {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %q", char)
		}
	}
	return nil
}

// ValidateCommand validates the extractor executable. Bare names are looked
// up on PATH; paths may be absolute or relative to the project root.
func ValidateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("command cannot be empty")
	}
	if strings.ContainsAny(command, " \t") {
		return fmt.Errorf("command '%s' contains whitespace; pass arguments separately", command)
	}
	if err := ValidateArgument(command); err != nil {
		return fmt.Errorf("invalid command '%s': %w", command, err)
	}
	return nil
}

// ValidateLocaleID checks that a locale id can name a file directly inside
// the locales directory.
func ValidateLocaleID(id string) error {
	if id == "" {
		return fmt.Errorf("locale id cannot be empty")
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("locale id '%s' is not a plain file name", id)
	}
	if filepath.Base(id) != id {
		return fmt.Errorf("locale id '%s' is not a plain file name", id)
	}
	return nil
}

// ValidateExtension validates a locale file extension against an allowlist.
func ValidateExtension(ext string, allowed []string) error {
	if ext == "" {
		return fmt.Errorf("extension cannot be empty")
	}
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return nil
		}
	}
	return fmt.Errorf("extension '%s' is not supported (want one of %s)", ext, strings.Join(allowed, ", "))
}

// ValidateListenAddr validates a host:port listen address.
func ValidateListenAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address '%s': %w", addr, err)
	}
	if strings.ContainsAny(host, " /") {
		return fmt.Errorf("invalid host in listen address '%s'", addr)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port in listen address '%s'", addr)
	}
	return nil
}

// ValidateOrigin validates a WebSocket origin for CSRF protection.
func ValidateOrigin(origin string, allowedOrigins []string) error {
	if origin == "" {
		return fmt.Errorf("origin header is required")
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin format: %w", err)
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return fmt.Errorf("invalid origin scheme '%s': only http and https are allowed", originURL.Scheme)
	}

	for _, allowed := range allowedOrigins {
		if origin == allowed || originURL.Host == allowed {
			return nil
		}
	}
	return fmt.Errorf("origin '%s' is not in allowed origins list", origin)
}
