package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/conneroisu/i18nextract/internal/errors"
	"github.com/conneroisu/i18nextract/internal/logging"
	"github.com/conneroisu/i18nextract/internal/validation"
)

// DefaultTimeout bounds a single extractor run.
const DefaultTimeout = 2 * time.Minute

// request is written to the extractor's stdin.
type request struct {
	Files   []string       `json:"files"`
	Locales []string       `json:"locales"`
	Config  map[string]any `json:"config"`
}

// CommandOracle runs an external extractor process. The process receives a
// JSON request on stdin and must print a JSON array of records on stdout.
type CommandOracle struct {
	command string
	args    []string
	dir     string
	timeout time.Duration
	logger  logging.Logger
}

// NewCommandOracle creates an oracle backed by command. The command and every
// argument are validated up front; the process is never run through a shell.
func NewCommandOracle(command string, args []string, dir string, timeout time.Duration, logger logging.Logger) (*CommandOracle, error) {
	if err := validation.ValidateCommand(command); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("extractor command validation failed: %v", err))
	}
	for _, arg := range args {
		if err := validation.ValidateArgument(arg); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid extractor argument '%s': %v", arg, err))
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &CommandOracle{
		command: command,
		args:    append([]string(nil), args...),
		dir:     dir,
		timeout: timeout,
		logger:  logger.WithComponent("oracle"),
	}, nil
}

// Extract runs the extractor once for the given files.
func (o *CommandOracle) Extract(ctx context.Context, files, locales []string, extra map[string]any) ([]Record, error) {
	if extra == nil {
		extra = map[string]any{}
	}
	payload, err := json.Marshal(request{Files: files, Locales: locales, Config: extra})
	if err != nil {
		return nil, errors.NewExtractionError("failed to encode extractor request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, o.command, o.args...)
	cmd.Dir = o.dir
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	perf := logging.StartOperation(o.logger, "extract")
	if err := cmd.Run(); err != nil {
		perf.EndWithError(ctx, err)
		if ctx.Err() != nil {
			return nil, errors.NewExtractionError(
				fmt.Sprintf("extractor %s timed out after %s", o.command, o.timeout), ctx.Err())
		}
		return nil, errors.NewExtractionError(
			fmt.Sprintf("extractor %s failed: %s", o.command, strings.TrimSpace(stderr.String())), err)
	}
	perf.End(ctx, "files", len(files), "locales", len(locales))

	var records []Record
	if err := json.Unmarshal(stdout.Bytes(), &records); err != nil {
		return nil, errors.NewExtractionError(
			fmt.Sprintf("extractor %s returned invalid output", o.command), err)
	}
	return records, nil
}

// String returns the command line for diagnostics.
func (o *CommandOracle) String() string {
	return strings.Join(append([]string{o.command}, o.args...), " ")
}
