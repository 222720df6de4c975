package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/avlabel/internal/record"
)

// Defaults for the classifier subprocess.
const (
	// DefaultCommand is the classifier executable looked up on PATH.
	DefaultCommand = "avclass"

	// DefaultTimeout bounds one classifier invocation. Without it a hung
	// external tool would stall a pipeline worker for the rest of the run.
	DefaultTimeout = 30 * time.Second
)

// Classification errors. All of them degrade to an empty family value for
// the affected record; callers log and continue.
var (
	// ErrClassifierFailed is returned when the subprocess cannot be
	// launched, exits non-zero, or exceeds the timeout.
	ErrClassifierFailed = errors.New("classifier execution failed")

	// ErrUnexpectedOutput is returned when the classifier exits zero but
	// its stdout does not contain a second whitespace-delimited token.
	ErrUnexpectedOutput = errors.New("unexpected classifier output")
)

// Client invokes the external classifier for one record at a time.
// A single Client is safe for concurrent use by multiple workers; each
// invocation operates on its own temporary file and subprocess.
type Client struct {
	// command is the classifier executable name or path.
	command string

	// timeout bounds each subprocess invocation.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCommand sets the classifier executable. Default is "avclass".
func WithCommand(command string) Option {
	return func(c *Client) {
		if command != "" {
			c.command = command
		}
	}
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a classifier client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		command: DefaultCommand,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Label classifies one record and returns its family label.
//
// The document is serialized to a compact single line, written to a
// uniquely named temporary file next to the source record, and handed to
// the classifier as `<command> -f <tmpfile>`. On a zero exit status the
// label is the second whitespace-delimited token of stdout. The temporary
// file is removed before Label returns, regardless of outcome.
func (c *Client) Label(ctx context.Context, recordPath string, doc record.Document) (label string, err error) {
	payload, err := doc.Canonical()
	if err != nil {
		return "", err
	}

	// Unique name so concurrent runs over the same tree never collide.
	tmpPath := fmt.Sprintf("%s.%s.tmp", recordPath, uuid.NewString())
	if err := os.WriteFile(tmpPath, payload, 0600); err != nil {
		return "", fmt.Errorf("failed to write classifier payload: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn("failed to remove classifier payload",
				"path", tmpPath,
				"error", rmErr,
			)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, "-f", tmpPath) //nolint:gosec // Command is operator-configured
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrClassifierFailed, c.command, err)
	}

	// Expected stdout shape: "<sample-id> <family> ...".
	tokens := strings.Fields(string(output))
	if len(tokens) < 2 {
		return "", fmt.Errorf("%w: want at least 2 tokens, got %q", ErrUnexpectedOutput, strings.TrimSpace(string(output)))
	}

	c.logger.Debug("record classified",
		"record", recordPath,
		"family", tokens[1],
	)
	return tokens[1], nil
}
