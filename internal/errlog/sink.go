package errlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Sink is the process-wide error log for one run.
//
// Design decision: We wrap a *slog.Logger rather than exposing one directly
// because the sink also tracks the error count for the final run summary,
// and because hiding the logger keeps components on the one supported
// operation: append an error line.
type Sink struct {
	// file is the backing log file, nil when the sink writes to an
	// arbitrary io.Writer (tests).
	file *os.File

	// logger formats and serializes log records. slog handlers lock per
	// record, which is what keeps concurrent worker writes intact.
	logger *slog.Logger

	// count is the number of errors logged so far.
	count atomic.Int64
}

// New creates a sink writing formatted error lines to w.
// Each line carries a timestamp, severity, and message.
func New(w io.Writer) *Sink {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	return &Sink{logger: slog.New(handler)}
}

// Open creates or appends to the error log file at path.
// The caller owns the returned sink and must Close it at run end.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // Log path derives from user input dir
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	s := New(f)
	s.file = f
	return s, nil
}

// Error appends one error line. args are slog key/value pairs, typically
// the file path and the underlying cause.
func (s *Sink) Error(msg string, args ...any) {
	s.count.Add(1)
	s.logger.Error(msg, args...)
}

// Count returns the number of errors logged so far.
func (s *Sink) Count() int {
	return int(s.count.Load())
}

// Close closes the backing file, if any.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
