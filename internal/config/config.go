package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/avlabel/internal/model"
)

// Default configuration values.
const (
	// DefaultClassifierCommand is the external classifier executable.
	DefaultClassifierCommand = "avclass"

	// DefaultClassifierTimeout bounds one classifier invocation so a hung
	// external tool cannot stall a pipeline worker for the whole run.
	DefaultClassifierTimeout = 30 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "avlabel"

	// outputSuffix and logSuffix are appended to the input directory name
	// to derive the sibling output and error-log file names.
	outputSuffix = "_report_info.csv"
	logSuffix    = "_error.log"
)

// DefaultConcurrency returns the default worker pool size: one worker per
// available CPU. Tasks far exceeding this count simply queue.
func DefaultConcurrency() int {
	return runtime.NumCPU()
}

// Config holds all configuration options for a labeling run.
// This struct is populated from CLI flags (optionally seeded from a
// .avlabel file) and passed through the application via dependency
// injection rather than global state.
type Config struct {
	// InputDir is the root of the report directory tree. Every file under
	// it whose name ends in ".json" is a candidate record. Required.
	InputDir string

	// OutputPath is where the CSV summary table is written. Derived from
	// InputDir unless overridden.
	OutputPath string

	// LogPath is where the error log is appended. Derived from InputDir.
	LogPath string

	// Fields selects which optional columns to extract. Family also
	// activates the enrichment client.
	Fields model.FieldSet

	// ClassifierCommand is the external classifier executable.
	ClassifierCommand string

	// ClassifierTimeout bounds each classifier invocation.
	ClassifierTimeout time.Duration

	// Concurrency is the worker pool size for parallel file processing.
	Concurrency int

	// MarkdownReport additionally writes a Markdown rendering of the
	// summary table next to the CSV.
	MarkdownReport bool

	// XLSXReport additionally writes an XLSX rendering of the summary
	// table next to the CSV.
	XLSXReport bool

	// SaveHistory records the completed run in the run-history database.
	SaveHistory bool

	// HistoryDir is the directory holding the run-history database.
	// Defaults to the XDG data directory.
	HistoryDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged to the console.
	Verbose bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (timeout, concurrency).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ClassifierCommand: DefaultClassifierCommand,
		ClassifierTimeout: DefaultClassifierTimeout,
		Concurrency:       DefaultConcurrency(),
		SaveHistory:       true,
		HistoryDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for avlabel.
// On Linux: ~/.local/share/avlabel
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DerivePaths computes OutputPath and LogPath from InputDir, matching the
// convention that a run over <parent>/<name> writes
// <parent>/<name>_report_info.csv and <parent>/<name>_error.log.
// An already-set OutputPath (user override) is left alone.
func (c *Config) DerivePaths() {
	dir := filepath.Clean(c.InputDir)
	base := filepath.Base(dir)
	parent := filepath.Dir(dir)

	if c.OutputPath == "" {
		c.OutputPath = filepath.Join(parent, base+outputSuffix)
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(parent, base+logSuffix)
	}
}

// SiblingPath returns a path next to OutputPath with the given extension,
// used for the optional Markdown and XLSX exports.
func (c *Config) SiblingPath(ext string) string {
	out := c.OutputPath
	return out[:len(out)-len(filepath.Ext(out))] + ext
}

// Validate checks if the configuration is valid. It is called once after
// CLI parsing, before any record is processed, so an invalid run fails
// fast with a clear message.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrNoInputDir
	}

	info, err := os.Stat(c.InputDir)
	if err != nil || !info.IsDir() {
		return ErrInputNotDirectory
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.ClassifierTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}
