package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. Any of them is
// fatal: the process exits before a single record is processed.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInputDir is returned when no input directory is specified.
	ErrNoInputDir = errors.New("no input directory specified")

	// ErrInputNotDirectory is returned when the input path is missing or
	// is not a directory.
	ErrInputNotDirectory = errors.New("input path must be an existing directory")

	// ErrInvalidConcurrency is returned when the worker pool size is not
	// positive. A pool of zero workers would process nothing.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the classifier timeout is not
	// positive. A zero timeout would kill every classifier invocation
	// immediately.
	ErrInvalidTimeout = errors.New("invalid classifier timeout: must be positive")
)
