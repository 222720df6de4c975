// Package config holds the immutable run parameters for avlabel: the
// input report directory, the derived output and error-log paths, the
// requested field set, classifier settings, and pipeline concurrency.
//
// Configuration is populated once from CLI flags (optionally seeded from a
// .avlabel YAML file) and passed through the application via dependency
// injection rather than global state. Validation happens once, before any
// file is processed; an invalid configuration is the only fatal condition
// in a run.
package config
