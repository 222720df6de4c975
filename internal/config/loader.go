package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".avlabel"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors the YAML structure of a .avlabel configuration file.
// Every entry is optional; CLI flags override file values.
//
// Example:
//
//	classifier:
//	  command: avclass
//	  timeout: 45s
//	concurrency: 8
//	fields:
//	  family: true
//	  size: true
//	history: false
type File struct {
	// Classifier configures the enrichment subprocess.
	Classifier struct {
		// Command is the classifier executable name or path.
		Command string `yaml:"command"`

		// Timeout is the per-invocation timeout as a Go duration string.
		Timeout string `yaml:"timeout"`
	} `yaml:"classifier"`

	// Concurrency is the worker pool size.
	Concurrency int `yaml:"concurrency"`

	// Fields are default field toggles.
	Fields struct {
		Family    bool `yaml:"family"`
		CPU       bool `yaml:"cpu"`
		FirstSeen bool `yaml:"first_seen"`
		Size      bool `yaml:"size"`
		MD5       bool `yaml:"md5"`
	} `yaml:"fields"`

	// History enables or disables run-history persistence. A pointer so
	// an absent key keeps the built-in default.
	History *bool `yaml:"history"`
}

// LoadConfigFile loads run defaults from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .avlabel in the current directory
//  3. Look for .avlabel in the user's home directory
//
// Returns the path to the configuration file if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies the file's values onto cfg. Flags parsed afterwards may
// override any of them.
func (f *File) Apply(cfg *Config) error {
	if f.Classifier.Command != "" {
		cfg.ClassifierCommand = f.Classifier.Command
	}
	if f.Classifier.Timeout != "" {
		d, err := time.ParseDuration(f.Classifier.Timeout)
		if err != nil {
			return fmt.Errorf("invalid classifier timeout %q: %w", f.Classifier.Timeout, err)
		}
		cfg.ClassifierTimeout = d
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}

	cfg.Fields.Family = cfg.Fields.Family || f.Fields.Family
	cfg.Fields.CPU = cfg.Fields.CPU || f.Fields.CPU
	cfg.Fields.FirstSeen = cfg.Fields.FirstSeen || f.Fields.FirstSeen
	cfg.Fields.Size = cfg.Fields.Size || f.Fields.Size
	cfg.Fields.MD5 = cfg.Fields.MD5 || f.Fields.MD5

	if f.History != nil {
		cfg.SaveHistory = *f.History
	}

	return nil
}
