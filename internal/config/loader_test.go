package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeConfigFile writes a .avlabel file into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads all sections", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `
classifier:
  command: /opt/avclass/avclass
  timeout: 45s
concurrency: 8
fields:
  family: true
  size: true
history: false
`)

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Classifier.Command != "/opt/avclass/avclass" {
			t.Errorf("command = %q", cf.Classifier.Command)
		}
		if cf.Concurrency != 8 {
			t.Errorf("concurrency = %d, want 8", cf.Concurrency)
		}
		if !cf.Fields.Family || !cf.Fields.Size || cf.Fields.MD5 {
			t.Errorf("unexpected field toggles: %+v", cf.Fields)
		}
		if cf.History == nil || *cf.History {
			t.Error("expected history: false")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "classifier: [broken")
		if _, err := LoadConfigFile(path); err == nil {
			t.Fatal("expected error for invalid YAML")
		}
	})
}

// TestFileApply tests merging file values into a Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `
classifier:
  command: myclass
  timeout: 2m
concurrency: 3
fields:
  cpu: true
`)
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ClassifierCommand != "myclass" {
			t.Errorf("ClassifierCommand = %q", cfg.ClassifierCommand)
		}
		if cfg.ClassifierTimeout != 2*time.Minute {
			t.Errorf("ClassifierTimeout = %s", cfg.ClassifierTimeout)
		}
		if cfg.Concurrency != 3 {
			t.Errorf("Concurrency = %d", cfg.Concurrency)
		}
		if !cfg.Fields.CPU {
			t.Error("expected CPU field enabled")
		}
		if !cfg.SaveHistory {
			t.Error("absent history key must keep the default")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := (&File{}).Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ClassifierCommand != DefaultClassifierCommand {
			t.Errorf("ClassifierCommand = %q, want default", cfg.ClassifierCommand)
		}
		if cfg.Concurrency != DefaultConcurrency() {
			t.Errorf("Concurrency = %d, want default", cfg.Concurrency)
		}
	})

	t.Run("invalid timeout returns error", func(t *testing.T) {
		t.Parallel()

		cf := &File{}
		cf.Classifier.Timeout = "soon"
		if err := cf.Apply(NewConfig()); err == nil {
			t.Fatal("expected error for invalid duration")
		}
	})
}

// TestFindConfigFile tests config file discovery.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins when it exists", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "concurrency: 1")
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}
