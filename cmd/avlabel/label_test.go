package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/avlabel/internal/config"
	"github.com/nao1215/avlabel/internal/history"
	"github.com/nao1215/avlabel/internal/model"
)

// TestNewLabelCmd tests the label command creation.
func TestNewLabelCmd(t *testing.T) {
	t.Parallel()

	cmd := NewLabelCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "label <report-dir>" {
			t.Errorf("expected use 'label <report-dir>', got %q", cmd.Use)
		}
	})

	t.Run("has field selection flags", func(t *testing.T) {
		t.Parallel()

		shorthands := map[string]string{
			"family":     "f",
			"cpu":        "c",
			"first-seen": "s",
			"size":       "z",
			"md5":        "m",
		}
		for name, shorthand := range shorthands {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.Shorthand != shorthand {
				t.Errorf("%s shorthand = %q, want %q", name, flag.Shorthand, shorthand)
			}
			if flag.DefValue != "false" {
				t.Errorf("%s default = %q, want 'false'", name, flag.DefValue)
			}
		}
	})

	t.Run("has classifier flags", func(t *testing.T) {
		t.Parallel()

		flag := cmd.Flags().Lookup("classifier")
		if flag == nil {
			t.Fatal("expected classifier flag")
		}
		if flag.DefValue != config.DefaultClassifierCommand {
			t.Errorf("classifier default = %q, want %q", flag.DefValue, config.DefaultClassifierCommand)
		}

		if cmd.Flags().Lookup("classifier-timeout") == nil {
			t.Error("expected classifier-timeout flag")
		}
	})

	t.Run("has output and pipeline flags", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"concurrency", "output", "markdown", "xlsx", "config", "no-history"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// writeConfigFile writes a .avlabel configuration file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".avlabel")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// TestBuildConfig tests configuration assembly from file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults and derives paths", func(t *testing.T) {
		t.Parallel()

		// An empty explicit config file keeps the built-in defaults
		// without picking up an ambient .avlabel.
		configPath := writeConfigFile(t, "")
		inputDir := filepath.Join(t.TempDir(), "reports")

		cmd := NewLabelCmd()
		if err := cmd.Flags().Set("config", configPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{inputDir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ClassifierCommand != config.DefaultClassifierCommand {
			t.Errorf("ClassifierCommand = %q, want %q", cfg.ClassifierCommand, config.DefaultClassifierCommand)
		}
		if cfg.ClassifierTimeout != config.DefaultClassifierTimeout {
			t.Errorf("ClassifierTimeout = %v, want %v", cfg.ClassifierTimeout, config.DefaultClassifierTimeout)
		}
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to default to true")
		}
		if len(cfg.Fields.Active()) != 0 {
			t.Errorf("expected no fields selected by default, got %+v", cfg.Fields)
		}

		wantOutput := filepath.Join(filepath.Dir(inputDir), "reports_report_info.csv")
		if cfg.OutputPath != wantOutput {
			t.Errorf("OutputPath = %q, want %q", cfg.OutputPath, wantOutput)
		}
		wantLog := filepath.Join(filepath.Dir(inputDir), "reports_error.log")
		if cfg.LogPath != wantLog {
			t.Errorf("LogPath = %q, want %q", cfg.LogPath, wantLog)
		}
	})

	t.Run("flags override config file values", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfigFile(t, `classifier:
  command: /opt/avclass/avclass
  timeout: 45s
concurrency: 3
fields:
  md5: true
history: false
`)

		cmd := NewLabelCmd()
		for flag, value := range map[string]string{
			"config":             configPath,
			"family":             "true",
			"classifier-timeout": "1m",
			"concurrency":        "8",
		} {
			if err := cmd.Flags().Set(flag, value); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		cfg, err := buildConfig(cmd, []string{t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// File value survives where no flag was set.
		if cfg.ClassifierCommand != "/opt/avclass/avclass" {
			t.Errorf("ClassifierCommand = %q, want config file value", cfg.ClassifierCommand)
		}
		// Flag wins over file.
		if cfg.ClassifierTimeout != time.Minute {
			t.Errorf("ClassifierTimeout = %v, want 1m", cfg.ClassifierTimeout)
		}
		if cfg.Concurrency != 8 {
			t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
		}
		// Field toggles are additive across file and flags.
		if !cfg.Fields.MD5 || !cfg.Fields.Family {
			t.Errorf("expected md5 and family fields enabled, got %+v", cfg.Fields)
		}
		if cfg.SaveHistory {
			t.Error("expected SaveHistory disabled by config file")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewLabelCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yml")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := buildConfig(cmd, []string{t.TempDir()}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("explicit output path is preserved", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfigFile(t, "")
		outputPath := filepath.Join(t.TempDir(), "custom.csv")

		cmd := NewLabelCmd()
		for flag, value := range map[string]string{
			"config": configPath,
			"output": outputPath,
		} {
			if err := cmd.Flags().Set(flag, value); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		cfg, err := buildConfig(cmd, []string{t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputPath != outputPath {
			t.Errorf("OutputPath = %q, want %q", cfg.OutputPath, outputPath)
		}
	})
}

// TestLabelCmdValidation tests that invalid configuration fails before any
// record is processed.
func TestLabelCmdValidation(t *testing.T) {
	t.Parallel()

	t.Run("nonexistent input directory", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfigFile(t, "")
		cmd := NewRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{
			"label", filepath.Join(t.TempDir(), "no-such-dir"),
			"--config", configPath,
		})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error for nonexistent input directory")
		}
		if !strings.Contains(err.Error(), "configuration error") {
			t.Errorf("expected configuration error, got %q", err.Error())
		}
	})
}

// setupReportDir creates the standard three-record fixture: two valid
// records and one unparsable record.
func setupReportDir(t *testing.T) string {
	t.Helper()

	inputDir := filepath.Join(t.TempDir(), "reports")
	if err := os.MkdirAll(inputDir, 0750); err != nil {
		t.Fatalf("failed to create input dir: %v", err)
	}

	records := map[string]string{
		"a.json": `{"size": 10, "md5": "aa"}`,
		"b.json": `{not valid json`,
		"c.json": `{"size": 5}`,
	}
	for name, content := range records {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write record: %v", err)
		}
	}
	return inputDir
}

// testConfig returns a run configuration over the fixture directory with
// history disabled.
func testConfig(inputDir string, fields model.FieldSet) *config.Config {
	cfg := config.NewConfig()
	cfg.InputDir = inputDir
	cfg.Fields = fields
	cfg.SaveHistory = false
	cfg.DerivePaths()
	return cfg
}

// discardLogger returns a logger that swallows all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRunLabel tests the full labeling run end to end.
func TestRunLabel(t *testing.T) {
	t.Parallel()

	t.Run("writes sorted CSV and error log", func(t *testing.T) {
		t.Parallel()

		inputDir := setupReportDir(t)
		cfg := testConfig(inputDir, model.FieldSet{Size: true, MD5: true})

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		want := "file_name,size,md5\na,10,aa\nc,5,\n"
		if string(got) != want {
			t.Errorf("output = %q, want %q", string(got), want)
		}

		logData, err := os.ReadFile(cfg.LogPath)
		if err != nil {
			t.Fatalf("failed to read error log: %v", err)
		}
		if !strings.Contains(string(logData), "b.json") {
			t.Errorf("expected error log to mention b.json, got %q", string(logData))
		}
	})

	t.Run("reruns produce identical output", func(t *testing.T) {
		t.Parallel()

		inputDir := setupReportDir(t)
		cfg := testConfig(inputDir, model.FieldSet{Size: true, MD5: true})

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}

		if string(first) != string(second) {
			t.Errorf("reruns differ: %q vs %q", string(first), string(second))
		}
	})

	t.Run("classifies families with external command", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("shell script classifier is not available on windows")
		}

		inputDir := setupReportDir(t)
		classifier := filepath.Join(t.TempDir(), "fakeclass")
		script := "#!/bin/sh\necho \"deadbeef FAM1 extra\"\n"
		if err := os.WriteFile(classifier, []byte(script), 0700); err != nil { //nolint:gosec // Test script must be executable
			t.Fatalf("failed to write classifier script: %v", err)
		}

		cfg := testConfig(inputDir, model.FieldSet{Family: true, Size: true})
		cfg.ClassifierCommand = classifier

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		want := "file_name,family,size\na,FAM1,10\nc,FAM1,5\n"
		if string(got) != want {
			t.Errorf("output = %q, want %q", string(got), want)
		}
	})

	t.Run("writes additional export formats", func(t *testing.T) {
		t.Parallel()

		inputDir := setupReportDir(t)
		cfg := testConfig(inputDir, model.FieldSet{Size: true})
		cfg.MarkdownReport = true
		cfg.XLSXReport = true

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, path := range []string{cfg.SiblingPath(".md"), cfg.SiblingPath(".xlsx")} {
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("expected export file %s: %v", path, err)
			}
			if info.Size() == 0 {
				t.Errorf("export file %s is empty", path)
			}
		}
	})

	t.Run("records run history", func(t *testing.T) {
		t.Parallel()

		inputDir := setupReportDir(t)
		cfg := testConfig(inputDir, model.FieldSet{Size: true, MD5: true})
		cfg.SaveHistory = true
		cfg.HistoryDir = t.TempDir()

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		db, err := history.Open(cfg.HistoryDir)
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		runs, err := db.Runs(context.Background(), inputDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("got %d history runs, want 1", len(runs))
		}
		if runs[0].RowsWritten != 2 {
			t.Errorf("RowsWritten = %d, want 2", runs[0].RowsWritten)
		}
		if runs[0].FilesDiscovered != 3 {
			t.Errorf("FilesDiscovered = %d, want 3", runs[0].FilesDiscovered)
		}
	})

	t.Run("empty directory produces header-only output", func(t *testing.T) {
		t.Parallel()

		inputDir := filepath.Join(t.TempDir(), "empty")
		if err := os.MkdirAll(inputDir, 0750); err != nil {
			t.Fatalf("failed to create input dir: %v", err)
		}
		cfg := testConfig(inputDir, model.FieldSet{MD5: true})

		if err := runLabel(context.Background(), cfg, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(got) != "file_name,md5\n" {
			t.Errorf("output = %q, want header only", string(got))
		}
	})
}
