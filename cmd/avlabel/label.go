package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/avlabel/internal/classify"
	"github.com/nao1215/avlabel/internal/config"
	"github.com/nao1215/avlabel/internal/errlog"
	"github.com/nao1215/avlabel/internal/history"
	"github.com/nao1215/avlabel/internal/model"
	"github.com/nao1215/avlabel/internal/pipeline"
	"github.com/nao1215/avlabel/internal/report"
)

// NewLabelCmd creates the label command.
func NewLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label <report-dir>",
		Short: "Extract fields from JSON sample reports into a sorted CSV summary",
		Long: `Label scans a directory tree for per-sample JSON report records and
writes one sorted CSV summary row per record, with one column per
requested field. Records that fail to read or parse are logged to the
error log and omitted from the table; a missing field leaves only its
own cell empty.

The family field is produced by an external AVClass-compatible
classifier invoked once per record. Classifier failures degrade to an
empty family cell and never abort the run.

Examples:
  # Extract size and md5 from every report under ./reports
  avlabel label --size --md5 ./reports

  # Additionally classify each sample's malware family
  avlabel label --family --size --md5 ./reports

  # Use a custom classifier with a longer timeout
  avlabel label -f --classifier /opt/avclass/avclass --classifier-timeout 2m ./reports

Configuration file (.avlabel) example:
  classifier:
    command: avclass
    timeout: 45s
  concurrency: 8
  fields:
    family: true
    md5: true`,
		Args: cobra.ExactArgs(1),
		RunE: runLabelCmd,
	}

	// Field selection flags
	cmd.Flags().BoolP("family", "f", false, "Include the classifier family column")
	cmd.Flags().BoolP("cpu", "c", false, "Include the CPU architecture column")
	cmd.Flags().BoolP("first-seen", "s", false, "Include the first_seen column")
	cmd.Flags().BoolP("size", "z", false, "Include the size column")
	cmd.Flags().BoolP("md5", "m", false, "Include the md5 column")

	// Classifier flags
	cmd.Flags().String("classifier", config.DefaultClassifierCommand,
		"External classifier command")
	cmd.Flags().Duration("classifier-timeout", config.DefaultClassifierTimeout,
		"Timeout for one classifier invocation")

	// Pipeline flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency(),
		"Number of records processed in parallel")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"CSV output path (default: <parent>/<dir>_report_info.csv)")
	cmd.Flags().Bool("markdown", false,
		"Additionally write a Markdown rendering of the summary table")
	cmd.Flags().Bool("xlsx", false,
		"Additionally write an XLSX rendering of the summary table")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .avlabel in current or home directory)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the run-history database")

	return cmd
}

// runLabelCmd executes the label command.
func runLabelCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// ConfigError is the only fatal condition: fail before any file is
	// processed.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runLabel(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra flags.
// File values apply first; any flag the user set overrides them.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.InputDir = args[0]

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	explicitConfigPath := configPath != ""
	if found := config.FindConfigFile(configPath); found != "" {
		cf, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// Field toggles are additive on top of the config file.
	for _, f := range []struct {
		name   string
		target *bool
	}{
		{"family", &cfg.Fields.Family},
		{"cpu", &cfg.Fields.CPU},
		{"first-seen", &cfg.Fields.FirstSeen},
		{"size", &cfg.Fields.Size},
		{"md5", &cfg.Fields.MD5},
	} {
		enabled, err := cmd.Flags().GetBool(f.name)
		if err != nil {
			return nil, err
		}
		if enabled {
			*f.target = true
		}
	}

	if cmd.Flags().Changed("classifier") {
		cfg.ClassifierCommand, err = cmd.Flags().GetString("classifier")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("classifier-timeout") {
		cfg.ClassifierTimeout, err = cmd.Flags().GetDuration("classifier-timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
		if err != nil {
			return nil, err
		}
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.XLSXReport, err = cmd.Flags().GetBool("xlsx")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	cfg.DerivePaths()
	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// runLabel executes the labeling run.
func runLabel(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startTime := time.Now()

	paths, err := pipeline.DiscoverRecords(cfg.InputDir)
	if err != nil {
		return err
	}
	logger.Info("records discovered",
		"input_dir", cfg.InputDir,
		"count", len(paths),
	)

	sink, err := errlog.Open(cfg.LogPath)
	if err != nil {
		return err
	}
	defer sink.Close() //nolint:errcheck // Best effort close at run end

	// Build the per-file task.
	opts := []pipeline.ProcessorOption{pipeline.WithProcessorLogger(logger)}
	if cfg.Fields.Family {
		opts = append(opts, pipeline.WithClassifier(classify.New(
			classify.WithCommand(cfg.ClassifierCommand),
			classify.WithTimeout(cfg.ClassifierTimeout),
			classify.WithLogger(logger),
		)))
	}
	processor := pipeline.NewProcessor(cfg.Fields, sink, opts...)

	bp := pipeline.NewBatchProcessor(
		processor.Process,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithSink(sink),
		pipeline.WithBatchLogger(logger),
		pipeline.WithProgress(func(done, total int) {
			fmt.Printf("\rLabeling... %d/%d", done, total)
		}),
	)

	results, err := bp.ProcessAll(ctx, paths)
	if len(paths) > 0 {
		fmt.Println()
	}
	if err != nil {
		return err
	}

	table := model.NewTable(results, cfg.Fields)
	if err := writeReports(cfg, table); err != nil {
		return err
	}

	summary := &model.RunSummary{
		InputDir:        cfg.InputDir,
		OutputPath:      cfg.OutputPath,
		LogPath:         cfg.LogPath,
		FilesDiscovered: len(paths),
		RowsWritten:     len(table.Rows),
		ErrorCount:      sink.Count(),
		StartedAt:       startTime,
		Elapsed:         time.Since(startTime),
	}

	if cfg.SaveHistory {
		saveRunHistory(ctx, cfg, summary, table, logger)
	}

	printSummary(summary)
	return nil
}

// writeReports writes the CSV table and any additional export formats.
func writeReports(cfg *config.Config, table *model.Table) error {
	if err := writeReportFile(cfg.OutputPath, table, func(w io.Writer) report.Writer {
		return report.NewCSVWriter(w)
	}); err != nil {
		return err
	}
	if cfg.MarkdownReport {
		if err := writeReportFile(cfg.SiblingPath(".md"), table, func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w)
		}); err != nil {
			return err
		}
	}
	if cfg.XLSXReport {
		if err := writeReportFile(cfg.SiblingPath(".xlsx"), table, func(w io.Writer) report.Writer {
			return report.NewXLSXWriter(w)
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeReportFile writes the table to path with a fresh file, truncating
// any prior content.
func writeReportFile(path string, table *model.Table, newWriter func(io.Writer) report.Writer) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Output path derives from user input dir
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Close error is surfaced below

	if _, err := newWriter(f).Write(table); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// saveRunHistory records the run in the history database. Failure is
// logged, never fatal: the summary files are already on disk.
func saveRunHistory(ctx context.Context, cfg *config.Config, summary *model.RunSummary, table *model.Table, logger *slog.Logger) {
	db, err := history.Open(cfg.HistoryDir)
	if err != nil {
		logger.Warn("failed to open run history", "dir", cfg.HistoryDir, "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // Best effort close

	if _, err := db.SaveRun(ctx, summary, table); err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}

// printSummary prints the final user-visible run summary.
func printSummary(summary *model.RunSummary) {
	outputPath, err := filepath.Abs(summary.OutputPath)
	if err != nil {
		outputPath = summary.OutputPath
	}
	logPath, err := filepath.Abs(summary.LogPath)
	if err != nil {
		logPath = summary.LogPath
	}

	fmt.Printf("Labeled %d of %d records (%d errors logged)\n",
		summary.RowsWritten, summary.FilesDiscovered, summary.ErrorCount)
	fmt.Printf("Output file path: %s\n", outputPath)
	fmt.Printf("Error log path: %s\n", logPath)
	fmt.Printf("Execution time: %s\n", summary.Elapsed.Round(time.Millisecond))
}
