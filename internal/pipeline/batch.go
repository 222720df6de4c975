package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/avlabel/internal/errlog"
	"github.com/nao1215/avlabel/internal/model"
)

// Task is the per-file function the dispatcher runs for every discovered
// record. A nil result means the file is excluded from the output table
// (it failed to load); the task itself reports the failure.
type Task func(ctx context.Context, path string) *model.ExtractionResult

// BatchProcessor fans one task per record file out across a bounded worker
// pool and collects results as they complete.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it's simpler and errgroup handles the concurrency
// correctly. Each file gets its own goroutine, but only 'concurrency'
// goroutines run simultaneously; excess tasks queue.
//
// Collection preserves no ordering: results arrive in completion order,
// which varies between runs on the same input. The report assembler's
// final sort is the only ordering guarantee.
type BatchProcessor struct {
	// task is the per-file work function.
	task Task

	// concurrency is the maximum number of tasks running at once.
	concurrency int

	// progress, when set, is called after each task completes with the
	// number of completed tasks and the total submitted count. It may be
	// called from any worker goroutine.
	progress func(done, total int)

	// sink receives entries for tasks that fail outside the task's own
	// error handling (panics). May be nil.
	sink *errlog.Sink

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithConcurrency sets the worker pool size.
// Default is the number of available CPUs.
func WithConcurrency(n int) BatchOption {
	return func(bp *BatchProcessor) {
		if n > 0 {
			bp.concurrency = n
		}
	}
}

// WithProgress sets a completion callback for progress indication.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(bp *BatchProcessor) {
		bp.progress = fn
	}
}

// WithSink sets the error sink used to record tasks that panic.
func WithSink(sink *errlog.Sink) BatchOption {
	return func(bp *BatchProcessor) {
		bp.sink = sink
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(bp *BatchProcessor) {
		if logger != nil {
			bp.logger = logger
		}
	}
}

// NewBatchProcessor creates a dispatcher running the given task.
func NewBatchProcessor(task Task, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		task:        task,
		concurrency: runtime.NumCPU(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(bp)
	}

	return bp
}

// ProcessAll runs the task for every path and returns the collected
// results in completion order. Per-file failures never surface here; the
// only error returned is context cancellation.
func (bp *BatchProcessor) ProcessAll(ctx context.Context, paths []string) ([]*model.ExtractionResult, error) {
	bp.logger.Info("starting extraction",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	var (
		mu      sync.Mutex
		results = make([]*model.ExtractionResult, 0, len(paths))
		done    atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for _, path := range paths {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if result := bp.runIsolated(ctx, path); result != nil {
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}

			n := done.Add(1)
			if bp.progress != nil {
				bp.progress(int(n), len(paths))
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("extraction complete",
		"total_files", len(paths),
		"rows", len(results),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// runIsolated executes the task with panic isolation. A panicking task is
// logged as an error for that file and degrades to a row with all
// requested fields empty; it must not crash the pool.
func (bp *BatchProcessor) runIsolated(ctx context.Context, path string) (result *model.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			bp.logger.Error("task panicked", "path", path, "panic", fmt.Sprint(r))
			if bp.sink != nil {
				bp.sink.Error("unexpected failure while processing record", "path", path, "error", fmt.Sprint(r))
			}
			result = model.NewExtractionResult(FileID(path))
			result.Path = path
		}
	}()

	return bp.task(ctx, path)
}
