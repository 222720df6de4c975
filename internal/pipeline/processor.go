package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/avlabel/internal/classify"
	"github.com/nao1215/avlabel/internal/errlog"
	"github.com/nao1215/avlabel/internal/model"
	"github.com/nao1215/avlabel/internal/record"
)

// Processor executes the per-file task: load the record, extract each
// requested field independently, and optionally enrich with the family
// label from the external classifier.
//
// A single Processor is shared by all workers; it holds no per-file state.
type Processor struct {
	// fields selects which optional fields to extract.
	fields model.FieldSet

	// classifier produces family labels. Only used when the family field
	// is requested; may be nil otherwise.
	classifier *classify.Client

	// sink receives per-file failure entries.
	sink *errlog.Sink

	// logger for structured logging.
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithClassifier sets the enrichment client used for the family field.
func WithClassifier(c *classify.Client) ProcessorOption {
	return func(p *Processor) {
		p.classifier = c
	}
}

// WithProcessorLogger sets a custom logger for the processor.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a processor for the given field set, reporting
// failures to sink.
func NewProcessor(fields model.FieldSet, sink *errlog.Sink, opts ...ProcessorOption) *Processor {
	p := &Processor{
		fields: fields,
		sink:   sink,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process handles one record file and returns its extraction result.
//
// A file that cannot be read or parsed yields nil: the failure is logged
// and the file is excluded from the output table. Field-level failures
// never yield nil; a missing field or a failed classification leaves only
// that cell empty. Process never returns an error; per-file failures must
// not propagate to the pool.
func (p *Processor) Process(ctx context.Context, path string) *model.ExtractionResult {
	doc, err := record.Load(path)
	if err != nil {
		p.sink.Error("failed to load record", "path", path, "kind", loadErrorKind(err), "error", err)
		p.logger.Debug("record excluded from output", "path", path, "error", err)
		return nil
	}

	result := model.NewExtractionResult(FileID(path))
	result.Path = path

	// Each field is looked up independently; absence is not a failure.
	for _, f := range p.fields.Active() {
		if f == model.FieldFamily {
			continue
		}
		if v, ok := record.Extract(doc, f); ok {
			result.Set(f, v)
		}
	}

	if p.fields.Family && p.classifier != nil {
		label, err := p.classifier.Label(ctx, path, doc)
		if err != nil {
			// Fail-soft: the family cell stays empty for this file only.
			p.sink.Error("failed to classify record", "path", path, "error", err)
		} else {
			result.Set(model.FieldFamily, label)
		}
	}

	return result
}

// loadErrorKind maps a record loading error to its taxonomy name for the
// error log.
func loadErrorKind(err error) string {
	switch {
	case errors.Is(err, record.ErrParse):
		return "parse"
	case errors.Is(err, record.ErrRead):
		return "io"
	default:
		return "unknown"
	}
}
