package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wmcfinance/echeque-processor/internal/mapping"
	"github.com/wmcfinance/echeque-processor/internal/raster"
)

// throttleDelay is inserted before every document after the first. The
// extraction API is the bottleneck and rate-limit sensitive, so batches run
// strictly sequentially.
const throttleDelay = 2 * time.Second

// ProgressFunc receives a human-readable message and a completion fraction in
// [0, 1] before each document is processed. Purely observational.
type ProgressFunc func(message string, fraction float64)

// Processor sequences the per-document pipeline over a batch: rasterize,
// extract, validate, resolve routing, generate filename. The mapping table is
// loaded once per batch by the caller and never mutated here.
type Processor struct {
	Extractor Extractor
	Table     *mapping.Table
	Validator *Validator
	Prompt    string
	Throttle  time.Duration
	Log       zerolog.Logger

	// Injected for tests.
	rasterize func([]byte) ([]byte, error)
	sleep     func(time.Duration)
}

// NewProcessor creates a batch processor with production defaults.
func NewProcessor(extractor Extractor, table *mapping.Table, validator *Validator, log zerolog.Logger) *Processor {
	return &Processor{
		Extractor: extractor,
		Table:     table,
		Validator: validator,
		Prompt:    DefaultPrompt,
		Throttle:  throttleDelay,
		Log:       log,
		rasterize: raster.Render,
		sleep:     time.Sleep,
	}
}

// ProcessBatch processes documents sequentially, collecting per-item results
// and errors without aborting. The output partition is exhaustive:
// len(results) + len(errs) equals len(docs) for any input. An empty input
// yields empty outputs, not an error.
func (p *Processor) ProcessBatch(ctx context.Context, docs []Document, progress ProgressFunc) (results []ProcessedResult, errs []ProcessingError) {
	results = make([]ProcessedResult, 0, len(docs))
	total := len(docs)

	for i, doc := range docs {
		if progress != nil {
			msg := fmt.Sprintf("Processing file %d/%d: %s", i+1, total, doc.Filename)
			progress(msg, float64(i+1)/float64(total))
		}

		if i > 0 {
			p.sleep(p.Throttle)
		}

		result, err := p.ProcessDocument(ctx, doc)
		if err != nil {
			p.Log.Error().
				Err(err).
				Str("filename", doc.Filename).
				Msg("Document processing failed")
			errs = append(errs, ProcessingError{Filename: doc.Filename, Err: err})
			continue
		}

		p.Log.Info().
			Str("filename", doc.Filename).
			Str("generated_filename", result.GeneratedFilename).
			Str("routing_target", result.RoutingTarget).
			Msg("Document processed")
		results = append(results, *result)
	}

	return results, errs
}

// ProcessDocument runs the full pipeline for a single cheque.
func (p *Processor) ProcessDocument(ctx context.Context, doc Document) (*ProcessedResult, error) {
	image, err := p.rasterize(doc.Content)
	if err != nil {
		return nil, err
	}

	rawText, err := p.Extractor.Extract(ctx, image, p.Prompt)
	if err != nil {
		return nil, err
	}

	record, err := p.Validator.Parse(rawText)
	if err != nil {
		return nil, err
	}

	target, glCode := p.Table.Resolve(record.Payee)
	alias := FilenameAlias(p.Table, record.Payee, record.Payer)
	filename := GenerateFilename(
		record.KeyIdentifier,
		record.Payer,
		alias,
		record.Currency,
		record.IsTrailerFee,
		record.IsManagementFee,
	)

	return &ProcessedResult{
		Record:            record,
		RoutingTarget:     target,
		GLCode:            glCode,
		GeneratedFilename: filename,
		PDFData:           doc.Content,
		OriginalFilename:  doc.Filename,
	}, nil
}
