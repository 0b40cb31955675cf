// Package pipeline connects preprocessing, OCR and parsing into one
// screenshot-to-record operation, for single images and batches.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/google/uuid"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"golang.org/x/sync/errgroup"

	"github.com/dashlens/dashlens-ocr/internal/imaging"
	"github.com/dashlens/dashlens-ocr/internal/ocr"
	"github.com/dashlens/dashlens-ocr/internal/parser"
	"github.com/dashlens/dashlens-ocr/internal/preprocess"
)

// Extraction is the result for one screenshot.
type Extraction struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`

	// Text is the raw OCR output.
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`

	// Rule names the classifier rule that chose the entry type.
	Rule   string              `json:"rule,omitempty"`
	Record parser.ParsedRecord `json:"record"`

	Preprocess *preprocess.Report `json:"preprocess,omitempty"`

	// Error is set on batch items that failed. Record is empty then.
	Error string `json:"error,omitempty"`
}

// Item is one named screenshot in a batch.
type Item struct {
	Name string
	Data []byte
}

// Extractor runs the screenshot pipeline against one OCR engine.
type Extractor struct {
	engine    ocr.Engine
	cfg       preprocess.Config
	parseOpts parser.Options
	workers   int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWorkers bounds the number of concurrent preprocessing goroutines in
// Batch. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Extractor) { e.workers = n }
}

// WithParseOptions sets the parser options used for every record.
func WithParseOptions(opts parser.Options) Option {
	return func(e *Extractor) { e.parseOpts = opts }
}

// New returns an Extractor using engine and the base preprocessing config.
func New(engine ocr.Engine, cfg preprocess.Config, opts ...Option) *Extractor {
	e := &Extractor{engine: engine, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Config returns the base preprocessing config.
func (e *Extractor) Config() preprocess.Config {
	return e.cfg
}

// Parse parses OCR text with the extractor's parser options.
func (e *Extractor) Parse(text string) parser.ParsedRecord {
	return parser.ParseWith(text, e.parseOpts)
}

// Extract preprocesses raw, recognizes it and parses the text using the
// base config.
func (e *Extractor) Extract(ctx context.Context, raw []byte) (*Extraction, error) {
	return e.ExtractWith(ctx, raw, e.cfg)
}

// ExtractWith is Extract with an explicit preprocessing config.
//
// Returns a *preprocess.Error when the image cannot be processed; OCR
// is not attempted in that case.
func (e *Extractor) ExtractWith(ctx context.Context, raw []byte, cfg preprocess.Config) (*Extraction, error) {
	out, report, err := preprocess.RunWithReport(raw, cfg)
	if err != nil {
		return nil, err
	}

	x := &Extraction{ID: uuid.NewString(), Preprocess: report}
	if err := e.recognize(ctx, out, x); err != nil {
		return nil, err
	}
	return x, nil
}

// ExtractImage is ExtractWith for an already decoded image, such as one
// held in an imaging.ImageCache.
func (e *Extractor) ExtractImage(ctx context.Context, src image.Image, cfg preprocess.Config) (*Extraction, error) {
	img, report, err := preprocess.RunImage(src, cfg)
	if err != nil {
		return nil, err
	}
	out, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, &preprocess.Error{Stage: preprocess.StageEncode, Err: err}
	}

	x := &Extraction{ID: uuid.NewString(), Preprocess: report}
	if err := e.recognize(ctx, out, x); err != nil {
		return nil, err
	}
	return x, nil
}

func (e *Extractor) recognize(ctx context.Context, png []byte, x *Extraction) error {
	res, err := e.engine.Recognize(ctx, png)
	if err != nil {
		return fmt.Errorf("failed to recognize text: %w", err)
	}

	x.Text = res.Text
	x.Confidence = res.Confidence
	_, x.Rule = parser.ClassifyWithReason(res.Text)
	x.Record = e.Parse(res.Text)

	tl.Log(tl.Info1, palette.Green, "Extracted %s entry '%s' with '%d' offers (confidence %.1f)",
		x.Record.EntryType, x.ID, len(x.Record.Offers), x.Confidence)
	return nil
}

type ocrJob struct {
	index int
	png   []byte
}

// Batch extracts many screenshots. Preprocessing runs on a bounded pool of
// goroutines that feeds a single OCR loop, so the engine is never used
// concurrently. Per-item failures are reported in Extraction.Error and
// results keep the order of items. Only context cancellation fails the
// whole batch.
func (e *Extractor) Batch(ctx context.Context, items []Item) ([]Extraction, error) {
	results := make([]Extraction, len(items))
	for i, item := range items {
		results[i] = Extraction{ID: uuid.NewString(), Source: item.Name, Record: parser.ParsedRecord{Offers: []parser.Offer{}}}
	}

	tl.Log(tl.Notice, palette.BlueBold, "Processing batch of '%d' screenshots with '%d' workers", len(items), e.workers)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan ocrJob)

	g.Go(func() error {
		defer close(jobs)

		pool, poolCtx := errgroup.WithContext(gctx)
		pool.SetLimit(e.workers)
		for i, item := range items {
			if poolCtx.Err() != nil {
				break
			}
			pool.Go(func() error {
				if err := poolCtx.Err(); err != nil {
					return err
				}
				out, report, err := preprocess.RunWithReport(item.Data, e.cfg)
				if err != nil {
					tl.Log(tl.Warning, palette.PurpleBright, "Skipping '%s': %s", item.Name, err)
					results[i].Error = preprocess.UserMessage
					return nil
				}
				results[i].Preprocess = report

				select {
				case jobs <- ocrJob{index: i, png: out}:
					return nil
				case <-poolCtx.Done():
					return poolCtx.Err()
				}
			})
		}
		return pool.Wait()
	})

	g.Go(func() error {
		for job := range jobs {
			if err := e.recognize(gctx, job.png, &results[job.index]); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				tl.Log(tl.Warning, palette.PurpleBright, "OCR failed for '%s': %s", items[job.index].Name, err)
				results[job.index].Error = err.Error()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	tl.Log(tl.Notice, palette.GreenBold, "Batch finished: '%d' extracted, '%d' failed", len(items)-failed, failed)
	return results, nil
}
