package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/pdftagdiff/internal/config"
	"github.com/nao1215/pdftagdiff/internal/model"
	"golang.org/x/sync/errgroup"
)

// Factory builds the pipeline for one pair from its configuration.
type Factory func(cfg *config.Config) (*Pipeline, error)

// BatchProcessor handles concurrent processing of multiple document pairs.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// base is the configuration every pair inherits.
	base *config.Config

	// pipelineFactory creates a new pipeline for each pair.
	pipelineFactory Factory

	// concurrency is the maximum number of pairs processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// now returns the start time of each run.
	now func() time.Time

	// progress is called with each finished run and the index of its pair.
	progress func(run *model.Run, index int)

	// results stores completed runs in input order.
	// Access is synchronized via mutex.
	results []*model.Run
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent pairs.
// Default is config.DefaultConcurrency.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithClock sets the function returning each run's start time.
func WithClock(now func() time.Time) BatchOption {
	return func(b *BatchProcessor) {
		b.now = now
	}
}

// WithProgress sets a function called with each finished run and the index
// of its pair, in completion order. It is called from the goroutine that
// finished the run, so it must be safe for concurrent use.
func WithProgress(progress func(run *model.Run, index int)) BatchOption {
	return func(b *BatchProcessor) {
		b.progress = progress
	}
}

// NewBatchProcessor creates a new BatchProcessor. Each pair is processed
// with base.ForPair(pair) through a fresh pipeline from pipelineFactory.
func NewBatchProcessor(base *config.Config, pipelineFactory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		base:            base,
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultConcurrency,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch compares every pair concurrently, at most concurrency at a
// time.
//
// Returns one run per pair in input order, including failed ones; a failed
// pair never stops the others. The error is non-nil only when ctx is
// cancelled, in which case pairs that never started have a nil run.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, pairs []config.Pair) ([]*model.Run, error) {
	bp.logger.Info("starting batch processing",
		"total_pairs", len(pairs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.Run, len(pairs))

	err := bp.process(ctx, pairs, func(run *model.Run, index int) {
		bp.mu.Lock()
		bp.results[index] = run
		bp.mu.Unlock()

		if bp.progress != nil {
			bp.progress(run, index)
		}
	})

	bp.logger.Info("batch processing complete",
		"total_pairs", len(pairs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

func (bp *BatchProcessor) process(ctx context.Context, pairs []config.Pair, done func(run *model.Run, index int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cfg := bp.base.ForPair(pair)
			run := NewRun(cfg, bp.now())

			bp.logger.Info("comparing pair",
				"doc1", pair.Doc1,
				"doc2", pair.Doc2,
				"index", i+1,
				"total", len(pairs),
			)

			p, err := bp.pipelineFactory(cfg)
			if err == nil {
				err = p.Execute(ctx, run)
			} else {
				run.Error = err
				run.ErrorMessage = err.Error()
			}

			done(run, i)

			if err != nil {
				// Recorded in the run; the other pairs continue.
				bp.logger.Warn("pair failed",
					"doc1", pair.Doc1,
					"doc2", pair.Doc2,
					"error", err,
				)
				return nil
			}

			bp.logger.Info("pair completed",
				"doc1", pair.Doc1,
				"doc2", pair.Doc2,
				"run_dir", run.RunDir,
			)
			return nil
		})
	}

	return g.Wait()
}
