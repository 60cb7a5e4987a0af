package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/pdftagdiff/internal/annotate"
	"github.com/nao1215/pdftagdiff/internal/compare"
	"github.com/nao1215/pdftagdiff/internal/config"
	"github.com/nao1215/pdftagdiff/internal/extract"
	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/output"
	"github.com/nao1215/pdftagdiff/internal/pdf"
	"github.com/nao1215/pdftagdiff/internal/report"
)

// ErrNoComparison is returned by steps that need the diff when DiffStep has
// not run.
var ErrNoComparison = errors.New("run has no comparison")

// NewRun creates a run for the documents and tags of cfg.
func NewRun(cfg *config.Config, startedAt time.Time) *model.Run {
	return model.NewRun(uuid.NewString(), startedAt, cfg.Doc1Path, cfg.Doc2Path, cfg.Tags)
}

// ExtractStep extracts the tag-bearing tokens of both documents and
// fingerprints the files.
type ExtractStep struct {
	opts   extract.Options
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractOptions sets the extraction options.
func WithExtractOptions(opts extract.Options) ExtractStepOption {
	return func(s *ExtractStep) {
		s.opts = opts
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extraction step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		opts:   extract.DefaultOptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts the first document, then the second. A failure on either
// document stops the run.
func (s *ExtractStep) Do(ctx context.Context, run *model.Run) error {
	occA, err := s.extractDocument(ctx, &run.DocumentA, run.Tags)
	if err != nil {
		return err
	}
	occB, err := s.extractDocument(ctx, &run.DocumentB, run.Tags)
	if err != nil {
		return err
	}

	run.OccurrencesA = occA
	run.OccurrencesB = occB
	return nil
}

func (s *ExtractStep) extractDocument(ctx context.Context, doc *model.DocumentInfo, tags []string) (model.Occurrences, error) {
	result, err := extract.ExtractFile(ctx, doc.Path, tags, s.opts)
	if err != nil {
		return nil, err
	}

	hash, err := pdf.Fingerprint(doc.Path)
	if err != nil {
		return nil, err
	}

	doc.Pages = result.Pages
	doc.Hash = hash
	doc.Metadata = result.Metadata
	if doc.Label == "" {
		doc.Label = filepath.Base(doc.Path)
	}

	s.logger.Debug("document extracted",
		"path", doc.Path,
		"pages", result.Pages,
		"tokens", result.Occurrences.Len(),
	)
	return result.Occurrences, nil
}

// DiffStep partitions the two occurrence maps.
type DiffStep struct{}

// NewDiffStep creates a new diff step.
func NewDiffStep() *DiffStep {
	return &DiffStep{}
}

// Name returns the step name.
func (s *DiffStep) Name() string {
	return "diff"
}

// Do compares the occurrences recorded by ExtractStep.
func (s *DiffStep) Do(_ context.Context, run *model.Run) error {
	if run.OccurrencesA == nil || run.OccurrencesB == nil {
		return errors.New("run has no extracted occurrences")
	}

	cmp := compare.Compare(run.OccurrencesA, run.OccurrencesB)
	cmp.DocumentA = run.DocumentA
	cmp.DocumentB = run.DocumentB
	cmp.Tags = run.Tags
	run.Comparison = cmp
	return nil
}

// ReportStep writes the comparison report into the run directory.
type ReportStep struct {
	outputDir string
	format    report.Format
	factory   report.Factory

	// tee receives a second rendering of the report, typically stdout.
	tee io.Writer
}

// ReportStepOption configures a ReportStep.
type ReportStepOption func(*ReportStep)

// WithReportTee renders the report to w as well as to the report file.
func WithReportTee(w io.Writer) ReportStepOption {
	return func(s *ReportStep) {
		s.tee = w
	}
}

// NewReportStep creates a report step writing format with factory below
// outputDir.
func NewReportStep(outputDir string, format report.Format, factory report.Factory, opts ...ReportStepOption) *ReportStep {
	s := &ReportStep{
		outputDir: outputDir,
		format:    format,
		factory:   factory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do creates the run directory if needed and writes the report.
func (s *ReportStep) Do(_ context.Context, run *model.Run) error {
	if run.Comparison == nil {
		return ErrNoComparison
	}

	dir, err := runDir(run, s.outputDir)
	if err != nil {
		return err
	}

	newWriter := s.factory
	if s.tee != nil {
		newWriter = func(out io.Writer) report.Writer {
			return report.NewMultiWriter(s.factory(out), s.factory(s.tee))
		}
	}

	path := dir.ReportPath(s.format.Extension())
	if err := report.WriteFile(path, newWriter, run.Comparison); err != nil {
		return err
	}
	run.ReportPath = path
	return nil
}

// AnnotateStep saves a highlighted copy of each document.
//
// The documents are annotated independently: a failure on one is recorded in
// the run's annotation errors and does not stop the other.
type AnnotateStep struct {
	outputDir string
	style     annotate.Style
	save      pdf.SaveOptions
	logger    *slog.Logger
}

// AnnotateStepOption configures an AnnotateStep.
type AnnotateStepOption func(*AnnotateStep)

// WithAnnotateStyle sets the highlight style.
func WithAnnotateStyle(style annotate.Style) AnnotateStepOption {
	return func(s *AnnotateStep) {
		s.style = style
	}
}

// WithAnnotateOptimize removes unused objects from the saved copies.
func WithAnnotateOptimize(optimize bool) AnnotateStepOption {
	return func(s *AnnotateStep) {
		s.save.Optimize = optimize
	}
}

// WithAnnotateLogger sets a custom logger for the annotate step.
func WithAnnotateLogger(logger *slog.Logger) AnnotateStepOption {
	return func(s *AnnotateStep) {
		s.logger = logger
	}
}

// NewAnnotateStep creates an annotation step saving copies below outputDir.
func NewAnnotateStep(outputDir string, opts ...AnnotateStepOption) *AnnotateStep {
	s := &AnnotateStep{
		outputDir: outputDir,
		style:     annotate.DefaultStyle(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnnotateStep) Name() string {
	return "annotate"
}

// Do highlights the unique tokens of the first document in its copy, then
// those of the second. Only cancellation and a missing run directory stop
// the run.
func (s *AnnotateStep) Do(ctx context.Context, run *model.Run) error {
	if run.Comparison == nil {
		return ErrNoComparison
	}

	dir, err := runDir(run, s.outputDir)
	if err != nil {
		return err
	}

	sides := []struct {
		n      int
		doc    model.DocumentInfo
		unique model.Occurrences
		dst    *string
	}{
		{n: 1, doc: run.DocumentA, unique: run.Comparison.UniqueA, dst: &run.AnnotatedA},
		{n: 2, doc: run.DocumentB, unique: run.Comparison.UniqueB, dst: &run.AnnotatedB},
	}

	opts := annotate.Options{Save: s.save, Logger: s.logger}
	for _, side := range sides {
		path := dir.AnnotatedPath(side.n)
		stats, err := annotate.AnnotateFile(ctx, side.doc.Path, path, side.unique, s.style, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.Warn("failed to annotate document",
				"path", side.doc.Path,
				"error", err,
			)
			run.AddAnnotationError(side.doc.Path, err)
			continue
		}

		*side.dst = path
		s.logger.Info("annotated copy saved",
			"path", path,
			"highlights", stats.Highlights,
			"misses", stats.Misses,
		)
	}
	return nil
}

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.Run) error
}

// HistoryStep records the run in the history database.
// Recording is best-effort: a failure is logged and the run still succeeds.
type HistoryStep struct {
	store  RunStore
	logger *slog.Logger
}

// NewHistoryStep creates a history step saving to store.
func NewHistoryStep(store RunStore, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do saves the run.
func (s *HistoryStep) Do(ctx context.Context, run *model.Run) error {
	if err := s.store.SaveRun(ctx, run); err != nil {
		s.logger.Warn("failed to record run history",
			"run_id", run.ID,
			"error", err,
		)
	}
	return nil
}

// runDir returns the run's output directory, creating it below base on first
// use.
func runDir(run *model.Run, base string) (*output.RunDir, error) {
	stamp := run.StartedAt.Format(output.StampLayout)
	if run.RunDir != "" {
		return &output.RunDir{Path: run.RunDir, Stamp: stamp}, nil
	}

	dir, err := output.NewRunDir(base, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare run directory: %w", err)
	}
	run.RunDir = dir.Path
	return dir, nil
}

// DefaultPipelineConfig holds settings of the default pipeline that do not
// come from config.Config.
type DefaultPipelineConfig struct {
	// Version is embedded in JSON reports.
	Version string

	// ExtractOptions controls token extraction.
	ExtractOptions extract.Options

	// ReportTee, when set, also receives the rendered report.
	ReportTee io.Writer
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineVersion sets the tool version embedded in JSON reports.
func WithPipelineVersion(version string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Version = version
	}
}

// WithPipelineExtractOptions sets the extraction options.
func WithPipelineExtractOptions(opts extract.Options) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ExtractOptions = opts
	}
}

// WithPipelineReportTee renders the report to w in addition to the report
// file.
func WithPipelineReportTee(w io.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ReportTee = w
	}
}

// DefaultPipeline creates a pipeline with the steps enabled by cfg:
// extract, diff, report, then annotate when cfg.Annotate is set and history
// when store is not nil.
func DefaultPipeline(cfg *config.Config, store RunStore, logger *slog.Logger, opts ...DefaultPipelineOption) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pcfg := &DefaultPipelineConfig{
		Version:        "dev",
		ExtractOptions: extract.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(pcfg)
	}

	format, err := report.ParseFormat(cfg.ReportFormat())
	if err != nil {
		return nil, err
	}
	labels, err := report.LabelsFor(cfg.Language)
	if err != nil {
		return nil, err
	}

	p := New(WithLogger(logger))
	p.AddSteps(
		NewExtractStep(
			WithExtractOptions(pcfg.ExtractOptions),
			WithExtractLogger(logger),
		),
		NewDiffStep(),
		NewReportStep(cfg.OutputDir, format, report.NewFactory(format, labels, pcfg.Version),
			WithReportTee(pcfg.ReportTee)),
	)

	if cfg.Annotate {
		p.AddStep(NewAnnotateStep(cfg.OutputDir,
			WithAnnotateStyle(annotate.Style{Color: cfg.HighlightColor}),
			WithAnnotateOptimize(cfg.Optimize),
			WithAnnotateLogger(logger),
		))
	}

	if store != nil {
		p.AddStep(NewHistoryStep(store, logger))
	}

	return p, nil
}
