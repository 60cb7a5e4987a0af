package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/pdftagdiff/internal/config"
	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <doc1.pdf> <doc2.pdf>",
		Short: "Compare the tag tokens of two PDF documents",
		Long: `Compare extracts every whitespace-separated token containing one of the
tags from both documents and reports the tokens found in only one of them.

A token is compared by its exact text; the pages it appears on are listed in
the report but do not make two tokens different. Matching is case-sensitive.

Each run creates output_<timestamp> below the output directory holding:
- comparison_result_<timestamp>.txt (or .json / .md)
- highlighted_unique_pdf1_<timestamp>.pdf
- highlighted_unique_pdf2_<timestamp>.pdf

Examples:
  # Compare two revisions for UPS and SW designations
  pdftagdiff compare old.pdf new.pdf --tag UPS --tag SW

  # Cyrillic tags and Russian report labels
  pdftagdiff compare old.pdf new.pdf -t ШОП -t ЩР --language ru

  # Markdown report only, no highlighted copies
  pdftagdiff compare old.pdf new.pdf -t UPS --markdown --no-annotate

  # Write into a specific directory with green highlights
  pdftagdiff compare old.pdf new.pdf -t UPS -o ./diffs --color 0,0.6,0

  # Print the report as well as saving it
  pdftagdiff compare old.pdf new.pdf -t UPS --stdout`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	addRunFlags(cmd)
	cmd.Flags().Bool("stdout", false,
		"Also print the report to standard output")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Doc1Path = args[0]
	cfg.Doc2Path = args[1]

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := setupLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}

	return runCompare(ctx, cmd.OutOrStdout(), cfg, logger, toStdout)
}

// runCompare compares the documents of cfg and prints where the artifacts
// were written. With printReport the report itself is printed first.
func runCompare(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger, printReport bool) error {
	store, closeStore := openHistory(cfg, logger)
	defer closeStore()

	opts := []pipeline.DefaultPipelineOption{pipeline.WithPipelineVersion(getVersion())}
	if printReport {
		opts = append(opts, pipeline.WithPipelineReportTee(w))
	}

	p, err := pipeline.DefaultPipeline(cfg, store, logger, opts...)
	if err != nil {
		return err
	}

	run := pipeline.NewRun(cfg, time.Now())
	if err := p.Execute(ctx, run); err != nil {
		return err
	}

	if printReport {
		fmt.Fprintln(w)
	}
	printRun(w, run)

	if run.Failed() {
		return fmt.Errorf("%w: %d document(s) could not be annotated", errRunsFailed, len(run.AnnotationErrors))
	}
	return nil
}

// printRun prints the outcome of a finished run.
func printRun(w io.Writer, run *model.Run) {
	if run.Comparison != nil {
		s := run.Comparison.Summary()
		fmt.Fprintf(w, "Unique to %s: %d\n", run.DocumentA.Label, s.UniqueA)
		fmt.Fprintf(w, "Unique to %s: %d\n", run.DocumentB.Label, s.UniqueB)
		fmt.Fprintf(w, "Common: %d\n", s.Common)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Run directory: %s\n", run.RunDir)
	for _, path := range run.Artifacts() {
		fmt.Fprintf(w, "  %s\n", path)
	}
	for path, msg := range run.AnnotationErrors {
		fmt.Fprintf(w, "  not annotated: %s (%s)\n", path, msg)
	}
}
