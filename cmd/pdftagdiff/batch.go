package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nao1215/pdftagdiff/internal/config"
	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compare every document pair listed in the configuration file",
		Long: `Batch compares each pair of the pairs list of the configuration file.

Pairs are independent: each gets its own run directory and a failure on one
pair does not stop the others. Several pairs are processed at once.

Configuration file (.pdftagdiff) example:
  tags: [UPS, SW]
  pairs:
    - doc1: rev1/power.pdf
      doc2: rev2/power.pdf
    - doc1: rev1/lighting.pdf
      doc2: rev2/lighting.pdf
      output: diffs/lighting

Examples:
  # Use .pdftagdiff from the current or home directory
  pdftagdiff batch

  # Use a specific configuration file, four pairs at a time
  pdftagdiff batch -c project.yaml --concurrency 4`,
		Args: cobra.NoArgs,
		RunE: runBatchCmd,
	}

	addRunFlags(cmd)
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pairs compared at once")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
		if err != nil {
			return err
		}
	}

	if err := cfg.ValidateBatch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := setupLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	store, closeStore := openHistory(cfg, logger)
	defer closeStore()

	factory := func(pairCfg *config.Config) (*pipeline.Pipeline, error) {
		return pipeline.DefaultPipeline(pairCfg, store, logger, pipeline.WithPipelineVersion(getVersion()))
	}

	bp := pipeline.NewBatchProcessor(cfg, factory,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
		pipeline.WithClock(time.Now),
		pipeline.WithProgress(progressPrinter(cmd.ErrOrStderr(), cfg.Pairs)),
	)

	runs, err := bp.ProcessBatch(ctx, cfg.Pairs)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := 0
	for i, run := range runs {
		pair := cfg.Pairs[i]
		if run == nil {
			failed++
			fmt.Fprintf(w, "[skipped] %s vs %s\n", pair.Doc1, pair.Doc2)
			continue
		}

		status := "ok"
		if run.Failed() {
			status = "failed"
			failed++
		}
		fmt.Fprintf(w, "[%s] %s vs %s\n", status, pair.Doc1, pair.Doc2)
		if run.ErrorMessage != "" {
			fmt.Fprintf(w, "  error: %s\n", run.ErrorMessage)
			continue
		}
		printRun(w, run)
		fmt.Fprintln(w)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d pairs failed", errRunsFailed, failed, len(runs))
	}
	return nil
}

// progressPrinter returns a batch progress function printing one line per
// finished pair to w, numbered in completion order.
func progressPrinter(w io.Writer, pairs []config.Pair) func(*model.Run, int) {
	var mu sync.Mutex
	done := 0
	return func(run *model.Run, index int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		status := "ok"
		if run.Failed() {
			status = "failed"
		}
		pair := pairs[index]
		fmt.Fprintf(w, "[%d/%d] %s: %s vs %s\n", done, len(pairs), status, pair.Doc1, pair.Doc2)
	}
}
