package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pdftagdiff/internal/config"
	"github.com/nao1215/pdftagdiff/internal/database"
	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded comparison runs",
		Long: `History lists the comparison runs recorded in the history database, newest
first, or shows the full result of one run.

The hash columns are the first characters of the SHA3-256 fingerprint of each
document at the time of the run: a changed hash means the file changed.

Examples:
  # List the 20 most recent runs
  pdftagdiff history

  # List every run that involved a document
  pdftagdiff history --document rev2/power.pdf --limit 0

  # Show one run, as JSON
  pdftagdiff history 0f8fad5b-d9cb-469f-a165-70867728950e --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().StringP("document", "d", "",
		"Only list runs that compared this document")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Report language when showing a run: en or ru")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	document, err := cmd.Flags().GetString("document")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	language, err := cmd.Flags().GetString("language")
	if err != nil {
		return err
	}
	labels, err := report.LabelsFor(language)
	if err != nil {
		return err
	}

	dbDir, err := getPersistentString(cmd, "db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if len(args) == 1 {
		return showRun(ctx, w, db, args[0], jsonOutput, labels)
	}

	var records []database.RunRecord
	if document != "" {
		records, err = db.ListRunsForDocument(ctx, document, limit)
	} else {
		records, err = db.ListRuns(ctx, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, records)
	}
	listRuns(w, records)
	return nil
}

// listRuns prints run summaries as a table.
func listRuns(w io.Writer, records []database.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w, "\nUse 'pdftagdiff compare' to compare two documents.")
		return
	}

	fmt.Fprintf(w, "  %-36s  %-19s  %-8s  %-8s  %7s  %7s  %6s  %s\n",
		"RUN ID", "STARTED", "HASH 1", "HASH 2", "UNIQUE1", "UNIQUE2", "COMMON", "DOCUMENTS")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 120))

	for _, rec := range records {
		fmt.Fprintf(w, "  %-36s  %-19s  %-8s  %-8s  %7d  %7d  %6d  %s -> %s\n",
			rec.RunID,
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortHash(rec.Doc1Hash),
			shortHash(rec.Doc2Hash),
			rec.Unique1,
			rec.Unique2,
			rec.Common,
			rec.Doc1,
			rec.Doc2,
		)
	}

	fmt.Fprintln(w, "\nUse 'pdftagdiff history <run-id>' to show the result of a run.")
}

// showRun prints one stored run with its report.
func showRun(ctx context.Context, w io.Writer, db *database.HistoryDB, runID string, jsonOutput bool, labels report.Labels) error {
	rec, run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, run)
	}

	fmt.Fprintf(w, "Run %s\n", rec.RunID)
	fmt.Fprintf(w, "  started:   %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  document1: %s (%s)\n", rec.Doc1, shortHash(rec.Doc1Hash))
	fmt.Fprintf(w, "  document2: %s (%s)\n", rec.Doc2, shortHash(rec.Doc2Hash))
	fmt.Fprintf(w, "  tags:      %s\n", strings.Join(rec.Tags, ", "))
	fmt.Fprintf(w, "  directory: %s\n", rec.RunDir)
	if run.Failed() {
		printFailures(w, run)
	}
	fmt.Fprintln(w)

	if run.Comparison == nil {
		fmt.Fprintln(w, "No comparison was recorded for this run.")
		return nil
	}
	_, err = report.NewSimpleWriter(w, report.WithLabels(labels)).Write(run.Comparison)
	return err
}

// printFailures prints the errors recorded on a run.
func printFailures(w io.Writer, run *model.Run) {
	if run.ErrorMessage != "" {
		fmt.Fprintf(w, "  error:     %s\n", run.ErrorMessage)
	}
	for path, msg := range run.AnnotationErrors {
		fmt.Fprintf(w, "  not annotated: %s (%s)\n", path, msg)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// shortHash returns the first eight characters of a fingerprint.
func shortHash(h string) string {
	if h == "" {
		return "-"
	}
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
