package main

import (
	"fmt"
	"os"

	applog "github.com/nao1215/pdftagdiff/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pdftagdiff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdftagdiff",
		Short: "Compare tag tokens between two PDF documents",
		Long: `pdftagdiff extracts the tokens containing given tags (for example UPS,
SW or a Cyrillic prefix) from two PDF documents and reports the tokens that
appear in only one of them, with the pages they were found on.

Each run writes into its own timestamped directory: a text, JSON or Markdown
report and, unless disabled, a copy of each document with its unique tokens
highlighted. Runs are recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", applog.FormatText,
		"Log format written to standard error: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .pdftagdiff in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	// Add subcommands
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
