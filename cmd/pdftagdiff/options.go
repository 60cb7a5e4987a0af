package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/pdftagdiff/internal/config"
	"github.com/nao1215/pdftagdiff/internal/database"
	applog "github.com/nao1215/pdftagdiff/internal/log"
	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/pipeline"
	"github.com/spf13/cobra"
)

// addRunFlags registers the flags shared by compare and batch.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("tag", "t", nil,
		"Tag substring to look for; repeat for several tags")
	cmd.Flags().StringP("output", "o", "",
		"Base directory for run directories (default: XDG data directory)")
	cmd.Flags().Bool("no-annotate", false,
		"Do not save highlighted copies of the documents")
	cmd.Flags().BoolP("json", "j", false,
		"Write the report as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write the report as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("color", "1,0,0",
		"Highlight color as r,g,b with components between 0 and 1")
	cmd.Flags().Bool("optimize", false,
		"Remove unused objects from the highlighted copies")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Report language: en or ru")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getPersistentString retrieves a global string flag from the command or
// the root.
func getPersistentString(cmd *cobra.Command, name string) (string, error) {
	if v, err := cmd.Flags().GetString(name); err == nil {
		return v, nil
	}
	return cmd.Root().PersistentFlags().GetString(name)
}

// buildConfig creates a Config from defaults, the configuration file and the
// command flags, in increasing priority. Only flags the user set override
// values from the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	var err error

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = getPersistentString(cmd, "config")
	if err != nil {
		return nil, err
	}

	// An explicit config path must exist; the default locations are optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(file); err != nil {
			return nil, fmt.Errorf("failed to apply config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	dbDir, err := getPersistentString(cmd, "db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	if err := applyRunFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyRunFlags copies the changed flags of addRunFlags into cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Lookup("tag") == nil {
		return nil
	}

	if flags.Changed("tag") {
		tags, err := flags.GetStringArray("tag")
		if err != nil {
			return err
		}
		cfg.Tags = tags
	}

	if flags.Changed("output") {
		output, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.OutputDir = output
	}

	if flags.Changed("no-annotate") {
		noAnnotate, err := flags.GetBool("no-annotate")
		if err != nil {
			return err
		}
		cfg.Annotate = !noAnnotate
	}

	// A format flag replaces the format chosen in the config file.
	jsonReport, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownReport, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonReport || markdownReport {
		cfg.JSONReport = jsonReport
		cfg.MarkdownReport = markdownReport
	}

	if flags.Changed("color") {
		s, err := flags.GetString("color")
		if err != nil {
			return err
		}
		color, err := model.ParseColor(s)
		if err != nil {
			return err
		}
		cfg.HighlightColor = color
	}

	if flags.Changed("optimize") {
		cfg.Optimize, err = flags.GetBool("optimize")
		if err != nil {
			return err
		}
	}

	if flags.Changed("language") {
		language, err := flags.GetString("language")
		if err != nil {
			return err
		}
		cfg.Language = config.NormalizeLanguage(language)
	}

	if flags.Changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.SaveHistory = !noHistory
	}

	return nil
}

// setupLogger creates the structured logger writing to the command's
// standard error in the format chosen by --log-format.
func setupLogger(cmd *cobra.Command, verbose bool) (*slog.Logger, error) {
	format, err := getPersistentString(cmd, "log-format")
	if err != nil {
		format = applog.FormatText
	}
	return applog.New(cmd.ErrOrStderr(), format, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openHistory opens the history database when cfg enables it. A database
// that cannot be opened disables history for this invocation instead of
// failing it.
//
// The returned store is a nil interface when history is off, so it can be
// passed straight to pipeline.DefaultPipeline.
func openHistory(cfg *config.Config, logger *slog.Logger) (pipeline.RunStore, func()) {
	if !cfg.SaveHistory {
		return nil, func() {}
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("run history disabled", "dir", cfg.DBDir, "error", err)
		return nil, func() {}
	}
	logger.Debug("database opened", "path", db.Path())

	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
}

// errRunsFailed is returned when at least one run did not complete cleanly.
var errRunsFailed = errors.New("comparison finished with errors")
