package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/nao1215/pdftagdiff/internal/model"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pdftagdiff"

	// DefaultLanguage selects the English report labels.
	DefaultLanguage = "en"

	// DefaultConcurrency is the number of document pairs compared at once in
	// batch mode. Each pair holds up to two parsed documents in memory.
	DefaultConcurrency = 2
)

// Config holds all configuration options for pdftagdiff.
// This struct is populated from the config file and CLI flags and passed
// through the application rather than kept in global state.
type Config struct {
	// Doc1Path and Doc2Path are the documents to compare.
	Doc1Path string
	Doc2Path string

	// Tags are the case-sensitive substrings that select tokens.
	Tags []string

	// OutputDir is the base directory receiving one timestamped directory
	// per run.
	OutputDir string

	// Annotate enables writing highlighted copies of both documents.
	Annotate bool

	// JSONReport writes the report as JSON instead of plain text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes the report as Markdown instead of plain text.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// Language selects the report labels: "en" or "ru".
	Language string

	// HighlightColor is the stroke colour of highlight annotations.
	HighlightColor model.Color

	// Optimize removes unused objects from annotated copies before saving.
	Optimize bool

	// SaveHistory records each run in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to XDG data directory (~/.local/share/pdftagdiff on Linux).
	DBDir string

	// Concurrency is the number of pairs processed at once in batch mode.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pdftagdiff in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Pairs are the document pairs of batch mode, loaded from the config
	// file.
	Pairs []Pair
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:      XDGResultsDir(),
		Annotate:       true,
		Language:       DefaultLanguage,
		HighlightColor: model.Red,
		SaveHistory:    true,
		DBDir:          XDGDataDir(),
		Concurrency:    DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for pdftagdiff.
// On Linux: ~/.local/share/pdftagdiff
// On macOS: ~/Library/Application Support/pdftagdiff
// On Windows: %LOCALAPPDATA%\pdftagdiff
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGResultsDir returns the default output directory.
func XDGResultsDir() string {
	return filepath.Join(XDGDataDir(), "results")
}

// ReportFormat returns the report format name selected by the flags.
func (c *Config) ReportFormat() string {
	switch {
	case c.JSONReport:
		return "json"
	case c.MarkdownReport:
		return "markdown"
	default:
		return "text"
	}
}

// ForPair returns a copy of c comparing the documents of p. A non-empty
// p.Output replaces the output directory.
func (c *Config) ForPair(p Pair) *Config {
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	cp.Pairs = nil
	cp.Doc1Path = p.Doc1
	cp.Doc2Path = p.Doc2
	if p.Output != "" {
		cp.OutputDir = p.Output
	}
	return &cp
}

// Validate checks the configuration of a single comparison.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.Doc1Path == "" || c.Doc2Path == "" {
		return ErrNoDocuments
	}
	return c.validateCommon()
}

// ValidateBatch checks the configuration of batch mode: every pair must be
// a valid comparison on its own.
func (c *Config) ValidateBatch() error {
	if len(c.Pairs) == 0 {
		return ErrNoPairs
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	for i, p := range c.Pairs {
		if err := c.ForPair(p).Validate(); err != nil {
			return fmt.Errorf("pair %d: %w", i+1, err)
		}
	}
	return nil
}

// validateCommon checks the options shared by single and batch runs.
func (c *Config) validateCommon() error {
	if len(c.Tags) == 0 {
		return ErrNoTags
	}
	if slices.Contains(c.Tags, "") {
		return ErrEmptyTag
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if !validComponent(c.HighlightColor.R) || !validComponent(c.HighlightColor.G) || !validComponent(c.HighlightColor.B) {
		return ErrInvalidColor
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	switch NormalizeLanguage(c.Language) {
	case "en", "ru":
	default:
		return ErrUnknownLanguage
	}

	return nil
}

// NormalizeLanguage returns lang lower-cased without surrounding spaces, the
// form the report labels are looked up by.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func validComponent(v float64) bool {
	return v >= 0 && v <= 1
}
