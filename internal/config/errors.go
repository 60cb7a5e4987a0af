package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateBatch()
// and can be matched with errors.Is().
var (
	// ErrNoDocuments is returned when either document path is missing.
	ErrNoDocuments = errors.New("no documents specified: provide two PDF paths")

	// ErrNoTags is returned when the tag list is empty.
	ErrNoTags = errors.New("no tags specified: use --tag or the tags key of the config file")

	// ErrEmptyTag is returned when a tag is the empty string.
	// An empty tag would match every token of every page.
	ErrEmptyTag = errors.New("tags must not be empty")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidColor is returned when a highlight colour component is
	// outside [0, 1].
	ErrInvalidColor = errors.New("invalid highlight color: components must be between 0 and 1")

	// ErrInvalidConcurrency is returned when the batch concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrUnknownLanguage is returned for a report language other than en or ru.
	ErrUnknownLanguage = errors.New("unknown report language: use en or ru")

	// ErrNoPairs is returned by ValidateBatch when the configuration file
	// lists no document pairs.
	ErrNoPairs = errors.New("no document pairs: add a pairs list to the config file")
)
