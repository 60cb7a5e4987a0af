package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// Writer defines the interface for report output.
// Implementations render a comparison in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(cmp *model.Comparison) (int, error)
}

// Factory builds a Writer on top of an output stream.
type Factory func(output io.Writer) Writer

// Format is a report file format.
type Format string

const (
	// FormatText is the plain text report.
	FormatText Format = "text"
	// FormatJSON is the JSON report.
	FormatJSON Format = "json"
	// FormatMarkdown is the Markdown report.
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a format name into a Format. An empty name selects
// FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Extension returns the file extension used for the format, without dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// NewFactory returns a Factory for the format using the given labels.
func NewFactory(format Format, labels Labels, version string) Factory {
	switch format {
	case FormatJSON:
		return func(output io.Writer) Writer {
			return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version))
		}
	case FormatMarkdown:
		return func(output io.Writer) Writer {
			return NewMarkdownWriter(output, WithMarkdownLabels(labels))
		}
	default:
		return func(output io.Writer) Writer {
			return NewSimpleWriter(output, WithLabels(labels))
		}
	}
}

// WriteFile renders cmp with the writer built by newWriter into the file at
// path. The parent directory is created if missing and an existing file is
// truncated. Every failure is returned as *IOError.
func WriteFile(path string, newWriter Factory, cmp *model.Comparison) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return &IOError{Path: path, Err: err}
	}

	f, err := os.Create(path) //nolint:gosec // Report path is derived from the run directory
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Path: path, Err: cerr}
		}
	}()

	if _, err := newWriter(f).Write(cmp); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(cmp *model.Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(cmp)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatPages joins page numbers with ", ".
func formatPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}
