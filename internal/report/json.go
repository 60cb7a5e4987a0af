package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is stamped into the document when non-empty.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document written by JSONWriter.
// Unique tokens are flattened into sorted entries so the output is stable.
type JSONReport struct {
	// Version is the pdftagdiff version that generated this report.
	Version string `json:"version,omitempty"`

	DocumentA model.DocumentInfo `json:"document_a"`
	DocumentB model.DocumentInfo `json:"document_b"`
	Tags      []string           `json:"tags"`

	// Summary holds the size of each partition.
	Summary model.Summary `json:"summary"`

	UniqueA []model.Entry `json:"unique_a"`
	UniqueB []model.Entry `json:"unique_b"`
	Common  []string      `json:"common"`
}

// NewJSONReport flattens a comparison into a JSONReport.
func NewJSONReport(cmp *model.Comparison, version string) *JSONReport {
	common := cmp.Common
	if common == nil {
		common = []string{}
	}
	return &JSONReport{
		Version:   version,
		DocumentA: cmp.DocumentA,
		DocumentB: cmp.DocumentB,
		Tags:      cmp.Tags,
		Summary:   cmp.Summary(),
		UniqueA:   cmp.UniqueA.Entries(),
		UniqueB:   cmp.UniqueB.Entries(),
		Common:    common,
	}
}

// Write outputs the comparison in JSON format.
func (w *JSONWriter) Write(cmp *model.Comparison) (int, error) {
	return w.writeJSON(NewJSONReport(cmp, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
