package report

import (
	"io"
	"strings"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// separatorWidth is the number of '=' characters between the two sections.
const separatorWidth = 40

// SimpleWriter outputs the plain text report:
//
//	<first section label>:
//	<token> (<pages label>: <p1>, <p2>)
//
//	========================================
//
//	<second section label>:
//	<token> (<pages label>: <p1>)
//
// Tokens are sorted by byte order and pages ascending.
type SimpleWriter struct {
	baseWriter

	// labels are the section and page labels.
	labels Labels

	// pages controls whether page numbers follow each token.
	pages bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLabels sets the section and page labels.
func WithLabels(labels Labels) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.labels = labels
	}
}

// WithPageNumbers controls whether page numbers are listed. Without them
// each line holds only the token.
func WithPageNumbers(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.pages = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		labels:     EnglishLabels(),
		pages:      true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the comparison in plain text.
func (w *SimpleWriter) Write(cmp *model.Comparison) (int, error) {
	var sb strings.Builder

	w.writeSection(&sb, w.labels.UniqueA, cmp.UniqueA)

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", separatorWidth))
	sb.WriteString("\n\n")

	w.writeSection(&sb, w.labels.UniqueB, cmp.UniqueB)

	return io.WriteString(w.output, sb.String())
}

// writeSection writes one labelled list of tokens.
func (w *SimpleWriter) writeSection(sb *strings.Builder, label string, occ model.Occurrences) {
	sb.WriteString(label)
	sb.WriteString(":\n")

	for _, e := range occ.Entries() {
		sb.WriteString(e.Token)
		if w.pages {
			sb.WriteString(" (")
			sb.WriteString(w.labels.Pages)
			sb.WriteString(": ")
			sb.WriteString(formatPages(e.Pages))
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
}
