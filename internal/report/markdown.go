package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/pdftagdiff/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	labels Labels
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownLabels sets the section and page labels.
func WithMarkdownLabels(labels Labels) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.labels = labels
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		labels:     EnglishLabels(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the comparison in Markdown format.
func (w *MarkdownWriter) Write(cmp *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, cmp)
	w.writeSummary(md, cmp)
	w.writeSection(md, w.labels.UniqueA, cmp.UniqueA)
	w.writeSection(md, w.labels.UniqueB, cmp.UniqueB)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the compared documents.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, cmp *model.Comparison) {
	md.H1("PDF Tag Comparison")
	md.PlainText("")

	rows := [][]string{
		{"File", "`" + displayName(cmp.DocumentA) + "`", "`" + displayName(cmp.DocumentB) + "`"},
		{"Pages", strconv.Itoa(cmp.DocumentA.Pages), strconv.Itoa(cmp.DocumentB.Pages)},
	}
	metaA, metaB := metadataOf(cmp.DocumentA), metadataOf(cmp.DocumentB)
	if metaA.Title != "" || metaB.Title != "" {
		rows = append(rows, []string{"Title", metaA.Title, metaB.Title})
	}
	if !metaA.Modified.IsZero() || !metaB.Modified.IsZero() {
		rows = append(rows, []string{"Modified", formatDate(metaA.Modified), formatDate(metaB.Modified)})
	}
	rows = append(rows, []string{"Unique tokens", strconv.Itoa(cmp.UniqueA.Len()), strconv.Itoa(cmp.UniqueB.Len())})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Document 1", "Document 2"},
		Rows:   rows,
	})
	md.PlainText("")
}

// metadataOf returns the metadata of doc, or an empty value.
func metadataOf(doc model.DocumentInfo) model.DocumentMetadata {
	if doc.Metadata == nil {
		return model.DocumentMetadata{}
	}
	return *doc.Metadata
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateTime)
}

// writeSummary writes the partition counts and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, cmp *model.Comparison) {
	md.H2("Summary")
	md.PlainText("")

	if len(cmp.Tags) > 0 {
		tags := make([]string, len(cmp.Tags))
		for i, t := range cmp.Tags {
			tags[i] = "`" + t + "`"
		}
		md.PlainText("Tags:")
		md.BulletList(tags...)
		md.PlainText("")
	}

	s := cmp.Summary()
	md.Table(markdown.TableSet{
		Header: []string{"Partition", "Tokens"},
		Rows: [][]string{
			{"Common", strconv.Itoa(s.Common)},
			{w.labels.UniqueA, strconv.Itoa(s.UniqueA)},
			{w.labels.UniqueB, strconv.Itoa(s.UniqueB)},
		},
	})
	md.PlainText("")

	if cmp.HasDifferences() {
		md.Warningf("%d token(s) differ between the documents.", s.UniqueA+s.UniqueB)
	} else {
		md.Tip("Both documents contain the same tagged tokens.")
	}
	md.PlainText("")
}

// writeSection writes the unique tokens of one document as a table.
func (w *MarkdownWriter) writeSection(md *markdown.Markdown, label string, occ model.Occurrences) {
	md.H2(label)
	md.PlainText("")

	if occ.Len() == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	entries := occ.Entries()
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{"`" + e.Token + "`", formatPages(e.Pages)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Token", w.labels.Pages},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by pdftagdiff*")
}

// displayName returns the label of a document, falling back to its path.
func displayName(doc model.DocumentInfo) string {
	if doc.Label != "" {
		return doc.Label
	}
	return doc.Path
}
