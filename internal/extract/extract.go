package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/pdf"
	"golang.org/x/text/unicode/norm"
)

// TextSource is the part of a document the extractor needs.
// Page indexes are 0-based.
type TextSource interface {
	PageCount() int
	PageText(index int) (string, error)
}

// Options tunes extraction.
type Options struct {
	// Normalize applies Unicode NFC normalization to tags and page text
	// before matching, so composed and decomposed forms of a letter such as
	// "Й" compare equal. Tokens are recorded in normalized form.
	Normalize bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{Normalize: true}
}

// Result is the outcome of extracting one document file.
type Result struct {
	// Occurrences maps each tag-bearing token to its pages.
	Occurrences model.Occurrences

	// Pages is the number of pages scanned.
	Pages int

	// Metadata is the document information dictionary, nil when absent.
	Metadata *model.DocumentMetadata
}

// Extract scans every page of src and records each token that contains at
// least one tag. Empty and duplicate tags are ignored.
//
// A page whose text cannot be read fails the whole extraction; no partial
// result is returned.
func Extract(ctx context.Context, src TextSource, tags []string, opts Options) (model.Occurrences, error) {
	tags = prepareTags(tags, opts)
	occ := model.NewOccurrences()

	for i := range src.PageCount() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := src.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		if opts.Normalize {
			text = norm.NFC.String(text)
		}
		scanPage(occ, text, tags, i+1)
	}
	return occ, nil
}

// ExtractFile opens the PDF at path, extracts its tag-bearing tokens and
// closes it on every exit path. Any failure to open or read the document is
// reported as a *pdf.OpenError.
func ExtractFile(ctx context.Context, path string, tags []string, opts Options) (*Result, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	occ, err := Extract(ctx, doc, tags, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !errors.Is(err, pdf.ErrDocumentOpen) {
			err = &pdf.OpenError{Path: path, Err: err}
		}
		return nil, err
	}

	return &Result{Occurrences: occ, Pages: doc.PageCount(), Metadata: doc.Metadata()}, nil
}

// scanPage records the tokens of one page that contain any of tags.
func scanPage(occ model.Occurrences, text string, tags []string, page int) {
	var tokens []string
	for _, tag := range tags {
		if !strings.Contains(text, tag) {
			continue
		}
		if tokens == nil {
			tokens = strings.Fields(text)
		}
		for _, token := range tokens {
			if strings.Contains(token, tag) {
				occ.Record(token, page)
			}
		}
	}
}

// prepareTags drops empty and duplicate tags, keeping the first occurrence
// order, and normalizes them when requested.
func prepareTags(tags []string, opts Options) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if opts.Normalize {
			tag = norm.NFC.String(tag)
		}
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
