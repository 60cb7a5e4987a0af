package annotate

import (
	"context"
	"log/slog"

	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/nao1215/pdftagdiff/internal/pdf"
)

// Searcher locates text on a page. Page indexes are 0-based.
type Searcher interface {
	Search(index int, needle string) ([]model.Rect, error)
}

// Marker adds highlight annotations to a page. Page indexes are 0-based.
type Marker interface {
	Highlight(index int, rects []model.Rect, color model.Color, contents string) error
}

// Style is the visual style of the highlights.
type Style struct {
	// Color is the stroke colour of every highlight.
	Color model.Color
}

// DefaultStyle returns the solid red style.
func DefaultStyle() Style {
	return Style{Color: model.Red}
}

// Stats summarises one annotation pass.
type Stats struct {
	// Tokens is the number of unique tokens processed.
	Tokens int `json:"tokens"`

	// Searches is the number of (token, page) pairs searched.
	Searches int `json:"searches"`

	// Highlights is the number of annotations added.
	Highlights int `json:"highlights"`

	// Misses counts searches that found nothing.
	Misses int `json:"misses"`

	// Errors counts searches or highlights that failed and were skipped.
	Errors int `json:"errors"`
}

// Options configures AnnotateFile.
type Options struct {
	// Save controls how the annotated document is written.
	Save pdf.SaveOptions

	// Logger receives debug records for misses and skipped errors.
	// When nil, slog.Default() is used.
	Logger *slog.Logger
}

// Annotate highlights every occurrence of each unique token on each page it
// was recorded on. Tokens are processed in sorted order and pages in
// ascending order.
//
// Search misses and per-occurrence failures are counted in Stats and never
// abort the pass; the returned error is always nil and exists so callers can
// treat Annotate like the rest of the pipeline.
func Annotate(src Searcher, dst Marker, unique model.Occurrences, style Style) (Stats, error) {
	return annotate(src, dst, unique, style, slog.New(slog.DiscardHandler))
}

func annotate(src Searcher, dst Marker, unique model.Occurrences, style Style, logger *slog.Logger) (Stats, error) {
	var stats Stats
	for _, entry := range unique.Entries() {
		stats.Tokens++
		for _, page := range entry.Pages {
			stats.Searches++

			rects, err := src.Search(page-1, entry.Token)
			if err != nil {
				stats.Errors++
				logger.Debug("search failed", "token", entry.Token, "page", page, "error", err)
				continue
			}
			if len(rects) == 0 {
				stats.Misses++
				logger.Debug("token not found on page", "token", entry.Token, "page", page)
				continue
			}

			if err := dst.Highlight(page-1, rects, style.Color, entry.Token); err != nil {
				stats.Errors++
				logger.Debug("highlight failed", "token", entry.Token, "page", page, "error", err)
				continue
			}
			stats.Highlights += len(rects)
		}
	}
	return stats, nil
}

// AnnotateFile highlights the unique tokens of the PDF at srcPath and saves
// the result to dstPath. The source is never modified; a dstPath naming the
// source is refused with pdf.ErrSameFile.
//
// Failures to open the source are *pdf.OpenError and failures to save are
// *pdf.WriteError. Every handle is closed before returning.
func AnnotateFile(ctx context.Context, srcPath, dstPath string, unique model.Occurrences, style Style, opts Options) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	doc, err := pdf.Open(srcPath)
	if err != nil {
		return Stats{}, err
	}
	defer doc.Close()

	editor, err := pdf.OpenEditor(srcPath)
	if err != nil {
		return Stats{}, err
	}
	defer editor.Close()

	stats, err := annotate(doc, editor, unique, style, logger)
	if err != nil {
		return stats, err
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if err := editor.Save(dstPath, opts.Save); err != nil {
		return stats, err
	}

	logger.Debug("annotated document saved",
		"source", srcPath,
		"path", dstPath,
		"highlights", stats.Highlights,
		"misses", stats.Misses,
	)
	return stats, nil
}
