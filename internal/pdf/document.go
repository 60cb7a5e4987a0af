package pdf

import (
	"fmt"
	"os"

	"github.com/nao1215/pdftagdiff/internal/model"
	rscpdf "rsc.io/pdf"
)

// Document is a read-only PDF handle backed by rsc.io/pdf.
// It is not safe for concurrent use.
type Document struct {
	// path is the file the document was opened from.
	path string

	// file is owned by the Document and closed by Close.
	file *os.File

	// reader parses objects lazily from file.
	reader *rscpdf.Reader

	// layouts caches the reconstructed layout of each visited page so that
	// repeated searches on a page do not re-interpret its content stream.
	layouts map[int]*pageLayout
}

// Open opens the PDF at path for reading.
// The returned Document must be closed by the caller.
func Open(path string) (doc *Document, err error) {
	f, err := os.Open(path) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()
	defer recoverAs(&err, func(cause error) error { return &OpenError{Path: path, Err: cause} })

	r, err := rscpdf.NewReader(f, info.Size())
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	if r.NumPage() == 0 {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("document has no pages")}
	}

	return &Document{
		path:    path,
		file:    f,
		reader:  r,
		layouts: make(map[int]*pageLayout),
	}, nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of the page at index.
// Words are separated by single spaces and lines by newlines.
func (d *Document) PageText(index int) (string, error) {
	layout, err := d.layout(index)
	if err != nil {
		return "", err
	}
	return layout.text(), nil
}

// Search returns the bounding box of every case-sensitive occurrence of
// needle on the page at index. An empty result is not an error.
func (d *Document) Search(index int, needle string) ([]model.Rect, error) {
	layout, err := d.layout(index)
	if err != nil {
		return nil, err
	}
	return layout.search(needle), nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// layout returns the cached layout for the page at index, interpreting the
// page content stream on first use.
func (d *Document) layout(index int) (layout *pageLayout, err error) {
	if index < 0 || index >= d.PageCount() {
		return nil, fmt.Errorf("page %d of %d: %w", index+1, d.PageCount(), ErrPageOutOfRange)
	}
	if l, ok := d.layouts[index]; ok {
		return l, nil
	}

	defer recoverAs(&err, func(cause error) error {
		return &OpenError{Path: d.path, Err: fmt.Errorf("page %d: %w", index+1, cause)}
	})

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		layout = &pageLayout{}
	} else {
		layout = newPageLayout(pageGlyphs(page))
	}
	d.layouts[index] = layout
	return layout, nil
}
