package pdf

import (
	"strings"
	"time"

	"github.com/nao1215/pdftagdiff/internal/model"
	rscpdf "rsc.io/pdf"
)

// Metadata returns the document information dictionary. A missing or
// malformed dictionary yields nil.
func (d *Document) Metadata() (meta *model.DocumentMetadata) {
	defer func() {
		if recover() != nil {
			meta = nil
		}
	}()

	info := d.reader.Trailer().Key("Info")
	if info.Kind() != rscpdf.Dict {
		return nil
	}

	m := &model.DocumentMetadata{
		Title:    strings.TrimSpace(info.Key("Title").Text()),
		Author:   strings.TrimSpace(info.Key("Author").Text()),
		Creator:  strings.TrimSpace(info.Key("Creator").Text()),
		Producer: strings.TrimSpace(info.Key("Producer").Text()),
		Created:  parsePDFDate(info.Key("CreationDate").RawString()),
		Modified: parsePDFDate(info.Key("ModDate").RawString()),
	}
	if m.Empty() {
		return nil
	}
	return m
}

// pdfDateLayouts are the prefixes of a PDF date (PDF 32000-1, 7.9.4) from
// the most to the least precise, with the apostrophes of the offset removed.
// Every field after the year is optional.
var pdfDateLayouts = []string{
	"20060102150405Z0700",
	"20060102150405Z07",
	"20060102150405",
	"200601021504",
	"2006010215",
	"20060102",
	"200601",
	"2006",
}

// parsePDFDate parses a PDF date string such as D:20240315140509+03'00'.
// It returns the zero time when s is not a date.
func parsePDFDate(s string) time.Time {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	s = strings.ReplaceAll(s, "'", "")
	// Z may be followed by a zero offset, as in Z00'00'.
	if i := strings.IndexByte(s, 'Z'); i >= 0 {
		s = s[:i+1]
	}

	for _, layout := range pdfDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
