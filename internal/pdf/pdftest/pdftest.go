// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// Glyph metrics of the documents built by Build. Text is 12pt Courier, whose
// glyphs are all 600/1000 em wide.
const (
	FontSize   = 12.0
	GlyphWidth = 7.2
	OriginX    = 72.0
	OriginY    = 720.0
	LineHeight = 20.0
)

// Font is the font resource /F1 of a generated document.
type Font struct {
	// BaseFont is a standard 14 font name such as Courier or Helvetica.
	BaseFont string

	// Widths writes a /Widths array of 600 for every character, which is
	// only correct for Courier. Without it readers must fall back to the
	// standard metrics of BaseFont.
	Widths bool
}

var (
	// Courier is the font used by Build.
	Courier = Font{BaseFont: "Courier", Widths: true}

	// Helvetica is a standard 14 font without /Widths, as most producers
	// write it.
	Helvetica = Font{BaseFont: "Helvetica"}
)

// Page is the content of one generated page.
type Page struct {
	// Content is the page content stream.
	Content string

	// Form, when set, is the content stream of a form XObject /Fm1
	// available to Content. Both streams may use /F1.
	Form string

	// FormMatrix is the /Matrix of the form, "1 0 0 1 0 0" when empty.
	FormMatrix string
}

// Write writes a PDF built from pages to dir/name and returns its path.
func Write(t testing.TB, dir, name string, pages ...[]string) string {
	t.Helper()
	return writeFile(t, dir, name, Build(pages...))
}

// WriteWithInfo is Write with a document information dictionary holding the
// given entries, for example Title or ModDate.
func WriteWithInfo(t testing.TB, dir, name string, info map[string]string, pages ...[]string) string {
	t.Helper()
	return writeFile(t, dir, name, BuildWithInfo(info, pages...))
}

// WritePages writes a PDF with the given font and raw page contents to
// dir/name and returns its path.
func WritePages(t testing.TB, dir, name string, font Font, pages ...Page) string {
	t.Helper()
	return writeFile(t, dir, name, BuildPages(font, nil, pages...))
}

func writeFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// Build renders pages into PDF bytes. Each element of pages is one page and
// each string one line of text, the first starting at (OriginX, OriginY)
// and each following one LineHeight lower. Lines must be printable ASCII
// without parentheses or backslashes.
//
// The cross-reference table carries exact offsets so both rsc.io/pdf and
// pdfcpu accept the output.
func Build(pages ...[]string) []byte {
	return BuildWithInfo(nil, pages...)
}

// BuildWithInfo is Build with a document information dictionary. Values
// follow the same restrictions as page lines.
func BuildWithInfo(info map[string]string, pages ...[]string) []byte {
	contents := make([]Page, len(pages))
	for i, lines := range pages {
		contents[i] = Page{Content: Lines(lines...)}
	}
	return BuildPages(Courier, info, contents...)
}

// Lines returns a content stream drawing lines in 12pt /F1 the way Build
// lays them out.
func Lines(lines ...string) string {
	var content strings.Builder
	fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td", FontSize, OriginX, OriginY)
	for j, line := range lines {
		if j > 0 {
			fmt.Fprintf(&content, " 0 %g Td", -LineHeight)
		}
		fmt.Fprintf(&content, " (%s) Tj", line)
	}
	content.WriteString(" ET")
	return content.String()
}

// BuildPages renders raw page contents into PDF bytes using font as /F1.
// info, when not empty, becomes the document information dictionary.
func BuildPages(font Font, info map[string]string, pages ...Page) []byte {
	const fontObj = 3

	fontDict := fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding", font.BaseFont)
	if font.Widths {
		widths := strings.TrimSpace(strings.Repeat("600 ", 95))
		fontDict += fmt.Sprintf(" /FirstChar 32 /LastChar 126 /Widths [%s]", widths)
	}
	fontDict += " >>"

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in once the page objects are numbered
		fontDict,
	}

	kids := make([]string, len(pages))
	for i, page := range pages {
		pageObj := len(objects) + 1
		contentObj := pageObj + 1
		kids[i] = fmt.Sprintf("%d 0 R", pageObj)

		xobjects := ""
		if page.Form != "" {
			xobjects = fmt.Sprintf(" /XObject << /Fm1 %d 0 R >>", contentObj+1)
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >>%s >> /Contents %d 0 R >>", fontObj, xobjects, contentObj),
			stream("", page.Content),
		)

		if page.Form != "" {
			matrix := page.FormMatrix
			if matrix == "" {
				matrix = "1 0 0 1 0 0"
			}
			header := fmt.Sprintf(" /Type /XObject /Subtype /Form /BBox [0 0 612 792] /Matrix [%s] /Resources << /Font << /F1 %d 0 R >> >>", matrix, fontObj)
			objects = append(objects, stream(header, page.Form))
		}
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	trailerInfo := ""
	if len(info) > 0 {
		var dict strings.Builder
		dict.WriteString("<<")
		for _, key := range slices.Sorted(maps.Keys(info)) {
			fmt.Fprintf(&dict, " /%s (%s)", key, info[key])
		}
		dict.WriteString(" >>")
		objects = append(objects, dict.String())
		trailerInfo = fmt.Sprintf(" /Info %d 0 R", len(objects))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, trailerInfo, xref)

	return buf.Bytes()
}

// stream formats an unfiltered stream object with extra header entries.
func stream(header, content string) string {
	return fmt.Sprintf("<<%s /Length %d >>\nstream\n%s\nendstream", header, len(content), content)
}
