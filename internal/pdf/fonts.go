package pdf

import (
	"strings"

	pdffont "github.com/pdfcpu/pdfcpu/pkg/font"
	rscpdf "rsc.io/pdf"
)

// defaultGlyphWidth is the advance, in thousandths of an em, of a glyph
// whose font carries no usable width.
const defaultGlyphWidth = 500

// standardFontAliases maps the font names Acrobat accepts in place of the
// standard 14 fonts to the font they stand for.
var standardFontAliases = map[string]string{
	"Arial":                      "Helvetica",
	"ArialMT":                    "Helvetica",
	"Arial,Bold":                 "Helvetica-Bold",
	"Arial-BoldMT":               "Helvetica-Bold",
	"Arial,Italic":               "Helvetica-Oblique",
	"Arial-ItalicMT":             "Helvetica-Oblique",
	"Arial,BoldItalic":           "Helvetica-BoldOblique",
	"Arial-BoldItalicMT":         "Helvetica-BoldOblique",
	"CourierNew":                 "Courier",
	"CourierNewPSMT":             "Courier",
	"CourierNew,Bold":            "Courier-Bold",
	"CourierNew,Italic":          "Courier-Oblique",
	"CourierNew,BoldItalic":      "Courier-BoldOblique",
	"TimesNewRoman":              "Times-Roman",
	"TimesNewRomanPSMT":          "Times-Roman",
	"TimesNewRoman,Bold":         "Times-Bold",
	"TimesNewRomanPS-BoldMT":     "Times-Bold",
	"TimesNewRoman,Italic":       "Times-Italic",
	"TimesNewRomanPS-ItalicMT":   "Times-Italic",
	"TimesNewRoman,BoldItalic":   "Times-BoldItalic",
	"TimesNewRomanPS-BoldItalic": "Times-BoldItalic",
}

// standardFontName returns the standard 14 font that baseFont refers to, or
// "" when it is not one of them. Subset prefixes such as "ABCDEF+" are
// ignored.
func standardFontName(baseFont string) string {
	if i := strings.IndexByte(baseFont, '+'); i >= 0 {
		baseFont = baseFont[i+1:]
	}
	if alias, ok := standardFontAliases[baseFont]; ok {
		baseFont = alias
	}
	if pdffont.IsCoreFont(baseFont) {
		return baseFont
	}
	return ""
}

// fontMetrics decodes the character codes of one font and measures them.
type fontMetrics struct {
	font rscpdf.Font
	enc  rscpdf.TextEncoding

	// codeLen is the number of bytes per character code: 2 for composite
	// (Type0) fonts, 1 otherwise.
	codeLen int

	// hasWidths is set when the font dictionary carries /Widths.
	hasWidths bool

	// standard is the standard 14 font used when /Widths is missing.
	standard string

	// missing is the width of codes not covered by /Widths.
	missing float64

	// cidWidths and cidDefault hold the /W and /DW entries of the
	// descendant font of a Type0 font.
	cidWidths  map[int]float64
	cidDefault float64

	// scale converts widths to thousandths of an em. It differs from 1
	// only for Type3 fonts, whose widths are in glyph space.
	scale float64
}

// newFontMetrics reads the width information of f.
func newFontMetrics(f rscpdf.Font) *fontMetrics {
	m := &fontMetrics{
		font:      f,
		enc:       f.Encoder(),
		codeLen:   1,
		hasWidths: f.V.Key("Widths").Kind() == rscpdf.Array,
		standard:  standardFontName(f.BaseFont()),
		missing:   defaultGlyphWidth,
		scale:     1,
	}

	if w := f.V.Key("FontDescriptor").Key("MissingWidth").Float64(); w > 0 {
		m.missing = w
	}

	switch f.V.Key("Subtype").Name() {
	case "Type0":
		m.codeLen = 2
		m.readCIDWidths(f.V.Key("DescendantFonts").Index(0))
	case "Type3":
		if fm := f.V.Key("FontMatrix"); fm.Len() == 6 && fm.Index(0).Float64() != 0 {
			m.scale = fm.Index(0).Float64() * 1000
		}
	}
	return m
}

// readCIDWidths parses the /DW and /W entries of a CIDFont dictionary.
// /W holds either "c [w1 w2 ...]" or "cfirst clast w" groups.
func (m *fontMetrics) readCIDWidths(cidFont rscpdf.Value) {
	m.cidDefault = 1000
	if dw := cidFont.Key("DW"); dw.Kind() == rscpdf.Integer || dw.Kind() == rscpdf.Real {
		m.cidDefault = dw.Float64()
	}

	w := cidFont.Key("W")
	m.cidWidths = make(map[int]float64)
	for i := 0; i < w.Len(); {
		first := int(w.Index(i).Int64())
		next := w.Index(i + 1)
		if next.Kind() == rscpdf.Array {
			for j := range next.Len() {
				m.cidWidths[first+j] = next.Index(j).Float64()
			}
			i += 2
			continue
		}
		last := int(next.Int64())
		width := w.Index(i + 2).Float64()
		for c := first; c <= last && c-first < 0xFFFF; c++ {
			m.cidWidths[c] = width
		}
		i += 3
	}
}

// width returns the advance of code in thousandths of an em.
func (m *fontMetrics) width(code int) float64 {
	if m.cidWidths != nil {
		if w, ok := m.cidWidths[code]; ok {
			return w
		}
		return m.cidDefault
	}
	if m.hasWidths {
		if w := m.font.Width(code); w > 0 {
			return w * m.scale
		}
		if m.standard == "" {
			return m.missing
		}
	}
	if m.standard != "" {
		return float64(pdffont.CharWidth(m.standard, rune(code)))
	}
	return m.missing
}

// decode returns the text of one character code.
func (m *fontMetrics) decode(code string) string {
	if m.enc == nil {
		return code
	}
	return m.enc.Decode(code)
}
