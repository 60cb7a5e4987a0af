package pdf

import (
	"math"
	"strings"
	"unicode"

	rscpdf "rsc.io/pdf"
)

// maxFormDepth bounds the nesting of form XObjects drawn from one page.
const maxFormDepth = 8

// matrix is a PDF transformation matrix [a b 0; c d 0; e f 1].
type matrix [3][3]float64

var identity = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (m matrix) mul(n matrix) matrix {
	var r matrix
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				r[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return r
}

func translate(tx, ty float64) matrix {
	return matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
}

// newMatrix builds a matrix from the six operands a b c d e f.
func newMatrix(v []float64) matrix {
	return matrix{{v[0], v[1], 0}, {v[2], v[3], 0}, {v[4], v[5], 1}}
}

// textState is the part of the graphics state that positions glyphs.
type textState struct {
	ctm matrix
	tm  matrix
	tlm matrix

	charSpacing float64
	wordSpacing float64
	hscale      float64
	leading     float64
	rise        float64
	fontSize    float64
	font        *fontMetrics
}

// contentReader interprets content streams and collects the glyphs they draw.
//
// Unlike rsc.io/pdf's Page.Content it keeps space glyphs, advances glyphs of
// fonts without /Widths by their standard metrics, records the writing
// direction of each glyph and follows form XObjects.
type contentReader struct {
	state  textState
	stack  []textState
	glyphs []glyph
}

// pageGlyphs returns every glyph drawn on page in content-stream order.
func pageGlyphs(page rscpdf.Page) []glyph {
	c := &contentReader{state: textState{ctm: identity, tm: identity, tlm: identity, hscale: 1}}
	resources := page.Resources()

	contents := page.V.Key("Contents")
	if contents.Kind() == rscpdf.Array {
		for i := range contents.Len() {
			c.run(contents.Index(i), resources, 0)
		}
	} else {
		c.run(contents, resources, 0)
	}
	return c.glyphs
}

// run interprets one content stream drawn with resources.
func (c *contentReader) run(strm, resources rscpdf.Value, depth int) {
	if strm.Kind() != rscpdf.Stream {
		return
	}

	fonts := make(map[string]*fontMetrics)
	rscpdf.Interpret(strm, func(stk *rscpdf.Stack, op string) {
		args := make([]rscpdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		c.apply(op, args, resources, fonts, depth)
	})
}

// apply executes one operator. Operators with missing operands are ignored.
func (c *contentReader) apply(op string, args []rscpdf.Value, resources rscpdf.Value, fonts map[string]*fontMetrics, depth int) {
	s := &c.state
	switch op {
	case "q":
		c.stack = append(c.stack, c.state)
	case "Q":
		if n := len(c.stack); n > 0 {
			c.state = c.stack[n-1]
			c.stack = c.stack[:n-1]
		}
	case "cm":
		if v, ok := numbers(args, 6); ok {
			s.ctm = newMatrix(v).mul(s.ctm)
		}
	case "BT":
		s.tm, s.tlm = identity, identity
	case "Tc":
		if v, ok := numbers(args, 1); ok {
			s.charSpacing = v[0]
		}
	case "Tw":
		if v, ok := numbers(args, 1); ok {
			s.wordSpacing = v[0]
		}
	case "Tz":
		if v, ok := numbers(args, 1); ok {
			s.hscale = v[0] / 100
		}
	case "TL":
		if v, ok := numbers(args, 1); ok {
			s.leading = v[0]
		}
	case "Ts":
		if v, ok := numbers(args, 1); ok {
			s.rise = v[0]
		}
	case "Tf":
		if len(args) == 2 {
			name := args[0].Name()
			f, ok := fonts[name]
			if !ok {
				f = newFontMetrics(rscpdf.Font{V: resources.Key("Font").Key(name)})
				fonts[name] = f
			}
			s.font = f
			s.fontSize = args[1].Float64()
		}
	case "Td", "TD":
		if v, ok := numbers(args, 2); ok {
			if op == "TD" {
				s.leading = -v[1]
			}
			s.tlm = translate(v[0], v[1]).mul(s.tlm)
			s.tm = s.tlm
		}
	case "Tm":
		if v, ok := numbers(args, 6); ok {
			s.tm = newMatrix(v)
			s.tlm = s.tm
		}
	case "T*":
		c.nextLine()
	case "Tj":
		if len(args) == 1 {
			c.show(args[0].RawString())
		}
	case "'":
		if len(args) == 1 {
			c.nextLine()
			c.show(args[0].RawString())
		}
	case "\"":
		if len(args) == 3 {
			s.wordSpacing = args[0].Float64()
			s.charSpacing = args[1].Float64()
			c.nextLine()
			c.show(args[2].RawString())
		}
	case "TJ":
		if len(args) != 1 {
			return
		}
		arr := args[0]
		for i := range arr.Len() {
			item := arr.Index(i)
			if item.Kind() == rscpdf.String {
				c.show(item.RawString())
				continue
			}
			tx := -item.Float64() / 1000 * s.fontSize * s.hscale
			s.tm = translate(tx, 0).mul(s.tm)
		}
	case "Do":
		if len(args) == 1 && depth < maxFormDepth {
			c.drawForm(resources.Key("XObject").Key(args[0].Name()), resources, depth)
		}
	}
}

// drawForm interprets a form XObject with its own matrix and resources.
func (c *contentReader) drawForm(form, resources rscpdf.Value, depth int) {
	if form.Key("Subtype").Name() != "Form" {
		return
	}

	saved := c.state
	defer func() { c.state = saved }()

	if m := form.Key("Matrix"); m.Len() == 6 {
		v := make([]float64, 6)
		for i := range v {
			v[i] = m.Index(i).Float64()
		}
		c.state.ctm = newMatrix(v).mul(c.state.ctm)
	}
	if own := form.Key("Resources"); own.Kind() == rscpdf.Dict {
		resources = own
	}
	c.run(form, resources, depth+1)
}

func (c *contentReader) nextLine() {
	c.state.tlm = translate(0, -c.state.leading).mul(c.state.tlm)
	c.state.tm = c.state.tlm
}

// show draws a string operand code by code, appending a glyph for each and
// advancing the text matrix.
func (c *contentReader) show(raw string) {
	s := &c.state
	if s.font == nil {
		s.font = newFontMetrics(rscpdf.Font{})
	}
	f := s.font

	for i := 0; i < len(raw); i += f.codeLen {
		end := min(i+f.codeLen, len(raw))
		code := 0
		for _, b := range []byte(raw[i:end]) {
			code = code<<8 | int(b)
		}
		text := f.decode(raw[i:end])
		w0 := f.width(code)

		trm := matrix{{s.fontSize * s.hscale, 0, 0}, {0, s.fontSize, 0}, {0, s.rise, 1}}.mul(s.tm).mul(s.ctm)
		base := s.tm.mul(s.ctm)

		// Length of one text-space unit along the baseline in user space.
		unit := math.Hypot(base[0][0], base[0][1])
		ux, uy := 1.0, 0.0
		if unit > 0 {
			ux, uy = base[0][0]/unit, base[0][1]/unit
		}

		space := isSpace(text)
		tx := w0/1000*s.fontSize + s.charSpacing
		if space && f.codeLen == 1 && code == ' ' {
			tx += s.wordSpacing
		}
		tx *= s.hscale

		if text != "" {
			c.glyphs = append(c.glyphs, glyph{
				s:     text,
				x:     trm[2][0],
				y:     trm[2][1],
				ux:    ux,
				uy:    uy,
				w:     w0 / 1000 * s.fontSize * s.hscale * unit,
				adv:   tx * unit,
				size:  math.Hypot(trm[1][0], trm[1][1]),
				space: space,
			})
		}
		s.tm = translate(tx, 0).mul(s.tm)
	}
}

// numbers returns the first n operands as numbers.
func numbers(args []rscpdf.Value, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	v := make([]float64, n)
	for i := range n {
		k := args[i].Kind()
		if k != rscpdf.Integer && k != rscpdf.Real {
			return nil, false
		}
		v[i] = args[i].Float64()
	}
	return v, true
}

// isSpace reports whether s consists only of whitespace.
func isSpace(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
