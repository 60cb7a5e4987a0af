package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/nao1215/pdftagdiff/internal/model"
	"golang.org/x/text/unicode/norm"
)

// Layout tolerances, expressed as fractions of the glyph font size.
const (
	// baselineTolerance is how far two baselines may drift apart and still
	// belong to the same line.
	baselineTolerance = 0.5

	// wordGapThreshold is the gap along the baseline between two glyphs above which
	// they belong to different words even without a space glyph.
	wordGapThreshold = 0.2

	// ascent and descent approximate the glyph box above and below the
	// baseline when the font metrics are not available.
	ascent  = 0.85
	descent = 0.25
)

// glyph is one positioned piece of text drawn by a content stream. All
// lengths are in user space.
type glyph struct {
	s string

	// x and y are the origin of the glyph on its baseline.
	x, y float64

	// ux and uy are the unit vector of the writing direction. The zero
	// vector means left to right.
	ux, uy float64

	// w is the width of the glyph and adv the distance to the origin of
	// the next glyph, including character and word spacing.
	w, adv float64

	size  float64
	space bool
}

// direction returns the unit vector of the writing direction.
func (g glyph) direction() (float64, float64) {
	if g.ux == 0 && g.uy == 0 {
		return 1, 0
	}
	return g.ux, g.uy
}

// rect returns the approximate axis-aligned bounding box of the glyph.
func (g glyph) rect() model.Rect {
	w := g.w
	if w <= 0 {
		w = g.size * 0.5
	}
	dx, dy := g.direction()
	// Perpendicular to the baseline, pointing up the glyph.
	px, py := -dy, dx

	var r model.Rect
	for i, c := range [][2]float64{{0, -descent}, {0, ascent}, {w, -descent}, {w, ascent}} {
		along, up := c[0], c[1]*g.size
		x := g.x + along*dx + up*px
		y := g.y + along*dy + up*py
		if i == 0 {
			r = model.Rect{X0: x, Y0: y, X1: x, Y1: y}
			continue
		}
		r.X0, r.X1 = math.Min(r.X0, x), math.Max(r.X1, x)
		r.Y0, r.Y1 = math.Min(r.Y0, y), math.Max(r.Y1, y)
	}
	return r
}

// positioned is a glyph expressed in the frame of its writing direction.
type positioned struct {
	glyph

	// along is the position on the baseline direction and across the
	// position perpendicular to it, growing towards the top of the glyphs.
	along, across float64
}

// word is a run of glyphs not separated by whitespace or a wide gap.
type word struct {
	text string

	// offsets[i] is the byte offset in text where glyphs[i] starts.
	offsets []int
	glyphs  []glyph
}

func (w *word) add(g glyph) {
	w.offsets = append(w.offsets, len(w.text))
	w.glyphs = append(w.glyphs, g)
	w.text += g.s
}

// glyphAt returns the index of the glyph covering byte offset off.
func (w *word) glyphAt(off int) int {
	return sort.Search(len(w.offsets), func(i int) bool { return w.offsets[i] > off }) - 1
}

// span returns the bounding box of the bytes [start, end) of the word text.
func (w *word) span(start, end int) model.Rect {
	var r model.Rect
	for i := w.glyphAt(start); i >= 0 && i < len(w.glyphs) && w.offsets[i] < end; i++ {
		r = r.Union(w.glyphs[i].rect())
	}
	return r
}

// bounds returns the bounding box of the whole word.
func (w *word) bounds() model.Rect {
	return w.span(0, len(w.text))
}

// pageLayout is the reconstructed reading order of one page.
type pageLayout struct {
	lines [][]*word
}

// newPageLayout groups glyphs by writing direction, each direction into
// lines by baseline and each line into words by whitespace glyphs and gaps.
// Horizontal text comes first, then the other directions by angle.
func newPageLayout(glyphs []glyph) *pageLayout {
	groups := make(map[int][]glyph)
	for _, g := range glyphs {
		if g.s == "" {
			continue
		}
		if g.size <= 0 {
			g.size = 1
		}
		groups[directionKey(g)] = append(groups[directionKey(g)], g)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := abs(keys[i]), abs(keys[j])
		if ai != aj {
			return ai < aj
		}
		return keys[i] < keys[j]
	})

	layout := &pageLayout{}
	for _, k := range keys {
		layout.addDirection(k, groups[k])
	}
	return layout
}

// directionKey is the writing direction of g in whole degrees, in (-180, 180].
func directionKey(g glyph) int {
	dx, dy := g.direction()
	deg := int(math.Round(math.Atan2(dy, dx) * 180 / math.Pi))
	if deg == -180 {
		deg = 180
	}
	return deg
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// addDirection adds the lines of glyphs sharing the writing direction deg.
func (l *pageLayout) addDirection(deg int, glyphs []glyph) {
	rad := float64(deg) * math.Pi / 180
	dx, dy := math.Cos(rad), math.Sin(rad)

	placed := make([]positioned, len(glyphs))
	for i, g := range glyphs {
		placed[i] = positioned{
			glyph:  g,
			along:  g.x*dx + g.y*dy,
			across: -g.x*dy + g.y*dx,
		}
	}

	// Topmost line first; the stable sort keeps content-stream order for
	// glyphs sharing a baseline.
	sort.SliceStable(placed, func(i, j int) bool { return placed[i].across > placed[j].across })

	var line []positioned
	var lineAcross float64
	for _, p := range placed {
		if len(line) > 0 && math.Abs(lineAcross-p.across) > p.size*baselineTolerance {
			l.addLine(line)
			line = nil
		}
		if len(line) == 0 {
			lineAcross = p.across
		}
		line = append(line, p)
	}
	if len(line) > 0 {
		l.addLine(line)
	}
}

// addLine splits a single line of glyphs into words. A gap counts only
// beyond the advance of the previous glyph, so character spacing does not
// split words.
func (l *pageLayout) addLine(line []positioned) {
	sort.SliceStable(line, func(i, j int) bool { return line[i].along < line[j].along })

	var words []*word
	var cur *word
	var prev positioned
	for _, p := range line {
		if p.space || isSpace(p.s) {
			cur = nil
			continue
		}
		if cur != nil && p.along-(prev.along+advance(prev.glyph)) > p.size*wordGapThreshold {
			cur = nil
		}
		if cur == nil {
			cur = &word{}
			words = append(words, cur)
		}
		cur.add(p.glyph)
		prev = p
	}
	if len(words) > 0 {
		l.lines = append(l.lines, words)
	}
}

// advance returns the distance from the origin of g to the expected origin
// of the glyph after it.
func advance(g glyph) float64 {
	if g.adv > 0 {
		return g.adv
	}
	return g.w
}

// text renders the page as words separated by spaces and lines separated by
// newlines.
func (l *pageLayout) text() string {
	var sb strings.Builder
	for i, line := range l.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, w := range line {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.text)
		}
	}
	return sb.String()
}

// search returns the geometry of every case-sensitive occurrence of needle.
//
// When the raw word text does not contain the needle but its NFC form does
// (for example a base letter and a combining mark drawn as two glyphs), the
// whole word is returned because byte offsets no longer line up with glyphs.
func (l *pageLayout) search(needle string) []model.Rect {
	if needle == "" {
		return nil
	}

	var rects []model.Rect
	for _, line := range l.lines {
		for _, w := range line {
			found := false
			for off := 0; off <= len(w.text)-len(needle); {
				i := strings.Index(w.text[off:], needle)
				if i < 0 {
					break
				}
				start := off + i
				rects = append(rects, w.span(start, start+len(needle)))
				found = true
				off = start + len(needle)
			}
			if !found && strings.Contains(norm.NFC.String(w.text), needle) {
				rects = append(rects, w.bounds())
			}
		}
	}
	return rects
}
