package pdf

import (
	"math"
	"testing"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// courierRun lays s out as 12pt monospaced glyphs starting at (x, y),
// spaces included.
func courierRun(s string, x, y float64) []glyph {
	return spacedRun(s, x, y, 0)
}

// spacedRun is courierRun with extra character spacing between glyphs.
func spacedRun(s string, x, y, spacing float64) []glyph {
	var glyphs []glyph
	for _, r := range s {
		glyphs = append(glyphs, glyph{
			s: string(r), x: x, y: y, ux: 1,
			w: 7.2, adv: 7.2 + spacing, size: 12, space: r == ' ',
		})
		x += 7.2 + spacing
	}
	return glyphs
}

// upwardRun lays s out bottom to top, as text rotated by 90 degrees.
func upwardRun(s string, x, y float64) []glyph {
	var glyphs []glyph
	for _, r := range s {
		glyphs = append(glyphs, glyph{
			s: string(r), x: x, y: y, uy: 1,
			w: 7.2, adv: 7.2, size: 12, space: r == ' ',
		})
		y += 7.2
	}
	return glyphs
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestPageLayoutText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		texts []glyph
		want  string
	}{
		{
			name:  "empty page",
			texts: nil,
			want:  "",
		},
		{
			name:  "single line split on space glyph",
			texts: courierRun("UPS1 SW-3", 72, 720),
			want:  "UPS1 SW-3",
		},
		{
			name:  "lines ordered top to bottom",
			texts: append(courierRun("second", 72, 700), courierRun("first", 72, 720)...),
			want:  "first\nsecond",
		},
		{
			name:  "wide gap splits words without space glyph",
			texts: append(courierRun("ШОП-2", 72, 720), courierRun("UPS7", 200, 720)...),
			want:  "ШОП-2 UPS7",
		},
		{
			name:  "glyphs drawn out of order are sorted by x",
			texts: append(courierRun("B1", 86.4, 720), courierRun("A1", 72, 720)...),
			want:  "A1B1",
		},
		{
			name:  "character spacing does not split words",
			texts: spacedRun("UPS1 SW-3", 72, 720, 3),
			want:  "UPS1 SW-3",
		},
		{
			name:  "rotated text reads along its baseline",
			texts: upwardRun("UPS1 SW-3", 300, 100),
			want:  "UPS1 SW-3",
		},
		{
			name:  "horizontal lines come before rotated ones",
			texts: append(upwardRun("SW-3", 500, 100), courierRun("UPS1", 72, 720)...),
			want:  "UPS1\nSW-3",
		},
		{
			name: "space glyph splits words without a gap",
			texts: []glyph{
				{s: "A", x: 72, y: 720, ux: 1, w: 6, adv: 6, size: 12},
				{s: " ", x: 78, y: 720, ux: 1, adv: 0, size: 12, space: true},
				{s: "B", x: 78, y: 720, ux: 1, w: 6, adv: 6, size: 12},
			},
			want: "A B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := newPageLayout(tt.texts).text()
			if got != tt.want {
				t.Errorf("text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageLayoutSearch(t *testing.T) {
	t.Parallel()

	t.Run("returns glyph span of match inside word", func(t *testing.T) {
		t.Parallel()

		layout := newPageLayout(courierRun("UPS1 xSW-3", 72, 720))
		rects := layout.search("SW-3")
		if len(rects) != 1 {
			t.Fatalf("search() returned %d rects, want 1", len(rects))
		}

		r := rects[0]
		// "UPS1 x" is six glyphs wide.
		wantX0 := 72 + 6*7.2
		if !approxEqual(r.X0, wantX0) || !approxEqual(r.X1, wantX0+4*7.2) {
			t.Errorf("rect x = [%v, %v], want [%v, %v]", r.X0, r.X1, wantX0, wantX0+4*7.2)
		}
		if r.Y0 >= 720 || r.Y1 <= 720 {
			t.Errorf("rect y = [%v, %v] should straddle baseline 720", r.Y0, r.Y1)
		}
	})

	t.Run("rotated match is a tall rectangle", func(t *testing.T) {
		t.Parallel()

		rects := newPageLayout(upwardRun("UPS1 SW-3", 300, 100)).search("UPS1")
		if len(rects) != 1 {
			t.Fatalf("search() returned %d rects, want 1", len(rects))
		}
		r := rects[0]
		want := model.Rect{X0: 300 - 12*ascent, Y0: 100, X1: 300 + 12*descent, Y1: 100 + 4*7.2}
		if !approxEqual(r.X0, want.X0) || !approxEqual(r.Y0, want.Y0) ||
			!approxEqual(r.X1, want.X1) || !approxEqual(r.Y1, want.Y1) {
			t.Errorf("rect = %+v, want %+v", r, want)
		}
	})

	t.Run("letter-spaced match spans the spacing", func(t *testing.T) {
		t.Parallel()

		rects := newPageLayout(spacedRun("UPS1 SW-3", 72, 720, 3)).search("UPS1")
		if len(rects) != 1 {
			t.Fatalf("search() returned %d rects, want 1", len(rects))
		}
		if r := rects[0]; !approxEqual(r.X0, 72) || !approxEqual(r.X1, 72+3*10.2+7.2) {
			t.Errorf("rect x = [%v, %v], want [72, %v]", r.X0, r.X1, 72+3*10.2+7.2)
		}
	})

	t.Run("finds every occurrence", func(t *testing.T) {
		t.Parallel()

		texts := append(courierRun("UPS1 UPS1", 72, 720), courierRun("UPS1", 72, 700)...)
		rects := newPageLayout(texts).search("UPS1")
		if len(rects) != 3 {
			t.Errorf("search() returned %d rects, want 3", len(rects))
		}
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		t.Parallel()

		rects := newPageLayout(courierRun("ups1", 72, 720)).search("UPS1")
		if len(rects) != 0 {
			t.Errorf("search() returned %d rects, want 0", len(rects))
		}
	})

	t.Run("empty needle matches nothing", func(t *testing.T) {
		t.Parallel()

		rects := newPageLayout(courierRun("UPS1", 72, 720)).search("")
		if rects != nil {
			t.Errorf("search(\"\") = %v, want nil", rects)
		}
	})

	t.Run("decomposed glyphs fall back to whole word", func(t *testing.T) {
		t.Parallel()

		// "Й" drawn as "И" followed by a combining breve.
		texts := []glyph{
			{s: "И", x: 72, y: 720, ux: 1, w: 7.2, adv: 7.2, size: 12},
			{s: "\u0306", x: 79.2, y: 720, ux: 1, size: 12},
			{s: "1", x: 79.2, y: 720, ux: 1, w: 7.2, adv: 7.2, size: 12},
		}
		layout := newPageLayout(texts)
		rects := layout.search("Й1")
		if len(rects) != 1 {
			t.Fatalf("search() returned %d rects, want 1", len(rects))
		}
		want := layout.lines[0][0].bounds()
		if rects[0] != want {
			t.Errorf("rect = %+v, want word bounds %+v", rects[0], want)
		}
	})
}

func TestGlyphRect(t *testing.T) {
	t.Parallel()

	g := glyph{s: "A", x: 10, y: 100, w: 0, size: 10}
	r := g.rect()
	want := model.Rect{X0: 10, Y0: 97.5, X1: 15, Y1: 108.5}
	if !approxEqual(r.X0, want.X0) || !approxEqual(r.Y0, want.Y0) ||
		!approxEqual(r.X1, want.X1) || !approxEqual(r.Y1, want.Y1) {
		t.Errorf("rect() = %+v, want %+v", r, want)
	}
}

func TestGlyphRectRotated(t *testing.T) {
	t.Parallel()

	// Drawn top to bottom.
	g := glyph{s: "A", x: 10, y: 100, uy: -1, w: 6, size: 10}
	r := g.rect()
	want := model.Rect{X0: 10 - 2.5, Y0: 94, X1: 10 + 8.5, Y1: 100}
	if !approxEqual(r.X0, want.X0) || !approxEqual(r.Y0, want.Y0) ||
		!approxEqual(r.X1, want.X1) || !approxEqual(r.Y1, want.Y1) {
		t.Errorf("rect() = %+v, want %+v", r, want)
	}
}

func TestDirectionKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ux, uy float64
		want   int
	}{
		{name: "unset is left to right", want: 0},
		{name: "left to right", ux: 1, want: 0},
		{name: "bottom to top", uy: 1, want: 90},
		{name: "top to bottom", uy: -1, want: -90},
		{name: "upside down", ux: -1, want: 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := directionKey(glyph{ux: tt.ux, uy: tt.uy}); got != tt.want {
				t.Errorf("directionKey() = %d, want %d", got, tt.want)
			}
		})
	}
}
