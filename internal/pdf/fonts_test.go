package pdf

import (
	"testing"

	"github.com/nao1215/pdftagdiff/internal/pdf/pdftest"
	rscpdf "rsc.io/pdf"
)

func TestStandardFontName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Helvetica", want: "Helvetica"},
		{in: "Times-Roman", want: "Times-Roman"},
		{in: "ABCDEF+Courier-Bold", want: "Courier-Bold"},
		{in: "ArialMT", want: "Helvetica"},
		{in: "TimesNewRoman,Bold", want: "Times-Bold"},
		{in: "DejaVuSans", want: ""},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := standardFontName(tt.in); got != tt.want {
				t.Errorf("standardFontName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFontMetricsWidth(t *testing.T) {
	t.Parallel()

	fontOf := func(t *testing.T, font pdftest.Font) *fontMetrics {
		t.Helper()

		path := pdftest.WritePages(t, t.TempDir(), "doc.pdf", font, pdftest.Page{Content: pdftest.Lines("UPS1")})
		doc, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		t.Cleanup(func() { _ = doc.Close() })
		return newFontMetrics(doc.reader.Page(1).Font("F1"))
	}

	t.Run("standard metrics without widths", func(t *testing.T) {
		t.Parallel()

		m := fontOf(t, pdftest.Helvetica)
		for code, want := range map[int]float64{'U': 722, ' ': 278, 'W': 944, '-': 333} {
			if got := m.width(code); got != want {
				t.Errorf("width(%q) = %v, want %v", rune(code), got, want)
			}
		}
	})

	t.Run("widths array", func(t *testing.T) {
		t.Parallel()

		m := fontOf(t, pdftest.Courier)
		if got := m.width('U'); got != 600 {
			t.Errorf("width('U') = %v, want 600", got)
		}
		// Outside FirstChar..LastChar the standard Courier metrics apply.
		if got := m.width(200); got != 600 {
			t.Errorf("width(200) = %v, want 600", got)
		}
	})

	t.Run("unknown font", func(t *testing.T) {
		t.Parallel()

		m := newFontMetrics(rscpdf.Font{})
		if got := m.width('U'); got != defaultGlyphWidth {
			t.Errorf("width('U') = %v, want %v", got, defaultGlyphWidth)
		}
		if got := m.decode("UPS1"); got != "UPS1" {
			t.Errorf("decode() = %q, want UPS1", got)
		}
	})
}
