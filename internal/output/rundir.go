package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StampLayout formats run timestamps: date, then hour, minute and second
// with H, M and S markers, for example 20240315_H14_M05_S09.
const StampLayout = "20060102_H15_M04_S05"

// maxAttempts bounds the numeric suffixes tried for runs started within the
// same second.
const maxAttempts = 1000

// RunDir is a created, empty directory owned by one run.
type RunDir struct {
	// Path is the directory path.
	Path string

	// Stamp is the formatted run start time embedded in every file name.
	Stamp string
}

// NewRunDir creates <base>/output_<stamp>, creating base if missing. When
// the directory already exists a suffix _2, _3, ... is appended until an
// unused name is found; an existing directory is never reused.
func NewRunDir(base string, now time.Time) (*RunDir, error) {
	if base == "" {
		return nil, errors.New("output directory is empty")
	}
	if err := os.MkdirAll(base, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := now.Format(StampLayout)
	name := "output_" + stamp
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			name = fmt.Sprintf("output_%s_%d", stamp, attempt)
		}
		path := filepath.Join(base, name)

		err := os.Mkdir(path, 0750)
		if err == nil {
			return &RunDir{Path: path, Stamp: stamp}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to create run directory: %d runs already exist for %s", maxAttempts, stamp)
}

// ReportPath returns the path of the comparison report with the given
// extension (without dot).
func (d *RunDir) ReportPath(ext string) string {
	return filepath.Join(d.Path, fmt.Sprintf("comparison_result_%s.%s", d.Stamp, ext))
}

// AnnotatedPath returns the path of the highlighted copy of document n
// (1 or 2).
func (d *RunDir) AnnotatedPath(n int) string {
	return filepath.Join(d.Path, fmt.Sprintf("highlighted_unique_pdf%d_%s.pdf", n, d.Stamp))
}
