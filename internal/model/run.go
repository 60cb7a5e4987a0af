package model

import (
	"time"
)

// Run records one comparison of a document pair from extraction to
// annotation. Pipeline steps fill it in progressively.
type Run struct {
	// ID uniquely identifies the run (a UUID string).
	ID string `json:"id"`

	// StartedAt is when the run began. The output directory name is
	// derived from it.
	StartedAt time.Time `json:"started_at"`

	// Tags are the tag substrings the run scans for.
	Tags []string `json:"tags"`

	// DocumentA and DocumentB describe the compared documents.
	DocumentA DocumentInfo `json:"document_a"`
	DocumentB DocumentInfo `json:"document_b"`

	// OccurrencesA and OccurrencesB are the raw extraction results.
	// They are not persisted.
	OccurrencesA Occurrences `json:"-"`
	OccurrencesB Occurrences `json:"-"`

	// Comparison is the diff of the two occurrence maps.
	Comparison *Comparison `json:"comparison,omitempty"`

	// RunDir is the directory holding this run's artifacts.
	RunDir string `json:"run_dir"`

	// ReportPath is the path of the written report.
	ReportPath string `json:"report_path,omitempty"`

	// AnnotatedA and AnnotatedB are the paths of the highlighted copies.
	// Empty when annotation is disabled or failed.
	AnnotatedA string `json:"annotated_a,omitempty"`
	AnnotatedB string `json:"annotated_b,omitempty"`

	// AnnotationErrors holds per-document annotation failures keyed by
	// document path. A failure on one document does not stop the other.
	AnnotationErrors map[string]string `json:"annotation_errors,omitempty"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a Run for the given document pair.
func NewRun(id string, startedAt time.Time, docA, docB string, tags []string) *Run {
	return &Run{
		ID:               id,
		StartedAt:        startedAt,
		Tags:             tags,
		DocumentA:        DocumentInfo{Path: docA},
		DocumentB:        DocumentInfo{Path: docB},
		AnnotationErrors: make(map[string]string),
	}
}

// AddAnnotationError records a failed annotation for the document at path.
func (r *Run) AddAnnotationError(path string, err error) {
	if r.AnnotationErrors == nil {
		r.AnnotationErrors = make(map[string]string)
	}
	r.AnnotationErrors[path] = err.Error()
}

// Failed reports whether the run stopped with an error or any
// annotation failed.
func (r *Run) Failed() bool {
	return r.Error != nil || r.ErrorMessage != "" || len(r.AnnotationErrors) > 0
}

// Artifacts returns the paths of every file the run produced.
func (r *Run) Artifacts() []string {
	var paths []string
	for _, p := range []string{r.ReportPath, r.AnnotatedA, r.AnnotatedB} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
