package report

import (
	"errors"
	"fmt"
)

// ErrReportWrite is matched by every failure to create or write a report
// file.
var ErrReportWrite = errors.New("cannot write report")

// ErrUnknownFormat is returned by ParseFormat for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// ErrUnknownLanguage is returned by LabelsFor for an unsupported language.
var ErrUnknownLanguage = errors.New("unknown report language")

// IOError records a failure to write the report at Path.
type IOError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrReportWrite and the underlying cause.
func (e *IOError) Unwrap() []error {
	return []error{ErrReportWrite, e.Err}
}
