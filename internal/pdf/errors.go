package pdf

import (
	"errors"
	"fmt"
)

// Document errors.
// OpenError and WriteError unwrap to these sentinels so callers can use
// errors.Is without knowing the concrete type.
var (
	// ErrDocumentOpen is matched by every error raised while opening or
	// reading a source document (missing file, corrupt structure, unreadable
	// page content).
	ErrDocumentOpen = errors.New("cannot open document")

	// ErrDocumentWrite is matched by every error raised while saving an
	// annotated document.
	ErrDocumentWrite = errors.New("cannot write document")

	// ErrPageOutOfRange is returned when a page index is negative or not
	// less than the page count.
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrSameFile is returned when the save destination resolves to the
	// document that was opened. Source documents are never overwritten.
	ErrSameFile = errors.New("destination is the source document")
)

// OpenError records a failure to open or read the document at Path.
type OpenError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open document %s: %v", e.Path, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *OpenError) Unwrap() []error {
	return []error{ErrDocumentOpen, e.Err}
}

// WriteError records a failure to save a document to Path.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write document %s: %v", e.Path, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *WriteError) Unwrap() []error {
	return []error{ErrDocumentWrite, e.Err}
}

// recoverAs converts a panic raised by a parser into an error built by wrap.
// rsc.io/pdf reports malformed input by panicking, so every call into it
// goes through this helper.
func recoverAs(errp *error, wrap func(error) error) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		*errp = wrap(err)
	}
}
