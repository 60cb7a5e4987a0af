// Package annotate marks the unique tokens of a document with highlight
// annotations and saves the result as a new PDF.
//
// Annotation is best effort. A token that was extracted from a page but
// cannot be located again on that page is counted as a miss and skipped;
// only a failure to open or save the document is an error.
package annotate
