// Package model defines the core data structures used throughout pdftagdiff.
//
// This package contains the following main types:
//   - PageSet: The set of 1-based page numbers a token was found on
//   - Occurrences: Per-document mapping from token to PageSet
//   - Comparison: The partition of two Occurrences into common and unique tokens
//   - Run: One execution of the comparison over a document pair
//   - Rect, Color: Geometry and styling handed to the annotator
//
// Multiple packages (extract, compare, report, annotate, database) share these
// types, so they live in their own package to avoid import cycles.
//
// The models are serializable to JSON for report output and history storage.
package model
