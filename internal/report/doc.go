// Package report renders a comparison of two documents.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain text report, two labelled sections divided by
//     a separator line
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: tables per document for sharing in issue trackers
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. WriteFile persists a
// report to disk and reports failures as *IOError.
package report
