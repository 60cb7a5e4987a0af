// Package pdf adapts third-party PDF libraries to the small set of
// capabilities pdftagdiff needs from a document-rendering engine.
//
// Two handles are provided:
//   - Document: read-only access backed by rsc.io/pdf. It reports the page
//     count, rebuilds plain page text from positioned glyphs and locates the
//     geometry of a string on a page. It also exposes the document
//     information dictionary.
//   - Editor: read-modify-write access backed by pdfcpu. It appends
//     highlight annotations to pages and saves the result to a new file.
//
// Both handles own their underlying file and must be released with Close,
// including after a failure. Page indexes are 0-based everywhere in this
// package.
//
// Errors opening or reading a document are reported as *OpenError and match
// ErrDocumentOpen with errors.Is. Errors saving a document are reported as
// *WriteError and match ErrDocumentWrite.
package pdf
