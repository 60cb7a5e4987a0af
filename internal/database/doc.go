// Package database provides SQLite-based run history for pdftagdiff.
//
// Every comparison run is stored with its documents, their SHA3-256
// fingerprints, the tags, the run directory, the partition sizes and the
// full run as JSON. Listing past runs shows whether a document changed
// between runs without opening it.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// binary cross-compiles without a C toolchain. The database is a single
// file in the XDG data directory.
package database
