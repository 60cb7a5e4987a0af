// Package config provides configuration structures and utilities for
// pdftagdiff. It defines the documents and tags to compare, where results
// are written, and how reports and annotated copies are produced.
package config
