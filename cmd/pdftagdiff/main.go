// Package main provides the entry point for the pdftagdiff CLI.
//
// pdftagdiff compares the tag tokens of two PDF documents, such as equipment
// designations in two revisions of a drawing set. It reports the tokens
// found in only one document and saves copies of both documents with those
// tokens highlighted.
//
// Usage:
//
//	pdftagdiff compare old.pdf new.pdf --tag UPS --tag SW
//	pdftagdiff batch -c .pdftagdiff
//
// See --help for all available options.
package main

// main is the entry point for pdftagdiff.
func main() {
	Execute()
}
