// Package extract finds tag-bearing tokens in document text.
//
// A token is a whitespace-delimited word of page text. A token is selected
// when it contains at least one of the tag substrings; matching is exact and
// case-sensitive, and punctuation attached to the token is kept. The result
// maps every selected token to the 1-based pages it was found on.
package extract
