// Package compare partitions the tokens of two documents.
//
// Two occurrence maps are compared by their key sets only: a token found in
// both documents is common no matter which pages it was found on. Every
// token of either document ends up in exactly one of common, unique to the
// first document, or unique to the second.
package compare
