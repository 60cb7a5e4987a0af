package compare

import (
	"slices"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// Diff returns the tokens of a that are not keys of b and the tokens of b
// that are not keys of a, each with its original pages.
// The inputs are not modified; the page sets of the result are copies.
func Diff(a, b model.Occurrences) (uniqueA, uniqueB model.Occurrences) {
	return subtract(a, b), subtract(b, a)
}

// Compare builds the full comparison of a and b, including the sorted list
// of common tokens.
func Compare(a, b model.Occurrences) *model.Comparison {
	uniqueA, uniqueB := Diff(a, b)
	return &model.Comparison{
		Common:  Common(a, b),
		UniqueA: uniqueA,
		UniqueB: uniqueB,
	}
}

// Common returns the tokens that are keys of both a and b, sorted.
func Common(a, b model.Occurrences) []string {
	common := make([]string, 0)
	for token := range a {
		if b.Has(token) {
			common = append(common, token)
		}
	}
	slices.Sort(common)
	return common
}

// subtract returns the entries of from whose token is not a key of other.
func subtract(from, other model.Occurrences) model.Occurrences {
	out := model.NewOccurrences()
	for token, pages := range from {
		if !other.Has(token) {
			out[token] = pages.Clone()
		}
	}
	return out
}
