package model

import (
	"encoding/json"
	"slices"
	"sort"
)

// PageSet is a set of 1-based page numbers.
// The zero value is not usable; create one with NewPageSet.
type PageSet map[int]struct{}

// NewPageSet returns a PageSet containing the given pages.
func NewPageSet(pages ...int) PageSet {
	ps := make(PageSet, len(pages))
	for _, p := range pages {
		ps.Add(p)
	}
	return ps
}

// Add inserts a page number into the set.
func (ps PageSet) Add(page int) {
	ps[page] = struct{}{}
}

// Contains reports whether the page number is in the set.
func (ps PageSet) Contains(page int) bool {
	_, ok := ps[page]
	return ok
}

// Len returns the number of distinct pages in the set.
func (ps PageSet) Len() int {
	return len(ps)
}

// Sorted returns the page numbers in ascending order.
func (ps PageSet) Sorted() []int {
	pages := make([]int, 0, len(ps))
	for p := range ps {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Clone returns an independent copy of the set.
func (ps PageSet) Clone() PageSet {
	c := make(PageSet, len(ps))
	for p := range ps {
		c[p] = struct{}{}
	}
	return c
}

// Equal reports whether both sets contain exactly the same pages.
func (ps PageSet) Equal(other PageSet) bool {
	if len(ps) != len(other) {
		return false
	}
	for p := range ps {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array of page numbers.
func (ps PageSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.Sorted())
}

// UnmarshalJSON decodes an array of page numbers.
func (ps *PageSet) UnmarshalJSON(data []byte) error {
	var pages []int
	if err := json.Unmarshal(data, &pages); err != nil {
		return err
	}
	*ps = NewPageSet(pages...)
	return nil
}

// Occurrences maps each tag-bearing token to the pages it was found on.
//
// A token is only present as a key if it was observed on at least one page,
// so every PageSet in a well-formed Occurrences is non-empty.
type Occurrences map[string]PageSet

// NewOccurrences creates an empty Occurrences map.
func NewOccurrences() Occurrences {
	return make(Occurrences)
}

// Record adds a page number to the token's page set, creating the set on
// first occurrence.
func (o Occurrences) Record(token string, page int) {
	ps, ok := o[token]
	if !ok {
		ps = NewPageSet()
		o[token] = ps
	}
	ps.Add(page)
}

// Has reports whether the token is a key of the map.
func (o Occurrences) Has(token string) bool {
	_, ok := o[token]
	return ok
}

// Tokens returns the keys of the map in lexicographic (byte) order.
func (o Occurrences) Tokens() []string {
	tokens := make([]string, 0, len(o))
	for t := range o {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)
	return tokens
}

// Len returns the number of distinct tokens.
func (o Occurrences) Len() int {
	return len(o)
}

// Equal reports whether both maps have the same keys with the same pages.
func (o Occurrences) Equal(other Occurrences) bool {
	if len(o) != len(other) {
		return false
	}
	for token, pages := range o {
		otherPages, ok := other[token]
		if !ok || !pages.Equal(otherPages) {
			return false
		}
	}
	return true
}

// Entry is a token with its sorted page numbers.
// It is the flattened, ordered form used by report writers.
type Entry struct {
	// Token is the whitespace-delimited word containing at least one tag.
	Token string `json:"token"`

	// Pages lists the 1-based page numbers in ascending order.
	Pages []int `json:"pages"`
}

// Entries returns the map as a slice of entries sorted by token.
func (o Occurrences) Entries() []Entry {
	tokens := o.Tokens()
	entries := make([]Entry, len(tokens))
	for i, t := range tokens {
		entries[i] = Entry{Token: t, Pages: o[t].Sorted()}
	}
	return entries
}
