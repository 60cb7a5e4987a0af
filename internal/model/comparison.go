package model

import "time"

// DocumentInfo identifies one side of a comparison.
type DocumentInfo struct {
	// Path is the source PDF path as given by the user.
	Path string `json:"path"`

	// Label is the human-readable name of the document used in reports.
	// It defaults to the file name when empty.
	Label string `json:"label,omitempty"`

	// Pages is the number of pages scanned.
	Pages int `json:"pages"`

	// Hash is the hex SHA3-256 digest of the file contents.
	Hash string `json:"hash,omitempty"`

	// Metadata is the document information dictionary, if any.
	Metadata *DocumentMetadata `json:"metadata,omitempty"`
}

// DocumentMetadata holds the entries of a PDF document information
// dictionary that identify a revision. Missing entries are left empty.
type DocumentMetadata struct {
	Title    string    `json:"title,omitempty"`
	Author   string    `json:"author,omitempty"`
	Creator  string    `json:"creator,omitempty"`
	Producer string    `json:"producer,omitempty"`
	Created  time.Time `json:"created,omitzero"`
	Modified time.Time `json:"modified,omitzero"`
}

// Empty reports whether no entry is set.
func (m *DocumentMetadata) Empty() bool {
	return m == nil || *m == DocumentMetadata{}
}

// Comparison is the partition of two occurrence maps.
//
// Common, UniqueA and UniqueB are disjoint and together cover every token of
// both documents. Tokens are compared as map keys only; the pages a common
// token was found on do not matter.
type Comparison struct {
	// DocumentA describes the first document.
	DocumentA DocumentInfo `json:"document_a"`

	// DocumentB describes the second document.
	DocumentB DocumentInfo `json:"document_b"`

	// Tags are the tag substrings the documents were scanned for.
	Tags []string `json:"tags"`

	// Common lists the tokens present in both documents, sorted.
	Common []string `json:"common"`

	// UniqueA holds the tokens found only in the first document.
	UniqueA Occurrences `json:"unique_a"`

	// UniqueB holds the tokens found only in the second document.
	UniqueB Occurrences `json:"unique_b"`
}

// HasDifferences reports whether either document has unique tokens.
func (c *Comparison) HasDifferences() bool {
	return c.UniqueA.Len() > 0 || c.UniqueB.Len() > 0
}

// Summary is the counts-only view of a comparison.
type Summary struct {
	UniqueA int `json:"unique_a"`
	UniqueB int `json:"unique_b"`
	Common  int `json:"common"`
}

// Summary returns the number of tokens in each partition.
func (c *Comparison) Summary() Summary {
	return Summary{
		UniqueA: c.UniqueA.Len(),
		UniqueB: c.UniqueB.Len(),
		Common:  len(c.Common),
	}
}
