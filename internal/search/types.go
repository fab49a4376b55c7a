// Package search implements the hybrid (vector + lexical) query path: an
// embedding-cache lookup, a fan-out across the two retrieval legs, RRF
// fusion, and document-level materialization under a character budget.
package search

// DocumentResult is one materialized document in a search response.
type DocumentResult struct {
	Title   string
	URL     string
	Content string
}

// Output is the bounded-size response returned by Search and SearchGroup.
type Output struct {
	Documents  []DocumentResult
	TotalChars int
	Truncated  bool
}

// DefaultLimit is the result count used when a caller doesn't specify one.
const DefaultLimit = 5

// DefaultMaxTotalChars bounds the combined size of materialized documents.
const DefaultMaxTotalChars = 50000
