// Package knowledge turns a directory tree of plain-text reference documents
// into queryable chunks and answers "most relevant chunks for this query"
// cheaply and deterministically. Files are split into chunks on blank-line
// boundaries; relevance is the size of the keyword intersection between the
// chunk and the query. The full chunk collection is persisted through the
// cache layer and a bounded in-process hot-set serves first-pass lookups.
package knowledge
