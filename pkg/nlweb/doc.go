// Package nlweb contains the shared domain types for the NLWeb query core.
//
// The query core accepts natural-language queries, routes them through a
// selectable tool (search, compare, details, ensemble), retrieves candidate
// documents from pluggable data backends and shapes the outcome according to
// the requested mode. Subpackages implement the pipeline stages; this package
// holds the types and domain errors that cross those boundaries.
package nlweb
