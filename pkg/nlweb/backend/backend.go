// Package backend provides the pluggable retrieval layer of the query core.
//
// A DataBackend is a source of scored results for a query string. The
// Registry holds the named backends declared in configuration; the Manager
// fans a query out across the enabled ones, applies per-backend timeouts,
// merges, deduplicates and orders the results.
package backend

import (
	"context"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// DataBackend is a pluggable source of results. Implementations must be safe
// for concurrent use and must honor context cancellation promptly.
//
// A backend that does not support searching returns nlweb.ErrNotImplemented;
// the manager treats it as enabled-but-unsearchable and skips it silently.
type DataBackend interface {
	// Search returns up to maxResults scored results for the query.
	// site is an optional scope; the empty string means unscoped.
	// May return an empty slice.
	Search(ctx context.Context, query, site string, maxResults int) ([]nlweb.Result, error)
}

// Endpoint binds a configured backend declaration to its instance.
type Endpoint struct {
	// ID uniquely names the endpoint.
	ID string

	// Enabled endpoints participate in the read path.
	Enabled bool

	// BackendType is an informational tag (e.g. "qdrant", "web", "mock").
	BackendType string

	// Priority breaks ties between backends; higher wins.
	Priority int

	// Properties holds opaque backend-specific settings.
	Properties map[string]string

	// Backend is the instance that serves searches.
	Backend DataBackend
}
