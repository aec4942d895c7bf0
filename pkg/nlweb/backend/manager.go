package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Manager orchestrates queries across the enabled backends.
//
// Fan-out is bounded by MaxConcurrentQueries, each call runs under the
// per-backend timeout, and individual backend failures are absorbed: the
// query fails only when every backend fails.
type Manager struct {
	registry *Registry
	cfg      config.MultiBackendConfig

	// onFailure, when set, observes each failed backend call. Set once at
	// wiring time, before the manager serves queries.
	onFailure func(backendID string)
}

// NewManager creates a manager over the given registry.
func NewManager(registry *Registry, cfg config.MultiBackendConfig) *Manager {
	return &Manager{registry: registry, cfg: cfg}
}

// SetFailureHook registers a callback invoked with the endpoint id of every
// failed backend call.
func (m *Manager) SetFailureHook(hook func(backendID string)) {
	m.onFailure = hook
}

// WriteEndpoint exposes the ingestion sink for components that write data.
func (m *Manager) WriteEndpoint() *Endpoint {
	return m.registry.WriteEndpoint()
}

// Registry returns the underlying endpoint registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// gathered annotates a result with the ordering inputs used by merge:
// the owning backend's priority and the completion-order index.
type gathered struct {
	result   nlweb.Result
	priority int
	arrival  int
}

// Query fans the query out across the enabled backends and returns the
// merged, deduplicated, ordered results truncated to maxResults.
//
// Returns nlweb.ErrNoBackends when no backend is enabled and
// nlweb.ErrBackendUnavailable when every backend failed. Partial failures
// are logged and absorbed.
func (m *Manager) Query(ctx context.Context, query, site string, maxResults int) ([]nlweb.Result, error) {
	endpoints := m.registry.Enabled()
	if len(endpoints) == 0 {
		return nil, nlweb.ErrNoBackends
	}

	var (
		mu        sync.Mutex
		merged    []gathered
		arrival   int
		succeeded int
		failed    int
	)

	collect := func(ep *Endpoint, results []nlweb.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case errors.Is(err, nlweb.ErrNotImplemented):
			// Enabled but unsearchable; skipped silently.
			logger.Debugf("backend %s does not implement search, skipping", ep.ID)
		case err != nil:
			failed++
			logger.Warnw("backend query failed", "backend", ep.ID, "error", err)
			if m.onFailure != nil {
				m.onFailure(ep.ID)
			}
		default:
			succeeded++
			for _, res := range results {
				res.BackendSource = ep.ID
				merged = append(merged, gathered{result: res, priority: ep.Priority, arrival: arrival})
				arrival++
			}
		}
	}

	if m.cfg.EnableParallelQuerying {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.maxConcurrency())
		for _, ep := range endpoints {
			g.Go(func() error {
				results, err := m.searchOne(gctx, ep, query, site, maxResults)
				collect(ep, results, err)
				return nil
			})
		}
		// Worker errors are absorbed in collect; Wait only surfaces
		// context cancellation.
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, ep := range endpoints {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results, err := m.searchOne(ctx, ep, query, site, maxResults)
			collect(ep, results, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if succeeded == 0 && failed > 0 {
		return nil, fmt.Errorf("%w: all %d backends failed", nlweb.ErrBackendUnavailable, failed)
	}

	if m.cfg.EnableResultDeduplication {
		merged = dedupeByURL(merged)
	}
	sortGathered(merged)

	out := make([]nlweb.Result, 0, len(merged))
	for _, g := range merged {
		out = append(out, g.result)
		if len(out) == maxResults {
			break
		}
	}
	return out, nil
}

// searchOne runs a single backend call under the per-backend timeout.
func (m *Manager) searchOne(ctx context.Context, ep *Endpoint, query, site string, maxResults int) ([]nlweb.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.BackendTimeout())
	defer cancel()

	results, err := ep.Backend.Search(callCtx, query, site, maxResults)
	if err != nil {
		// A timed-out backend discards its partial results.
		return nil, err
	}
	return results, nil
}

func (m *Manager) maxConcurrency() int {
	if m.cfg.MaxConcurrentQueries > 0 {
		return m.cfg.MaxConcurrentQueries
	}
	return 1
}

// normalizeURL is the dedup key: trimmed, case-insensitive.
func normalizeURL(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// dedupeByURL keeps one entry per normalized URL: the higher score wins,
// then the higher backend priority, then first-seen order.
func dedupeByURL(in []gathered) []gathered {
	keep := make(map[string]gathered, len(in))
	order := make([]string, 0, len(in))

	for _, g := range in {
		key := normalizeURL(g.result.URL)
		existing, seen := keep[key]
		if !seen {
			keep[key] = g
			order = append(order, key)
			continue
		}
		if betterDuplicate(g, existing) {
			keep[key] = g
		}
	}

	out := make([]gathered, 0, len(keep))
	for _, key := range order {
		out = append(out, keep[key])
	}
	return out
}

// betterDuplicate reports whether candidate should replace existing for the
// same URL. First-seen wins on a full tie, so every comparison is strict.
func betterDuplicate(candidate, existing gathered) bool {
	if candidate.result.Score != existing.result.Score {
		return candidate.result.Score > existing.result.Score
	}
	return candidate.priority > existing.priority
}

// sortGathered orders by score descending, then backend priority descending,
// then arrival order.
func sortGathered(in []gathered) {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].result.Score != in[j].result.Score {
			return in[i].result.Score > in[j].result.Score
		}
		if in[i].priority != in[j].priority {
			return in[i].priority > in[j].priority
		}
		return in[i].arrival < in[j].arrival
	})
}
