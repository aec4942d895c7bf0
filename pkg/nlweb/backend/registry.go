package backend

import (
	"fmt"
	"sort"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Registry holds the named data backends for the process lifetime.
// It is populated at startup and read-only afterwards, so lookups need
// no locking.
type Registry struct {
	byID          map[string]*Endpoint
	ordered       []*Endpoint // priority descending, registration order within ties
	writeEndpoint string
}

// NewRegistry creates an empty registry. writeEndpoint names the single
// endpoint designated as the ingestion sink; empty means none.
func NewRegistry(writeEndpoint string) *Registry {
	return &Registry{
		byID:          make(map[string]*Endpoint),
		writeEndpoint: writeEndpoint,
	}
}

// NewRegistryFromConfig builds a registry from the configured endpoints,
// binding each declaration to its backend instance. Every enabled endpoint
// must have an instance; disabled endpoints may be registered without one.
func NewRegistryFromConfig(cfg config.MultiBackendConfig, backends map[string]DataBackend) (*Registry, error) {
	r := NewRegistry(cfg.WriteEndpoint)
	for _, ep := range cfg.Endpoints {
		instance := backends[ep.ID]
		if ep.Enabled && instance == nil {
			return nil, fmt.Errorf("%w: no backend instance for enabled endpoint %q", nlweb.ErrInvalidArgument, ep.ID)
		}
		if err := r.Register(&Endpoint{
			ID:          ep.ID,
			Enabled:     ep.Enabled,
			BackendType: ep.BackendType,
			Priority:    ep.Priority,
			Properties:  ep.Properties,
			Backend:     instance,
		}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an endpoint to the registry. IDs must be unique.
func (r *Registry) Register(ep *Endpoint) error {
	if ep.ID == "" {
		return fmt.Errorf("%w: endpoint id must not be empty", nlweb.ErrInvalidArgument)
	}
	if _, dup := r.byID[ep.ID]; dup {
		return fmt.Errorf("%w: duplicate endpoint id %q", nlweb.ErrInvalidArgument, ep.ID)
	}

	r.byID[ep.ID] = ep
	r.ordered = append(r.ordered, ep)
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Priority > r.ordered[j].Priority
	})
	return nil
}

// Get returns the endpoint with the given id, or nil.
func (r *Registry) Get(id string) *Endpoint {
	return r.byID[id]
}

// Enabled returns the enabled endpoints in priority-descending order.
func (r *Registry) Enabled() []*Endpoint {
	out := make([]*Endpoint, 0, len(r.ordered))
	for _, ep := range r.ordered {
		if ep.Enabled {
			out = append(out, ep)
		}
	}
	return out
}

// Count returns the number of registered endpoints.
func (r *Registry) Count() int {
	return len(r.byID)
}

// WriteEndpoint returns the endpoint designated as the ingestion sink,
// or nil when none is configured. Not used on the read path.
func (r *Registry) WriteEndpoint() *Endpoint {
	if r.writeEndpoint == "" {
		return nil
	}
	return r.byID[r.writeEndpoint]
}
