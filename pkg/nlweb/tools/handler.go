package tools

import (
	"context"
	"fmt"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/backend"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/generate"
)

// Handler executes one tool strategy for a processed request.
type Handler interface {
	// Execute runs the tool and produces the response.
	Execute(ctx context.Context, req nlweb.Request) (*nlweb.Response, error)

	// CanHandle reports whether the handler accepts the request.
	CanHandle(req nlweb.Request) bool

	// Priority orders handlers when several can handle a request;
	// higher wins.
	Priority(req nlweb.Request) int
}

// Registry maps tool names to their handlers, honoring the enabled flag and
// priority from the definitions document. Populated at startup, read-only
// afterwards.
type Registry struct {
	handlers map[string]Handler
	defs     map[string]Definition
}

// NewRegistry builds a registry from the definitions document and the
// backend manager / generator shared by all handlers. Every enabled
// definition must name a known tool type.
func NewRegistry(defs []Definition, manager *backend.Manager, generator *generate.Generator, maxResults int) (*Registry, error) {
	if err := validateDefinitions(defs); err != nil {
		return nil, err
	}

	base := handlerDeps{manager: manager, generator: generator, maxResults: maxResults}

	r := &Registry{
		handlers: make(map[string]Handler),
		defs:     make(map[string]Definition),
	}
	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		var h Handler
		switch def.Type {
		case ToolSearch:
			h = &searchHandler{handlerDeps: base, priority: def.Priority}
		case ToolCompare:
			h = &compareHandler{handlerDeps: base, priority: def.Priority}
		case ToolDetails:
			h = &detailsHandler{handlerDeps: base, priority: def.Priority}
		case ToolEnsemble:
			h = &ensembleHandler{handlerDeps: base, priority: def.Priority}
		default:
			return nil, fmt.Errorf("%w: no handler registered for tool type %q", nlweb.ErrInvalidArgument, def.Type)
		}
		r.handlers[def.Type] = h
		r.defs[def.Type] = def
	}
	return r, nil
}

// Get returns the handler for the tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Definitions returns the enabled definitions keyed by tool type.
func (r *Registry) Definitions() map[string]Definition {
	return r.defs
}

// handlerDeps are the collaborators shared by all tool handlers.
type handlerDeps struct {
	manager    *backend.Manager
	generator  *generate.Generator
	maxResults int
}
