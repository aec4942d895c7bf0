// Package service composes the query pipeline: request processing, tool
// selection, retrieval and generation, behind one façade with a unary and a
// streaming entry point.
package service

import (
	"context"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/backend"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/generate"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/query"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/tools"
)

// Service runs a request through the full pipeline. Rate limiting happens at
// the HTTP layer; the service trusts its caller.
type Service struct {
	cfg       *config.Config
	processor *query.Processor
	selector  tools.Selector
	registry  *tools.Registry
	manager   *backend.Manager
	generator *generate.Generator
}

// New assembles the service from its pipeline stages.
func New(cfg *config.Config, processor *query.Processor, selector tools.Selector, registry *tools.Registry, manager *backend.Manager, generator *generate.Generator) *Service {
	return &Service{
		cfg:       cfg,
		processor: processor,
		selector:  selector,
		registry:  registry,
		manager:   manager,
		generator: generator,
	}
}

// Process runs the unary pipeline and returns the assembled response.
func (s *Service) Process(ctx context.Context, req nlweb.Request) (*nlweb.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	processed, err := s.process(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := s.execute(ctx, processed)
	if err != nil {
		return nil, err
	}
	if processed.Warning != "" {
		resp.AddWarning(processed.Warning)
	}
	return resp, nil
}

// process applies defaults and runs request normalization.
func (s *Service) process(ctx context.Context, req nlweb.Request) (*query.Processed, error) {
	if req.Mode == "" {
		req.Mode = s.cfg.Mode()
	}
	if req.Site == "" {
		req.Site = s.cfg.DefaultSite
	}
	return s.processor.Process(ctx, req)
}

// execute dispatches to the selected tool handler, falling back to the
// search handler when the selected one fails, then to the plain retrieval
// flow when no handler applies.
func (s *Service) execute(ctx context.Context, processed *query.Processed) (*nlweb.Response, error) {
	req := processed.Request

	tool := s.selector.Select(req, processed.SuppliedDecontextualized)
	if tool != tools.ToolNone {
		if h, ok := s.registry.Get(tool); ok && h.CanHandle(req) {
			resp, err := h.Execute(ctx, req)
			if err == nil {
				return resp, nil
			}
			if tool == tools.ToolSearch || ctx.Err() != nil {
				return nil, err
			}
			logger.Warnw("tool handler failed, falling back to search",
				"query_id", req.QueryID, "tool", tool, "error", err)
			if fallback, ok := s.registry.Get(tools.ToolSearch); ok {
				return fallback.Execute(ctx, req)
			}
			return nil, err
		}
	}

	results, err := s.manager.Query(ctx, req.DecontextualizedQuery, req.Site, s.cfg.MaxResultsPerQuery)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, req, results), nil
}
