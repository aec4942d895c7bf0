package tools

import (
	"context"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// searchHandler is the default tool: retrieve, merge, shape per the
// requested mode. Every other tool falls back to it on failure.
type searchHandler struct {
	handlerDeps
	priority int
}

func (h *searchHandler) CanHandle(_ nlweb.Request) bool { return true }

func (h *searchHandler) Priority(_ nlweb.Request) int { return h.priority }

func (h *searchHandler) Execute(ctx context.Context, req nlweb.Request) (*nlweb.Response, error) {
	results, err := h.manager.Query(ctx, req.DecontextualizedQuery, req.Site, h.maxResults)
	if err != nil {
		return nil, err
	}
	return h.generator.Generate(ctx, req, results), nil
}
