package tools

import (
	"context"
	"strings"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// detailsResultCap bounds retrieval for the details tool; a detail lookup
// wants a few authoritative hits, not a broad page.
const detailsResultCap = 5

// detailsHandler answers "tell me about X" queries. It reframes the query
// toward specifications, narrows retrieval and always summarizes.
type detailsHandler struct {
	handlerDeps
	priority int
}

func (h *detailsHandler) CanHandle(req nlweb.Request) bool {
	return matchesAny(strings.ToLower(req.DecontextualizedQuery), detailsKeywords)
}

func (h *detailsHandler) Priority(_ nlweb.Request) int { return h.priority }

func (h *detailsHandler) Execute(ctx context.Context, req nlweb.Request) (*nlweb.Response, error) {
	subject := detailsSubject(req.DecontextualizedQuery)
	augmented := subject + " detailed specifications features characteristics"

	maxResults := h.maxResults
	if maxResults > detailsResultCap {
		maxResults = detailsResultCap
	}

	results, err := h.manager.Query(ctx, augmented, req.Site, maxResults)
	if err != nil {
		return nil, err
	}

	// Detail answers read as prose, so force a summary regardless of the
	// requested mode.
	shaped := req
	shaped.Mode = nlweb.ModeSummarize
	return h.generator.Generate(ctx, shaped, results), nil
}

// detailsSubject strips the asking phrase so only the subject remains.
func detailsSubject(query string) string {
	subject := query
	lower := strings.ToLower(query)
	for _, prefix := range []string{
		"tell me about",
		"information about",
		"give me details on",
		"give me details about",
		"details on",
		"details about",
		"details of",
		"describe",
	} {
		if idx := strings.Index(lower, prefix); idx >= 0 {
			subject = query[idx+len(prefix):]
			break
		}
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return strings.TrimSpace(query)
	}
	return subject
}
