package tools

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/generate"
)

// ensembleHandler answers "recommend a set of ..." queries by fanning the
// request out over complementary facets and presenting the hits grouped per
// facet with an overall summary.
type ensembleHandler struct {
	handlerDeps
	priority int
}

// ensembleFacets are the angles each recommendation request is expanded
// into. The base query itself is always queried too.
var ensembleFacets = []string{
	"top recommendations",
	"popular choices",
	"complementary options",
}

// ensemblePerFacetCap bounds retrieval per facet so the grouped summary
// stays readable.
const ensemblePerFacetCap = 5

func (h *ensembleHandler) CanHandle(req nlweb.Request) bool {
	return matchesAny(strings.ToLower(req.DecontextualizedQuery), ensembleKeywords)
}

func (h *ensembleHandler) Priority(_ nlweb.Request) int { return h.priority }

func (h *ensembleHandler) Execute(ctx context.Context, req nlweb.Request) (*nlweb.Response, error) {
	subject := ensembleSubject(req.DecontextualizedQuery)
	queries := ensembleQueries(subject)

	maxResults := h.maxResults
	if maxResults > ensemblePerFacetCap {
		maxResults = ensemblePerFacetCap
	}

	sections := make([]generate.Section, len(queries))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			results, err := h.manager.Query(gctx, q, req.Site, maxResults)
			if err != nil {
				return err
			}
			mu.Lock()
			sections[i] = generate.Section{Label: q, Results: results}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeSections(sections)

	shaped := req
	shaped.Mode = nlweb.ModeSummarize
	return h.generator.Sections(ctx, shaped, sections, merged), nil
}

// ensembleSubject strips the recommendation phrasing from the query.
func ensembleSubject(query string) string {
	subject := query
	lower := strings.ToLower(query)
	for _, prefix := range []string{
		"recommend me",
		"recommend",
		"suggest me",
		"suggest",
		"what should i",
		"give me an ensemble of",
		"give me a set of",
	} {
		if idx := strings.Index(lower, prefix); idx >= 0 {
			subject = query[idx+len(prefix):]
			break
		}
	}
	subject = strings.TrimSpace(strings.TrimRight(subject, "?.!"))
	if subject == "" {
		return strings.TrimSpace(query)
	}
	return subject
}

func ensembleQueries(subject string) []string {
	queries := []string{subject}
	for _, facet := range ensembleFacets {
		queries = append(queries, subject+" "+facet)
	}
	return queries
}

// mergeSections flattens the per-facet results, drops duplicate URLs and
// ranks by score.
func mergeSections(sections []generate.Section) []nlweb.Result {
	seen := make(map[string]struct{})
	var merged []nlweb.Result
	for _, sec := range sections {
		for _, res := range sec.Results {
			key := strings.ToLower(strings.TrimSpace(res.URL))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, res)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}
