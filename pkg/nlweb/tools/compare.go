package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/generate"
)

// compareHandler answers "X vs Y" queries: it extracts the two subjects,
// retrieves each in parallel and produces a side-by-side summary.
type compareHandler struct {
	handlerDeps
	priority int
}

// comparePrefixes are asking phrases stripped before subject extraction,
// longest first.
var comparePrefixes = []string{
	"what is the difference between",
	"what's the difference between",
	"difference between",
	"compare between",
	"compare",
	"contrast",
}

// compareSeparators split the remaining text into the two subjects.
var compareSeparators = []string{
	" versus ",
	" vs. ",
	" vs ",
	" compared to ",
	" compared with ",
	" and ",
	" with ",
}

func (h *compareHandler) CanHandle(req nlweb.Request) bool {
	a, b := compareSubjects(req.DecontextualizedQuery)
	return a != "" && b != ""
}

func (h *compareHandler) Priority(_ nlweb.Request) int { return h.priority }

func (h *compareHandler) Execute(ctx context.Context, req nlweb.Request) (*nlweb.Response, error) {
	left, right, err := subjectsOrError(req.DecontextualizedQuery)
	if err != nil {
		return nil, err
	}

	var leftResults, rightResults []nlweb.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var qerr error
		leftResults, qerr = h.manager.Query(gctx, left, req.Site, h.maxResults)
		return qerr
	})
	g.Go(func() error {
		var qerr error
		rightResults, qerr = h.manager.Query(gctx, right, req.Site, h.maxResults)
		return qerr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sections := []generate.Section{
		{Label: left, Results: leftResults},
		{Label: right, Results: rightResults},
	}
	merged := append(append([]nlweb.Result{}, leftResults...), rightResults...)

	shaped := req
	shaped.Mode = nlweb.ModeSummarize
	return h.generator.Sections(ctx, shaped, sections, merged), nil
}

func subjectsOrError(query string) (string, string, error) {
	left, right := compareSubjects(query)
	if left == "" || right == "" {
		return "", "", fmt.Errorf("%w: could not extract two comparison subjects from %q", nlweb.ErrInvalidArgument, query)
	}
	return left, right, nil
}

// compareSubjects extracts the two things being compared, or two empty
// strings when the query does not split cleanly.
func compareSubjects(query string) (string, string) {
	rest := strings.TrimSpace(query)
	lower := strings.ToLower(rest)
	for _, prefix := range comparePrefixes {
		if strings.HasPrefix(lower, prefix) {
			rest = strings.TrimSpace(rest[len(prefix):])
			break
		}
	}

	lower = strings.ToLower(rest)
	for _, sep := range compareSeparators {
		if idx := strings.Index(lower, sep); idx > 0 {
			left := strings.TrimSpace(rest[:idx])
			right := strings.TrimSpace(rest[idx+len(sep):])
			right = strings.TrimRight(right, "?.!")
			if left != "" && right != "" {
				return left, right
			}
		}
	}
	return "", ""
}
