// Package generate shapes retrieved results into the final response for the
// requested mode: ranked hits for List, a model-written summary for
// Summarize, a retrieval-augmented answer for Generate.
//
// Chat-client failures never fail a request here: Summarize and Generate
// degrade to List and record a warning on the response.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/chat"
)

const summarizePrompt = `You summarize search results. Given a query and a numbered
list of results, write a concise summary of what the results say about the query.
Mention the most relevant results by name.`

const ragPrompt = `You answer questions using only the provided search results.
Given a question and a numbered list of results, write a direct answer grounded
in those results. If the results do not answer the question, say so.`

const sectionPrompt = `You summarize grouped search results. Given a query and
results grouped under labeled sections, write a summary with one short paragraph
per section, headed by the section label.`

// chatUnavailableWarning is attached when generation degrades to List mode.
const chatUnavailableWarning = "chat client unavailable, degraded to list mode"

// Section is a labeled slice of results used for comparison and ensemble
// summaries.
type Section struct {
	Label   string
	Results []nlweb.Result
}

// Generator performs mode-specific response shaping.
type Generator struct {
	chatClient chat.ChatClient
	maxResults int

	// now is injectable for tests.
	now func() time.Time
}

// NewGenerator creates a generator. chatClient may be nil; Summarize and
// Generate then always degrade to List.
func NewGenerator(chatClient chat.ChatClient, maxResults int) *Generator {
	return &Generator{
		chatClient: chatClient,
		maxResults: maxResults,
		now:        time.Now,
	}
}

// Generate builds the response for the request's mode from the merged
// result set.
func (g *Generator) Generate(ctx context.Context, req nlweb.Request, results []nlweb.Result) *nlweb.Response {
	resp := g.newResponse(req, results)

	switch req.Mode {
	case nlweb.ModeSummarize:
		g.complete(ctx, resp, summarizePrompt, g.resultsBlock(req, resp.Results))
	case nlweb.ModeGenerate:
		g.complete(ctx, resp, ragPrompt, g.resultsBlock(req, resp.Results))
	default:
		// List: ranked hits as-is, no summary.
	}
	return resp
}

// Sections builds a section-labeled summary response, used by the compare
// and ensemble tools. The merged results are included alongside the summary.
func (g *Generator) Sections(ctx context.Context, req nlweb.Request, sections []Section, merged []nlweb.Result) *nlweb.Response {
	resp := g.newResponse(req, merged)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n", req.DecontextualizedQuery)
	for _, sec := range sections {
		fmt.Fprintf(&sb, "\n## %s\n", sec.Label)
		writeResultList(&sb, g.topK(sec.Results))
	}

	g.complete(ctx, resp, sectionPrompt, sb.String())
	return resp
}

// newResponse assembles the response envelope shared by all modes.
func (g *Generator) newResponse(req nlweb.Request, results []nlweb.Result) *nlweb.Response {
	topK := g.topK(results)
	if topK == nil {
		// The wire shape promises an array, not null.
		topK = []nlweb.Result{}
	}
	return &nlweb.Response{
		QueryID:               req.QueryID,
		Query:                 req.Query,
		DecontextualizedQuery: req.DecontextualizedQuery,
		Mode:                  req.Mode,
		Results:               topK,
		Site:                  req.Site,
		GeneratedAt:           g.now().UTC(),
	}
}

// complete calls the chat client and populates the summary, degrading to
// List mode on failure.
func (g *Generator) complete(ctx context.Context, resp *nlweb.Response, system, user string) {
	if g.chatClient == nil {
		g.degrade(resp, nlweb.ErrChatUnavailable)
		return
	}

	reply, err := g.chatClient.Complete(ctx, []chat.Message{
		chat.SystemMessage(system),
		chat.UserMessage(user),
	})
	if err != nil {
		g.degrade(resp, err)
		return
	}

	summary := strings.TrimSpace(reply)
	resp.Summary = &summary
}

// degrade falls back to List mode with a warning instead of failing.
func (g *Generator) degrade(resp *nlweb.Response, err error) {
	logger.Warnw("summary generation failed, degrading to list mode",
		"query_id", resp.QueryID, "error", err)
	resp.Mode = nlweb.ModeList
	resp.Summary = nil
	resp.AddWarning(chatUnavailableWarning)
}

// resultsBlock renders the query and top-K results for a chat prompt.
func (g *Generator) resultsBlock(req nlweb.Request, results []nlweb.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nResults:\n", req.DecontextualizedQuery)
	writeResultList(&sb, results)
	return sb.String()
}

func writeResultList(sb *strings.Builder, results []nlweb.Result) {
	if len(results) == 0 {
		sb.WriteString("(no results)\n")
		return
	}
	for i, res := range results {
		fmt.Fprintf(sb, "%d. %s - %s (%s)\n", i+1, res.Name, res.Description, res.URL)
	}
}

func (g *Generator) topK(results []nlweb.Result) []nlweb.Result {
	if len(results) > g.maxResults {
		return results[:g.maxResults]
	}
	return results
}
