// Package query normalizes incoming requests: it validates the raw query,
// assigns a query id and produces the decontextualized query used by the
// rest of the pipeline.
package query

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/chat"
)

// decontextualizePrompt instructs the model to rewrite a conversational
// query into a standalone one. The reply must be the rewritten query only.
const decontextualizePrompt = `You rewrite conversational search queries into standalone queries.
Given the previous queries of a conversation and the latest query, rewrite the
latest query so it can be understood without the conversation. Resolve pronouns
and implicit references. Reply with the rewritten query only, no explanation.`

// Processed is the outcome of request normalization.
type Processed struct {
	// Request is the validated request with QueryID and
	// DecontextualizedQuery populated.
	Request nlweb.Request

	// SuppliedDecontextualized reports whether the caller provided the
	// decontextualized query at ingress. Tool selection is skipped in
	// that case.
	SuppliedDecontextualized bool

	// Warning carries a non-fatal degradation, e.g. a chat-client failure
	// during decontextualization. Empty when none occurred.
	Warning string
}

// Processor validates requests and decontextualizes queries.
type Processor struct {
	chatClient     chat.ChatClient
	enabled        bool
	maxQueryLength int
}

// NewProcessor creates a processor. chatClient may be nil, in which case
// decontextualization falls back to the raw query.
func NewProcessor(chatClient chat.ChatClient, enabled bool, maxQueryLength int) *Processor {
	return &Processor{
		chatClient:     chatClient,
		enabled:        enabled,
		maxQueryLength: maxQueryLength,
	}
}

// Process validates the request and fills in QueryID and
// DecontextualizedQuery. The input is not mutated.
func (p *Processor) Process(ctx context.Context, req nlweb.Request) (*Processed, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query is required", nlweb.ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(req.Query); n > p.maxQueryLength {
		return nil, fmt.Errorf("%w: query length %d exceeds maximum %d", nlweb.ErrInvalidArgument, n, p.maxQueryLength)
	}

	if req.QueryID == "" {
		req.QueryID = uuid.NewString()
	}

	out := &Processed{Request: req}

	switch {
	case req.DecontextualizedQuery != "":
		// Caller already decontextualized; pass through verbatim.
		out.SuppliedDecontextualized = true

	case !p.enabled || len(req.Prev) == 0 || p.chatClient == nil:
		out.Request.DecontextualizedQuery = req.Query

	default:
		rewritten, err := p.decontextualize(ctx, req)
		if err != nil {
			logger.Warnw("decontextualization failed, using raw query",
				"query_id", req.QueryID, "error", err)
			out.Request.DecontextualizedQuery = req.Query
			out.Warning = "decontextualization unavailable, used raw query"
		} else {
			out.Request.DecontextualizedQuery = rewritten
		}
	}

	return out, nil
}

// decontextualize asks the chat client for a standalone rewrite of the query
// against the prior conversation turns.
func (p *Processor) decontextualize(ctx context.Context, req nlweb.Request) (string, error) {
	var sb strings.Builder
	sb.WriteString("Previous queries:\n")
	for _, prev := range req.Prev {
		sb.WriteString("- ")
		sb.WriteString(prev)
		sb.WriteString("\n")
	}
	sb.WriteString("Latest query: ")
	sb.WriteString(req.Query)

	reply, err := p.chatClient.Complete(ctx, []chat.Message{
		chat.SystemMessage(decontextualizePrompt),
		chat.UserMessage(sb.String()),
	})
	if err != nil {
		return "", err
	}

	rewritten := strings.TrimSpace(reply)
	if rewritten == "" {
		return "", fmt.Errorf("%w: empty decontextualization reply", nlweb.ErrChatUnavailable)
	}
	return rewritten, nil
}
