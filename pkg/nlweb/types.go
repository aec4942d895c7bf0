package nlweb

import (
	"fmt"
	"strings"
	"time"
)

// Mode controls the shape of the response.
type Mode string

const (
	// ModeList returns ranked hits without generation.
	ModeList Mode = "list"

	// ModeSummarize returns ranked hits plus a model-written summary of the
	// retrieved snippets.
	ModeSummarize Mode = "summarize"

	// ModeGenerate returns a retrieval-augmented answer; hits are included
	// for citation.
	ModeGenerate Mode = "generate"
)

// ParseMode parses a wire-format mode string. The empty string maps to the
// given default. Unknown values return ErrInvalidArgument.
func ParseMode(s string, def Mode) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case string(ModeList):
		return ModeList, nil
	case string(ModeSummarize):
		return ModeSummarize, nil
	case string(ModeGenerate):
		return ModeGenerate, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidArgument, s)
	}
}

// Request is a validated natural-language query. It is constructed on
// ingress and immutable once validated.
type Request struct {
	// QueryID is an opaque identifier, server-generated when absent.
	QueryID string `json:"query_id,omitempty"`

	// Query is the raw natural-language query.
	Query string `json:"query"`

	// Mode selects the response shape.
	Mode Mode `json:"mode"`

	// Site optionally scopes retrieval to a single site.
	Site string `json:"site,omitempty"`

	// Prev holds the prior queries of the conversation, oldest first.
	// Used for decontextualization only.
	Prev []string `json:"prev,omitempty"`

	// DecontextualizedQuery, when supplied by the caller, is used verbatim
	// and skips both decontextualization and tool selection.
	DecontextualizedQuery string `json:"decontextualized_query,omitempty"`

	// Streaming requests an SSE response instead of a single JSON document.
	Streaming bool `json:"streaming"`
}

// Result is a single scored hit produced by a data backend.
type Result struct {
	// Name is the display title of the document.
	Name string `json:"title"`

	// URL locates the document and is the dedup key when deduplication
	// is enabled.
	URL string `json:"url"`

	// Score is the backend-assigned relevance in [0.0, 1.0], higher is better.
	Score float64 `json:"score"`

	// Description is a short snippet of the document.
	Description string `json:"snippet"`

	// Site is the site the document belongs to, when known.
	Site string `json:"site,omitempty"`

	// BackendSource names the backend that produced the result.
	// Internal; never serialized.
	BackendSource string `json:"-"`
}

// Response is the outcome of one processed request.
type Response struct {
	QueryID               string    `json:"query_id"`
	Query                 string    `json:"query"`
	DecontextualizedQuery string    `json:"decontextualized_query"`
	Mode                  Mode      `json:"mode"`
	Results               []Result  `json:"results"`
	Summary               *string   `json:"summary"`
	Site                  string    `json:"site,omitempty"`
	GeneratedAt           time.Time `json:"generated_at"`

	// Warnings carries non-fatal degradations, e.g. a chat-client failure
	// during decontextualization or summarization.
	Warnings []string `json:"warnings,omitempty"`
}

// AddWarning appends a non-fatal warning to the response.
func (r *Response) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
