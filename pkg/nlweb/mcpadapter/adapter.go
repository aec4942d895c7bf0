// Package mcpadapter exposes the query pipeline over the Model Context
// Protocol: a static tool and prompt catalog plus the call_tool and
// get_prompt operations.
//
// The adapter never fails a call outright. Validation and pipeline errors
// come back as well-formed tool results with IsError set, so the transport
// always has something to serialize.
package mcpadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Tool and prompt names in the static catalog.
const (
	ToolSearch       = "nlweb_search"
	ToolQueryHistory = "nlweb_query_history"

	PromptSearch    = "nlweb_search_prompt"
	PromptSummarize = "nlweb_summarize_prompt"
	PromptGenerate  = "nlweb_generate_prompt"
)

// QueryRunner is the slice of the query service the adapter needs.
type QueryRunner interface {
	Process(ctx context.Context, req nlweb.Request) (*nlweb.Response, error)
}

// Adapter translates MCP operations into pipeline calls.
type Adapter struct {
	runner      QueryRunner
	defaultMode nlweb.Mode
}

// NewAdapter creates an adapter over the query runner.
func NewAdapter(runner QueryRunner, defaultMode nlweb.Mode) *Adapter {
	return &Adapter{runner: runner, defaultMode: defaultMode}
}

// ListTools returns the static tool catalog.
func (*Adapter) ListTools() *mcp.ListToolsResult {
	return &mcp.ListToolsResult{
		Tools: []mcp.Tool{
			{
				Name:        ToolSearch,
				Description: "Search the configured data backends with a natural-language query",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "The natural-language query",
						},
						"mode": map[string]interface{}{
							"type":        "string",
							"description": "Response mode",
							"enum":        []string{"list", "summarize", "generate"},
						},
						"site": map[string]interface{}{
							"type":        "string",
							"description": "Restrict results to one site",
						},
						"streaming": map[string]interface{}{
							"type":        "boolean",
							"description": "Accepted for compatibility; MCP responses are always unary",
						},
					},
					Required: []string{"query"},
				},
			},
			{
				Name:        ToolQueryHistory,
				Description: "Search with conversation history so follow-up queries are resolved against previous ones",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "The latest query of the conversation",
						},
						"previous_queries": map[string]interface{}{
							"type":        "array",
							"description": "Prior queries of the conversation, oldest first",
							"items": map[string]interface{}{
								"type": "string",
							},
						},
						"mode": map[string]interface{}{
							"type":        "string",
							"description": "Response mode",
							"enum":        []string{"list", "summarize", "generate"},
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

// CallTool dispatches a tool invocation. Errors are reported through the
// result, never returned to the transport.
func (a *Adapter) CallTool(ctx context.Context, name string, args map[string]interface{}) *mcp.CallToolResult {
	switch name {
	case ToolSearch:
		return a.search(ctx, args)
	case ToolQueryHistory:
		return a.queryHistory(ctx, args)
	default:
		return mcp.NewToolResultError("Unknown tool: " + name)
	}
}

func (a *Adapter) search(ctx context.Context, args map[string]interface{}) *mcp.CallToolResult {
	req, err := a.baseRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return a.run(ctx, req)
}

func (a *Adapter) queryHistory(ctx context.Context, args map[string]interface{}) *mcp.CallToolResult {
	req, err := a.baseRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	prev, err := stringSliceArg(args, "previous_queries")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	req.Prev = prev
	return a.run(ctx, req)
}

// baseRequest extracts the arguments shared by both tools.
func (a *Adapter) baseRequest(args map[string]interface{}) (nlweb.Request, error) {
	query, err := requiredStringArg(args, "query")
	if err != nil {
		return nlweb.Request{}, err
	}

	modeStr, err := stringArg(args, "mode")
	if err != nil {
		return nlweb.Request{}, err
	}
	mode, err := nlweb.ParseMode(modeStr, a.defaultMode)
	if err != nil {
		return nlweb.Request{}, err
	}

	site, err := stringArg(args, "site")
	if err != nil {
		return nlweb.Request{}, err
	}

	return nlweb.Request{Query: query, Mode: mode, Site: site}, nil
}

func (a *Adapter) run(ctx context.Context, req nlweb.Request) *mcp.CallToolResult {
	resp, err := a.runner.Process(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(formatResponse(resp))
}

// formatResponse renders the response as the newline-delimited text block
// MCP clients display verbatim.
func formatResponse(resp *nlweb.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query ID: %s\n", resp.QueryID)
	fmt.Fprintf(&sb, "Results Count: %d\n", len(resp.Results))
	if resp.Summary != nil {
		fmt.Fprintf(&sb, "Summary: %s\n", *resp.Summary)
	}
	for i, res := range resp.Results {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, res.Name)
		fmt.Fprintf(&sb, "   URL: %s\n", res.URL)
		fmt.Fprintf(&sb, "   Score: %.2f\n", res.Score)
		fmt.Fprintf(&sb, "   Description: %s\n", res.Description)
	}
	return sb.String()
}

func requiredStringArg(args map[string]interface{}, key string) (string, error) {
	s, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

func stringSliceArg(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	// JSON decoding hands arrays over as []interface{}.
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be an array of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}
