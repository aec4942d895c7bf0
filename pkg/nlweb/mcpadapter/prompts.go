package mcpadapter

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListPrompts returns the static prompt catalog.
func (*Adapter) ListPrompts() *mcp.ListPromptsResult {
	return &mcp.ListPromptsResult{
		Prompts: []mcp.Prompt{
			{
				Name:        PromptSearch,
				Description: "Build a search query for a topic",
				Arguments: []mcp.PromptArgument{
					{Name: "topic", Description: "The topic to search for", Required: true},
					{Name: "context", Description: "Extra context to narrow the search"},
				},
			},
			{
				Name:        PromptSummarize,
				Description: "Ask for a summarized answer to a query",
				Arguments: []mcp.PromptArgument{
					{Name: "query", Description: "The query to summarize results for", Required: true},
					{Name: "result_count", Description: "How many results to consider"},
				},
			},
			{
				Name:        PromptGenerate,
				Description: "Ask for a generated answer grounded in retrieved results",
				Arguments: []mcp.PromptArgument{
					{Name: "question", Description: "The question to answer", Required: true},
					{Name: "style", Description: "Writing style for the answer"},
				},
			},
		},
	}
}

// GetPrompt renders a prompt from the catalog. Unknown names come back as a
// well-formed result whose description says so.
func (*Adapter) GetPrompt(name string, args map[string]string) *mcp.GetPromptResult {
	switch name {
	case PromptSearch:
		text := fmt.Sprintf("Search for information about: %s", args["topic"])
		if c := args["context"]; c != "" {
			text += fmt.Sprintf("\nAdditional context: %s", c)
		}
		return promptResult("Search prompt", text)

	case PromptSummarize:
		text := fmt.Sprintf("Summarize the search results for: %s", args["query"])
		if n := args["result_count"]; n != "" {
			text += fmt.Sprintf("\nConsider the top %s results.", n)
		}
		return promptResult("Summarize prompt", text)

	case PromptGenerate:
		text := fmt.Sprintf("Answer the following question using retrieved results: %s", args["question"])
		if s := args["style"]; s != "" {
			text += fmt.Sprintf("\nWrite the answer in this style: %s", s)
		}
		return promptResult("Generate prompt", text)

	default:
		return &mcp.GetPromptResult{Description: "Unknown prompt: " + name}
	}
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	}
}
