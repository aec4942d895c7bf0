package tools

import (
	"strings"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Keyword sets per tool, matched as lowercased substrings. When a query
// matches multiple categories, priority is compare > details > ensemble >
// search.
var (
	compareKeywords  = []string{"compare", "difference", "versus", "vs", "contrast"}
	detailsKeywords  = []string{"details", "information about", "tell me about", "describe"}
	ensembleKeywords = []string{"recommend", "suggest", "what should", "ensemble", "set of"}
	searchKeywords   = []string{"search", "find", "look for", "locate"}
)

// Selector chooses a tool name for a processed request, or ToolNone for the
// default flow. Implementations may substitute a model-based classifier as
// long as the output stays within the registered tool set.
type Selector interface {
	Select(req nlweb.Request, suppliedDecontextualized bool) string
}

// keywordSelector is the default substring-matching selector.
type keywordSelector struct {
	enabled bool
}

// NewSelector creates the keyword-based selector.
func NewSelector(enabled bool) Selector {
	return &keywordSelector{enabled: enabled}
}

// Select applies the selection rules in order; first match wins.
func (s *keywordSelector) Select(req nlweb.Request, suppliedDecontextualized bool) string {
	if !s.enabled {
		return ToolNone
	}
	// Preserve the legacy generate path.
	if req.Mode == nlweb.ModeGenerate {
		return ToolNone
	}
	// A caller that decontextualized its own query has chosen its flow.
	if suppliedDecontextualized {
		return ToolNone
	}

	query := strings.ToLower(req.DecontextualizedQuery)
	switch {
	case matchesAny(query, compareKeywords):
		return ToolCompare
	case matchesAny(query, detailsKeywords):
		return ToolDetails
	case matchesAny(query, ensembleKeywords):
		return ToolEnsemble
	case matchesAny(query, searchKeywords):
		return ToolSearch
	default:
		return ToolSearch
	}
}

func matchesAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}
