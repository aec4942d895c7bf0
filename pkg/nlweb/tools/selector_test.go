package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

func selectorRequest(query string, mode nlweb.Mode) nlweb.Request {
	return nlweb.Request{
		Query:                 query,
		DecontextualizedQuery: query,
		Mode:                  mode,
	}
}

func TestSelectByKeyword(t *testing.T) {
	t.Parallel()

	s := NewSelector(true)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"compare keyword", "compare .NET Core and .NET Framework", ToolCompare},
		{"versus keyword", "python versus ruby for scripting", ToolCompare},
		{"details keyword", "tell me about the millennium falcon", ToolDetails},
		{"describe keyword", "describe the vector search backend", ToolDetails},
		{"ensemble keyword", "recommend an outfit for hiking", ToolEnsemble},
		{"suggest keyword", "suggest a set of tools for go", ToolEnsemble},
		{"search keyword", "find articles on sourdough", ToolSearch},
		{"no keyword defaults to search", "sourdough starter hydration", ToolSearch},
		{"compare beats details", "compare details of the two engines", ToolCompare},
		{"details beats ensemble", "tell me about recommended settings", ToolDetails},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Select(selectorRequest(tt.query, nlweb.ModeList), false)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectDisabledReturnsNone(t *testing.T) {
	t.Parallel()

	s := NewSelector(false)
	got := s.Select(selectorRequest("compare a and b", nlweb.ModeList), false)
	assert.Equal(t, ToolNone, got)
}

func TestSelectGenerateModeBypasses(t *testing.T) {
	t.Parallel()

	s := NewSelector(true)
	got := s.Select(selectorRequest("compare a and b", nlweb.ModeGenerate), false)
	assert.Equal(t, ToolNone, got)
}

func TestSelectSuppliedDecontextualizedBypasses(t *testing.T) {
	t.Parallel()

	s := NewSelector(true)
	got := s.Select(selectorRequest("compare a and b", nlweb.ModeList), true)
	assert.Equal(t, ToolNone, got)
}
