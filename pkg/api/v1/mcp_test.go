package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/mcpadapter"
)

type stubRunner struct {
	resp *nlweb.Response
	err  error
}

func (s *stubRunner) Process(_ context.Context, _ nlweb.Request) (*nlweb.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newMcpHandler(runner *stubRunner) http.Handler {
	return McpRouter(mcpadapter.NewAdapter(runner, nlweb.ModeList))
}

func postMcp(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// mcpToolResult is the wire shape of a call_tool response.
type mcpToolResult struct {
	IsError bool `json:"isError,omitempty"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func TestMcpListTools(t *testing.T) {
	t.Parallel()

	rec := postMcp(t, newMcpHandler(&stubRunner{}), `{"method":"list_tools"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Tools, 2)
	assert.Equal(t, "nlweb_search", res.Tools[0].Name)
}

func TestMcpCallToolSearch(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{resp: &nlweb.Response{
		QueryID: "qid-7",
		Mode:    nlweb.ModeList,
		Results: []nlweb.Result{{Name: "A", URL: "https://a/1", Score: 0.9, Description: "first"}},
	}}

	rec := postMcp(t, newMcpHandler(runner),
		`{"method":"call_tool","params":{"name":"nlweb_search","arguments":{"query":"test","mode":"list"}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res mcpToolResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Contains(t, res.Content[0].Text, "Query ID: qid-7")
	assert.Contains(t, res.Content[0].Text, "1. A")
}

func TestMcpCallToolUnknown(t *testing.T) {
	t.Parallel()

	rec := postMcp(t, newMcpHandler(&stubRunner{}),
		`{"method":"call_tool","params":{"name":"unknown","arguments":{}}}`)

	require.Equal(t, http.StatusOK, rec.Code, "tool errors are results, not statuses")
	var res mcpToolResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "Unknown tool: unknown", res.Content[0].Text)
}

func TestMcpGetPrompt(t *testing.T) {
	t.Parallel()

	rec := postMcp(t, newMcpHandler(&stubRunner{}),
		`{"method":"get_prompt","params":{"name":"nlweb_search_prompt","arguments":{"topic":"sourdough"}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Description string `json:"description"`
		Messages    []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "user", res.Messages[0].Role)
}

func TestMcpUnknownMethodBadRequest(t *testing.T) {
	t.Parallel()

	rec := postMcp(t, newMcpHandler(&stubRunner{}), `{"method":"teleport"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var problem Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "invalid-argument", problem.Title)
	assert.Equal(t, "/", problem.Instance)
}

func TestMcpMissingParamsBadRequest(t *testing.T) {
	t.Parallel()

	rec := postMcp(t, newMcpHandler(&stubRunner{}), `{"method":"call_tool"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMcpInvalidBodyBadRequest(t *testing.T) {
	t.Parallel()

	rec := postMcp(t, newMcpHandler(&stubRunner{}), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
