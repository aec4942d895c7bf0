package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

func chatConfig(baseURL string) config.ChatConfig {
	return config.ChatConfig{
		Enabled:        true,
		BaseURL:        baseURL,
		Model:          "test-model",
		TimeoutSeconds: 5,
	}
}

func TestHTTPClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, RoleSystem, req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a standalone query"}}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(chatConfig(srv.URL))
	require.NotNil(t, c)

	reply, err := c.Complete(context.Background(), []Message{
		SystemMessage("rewrite queries"),
		UserMessage("latest query"),
	})
	require.NoError(t, err)
	assert.Equal(t, "a standalone query", reply)
}

func TestHTTPClientNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(chatConfig(srv.URL))
	_, err := c.Complete(context.Background(), []Message{UserMessage("hi")})
	require.ErrorIs(t, err, nlweb.ErrChatUnavailable)
}

func TestHTTPClientEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(chatConfig(srv.URL))
	_, err := c.Complete(context.Background(), []Message{UserMessage("hi")})
	require.ErrorIs(t, err, nlweb.ErrChatUnavailable)
}

func TestHTTPClientDisabledIsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewHTTPClient(config.ChatConfig{Enabled: false}))
}
