package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/mcpadapter"
)

// McpRouter sets up the /mcp route.
func McpRouter(adapter *mcpadapter.Adapter) http.Handler {
	routes := &mcpRoutes{adapter: adapter}
	r := chi.NewRouter()
	r.Post("/", routes.dispatch)
	return r
}

type mcpRoutes struct {
	adapter *mcpadapter.Adapter
}

// mcpRequest is the JSON envelope of an /mcp invocation.
type mcpRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type callToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type getPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (h *mcpRoutes) dispatch(w http.ResponseWriter, r *http.Request) {
	var req mcpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body: %v", nlweb.ErrInvalidArgument, err))
		return
	}

	switch req.Method {
	case "list_tools":
		writeJSON(w, http.StatusOK, h.adapter.ListTools())

	case "list_prompts":
		writeJSON(w, http.StatusOK, h.adapter.ListPrompts())

	case "call_tool":
		var params callToolParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.adapter.CallTool(r.Context(), params.Name, params.Arguments))

	case "get_prompt":
		var params getPromptParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.adapter.GetPrompt(params.Name, params.Arguments))

	default:
		writeError(w, r, fmt.Errorf("%w: unknown method %q", nlweb.ErrInvalidArgument, req.Method))
	}
}

func unmarshalParams(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: params are required", nlweb.ErrInvalidArgument)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: invalid params: %v", nlweb.ErrInvalidArgument, err)
	}
	return nil
}
