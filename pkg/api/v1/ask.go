package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/service"
	"github.com/nlweb-ai/nlweb-go/pkg/telemetry"
)

// AskRouter sets up the /ask routes.
func AskRouter(svc *service.Service, cfg *config.Config, metrics *telemetry.Metrics) http.Handler {
	routes := &askRoutes{svc: svc, cfg: cfg, metrics: metrics}
	r := chi.NewRouter()
	r.Get("/", routes.ask)
	r.Post("/", routes.ask)
	return r
}

type askRoutes struct {
	svc     *service.Service
	cfg     *config.Config
	metrics *telemetry.Metrics
}

// askRequest is the wire shape of an /ask invocation. GET requests carry the
// same fields as query parameters.
type askRequest struct {
	Query string `json:"query"`
	Site  string `json:"site,omitempty"`
	Mode  string `json:"mode,omitempty"`

	// Prev is a comma-separated list of prior queries in the conversation.
	Prev string `json:"prev,omitempty"`

	DecontextualizedQuery string `json:"decontextualized_query,omitempty"`
	Streaming             *bool  `json:"streaming,omitempty"`
	QueryID               string `json:"query_id,omitempty"`
}

// splitPrev parses the comma-separated prev field, dropping empty entries.
func splitPrev(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *askRoutes) ask(w http.ResponseWriter, r *http.Request) {
	in, err := h.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	mode, err := nlweb.ParseMode(in.Mode, h.cfg.Mode())
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := nlweb.Request{
		QueryID:               in.QueryID,
		Query:                 in.Query,
		Mode:                  mode,
		Site:                  in.Site,
		Prev:                  splitPrev(in.Prev),
		DecontextualizedQuery: in.DecontextualizedQuery,
	}

	// Streaming is the default and is gated by server config.
	streaming := h.cfg.EnableStreaming
	if in.Streaming != nil {
		streaming = *in.Streaming && h.cfg.EnableStreaming
	}

	if streaming {
		h.stream(w, r, req)
		return
	}
	h.unary(w, r, req)
}

func (h *askRoutes) parse(r *http.Request) (*askRequest, error) {
	if r.Method == http.MethodGet {
		return parseAskQuery(r)
	}

	var in askRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: invalid request body: %v", nlweb.ErrInvalidArgument, err)
	}
	return &in, nil
}

func parseAskQuery(r *http.Request) (*askRequest, error) {
	q := r.URL.Query()
	in := &askRequest{
		Query:                 q.Get("query"),
		Site:                  q.Get("site"),
		Mode:                  q.Get("mode"),
		Prev:                  q.Get("prev"),
		DecontextualizedQuery: q.Get("decontextualized_query"),
		QueryID:               q.Get("query_id"),
	}
	if raw := q.Get("streaming"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: streaming must be a boolean", nlweb.ErrInvalidArgument)
		}
		in.Streaming = &v
	}
	return in, nil
}

func (h *askRoutes) unary(w http.ResponseWriter, r *http.Request, req nlweb.Request) {
	start := time.Now()

	resp, err := h.svc.Process(r.Context(), req)
	if err != nil {
		h.metrics.ObserveRequest(string(req.Mode), "error", time.Since(start).Seconds())
		writeError(w, r, err)
		return
	}

	h.metrics.ObserveRequest(string(resp.Mode), "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func (h *askRoutes) stream(w http.ResponseWriter, r *http.Request, req nlweb.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: streaming unsupported by connection", nlweb.ErrInvalidArgument))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.metrics.StreamsActive.Inc()
	defer h.metrics.StreamsActive.Dec()
	start := time.Now()
	outcome := "ok"

	for frame := range h.svc.ProcessStream(r.Context(), req) {
		if frame.Type == service.FrameError {
			outcome = "error"
		}
		payload, err := json.Marshal(frame)
		if err != nil {
			logger.Errorf("failed to marshal frame: %v", err)
			break
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// Client went away; the context cancellation stops the producer.
			outcome = "disconnected"
			break
		}
		flusher.Flush()
	}

	h.metrics.ObserveRequest(string(req.Mode), outcome, time.Since(start).Seconds())
}
