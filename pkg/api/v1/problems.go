// Package v1 implements the HTTP handlers of the query surface.
package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/service"
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// statusFor maps the pipeline error vocabulary onto HTTP statuses.
func statusFor(kind string) int {
	switch kind {
	case "invalid-argument":
		return http.StatusBadRequest
	case "rate-limited":
		return http.StatusTooManyRequests
	case "not-found":
		return http.StatusNotFound
	case "backend-unavailable":
		return http.StatusBadGateway
	case "chat-unavailable":
		return http.StatusServiceUnavailable
	case "cancelled":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a problem document. Internal errors carry the
// request correlation id in the detail so they can be traced in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.ErrorKind(err)
	detail := err.Error()
	if kind == "internal" {
		// The correlation middleware echoes the id on the response header
		// before handlers run.
		if id := w.Header().Get("X-Correlation-ID"); id != "" {
			detail = fmt.Sprintf("%s (correlation id %s)", detail, id)
		}
	}
	writeProblem(w, Problem{
		Type:     "urn:nlweb:error:" + kind,
		Title:    kind,
		Status:   statusFor(kind),
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		logger.Warnf("failed to write problem document: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warnf("failed to write response body: %v", err)
	}
}
