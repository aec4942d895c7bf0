package v1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/backend"
)

// HealthRouter sets up the health route.
func HealthRouter(registry *backend.Registry, chatEnabled, rateLimiting bool) http.Handler {
	routes := &healthRoutes{registry: registry, chatEnabled: chatEnabled, rateLimiting: rateLimiting}
	r := chi.NewRouter()
	r.Get("/", routes.getHealth)
	return r
}

type healthRoutes struct {
	registry     *backend.Registry
	chatEnabled  bool
	rateLimiting bool
}

type healthResponse struct {
	Status          string `json:"status"`
	EnabledBackends int    `json:"enabled_backends"`
	ChatEnabled     bool   `json:"chat_enabled"`
	RateLimiting    bool   `json:"rate_limiting"`
}

func (h *healthRoutes) getHealth(w http.ResponseWriter, _ *http.Request) {
	enabled := len(h.registry.Enabled())
	body := healthResponse{
		Status:          "ok",
		EnabledBackends: enabled,
		ChatEnabled:     h.chatEnabled,
		RateLimiting:    h.rateLimiting,
	}

	// The service can answer queries only while at least one backend is
	// enabled.
	status := http.StatusOK
	if enabled == 0 {
		body.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("failed to write health response: %v", err)
	}
}
