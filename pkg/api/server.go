// Package api contains the HTTP surface of the query service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	v1 "github.com/nlweb-ai/nlweb-go/pkg/api/v1"
	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/backend"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/mcpadapter"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/service"
	"github.com/nlweb-ai/nlweb-go/pkg/ratelimit"
	"github.com/nlweb-ai/nlweb-go/pkg/telemetry"
)

const readHeaderTimeout = 10 * time.Second

// Deps are the wired components the HTTP surface serves.
type Deps struct {
	Config   *config.Config
	Service  *service.Service
	Adapter  *mcpadapter.Adapter
	Limiter  *ratelimit.Limiter
	Registry *backend.Registry
	Metrics  *telemetry.Metrics
}

// Router assembles the full HTTP handler tree.
func Router(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(CorrelationID)

	// Rate limiting applies to the query surface only; health and metrics
	// stay reachable under load.
	r.Group(func(r chi.Router) {
		r.Use(deps.Limiter.Middleware)
		r.Mount("/ask", v1.AskRouter(deps.Service, deps.Config, deps.Metrics))
		r.Mount("/mcp", v1.McpRouter(deps.Adapter))
	})

	r.Mount("/health", v1.HealthRouter(deps.Registry, deps.Config.Chat.Enabled, deps.Config.RateLimiting.Enabled))
	r.Mount("/metrics", deps.Metrics.Handler())
	return r
}

// Serve runs the HTTP server until the context is cancelled. The caller sets
// up signal handling.
func Serve(ctx context.Context, deps Deps) error {
	address := fmt.Sprintf("%s:%d", deps.Config.Host, deps.Config.Port)

	srv := &http.Server{
		BaseContext:       func(net.Listener) context.Context { return ctx },
		Addr:              address,
		Handler:           Router(deps),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	logger.Infof("starting HTTP server on %s", address)

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Panicf("server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}
