package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
)

// Middleware returns an HTTP middleware that enforces the limiter.
//
// The identifier is taken from the configured client header when client-based
// limiting is enabled and the header is present, otherwise from the remote
// IP. Rejected requests receive 429 with Retry-After; every response carries
// X-RateLimit-* headers describing the remaining budget.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		identifier := l.identify(r)
		allowed := l.Allow(identifier)
		status := l.Status(identifier)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(status.Total))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(status.ResetIn.Seconds())))

		if !allowed {
			logger.Debugw("request rate limited", "identifier", identifier)
			if l.onReject != nil {
				l.onReject()
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(status)))
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w,
				`{"type":"about:blank","title":"Too Many Requests","status":429,"detail":"rate limit exceeded, retry in %ds"}`,
				retryAfterSeconds(status))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identify derives the limiter key for a request.
func (l *Limiter) identify(r *http.Request) string {
	if l.cfg.EnableClientBasedLimiting && l.cfg.ClientIDHeader != "" {
		if id := r.Header.Get(l.cfg.ClientIDHeader); id != "" {
			return id
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds rounds the window reset up to whole seconds so a client
// that honors Retry-After lands in the next window.
func retryAfterSeconds(s Status) int {
	secs := int(s.ResetIn.Seconds())
	if s.ResetIn > 0 && s.ResetIn%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
