// Package ratelimit implements the per-identifier fixed-window request
// limiter that gates the HTTP surface.
//
// Each identifier (remote IP or a configured client header) owns one bucket.
// Bucket mutations are serialized; interleavings across identifiers are
// independent. The bucket map is bounded: buckets whose window ended more
// than one window ago are swept when the map grows past its cap. An evicted
// identifier starts fresh on its next request, which is an accepted lossy
// behavior.
package ratelimit

import (
	"sync"
	"time"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
)

// maxBuckets caps the bucket map. When the cap is reached, expired buckets
// are swept before a new one is created.
const maxBuckets = 16384

// Status reports an identifier's budget without consuming from it.
type Status struct {
	// Allowed reports whether the next request would be admitted.
	Allowed bool

	// Remaining is the number of requests left in the current window.
	// -1 means unlimited (limiter disabled).
	Remaining int

	// ResetIn is the time until the current window ends. Never negative.
	ResetIn time.Duration

	// Total is the configured budget per window.
	Total int
}

// bucket is the fixed-window counter for one identifier.
type bucket struct {
	requests    int
	windowStart time.Time
}

// Limiter is a fixed-window rate limiter keyed by identifier.
// Safe for concurrent use.
type Limiter struct {
	cfg config.RateLimitingConfig

	mu      sync.Mutex
	buckets map[string]*bucket

	// now is injectable for tests.
	now func() time.Time

	// onReject, when set, is called for every rejected request.
	onReject func()
}

// SetRejectionHook registers a callback invoked whenever the middleware
// rejects a request. Used to feed telemetry.
func (l *Limiter) SetRejectionHook(hook func()) {
	l.onReject = hook
}

// New creates a Limiter from the given configuration.
func New(cfg config.RateLimitingConfig) *Limiter {
	return &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow atomically consumes one token for the identifier if its budget
// permits. Returns true iff a token was consumed. When the limiter is
// disabled it always returns true.
func (l *Limiter) Allow(identifier string) bool {
	if !l.cfg.Enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucketFor(identifier)
	l.advanceWindow(b)

	if b.requests >= l.cfg.RequestsPerWindow {
		return false
	}
	b.requests++
	return true
}

// Status reports the identifier's budget without consuming from it.
func (l *Limiter) Status(identifier string) Status {
	if !l.cfg.Enabled {
		return Status{Allowed: true, Remaining: -1, ResetIn: 0, Total: 0}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucketFor(identifier)
	l.advanceWindow(b)

	remaining := l.cfg.RequestsPerWindow - b.requests
	if remaining < 0 {
		remaining = 0
	}

	resetIn := b.windowStart.Add(l.cfg.Window()).Sub(l.now())
	if resetIn < 0 {
		// Clamp: a non-monotonic clock must not produce a negative reset.
		resetIn = 0
	}

	return Status{
		Allowed:   remaining > 0,
		Remaining: remaining,
		ResetIn:   resetIn,
		Total:     l.cfg.RequestsPerWindow,
	}
}

// bucketFor returns the bucket for the identifier, creating it lazily.
// Callers must hold l.mu.
func (l *Limiter) bucketFor(identifier string) *bucket {
	if b, ok := l.buckets[identifier]; ok {
		return b
	}

	if len(l.buckets) >= maxBuckets {
		l.sweepExpired()
	}

	b := &bucket{windowStart: l.now()}
	l.buckets[identifier] = b
	return b
}

// advanceWindow resets the bucket when its window has elapsed.
// Callers must hold l.mu.
func (l *Limiter) advanceWindow(b *bucket) {
	if now := l.now(); !now.Before(b.windowStart.Add(l.cfg.Window())) {
		b.requests = 0
		b.windowStart = now
	}
}

// sweepExpired drops buckets whose window ended more than one window ago.
// Callers must hold l.mu.
func (l *Limiter) sweepExpired() {
	cutoff := l.now().Add(-2 * l.cfg.Window())
	swept := 0
	for id, b := range l.buckets {
		if b.windowStart.Before(cutoff) {
			delete(l.buckets, id)
			swept++
		}
	}
	if swept > 0 {
		logger.Debugf("rate limiter swept %d expired buckets", swept)
	}
}
