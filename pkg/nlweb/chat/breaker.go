package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// CircuitState represents the state of the chat-client circuit breaker.
type CircuitState string

const (
	// CircuitClosed indicates normal operation - requests pass through.
	CircuitClosed CircuitState = "closed"
	// CircuitOpen indicates failing state - requests fail immediately.
	CircuitOpen CircuitState = "open"
	// CircuitHalfOpen indicates recovery testing - one probe request allowed.
	CircuitHalfOpen CircuitState = "half_open"
)

const (
	defaultFailureThreshold = 3
	defaultOpenTimeout      = 30 * time.Second
)

// breakerClient short-circuits chat completions after repeated failures so
// Summarize/Generate requests degrade to List without waiting on timeouts.
// State transitions: Closed → Open → HalfOpen → Closed.
type breakerClient struct {
	inner ChatClient

	mu sync.Mutex

	state            CircuitState
	failureCount     int
	failureThreshold int
	timeout          time.Duration
	lastStateChange  time.Time

	// Only one probe request is allowed while half-open.
	halfOpenTestInProgress bool
}

// WithBreaker wraps a chat client with a circuit breaker. While the circuit
// is open, Complete fails fast with nlweb.ErrChatUnavailable.
func WithBreaker(inner ChatClient) ChatClient {
	return &breakerClient{
		inner:            inner,
		state:            CircuitClosed,
		failureThreshold: defaultFailureThreshold,
		timeout:          defaultOpenTimeout,
		lastStateChange:  time.Now(),
	}
}

// Complete implements ChatClient.
func (c *breakerClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.canAttempt() {
		return "", fmt.Errorf("%w: circuit breaker open", nlweb.ErrChatUnavailable)
	}

	reply, err := c.inner.Complete(ctx, messages)
	if err != nil {
		c.recordFailure()
		return "", err
	}
	c.recordSuccess()
	return reply, nil
}

// canAttempt checks whether a completion should be allowed based on the
// circuit state, transitioning Open → HalfOpen after the timeout elapses.
func (c *breakerClient) canAttempt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if time.Since(c.lastStateChange) >= c.timeout {
			c.state = CircuitHalfOpen
			c.lastStateChange = time.Now()
			c.halfOpenTestInProgress = true
			return true
		}
		return false

	case CircuitHalfOpen:
		if c.halfOpenTestInProgress {
			return false
		}
		c.halfOpenTestInProgress = true
		return true

	default:
		return false
	}
}

// recordSuccess resets the failure count and closes the circuit.
func (c *breakerClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.state
	c.failureCount = 0
	c.halfOpenTestInProgress = false

	if c.state != CircuitClosed {
		c.state = CircuitClosed
		c.lastStateChange = time.Now()
		if previous == CircuitHalfOpen {
			logger.Infof("Chat client circuit breaker CLOSED (recovery successful)")
		}
	}
}

// recordFailure increments the failure count and opens the circuit when the
// threshold is exceeded or a half-open probe fails.
func (c *breakerClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount++
	c.halfOpenTestInProgress = false

	if c.state == CircuitClosed && c.failureCount >= c.failureThreshold {
		c.state = CircuitOpen
		c.lastStateChange = time.Now()
		logger.Warnf("Chat client circuit breaker OPENED (threshold exceeded)")
	} else if c.state == CircuitHalfOpen {
		c.state = CircuitOpen
		c.lastStateChange = time.Now()
		logger.Warnf("Chat client circuit breaker returned to OPEN (recovery failed)")
	}
}

// State returns the current circuit state.
func (c *breakerClient) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
