package chat

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
)

const (
	// retryMaxTries includes the initial attempt.
	retryMaxTries = 2

	// retryInitialDelay is the first backoff interval.
	retryInitialDelay = 200 * time.Millisecond
)

// retryingClient retries transient chat failures once with exponential
// backoff before giving up. Context cancellation aborts immediately.
type retryingClient struct {
	inner ChatClient
}

// WithRetry wraps a chat client with a single retry on failure.
func WithRetry(inner ChatClient) ChatClient {
	return &retryingClient{inner: inner}
}

// Complete implements ChatClient.
func (c *retryingClient) Complete(ctx context.Context, messages []Message) (string, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = retryInitialDelay
	expBackoff.Reset()

	operation := func() (string, error) {
		return c.inner.Complete(ctx, messages)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(retryMaxTries),
		backoff.WithNotify(func(err error, duration time.Duration) {
			logger.Debugf("Retrying chat completion after %v: %v", duration, err)
		}),
	)
}
