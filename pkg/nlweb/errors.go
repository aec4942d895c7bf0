package nlweb

import "errors"

// Common domain errors used across nlweb subpackages.
// These errors should be checked using errors.Is().

var (
	// ErrInvalidArgument indicates request validation failed (missing query,
	// unknown mode, oversized query, unknown MCP method/tool/prompt).
	// Wrapping errors should name the offending field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRateLimited indicates the caller exhausted its request budget for
	// the current window.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoBackends indicates no data backend is enabled.
	ErrNoBackends = errors.New("no backends configured")

	// ErrBackendUnavailable indicates every queried backend failed.
	// Partial failures are absorbed by the backend manager and do not
	// produce this error.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrChatUnavailable indicates the chat client failed. Summarize and
	// Generate modes degrade to List on this error rather than failing
	// the request.
	ErrChatUnavailable = errors.New("chat client unavailable")

	// ErrNotFound indicates a requested tool, prompt or handler was not found.
	// Wrapping errors should provide the name that was looked up.
	ErrNotFound = errors.New("not found")

	// ErrNotImplemented indicates a backend does not support an operation.
	// A backend returning this for search is skipped silently.
	ErrNotImplemented = errors.New("not implemented")
)
