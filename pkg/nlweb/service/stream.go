package service

import (
	"context"
	"errors"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Frame types, in emission order. A stream opens with FrameQueryID and ends
// with exactly one of FrameComplete or FrameError, unless cancelled.
const (
	FrameQueryID               = "query_id"
	FrameDecontextualizedQuery = "decontextualized_query"
	FrameResult                = "result"
	FrameSummary               = "summary"
	FrameComplete              = "complete"
	FrameError                 = "error"
)

// Frame is one unit of a streaming response.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ErrorData is the payload of an error frame.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// streamBuffer bounds the producer ahead of a slow consumer.
const streamBuffer = 8

// ProcessStream runs the pipeline and emits its progress as a finite frame
// sequence. The channel is closed when the stream ends. On context
// cancellation the producer stops without a terminal frame; closing the
// transport is the caller's job.
func (s *Service) ProcessStream(ctx context.Context, req nlweb.Request) <-chan Frame {
	frames := make(chan Frame, streamBuffer)

	go func() {
		defer close(frames)

		ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
		defer cancel()

		processed, err := s.process(ctx, req)
		if err != nil {
			emit(ctx, frames, Frame{Type: FrameError, Data: errorData(err)})
			return
		}

		if !emit(ctx, frames, Frame{Type: FrameQueryID, Data: processed.Request.QueryID}) {
			return
		}
		if !emit(ctx, frames, Frame{Type: FrameDecontextualizedQuery, Data: processed.Request.DecontextualizedQuery}) {
			return
		}

		resp, err := s.execute(ctx, processed)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled mid-flight; no terminal frame.
				return
			}
			emit(ctx, frames, Frame{Type: FrameError, Data: errorData(err)})
			return
		}

		for _, res := range resp.Results {
			if !emit(ctx, frames, Frame{Type: FrameResult, Data: res}) {
				return
			}
		}
		if resp.Summary != nil {
			if !emit(ctx, frames, Frame{Type: FrameSummary, Data: *resp.Summary}) {
				return
			}
		}
		emit(ctx, frames, Frame{Type: FrameComplete, Data: nil})
	}()

	return frames
}

// emit sends a frame unless the context is done. Reports whether the frame
// was sent.
func emit(ctx context.Context, frames chan<- Frame, f Frame) bool {
	select {
	case frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func errorData(err error) ErrorData {
	return ErrorData{Kind: ErrorKind(err), Message: err.Error()}
}

// ErrorKind maps pipeline errors onto the stable error vocabulary used on
// the wire.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, nlweb.ErrInvalidArgument):
		return "invalid-argument"
	case errors.Is(err, nlweb.ErrRateLimited):
		return "rate-limited"
	case errors.Is(err, nlweb.ErrNoBackends), errors.Is(err, nlweb.ErrBackendUnavailable):
		return "backend-unavailable"
	case errors.Is(err, nlweb.ErrChatUnavailable):
		return "chat-unavailable"
	case errors.Is(err, nlweb.ErrNotFound):
		return "not-found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "internal"
	}
}
