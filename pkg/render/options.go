package render

import (
	"io"
	"log/slog"
	"time"
)

// StreamOptions configures one streaming render session.
type StreamOptions struct {
	// OnChunk receives each emitted chunk in sequence order. Required.
	OnChunk SinkFunc

	// OnError receives non-fatal warnings (flush-window violations) and
	// the fatal error that aborted the stream, if any. Optional.
	OnError func(error)

	// OnEnd is invoked after the final chunk has been emitted. Optional.
	OnEnd func()

	// EnableSuspense controls whether boundary nodes supervise their
	// subtrees. When false, boundaries are walked as plain fragments and
	// failures propagate as if no boundary existed.
	EnableSuspense bool

	// PriorityThreshold marks islands at or above it as eager. Carried
	// through to the registry; does not affect chunk ordering.
	PriorityThreshold int

	// ChunkSize is the flush threshold in bytes. Defaults to
	// DefaultChunkSize.
	ChunkSize int

	// Timeout bounds the whole stream. Zero means no deadline beyond the
	// caller's context.
	Timeout time.Duration

	// Logger is the structured logger for the session. When nil, a
	// discard logger is used.
	Logger *slog.Logger
}

// logger returns the configured logger, or a discard logger if nil.
func (o *StreamOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
