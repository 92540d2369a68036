package render

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	glinterr "github.com/glint-ui/glint/internal/errors"
	"github.com/glint-ui/glint/pkg/hydrate"
	"github.com/glint-ui/glint/pkg/vdom"
)

// tracerName identifies render spans.
const tracerName = "glint/render"

// Result summarizes a completed (or aborted) streaming render.
type Result struct {
	// Islands are the interactive regions registered during the walk, in
	// registration order, ready to hand to the hydration scheduler.
	Islands []*hydrate.Island

	// Chunks is the number of chunks emitted, including the final one.
	Chunks uint64

	// Bytes is the total payload size handed to the sink.
	Bytes int64
}

// session owns the per-render state: the emitter buffer, the boundary
// stack, and the island registry. Nothing here is shared across renders.
type session struct {
	ctx      context.Context
	opts     *StreamOptions
	em       *emitter
	bounds   *boundaryManager
	registry *hydrate.Registry
	log      *slog.Logger
}

// Stream walks the tree depth-first and emits the serialized document as
// ordered chunks through opts.OnChunk. It returns once the final chunk has
// been emitted or the stream aborted.
//
// A render failure with no enclosing suspense boundary aborts the stream:
// buffered output for the failing subtree is discarded, no final chunk is
// emitted, and the error is delivered both to opts.OnError and as the
// return value. Context cancellation aborts the remaining walk but flushes
// output buffered so far.
func Stream(ctx context.Context, root *vdom.VNode, opts StreamOptions) (*Result, error) {
	if opts.OnChunk == nil {
		return nil, glinterr.New("G001", glinterr.CategoryConfig, "StreamOptions.OnChunk is required")
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "glint.render")
	defer span.End()

	s := &session{
		ctx:      ctx,
		opts:     &opts,
		bounds:   newBoundaryManager(),
		registry: hydrate.NewRegistry(hydrate.RegistryConfig{PriorityThreshold: opts.PriorityThreshold}),
		log:      opts.logger(),
	}

	result := &Result{}
	s.em = newEmitter(func(c Chunk) error {
		result.Chunks++
		result.Bytes += int64(len(c.Payload))
		return opts.OnChunk(c)
	}, opts.ChunkSize)

	err := s.walk(root)
	if err == nil {
		err = s.em.close()
	}

	result.Islands = s.registry.Islands()
	span.SetAttributes(
		attribute.Int64("glint.chunks", int64(result.Chunks)),
		attribute.Int64("glint.bytes", result.Bytes),
		attribute.Int("glint.islands", len(result.Islands)),
	)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Deadline abort: ship what we have before reporting failure.
			if ferr := s.em.flush(); ferr != nil {
				s.log.Warn("flush after cancellation failed", "err", ferr)
			}
		}
		span.SetStatus(codes.Error, err.Error())
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return result, err
	}

	if opts.OnEnd != nil {
		opts.OnEnd()
	}
	return result, nil
}

// write forwards serialized text to the emitter.
func (s *session) write(text string) error {
	return s.em.writeString(text)
}

// warn delivers a non-fatal warning to the caller.
func (s *session) warn(err error) {
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}
