package replay

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultReplayDelay is the inter-event delay reintroduced during replay
// when BufferConfig.ReplayDelay is zero. It approximates original timing
// without ever blocking replay on the original gaps.
const DefaultReplayDelay = 2 * time.Millisecond

// Dispatcher receives replayed events in original order.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, ev Event) error

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// BufferConfig configures an event replay buffer.
type BufferConfig struct {
	// Dispatcher receives replayed events. Required for Replay.
	Dispatcher Dispatcher

	// ReplayDelay is the pause between replayed events. Defaults to
	// DefaultReplayDelay.
	ReplayDelay time.Duration

	// Logger is the structured logger. When nil, a discard logger is used.
	Logger *slog.Logger
}

// Buffer records user-interaction events that arrive before their target
// regions are active and replays them afterwards in original order.
// Recording begins with StartRecording, independent of hydration state,
// because input may arrive before any island finishes activating.
//
// The buffer preserves FIFO order across all targets, not per target.
type Buffer struct {
	cfg BufferConfig
	log *slog.Logger

	mu        sync.Mutex
	recording bool
	replaying bool
	events    []Event
}

// NewBuffer creates an event replay buffer. Call StartRecording as soon as
// the host document exists.
func NewBuffer(cfg BufferConfig) *Buffer {
	if cfg.ReplayDelay <= 0 {
		cfg.ReplayDelay = DefaultReplayDelay
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Buffer{cfg: cfg, log: log}
}

// StartRecording begins capturing events.
func (b *Buffer) StartRecording() {
	b.mu.Lock()
	b.recording = true
	b.mu.Unlock()
}

// StopRecording stops capturing events without clearing the buffer.
func (b *Buffer) StopRecording() {
	b.mu.Lock()
	b.recording = false
	b.mu.Unlock()
}

// Record captures an event. Events are dropped unless recording is active;
// recording is also suppressed while a replay is in flight, so replayed
// events never feed back into the buffer.
func (b *Buffer) Record(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.recording || b.replaying {
		return
	}
	if ev.Recorded.IsZero() {
		ev.Recorded = time.Now()
	}
	b.events = append(b.events, ev)
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Replay dispatches all buffered events in original order, reintroducing a
// small inter-event delay. The buffer is cleared only after every record
// has been dispatched; a dispatch failure or ctx cancellation leaves the
// undispatched remainder buffered for a later attempt.
//
// Only one replay runs at a time; a concurrent call returns immediately.
func (b *Buffer) Replay(ctx context.Context) error {
	b.mu.Lock()
	if b.replaying || len(b.events) == 0 {
		b.mu.Unlock()
		return nil
	}
	b.replaying = true
	pending := b.events
	b.mu.Unlock()

	dispatched := 0
	var err error

	for i, ev := range pending {
		if i > 0 {
			select {
			case <-time.After(b.cfg.ReplayDelay):
			case <-ctx.Done():
				err = ctx.Err()
			}
			if err != nil {
				break
			}
		}
		if err = b.cfg.Dispatcher.Dispatch(ctx, ev); err != nil {
			b.log.Warn("event replay dispatch failed",
				"type", ev.Type, "selector", ev.Selector, "err", err)
			break
		}
		dispatched++
	}

	b.mu.Lock()
	b.events = b.events[dispatched:]
	b.replaying = false
	b.mu.Unlock()

	if err == nil {
		b.log.Debug("event replay complete", "events", dispatched)
	}
	return err
}
