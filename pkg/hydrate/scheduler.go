package hydrate

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	glinterr "github.com/glint-ui/glint/internal/errors"
)

// tracerName identifies activation spans.
const tracerName = "glint/hydrate"

// DefaultMaxConcurrency bounds concurrently loading islands when
// SchedulerConfig.MaxConcurrency is zero.
const DefaultMaxConcurrency = 4

// Activator binds interactive behavior to already-rendered markup, located
// by the island's selector. Implementations may block; they honor ctx,
// which carries the activation timeout.
type Activator interface {
	Activate(ctx context.Context, island *Island) error
}

// ActivatorFunc adapts a function to the Activator interface.
type ActivatorFunc func(ctx context.Context, island *Island) error

// Activate implements Activator.
func (f ActivatorFunc) Activate(ctx context.Context, island *Island) error {
	return f(ctx, island)
}

// SchedulerConfig configures a hydration scheduler.
type SchedulerConfig struct {
	// MaxConcurrency bounds the number of islands in the Loading state.
	// Defaults to DefaultMaxConcurrency.
	MaxConcurrency int

	// ActivationTimeout bounds one island's dependency waits plus
	// activation. Required: there is no safe default for a stalled
	// activation, so the zero value is rejected.
	ActivationTimeout time.Duration

	// Activator performs the activation procedure. Required.
	Activator Activator

	// Resolver resolves island dependencies. When nil, islands with
	// declared dependencies treat them as immediately available.
	Resolver DependencyResolver

	// BaseContext is the parent context for activations. Defaults to
	// context.Background().
	BaseContext context.Context

	// Logger is the structured logger. When nil, a discard logger is used.
	Logger *slog.Logger

	// Metrics records scheduler metrics. Nil-safe: when nil, no metrics
	// are recorded.
	Metrics *Metrics

	// OnHydrated, when set, is called after an island reaches Hydrated.
	// Used by integrations to trigger event replay.
	OnHydrated func(*Island)
}

// Status is an aggregate snapshot of the scheduler's islands. Counters are
// maintained on every transition, so taking a snapshot is O(1) and safe to
// poll frequently.
type Status struct {
	Total    int
	Pending  int
	Loading  int
	Hydrated int
	Errors   int
}

// Scheduler activates islands in priority order under a concurrency bound.
// Dependency and activation failures are contained at island granularity:
// the failing island lands in Errored and the next queued island is
// processed immediately.
type Scheduler struct {
	cfg    SchedulerConfig
	log    *slog.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	queue   islandQueue
	pending map[string]*queueItem // Pending islands by id, for Reprioritize
	all     map[string]*Island
	loading int
	status  Status
	waiters []chan struct{}
}

// NewScheduler validates the configuration and creates a scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Activator == nil {
		return nil, glinterr.New("G002", glinterr.CategoryConfig, "SchedulerConfig.Activator is required")
	}
	if cfg.ActivationTimeout <= 0 {
		return nil, glinterr.New("G003", glinterr.CategoryConfig, "SchedulerConfig.ActivationTimeout is required")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Scheduler{
		cfg:     cfg,
		log:     cfg.Logger,
		tracer:  otel.Tracer(tracerName),
		pending: make(map[string]*queueItem),
		all:     make(map[string]*Island),
	}, nil
}

// Schedule enqueues an island for activation. Islands already known to the
// scheduler are ignored. Whenever a worker slot is free, the
// highest-priority pending island is promoted to Loading immediately.
func (s *Scheduler) Schedule(island *Island) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduleLocked(island)
	s.promoteLocked()
}

// ScheduleAll enqueues the whole batch before promoting anything, so the
// priority order of a batch is honored even when worker slots are free at
// registration time: for a batch with priorities [10, 90, 50] under one
// slot, activation order is 90, 50, 10.
func (s *Scheduler) ScheduleAll(islands []*Island) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, island := range islands {
		s.scheduleLocked(island)
	}
	s.promoteLocked()
}

// scheduleLocked enqueues one island without promoting. Caller holds s.mu.
func (s *Scheduler) scheduleLocked(island *Island) {
	if _, dup := s.all[island.ID]; dup {
		return
	}

	island.setState(StatePending)
	s.all[island.ID] = island

	item := &queueItem{island: island}
	heap.Push(&s.queue, item)
	s.pending[island.ID] = item

	s.status.Total++
	s.status.Pending++
	s.cfg.Metrics.recordScheduled()
}

// Reprioritize changes a pending island's priority and resorts the queue in
// O(log n). It reports whether the change took effect; once an island has
// left Pending this is a no-op.
func (s *Scheduler) Reprioritize(id string, priority int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.pending[id]
	if !ok {
		return false
	}
	item.island.Priority = priority
	heap.Fix(&s.queue, item.index)
	return true
}

// Island returns a scheduled island by id, or nil.
func (s *Scheduler) Island(id string) *Island {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all[id]
}

// Status returns aggregate island counts.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Wait blocks until the scheduler is idle (no Pending or Loading islands)
// or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.idleLocked() {
		s.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) idleLocked() bool {
	return s.status.Pending == 0 && s.loading == 0
}

// promoteLocked fills free worker slots from the queue. Caller holds s.mu.
func (s *Scheduler) promoteLocked() {
	for s.loading < s.cfg.MaxConcurrency && s.queue.Len() > 0 {
		item := heap.Pop(&s.queue).(*queueItem)
		delete(s.pending, item.island.ID)

		item.island.setState(StateLoading)
		s.status.Pending--
		s.status.Loading++
		s.loading++
		s.cfg.Metrics.recordTransition(StatePending, StateLoading)

		go s.activate(item.island)
	}
}

// activate waits for the island's dependencies, runs the activation
// procedure, records the outcome, and promotes the next pending island.
// One activation per worker slot runs at a time.
func (s *Scheduler) activate(island *Island) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(s.cfg.BaseContext, s.cfg.ActivationTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "glint.hydrate.activate", trace.WithAttributes(
		attribute.String("glint.island.id", island.ID),
		attribute.String("glint.island.component", island.Component),
		attribute.Int("glint.island.priority", island.Priority),
	))
	defer span.End()

	err := s.resolveDeps(ctx, island)
	if err != nil {
		err = glinterr.Wrap(err, "G201", glinterr.CategoryDependency,
			fmt.Sprintf("island %s dependencies failed", island.ID)).WithIsland(island.ID)
	} else if aerr := s.cfg.Activator.Activate(ctx, island); aerr != nil {
		err = glinterr.Wrap(aerr, "G202", glinterr.CategoryActivation,
			fmt.Sprintf("island %s activation failed", island.ID)).WithIsland(island.ID)
	}

	s.cfg.Metrics.recordActivation(time.Since(start))

	s.mu.Lock()
	s.loading--
	s.status.Loading--
	if err != nil {
		island.setErr(err)
		island.setState(StateErrored)
		s.status.Errors++
		s.cfg.Metrics.recordTransition(StateLoading, StateErrored)
		s.cfg.Metrics.recordError(string(glinterr.CategoryOf(err)))
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("island activation failed",
			"island", island.ID, "component", island.Component, "err", err)
	} else {
		island.setState(StateHydrated)
		s.status.Hydrated++
		s.cfg.Metrics.recordTransition(StateLoading, StateHydrated)
		s.log.Debug("island hydrated",
			"island", island.ID, "component", island.Component,
			"duration", time.Since(start))
	}
	s.promoteLocked()
	if s.idleLocked() {
		for _, ch := range s.waiters {
			close(ch)
		}
		s.waiters = nil
	}
	s.mu.Unlock()

	if err == nil && s.cfg.OnHydrated != nil {
		s.cfg.OnHydrated(island)
	}
}

// resolveDeps resolves the island's dependencies concurrently and returns
// the first failure, after all resolutions have finished or ctx expired.
func (s *Scheduler) resolveDeps(ctx context.Context, island *Island) error {
	if len(island.Deps) == 0 || s.cfg.Resolver == nil {
		return nil
	}

	errc := make(chan error, len(island.Deps))
	for _, dep := range island.Deps {
		go func(dep string) {
			if err := s.cfg.Resolver.Resolve(ctx, dep); err != nil {
				errc <- fmt.Errorf("dependency %s: %w", dep, err)
				return
			}
			errc <- nil
		}(dep)
	}

	var first error
	for range island.Deps {
		if err := <-errc; err != nil && first == nil {
			first = err
		}
	}
	return first
}
