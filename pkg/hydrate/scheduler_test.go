package hydrate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	glinterr "github.com/glint-ui/glint/internal/errors"
)

func testIsland(id string, priority int, seq uint64) *Island {
	return &Island{ID: id, Component: id, Priority: priority, seq: seq}
}

// orderActivator records activation order.
type orderActivator struct {
	mu    sync.Mutex
	order []string
}

func (a *orderActivator) Activate(_ context.Context, island *Island) error {
	a.mu.Lock()
	a.order = append(a.order, island.ID)
	a.mu.Unlock()
	return nil
}

func (a *orderActivator) got() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.order...)
}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := NewScheduler(SchedulerConfig{ActivationTimeout: time.Second})
	if glinterr.CategoryOf(err) != glinterr.CategoryConfig {
		t.Fatalf("missing activator: err = %v, want config error", err)
	}

	_, err = NewScheduler(SchedulerConfig{
		Activator: ActivatorFunc(func(context.Context, *Island) error { return nil }),
	})
	if glinterr.CategoryOf(err) != glinterr.CategoryConfig {
		t.Fatalf("missing timeout: err = %v, want config error", err)
	}
}

func TestScheduler_PriorityOrderUnderSingleWorker(t *testing.T) {
	act := &orderActivator{}

	// A gate holds the first activation so all three islands are queued
	// before any priority decision is observable.
	gate := make(chan struct{})
	first := true
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    1,
		ActivationTimeout: time.Second,
		Activator: ActivatorFunc(func(ctx context.Context, island *Island) error {
			if first {
				first = false
				<-gate
			}
			return act.Activate(ctx, island)
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	// The first scheduled island is promoted immediately and blocks on the
	// gate; the rest queue up behind it.
	s.Schedule(testIsland("blocker", 1, 0))
	s.Schedule(testIsland("low", 10, 1))
	s.Schedule(testIsland("high", 90, 2))
	s.Schedule(testIsland("mid", 50, 3))
	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	want := []string{"blocker", "high", "mid", "low"}
	got := act.got()
	if len(got) != len(want) {
		t.Fatalf("activated = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("activation order = %v, want %v", got, want)
		}
	}
}

func TestScheduler_EqualPriorityFIFO(t *testing.T) {
	act := &orderActivator{}
	gate := make(chan struct{})
	first := true
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    1,
		ActivationTimeout: time.Second,
		Activator: ActivatorFunc(func(ctx context.Context, island *Island) error {
			if first {
				first = false
				<-gate
			}
			return act.Activate(ctx, island)
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.Schedule(testIsland("blocker", 1, 0))
	s.Schedule(testIsland("a", 10, 1))
	s.Schedule(testIsland("b", 10, 2))
	s.Schedule(testIsland("c", 10, 3))
	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	want := []string{"blocker", "a", "b", "c"}
	got := act.got()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("activation order = %v, want FIFO %v", got, want)
		}
	}
}

// A batch registered in document order with priorities [10, 90, 50] under
// one worker slot activates 90, 50, 10: registration fills the queue before
// any promotion happens.
func TestScheduler_BatchActivatesByPriority(t *testing.T) {
	act := &orderActivator{}
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    1,
		ActivationTimeout: time.Second,
		Activator:         act,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.ScheduleAll([]*Island{
		testIsland("p10", 10, 0),
		testIsland("p90", 90, 1),
		testIsland("p50", 50, 2),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	want := []string{"p90", "p50", "p10"}
	got := act.got()
	if len(got) != len(want) {
		t.Fatalf("activated = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("activation order = %v, want %v", got, want)
		}
	}
}

func TestScheduler_BatchEqualPriorityFIFO(t *testing.T) {
	act := &orderActivator{}
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    1,
		ActivationTimeout: time.Second,
		Activator:         act,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.ScheduleAll([]*Island{
		testIsland("a", 10, 0),
		testIsland("b", 10, 1),
		testIsland("c", 10, 2),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	want := []string{"a", "b", "c"}
	got := act.got()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("activation order = %v, want registration order %v", got, want)
		}
	}
}

// A failing island lands in Errored without delaying or poisoning the
// others.
func TestScheduler_FailureContainedPerIsland(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    2,
		ActivationTimeout: time.Second,
		Activator: ActivatorFunc(func(_ context.Context, island *Island) error {
			if island.ID == "broken" {
				return errors.New("no such module")
			}
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.ScheduleAll([]*Island{
		testIsland("ok-1", 10, 0),
		testIsland("broken", 50, 1),
		testIsland("ok-2", 10, 2),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if got := s.Island("broken").State(); got != StateErrored {
		t.Fatalf("broken state = %v, want errored", got)
	}
	if err := s.Island("broken").Err(); glinterr.CategoryOf(err) != glinterr.CategoryActivation {
		t.Fatalf("broken err = %v, want activation category", err)
	}
	for _, id := range []string{"ok-1", "ok-2"} {
		if got := s.Island(id).State(); got != StateHydrated {
			t.Fatalf("%s state = %v, want hydrated", id, got)
		}
	}

	status := s.Status()
	if status.Total != 3 || status.Hydrated != 2 || status.Errors != 1 {
		t.Fatalf("status = %+v", status)
	}
	if status.Pending != 0 || status.Loading != 0 {
		t.Fatalf("status not idle: %+v", status)
	}
}

// A dependency that never resolves times out and fails only its island.
func TestScheduler_StalledDependencyErrorsIsland(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    2,
		ActivationTimeout: 50 * time.Millisecond,
		Activator:         ActivatorFunc(func(context.Context, *Island) error { return nil }),
		Resolver: ResolverFunc(func(ctx context.Context, name string) error {
			if name == "never.js" {
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	stalled := testIsland("stalled", 90, 0)
	stalled.Deps = []string{"never.js"}
	healthy := testIsland("healthy", 10, 1)
	healthy.Deps = []string{"fine.js"}

	s.ScheduleAll([]*Island{stalled, healthy})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if got := stalled.State(); got != StateErrored {
		t.Fatalf("stalled state = %v, want errored", got)
	}
	if err := stalled.Err(); glinterr.CategoryOf(err) != glinterr.CategoryDependency {
		t.Fatalf("stalled err = %v, want dependency category", err)
	}
	if got := healthy.State(); got != StateHydrated {
		t.Fatalf("healthy state = %v, want hydrated", got)
	}
}

func TestScheduler_DuplicateScheduleIgnored(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{
		ActivationTimeout: time.Second,
		Activator:         ActivatorFunc(func(context.Context, *Island) error { return nil }),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	island := testIsland("dup", 10, 0)
	s.Schedule(island)
	s.Schedule(island)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := s.Status().Total; got != 1 {
		t.Fatalf("total = %d, want 1", got)
	}
}

func TestScheduler_Reprioritize(t *testing.T) {
	gate := make(chan struct{})
	act := &orderActivator{}
	first := true
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    1,
		ActivationTimeout: time.Second,
		Activator: ActivatorFunc(func(ctx context.Context, island *Island) error {
			if first {
				first = false
				<-gate
			}
			return act.Activate(ctx, island)
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.Schedule(testIsland("blocker", 1, 0))
	s.Schedule(testIsland("was-low", 10, 1))
	s.Schedule(testIsland("was-high", 90, 2))

	if !s.Reprioritize("was-low", 200) {
		t.Fatal("Reprioritize of a pending island rejected")
	}
	if s.Reprioritize("missing", 5) {
		t.Fatal("Reprioritize of an unknown island accepted")
	}
	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	got := act.got()
	want := []string{"blocker", "was-low", "was-high"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("activation order = %v, want %v", got, want)
		}
	}

	// The island has left Pending; a further change is a no-op.
	if s.Reprioritize("was-low", 1) {
		t.Fatal("Reprioritize accepted after the island left Pending")
	}
}

func TestScheduler_ConcurrencyBound(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0
	s, err := NewScheduler(SchedulerConfig{
		MaxConcurrency:    2,
		ActivationTimeout: time.Second,
		Activator: ActivatorFunc(func(context.Context, *Island) error {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	for i := 0; i < 6; i++ {
		s.Schedule(testIsland(string(rune('a'+i)), 10, uint64(i)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
	if s.Status().Hydrated != 6 {
		t.Fatalf("hydrated = %d, want 6", s.Status().Hydrated)
	}
}

func TestScheduler_OnHydratedCallback(t *testing.T) {
	done := make(chan string, 1)
	s, err := NewScheduler(SchedulerConfig{
		ActivationTimeout: time.Second,
		Activator:         ActivatorFunc(func(context.Context, *Island) error { return nil }),
		OnHydrated:        func(island *Island) { done <- island.ID },
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.Schedule(testIsland("only", 10, 0))

	select {
	case id := <-done:
		if id != "only" {
			t.Fatalf("OnHydrated island = %q, want only", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnHydrated never fired")
	}
}

func TestScheduler_WaitImmediateWhenIdle(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{
		ActivationTimeout: time.Second,
		Activator:         ActivatorFunc(func(context.Context, *Island) error { return nil }),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait on idle scheduler: %v", err)
	}
}
