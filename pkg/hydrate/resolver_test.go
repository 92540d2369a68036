package hydrate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCachingResolver_ResolvesOncePerName(t *testing.T) {
	var calls atomic.Int32
	inner := ResolverFunc(func(_ context.Context, name string) error {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	c := NewCachingResolver(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Resolve(context.Background(), "charts.js"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("inner calls = %d, want 1", got)
	}
}

func TestCachingResolver_IndependentNames(t *testing.T) {
	var calls atomic.Int32
	c := NewCachingResolver(ResolverFunc(func(_ context.Context, name string) error {
		calls.Add(1)
		return nil
	}))

	for _, name := range []string{"a.js", "b.js", "a.js"} {
		if err := c.Resolve(context.Background(), name); err != nil {
			t.Fatalf("Resolve(%s): %v", name, err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("inner calls = %d, want 2", got)
	}
}

// Failures are retained: a dependency that failed once fails every later
// caller without a retry.
func TestCachingResolver_RetainsFailure(t *testing.T) {
	boom := errors.New("404")
	var calls atomic.Int32
	c := NewCachingResolver(ResolverFunc(func(context.Context, string) error {
		calls.Add(1)
		return boom
	}))

	for i := 0; i < 3; i++ {
		if err := c.Resolve(context.Background(), "gone.js"); !errors.Is(err, boom) {
			t.Fatalf("Resolve %d = %v, want retained failure", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("inner calls = %d, want 1", got)
	}
}

// A resolution aborted by the first caller's own deadline is not retained:
// one island's tight activation timeout must not poison the dependency for
// every later island in the session.
func TestCachingResolver_RetriesAfterCallerTimeout(t *testing.T) {
	var calls atomic.Int32
	c := NewCachingResolver(ResolverFunc(func(ctx context.Context, _ string) error {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.Resolve(ctx, "slow.js"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("first Resolve = %v, want deadline exceeded", err)
	}

	if err := c.Resolve(context.Background(), "slow.js"); err != nil {
		t.Fatalf("second Resolve = %v, want retry to succeed", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("inner calls = %d, want 2", got)
	}
}

// A waiter observes its own cancellation even while the first caller's
// resolution is still in flight.
func TestCachingResolver_WaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	c := NewCachingResolver(ResolverFunc(func(context.Context, string) error {
		<-release
		return nil
	}))

	started := make(chan struct{})
	go func() {
		close(started)
		c.Resolve(context.Background(), "slow.js")
	}()
	<-started
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Resolve(ctx, "slow.js")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("waiter err = %v, want deadline exceeded", err)
	}
	close(release)
}
