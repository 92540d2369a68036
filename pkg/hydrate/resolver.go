package hydrate

import (
	"context"
	"errors"
	"sync"
)

// DependencyResolver makes a named dependency (typically a deferred client
// module) available. Resolve blocks until the dependency is available, the
// resolution fails, or ctx is done. Resolutions are independently failable;
// one failed dependency must not poison unrelated resolutions.
type DependencyResolver interface {
	Resolve(ctx context.Context, name string) error
}

// ResolverFunc adapts a function to the DependencyResolver interface.
type ResolverFunc func(ctx context.Context, name string) error

// Resolve implements DependencyResolver.
func (f ResolverFunc) Resolve(ctx context.Context, name string) error {
	return f(ctx, name)
}

// resolution is one in-flight or completed dependency resolution.
type resolution struct {
	done chan struct{}
	err  error
}

// CachingResolver wraps a resolver so each dependency name resolves at most
// once per session; concurrent requests for the same name share one
// in-flight resolution. Outcomes, including genuine failures, are retained:
// a dependency that failed once fails every island that declares it. A
// resolution cut short by the resolving caller's own context is not
// retained; the next caller retries with its own deadline.
type CachingResolver struct {
	inner DependencyResolver

	mu      sync.Mutex
	entries map[string]*resolution
}

// NewCachingResolver creates a CachingResolver around inner.
func NewCachingResolver(inner DependencyResolver) *CachingResolver {
	return &CachingResolver{
		inner:   inner,
		entries: make(map[string]*resolution),
	}
}

// Resolve implements DependencyResolver.
func (c *CachingResolver) Resolve(ctx context.Context, name string) error {
	c.mu.Lock()
	entry, ok := c.entries[name]
	if !ok {
		entry = &resolution{done: make(chan struct{})}
		c.entries[name] = entry
		c.mu.Unlock()

		// The first caller performs the resolution with its own ctx;
		// waiters still observe their own cancellation below.
		entry.err = c.inner.Resolve(ctx, name)
		if errors.Is(entry.err, context.Canceled) || errors.Is(entry.err, context.DeadlineExceeded) {
			// This caller's deadline, not the dependency's fault.
			c.mu.Lock()
			if c.entries[name] == entry {
				delete(c.entries, name)
			}
			c.mu.Unlock()
		}
		close(entry.done)
		return entry.err
	}
	c.mu.Unlock()

	select {
	case <-entry.done:
		return entry.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
