package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	glinterr "github.com/glint-ui/glint/internal/errors"
	"github.com/glint-ui/glint/pkg/hydrate"
	"github.com/glint-ui/glint/pkg/vdom"
)

// Config configures the streaming server.
type Config struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string

	// Page produces the virtual node tree for a page request. Required.
	Page func(r *http.Request) *vdom.VNode

	// Activator binds behavior to rendered islands. When nil, activation
	// succeeds immediately.
	Activator hydrate.Activator

	// Resolver resolves island dependencies. Optional.
	Resolver hydrate.DependencyResolver

	// ChunkSize is the emitter flush threshold in bytes.
	ChunkSize int

	// EnableSuspense enables suspense boundary supervision.
	EnableSuspense bool

	// MaxConcurrency bounds concurrently activating islands per session.
	MaxConcurrency int

	// PriorityThreshold marks islands at or above it as eager.
	PriorityThreshold int

	// StreamTimeout bounds one streaming render. Zero means no deadline.
	StreamTimeout time.Duration

	// ActivationTimeout bounds one island's dependency wait plus
	// activation. Required.
	ActivationTimeout time.Duration

	// SessionTTL is how long a session (scheduler + replay buffer)
	// outlives its page render. Default: 5 minutes.
	SessionTTL time.Duration

	// Logger is the structured logger. When nil, a discard logger is
	// used.
	Logger *slog.Logger

	// Registry is the Prometheus registry for server metrics.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

func (c *Config) validate() error {
	if c.Page == nil {
		return glinterr.New("G004", glinterr.CategoryConfig, "Config.Page is required")
	}
	if c.ActivationTimeout <= 0 {
		return glinterr.New("G005", glinterr.CategoryConfig, "Config.ActivationTimeout is required")
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Addr == "" {
		out.Addr = ":8080"
	}
	if out.Activator == nil {
		out.Activator = hydrate.ActivatorFunc(
			func(context.Context, *hydrate.Island) error { return nil })
	}
	if out.SessionTTL <= 0 {
		out.SessionTTL = 5 * time.Minute
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out.Registry == nil {
		out.Registry = prometheus.DefaultRegisterer
	}
	return out
}
