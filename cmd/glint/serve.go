package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glint-ui/glint/pkg/hydrate"
	"github.com/glint-ui/glint/pkg/server"
	"github.com/glint-ui/glint/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		addr              string
		chunkSize         int
		maxConcurrency    int
		priorityThreshold int
		activationTimeout time.Duration
		streamTimeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo streaming application",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(os.Stderr, nil))

			srv, err := server.New(server.Config{
				Addr:              addr,
				Page:              demoPage,
				Activator:         demoActivator(),
				ChunkSize:         chunkSize,
				EnableSuspense:    true,
				MaxConcurrency:    maxConcurrency,
				PriorityThreshold: priorityThreshold,
				ActivationTimeout: activationTimeout,
				StreamTimeout:     streamTimeout,
				Logger:            log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 4096, "chunk flush threshold in bytes")
	cmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 4, "concurrent island activations")
	cmd.Flags().IntVar(&priorityThreshold, "priority-threshold", 0, "eager hydration priority threshold")
	cmd.Flags().DurationVar(&activationTimeout, "activation-timeout", 10*time.Second, "per-island activation timeout")
	cmd.Flags().DurationVar(&streamTimeout, "stream-timeout", 30*time.Second, "whole-stream deadline")

	return cmd
}

// demoPage builds a small page exercising streaming, suspense, and
// islands.
func demoPage(_ *http.Request) *vdom.VNode {
	slowFeed := func(ctx context.Context, _ vdom.Props) (*vdom.VNode, error) {
		select {
		case <-time.After(150 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return vdom.Ul(
			vdom.Li(vdom.Text("first story")),
			vdom.Li(vdom.Text("second story")),
		), nil
	}

	counter := func(_ context.Context, props vdom.Props) (*vdom.VNode, error) {
		return vdom.Button(vdom.Class("counter"), vdom.Textf("count: %v", props["start"])), nil
	}

	return vdom.El("html",
		vdom.El("head", vdom.El("title", vdom.Text("glint demo"))),
		vdom.El("body",
			vdom.H1(vdom.Text("glint")),
			vdom.Component("CriticalNav", nil, nil,
				vdom.Div(vdom.Class("nav", "above-fold"), vdom.Text("home"))),
			vdom.Component("Counter", counter,
				vdom.Props{"start": 0, "onclick": func() {}, "module": vdom.ModuleRef("counter.js")}),
			vdom.Suspense(
				vdom.P(vdom.Text("loading feed...")),
				vdom.Component("Feed", slowFeed, nil),
			),
		),
	)
}

// demoActivator simulates client activation latency.
func demoActivator() hydrate.Activator {
	return hydrate.ActivatorFunc(func(ctx context.Context, island *hydrate.Island) error {
		select {
		case <-time.After(20 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
