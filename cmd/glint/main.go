package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "glint",
		Short: "Streaming tree renderer with partial hydration",
		Long: `Glint renders virtual node trees as streamed HTML chunks and
schedules client-side activation of interactive islands.

Features:

  - Ordered chunked streaming with suspense boundaries
  - Priority-based hydration scheduling with dependency waits
  - Pre-activation event buffering and replay
  - Prometheus metrics and OpenTelemetry tracing`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
