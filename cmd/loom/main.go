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

const banner = `
  ╦  ┌─┐┌─┐┌┬┐
  ║  │ ││ ││││
  ╩═╝└─┘└─┘┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Tree diffing engine for Go-driven displays",
		Long: `Loom renders immutable view trees onto a host display and keeps the
display in sync by diffing successive trees into minimal edit scripts.

  • Immutable virtual trees with keyed reconciliation
  • Thunks for skipping unchanged subtrees
  • Remote displays over WebSocket with a compact binary protocol
  • Prometheus metrics and OpenTelemetry traces per update cycle`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Loom ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("\033[36m•\033[0m %s\n", fmt.Sprintf(format, args...))
}
