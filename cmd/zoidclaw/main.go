// Command zoidclaw runs the ZoidClaw conversational agent: a single binary
// that loads a YAML config, wires an LLM provider fallback chain, a tool
// registry, session storage, a cron scheduler and heartbeat, and one or
// more chat transports (Telegram, Discord, local TTY) behind a shared
// message bus.
//
// Grounded on cmd/nexus/main.go's cobra root-command-tree shape, narrowed
// to this spec's command surface (serve, status, sessions, cron).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "zoidclaw",
		Short:        "ZoidClaw - a single-binary multi-channel conversational agent",
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
	}
	root.AddCommand(
		buildServeCmd(),
		buildStatusCmd(),
		buildSessionsCmd(),
		buildCronCmd(),
	)
	return root
}

// Populated by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
