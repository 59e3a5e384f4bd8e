package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-de-bug/zoidclaw/internal/config"
)

func buildStatusCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the loaded configuration's effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Agent:      %s\n", cfg.Identity.AgentName)
			fmt.Fprintf(out, "Providers:  %d configured\n", len(cfg.Providers))
			for _, p := range cfg.Providers {
				fmt.Fprintf(out, "  - %s (model %s)\n", p.Name, p.DefaultModel)
			}
			fmt.Fprintf(out, "Workspace:  %s\n", cfg.Workspace.Path)
			fmt.Fprintf(out, "Sessions:   %s\n", describeOrDefault(cfg.Sessions.Dir, "in-memory"))
			fmt.Fprintf(out, "Cron file:  %s\n", describeOrDefault(cfg.Cron.File, "disabled"))
			fmt.Fprintf(out, "Heartbeat:  %v\n", cfg.Heartbeat.Enabled)
			fmt.Fprintf(out, "Telegram:   %v\n", cfg.Telegram.Enabled)
			fmt.Fprintf(out, "Discord:    %v\n", cfg.Discord.Enabled)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	return cmd
}

func describeOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
