package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-de-bug/zoidclaw/internal/config"
	"github.com/max-de-bug/zoidclaw/internal/sessions"
)

func buildSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage persisted conversation sessions",
	}
	cmd.AddCommand(buildSessionsListCmd(), buildSessionsClearCmd())
	return cmd
}

func buildSessionsListCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known session keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore(configPath)
			if err != nil {
				return err
			}
			summaries, err := store.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(out, "%s\tupdated %s\n", s.Key, s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	return cmd
}

func buildSessionsClearCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "clear <key>",
		Short: "Delete a single session by its channel:chat_id key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore(configPath)
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	return cmd
}

func openSessionStore(configPath string) (sessions.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return buildSessionStore(cfg)
}
