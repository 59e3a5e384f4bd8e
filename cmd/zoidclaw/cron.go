package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-de-bug/zoidclaw/internal/config"
	"github.com/max-de-bug/zoidclaw/internal/cron"
	"github.com/max-de-bug/zoidclaw/pkg/models"
)

func buildCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Manage scheduled jobs dispatched as synthetic inbound messages",
	}
	cmd.AddCommand(buildCronListCmd(), buildCronAddCmd(), buildCronRemoveCmd())
	return cmd
}

func buildCronListCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured cron jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCronStore(configPath)
			if err != nil {
				return err
			}
			jobs := store.List()
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No cron jobs configured.")
				return nil
			}
			for _, job := range jobs {
				schedule := job.CronExpr
				if job.ScheduleKind == models.ScheduleInterval {
					schedule = fmt.Sprintf("every %ds", job.IntervalSecs)
				}
				fmt.Fprintf(out, "%s\t%s\t%s -> %s:%s\tenabled=%v\n",
					job.ID, job.Name, schedule, job.Channel, job.ChatID, job.Enabled)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	return cmd
}

func buildCronAddCmd() *cobra.Command {
	var (
		configPath   string
		name         string
		cronExpr     string
		intervalSecs int
		message      string
		channel      string
		chatID       string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a cron- or interval-scheduled job",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCronStore(configPath)
			if err != nil {
				return err
			}
			job := models.CronJob{
				Name:    name,
				Message: message,
				Channel: channel,
				ChatID:  chatID,
				Enabled: true,
			}
			if cronExpr != "" {
				job.ScheduleKind = models.ScheduleCron
				job.CronExpr = cronExpr
			} else {
				job.ScheduleKind = models.ScheduleInterval
				job.IntervalSecs = intervalSecs
			}
			created, err := store.AddJob(cmd.Context(), job)
			if err != nil {
				return fmt.Errorf("add cron job: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created cron job: %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	cmd.Flags().StringVar(&name, "name", "", "Job name")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "5-field cron expression (mutually exclusive with --every)")
	cmd.Flags().IntVar(&intervalSecs, "every", 0, "Interval in seconds (mutually exclusive with --cron)")
	cmd.Flags().StringVar(&message, "message", "", "Message text dispatched when the job fires")
	cmd.Flags().StringVar(&channel, "channel", "", "Destination channel (telegram, discord, cli)")
	cmd.Flags().StringVar(&chatID, "chat-id", "", "Destination chat id")
	cmd.MarkFlagsMutuallyExclusive("cron", "every")
	return cmd
}

func buildCronRemoveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a cron job by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCronStore(configPath)
			if err != nil {
				return err
			}
			if err := store.RemoveJob(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("remove cron job: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed cron job: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	return cmd
}

func openCronStore(configPath string) (*cron.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Cron.File == "" {
		return nil, fmt.Errorf("cron.file is not configured")
	}
	return cron.NewStore(cfg.Cron.File)
}
