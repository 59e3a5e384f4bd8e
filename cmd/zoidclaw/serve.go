package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/max-de-bug/zoidclaw/internal/agent"
	"github.com/max-de-bug/zoidclaw/internal/bridge"
	"github.com/max-de-bug/zoidclaw/internal/bus"
	"github.com/max-de-bug/zoidclaw/internal/config"
	"github.com/max-de-bug/zoidclaw/internal/contextbuilder"
	"github.com/max-de-bug/zoidclaw/internal/cron"
	"github.com/max-de-bug/zoidclaw/internal/heartbeat"
	"github.com/max-de-bug/zoidclaw/internal/memorynotes"
	"github.com/max-de-bug/zoidclaw/internal/metrics"
	"github.com/max-de-bug/zoidclaw/internal/provider"
	"github.com/max-de-bug/zoidclaw/internal/sessions"
	"github.com/max-de-bug/zoidclaw/internal/skills"
	"github.com/max-de-bug/zoidclaw/internal/tools"
	"github.com/max-de-bug/zoidclaw/internal/tools/builtin"
	"github.com/max-de-bug/zoidclaw/internal/transport/discord"
	"github.com/max-de-bug/zoidclaw/internal/transport/telegram"
	"github.com/max-de-bug/zoidclaw/internal/transport/tty"
)

// defaultConfigPath is used when --config is not given.
const defaultConfigPath = "zoidclaw.yaml"

func buildServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the agent, its scheduled jobs, and every enabled transport",
		Long: `serve boots the full ZoidClaw runtime:

1. Load and validate the YAML configuration.
2. Build the provider fallback chain, tool registry, and session store.
3. Wire the agent loop, cron ticker, and heartbeat onto the message bus.
4. Start every enabled transport (Telegram, Discord, local TTY).

Shutdown is graceful on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg.Logging)

	slog.Info("starting zoidclaw",
		"agent_name", cfg.Identity.AgentName,
		"providers", len(cfg.Providers),
		"workspace", cfg.Workspace.Path)

	m := metrics.New(nil)

	chain, err := buildProviderChain(cfg, m)
	if err != nil {
		return fmt.Errorf("build provider chain: %w", err)
	}

	sessionStore, err := buildSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("build session store: %w", err)
	}

	registry := buildToolRegistry(sessionStore)

	skillsDir := cfg.Workspace.SkillsDir
	if skillsDir == "" {
		skillsDir = cfg.Workspace.Path + "/skills"
	}
	skillStore := skills.New(skillsDir, slog.Default())
	if err := skillStore.Load(ctx); err != nil {
		slog.Warn("failed to load skills", "error", err)
	}

	builder := contextbuilder.New(contextbuilder.Identity{
		AgentName:     cfg.Identity.AgentName,
		WorkspacePath: cfg.Workspace.Path,
		Guidelines:    cfg.Identity.Guidelines,
	}, memorynotes.New(), skillStore)

	messageBus := bus.New(
		bus.WithLogger(slog.Default()),
		bus.WithMetrics(m),
		bus.WithBuffers(cfg.Bus.InboundBuffer, cfg.Bus.OutboundBuffer),
	)

	loop := agent.New(chain, registry, sessionStore, builder, messageBus, slog.Default(), m, agent.Config{
		MaxIterations: cfg.Model.MaxIterations,
		HistoryBudget: cfg.Model.HistoryBudget,
		MaxTokens:     cfg.Model.MaxTokens,
		Temperature:   cfg.Model.Temperature,
		Model:         cfg.Model.Model,
	})

	br := bridge.New(messageBus, loop, slog.Default())

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := skillStore.Watch(ctx); err != nil {
		slog.Warn("failed to watch skills directory", "error", err)
	}

	// Transports must subscribe before the dispatcher starts, and before
	// anything else can publish (the bridge, cron, or heartbeat), or an
	// early outbound message is silently dropped to an empty subscriber
	// table (bus.go's documented "subscribe before Start" contract).
	if err := startTransports(ctx, cfg, messageBus); err != nil {
		return fmt.Errorf("start transports: %w", err)
	}

	messageBus.Start(ctx)
	go br.Run(ctx)

	if err := startScheduledJobs(ctx, cfg, messageBus); err != nil {
		return fmt.Errorf("start scheduled jobs: %w", err)
	}

	<-ctx.Done()
	slog.Info("shutdown signal received, draining in-flight work")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	select {
	case <-messageBus.Done():
	case <-shutdownCtx.Done():
	}

	slog.Info("zoidclaw stopped")
	return nil
}

func configureLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func buildProviderChain(cfg *config.Config, m *metrics.Metrics) (*provider.FallbackChain, error) {
	providers := make([]provider.Provider, 0, len(cfg.Providers))
	for _, entry := range cfg.Providers {
		p, err := provider.New(provider.Config{
			Name:         entry.Name,
			APIKey:       entry.APIKey,
			BaseURL:      entry.BaseURL,
			DefaultModel: entry.DefaultModel,
		}, slog.Default(), m)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", entry.Name, err)
		}
		providers = append(providers, p)
	}
	return provider.NewFallbackChain(providers, slog.Default(), m), nil
}

func buildSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.Sessions.Dir == "" {
		return sessions.NewMemoryStore(), nil
	}
	return sessions.NewFileStore(cfg.Sessions.Dir, slog.Default())
}

func buildToolRegistry(store sessions.Store) *tools.Registry {
	registry := tools.NewRegistry()
	registry.Register(builtin.Clock{}, tools.IntentGeneral)
	registry.Register(builtin.Calculator{}, tools.IntentGeneral)
	registry.Register(builtin.Echo{}, tools.IntentGeneral)
	registry.Register(builtin.SessionClear{Store: store}, tools.IntentSystem)
	return registry
}

func startScheduledJobs(ctx context.Context, cfg *config.Config, b *bus.Bus) error {
	if cfg.Cron.File != "" {
		store, err := cron.NewStore(cfg.Cron.File)
		if err != nil {
			return fmt.Errorf("cron store: %w", err)
		}
		ticker := cron.NewTicker(store, b, slog.Default(), cfg.Cron.TickInterval)
		go ticker.Run(ctx)
	}

	if cfg.Heartbeat.Enabled {
		hb := heartbeat.NewBuilder().
			Interval(cfg.Heartbeat.Interval).
			Message(cfg.Heartbeat.Message).
			Channel(cfg.Heartbeat.Channel).
			ChatID(cfg.Heartbeat.ChatID).
			Build()
		go hb.Run(ctx, b, ctx.Done())
	}

	return nil
}

// startTransports constructs every enabled transport and calls its
// Register method synchronously, before returning, so every adapter is
// subscribed on the bus before the dispatcher starts or anything can
// publish — only the blocking Start loops run in background goroutines.
func startTransports(ctx context.Context, cfg *config.Config, b *bus.Bus) error {
	cliAdapter := tty.New(b, slog.Default())
	cliAdapter.Register()
	go func() {
		if err := cliAdapter.Start(ctx); err != nil {
			slog.Error("cli transport stopped", "error", err)
		}
	}()

	if cfg.Telegram.Enabled {
		adapter, err := telegram.New(telegram.Config{
			BotToken: cfg.Telegram.BotToken,
			Logger:   slog.Default(),
		}, b)
		if err != nil {
			return fmt.Errorf("telegram transport: %w", err)
		}
		adapter.Register()
		go func() {
			if err := adapter.Start(ctx); err != nil {
				slog.Error("telegram transport stopped", "error", err)
			}
		}()
	}

	if cfg.Discord.Enabled {
		adapter, err := discord.New(discord.Config{
			BotToken: cfg.Discord.BotToken,
			Logger:   slog.Default(),
		}, b)
		if err != nil {
			return fmt.Errorf("discord transport: %w", err)
		}
		adapter.Register()
		go func() {
			if err := adapter.Start(ctx); err != nil {
				slog.Error("discord transport stopped", "error", err)
			}
		}()
	}

	return nil
}
