// Package config loads and validates ZoidClaw's YAML configuration: the
// agent's identity, its provider chain, transport adapters, session and
// cron storage, and the bus's buffer sizing.
//
// Grounded on internal/config/config.go of the teacher (a root Config
// struct composed of one sub-struct per concern, yaml-tagged), narrowed to
// the concerns this spec's components actually read.
package config

import "time"

// Config is the root configuration document.
type Config struct {
	Identity  IdentityConfig  `yaml:"identity"`
	Providers []ProviderEntry `yaml:"providers"`
	Model     ModelConfig     `yaml:"model"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Cron      CronConfig      `yaml:"cron"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Bus       BusConfig       `yaml:"bus"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Discord   DiscordConfig   `yaml:"discord"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IdentityConfig names the agent and its operating guidelines, surfaced
// in the context builder's identity block.
type IdentityConfig struct {
	AgentName  string `yaml:"agent_name"`
	Guidelines string `yaml:"guidelines"`
}

// ProviderEntry configures one provider in the fallback chain, in the
// order they should be tried.
type ProviderEntry struct {
	Name         string `yaml:"name"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url,omitempty"`
	DefaultModel string `yaml:"default_model"`
}

// ModelConfig bounds a single agent turn's provider call.
type ModelConfig struct {
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	MaxIterations  int     `yaml:"max_iterations"`
	HistoryBudget  int     `yaml:"history_budget"`
}

// WorkspaceConfig points at the directory the context builder reads
// bootstrap files and skills from.
type WorkspaceConfig struct {
	Path       string `yaml:"path"`
	SkillsDir  string `yaml:"skills_dir"`
}

// SessionsConfig configures the on-disk session store.
type SessionsConfig struct {
	Dir string `yaml:"dir"`
}

// CronConfig points at the cron job store's backing file.
type CronConfig struct {
	File         string        `yaml:"file"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// HeartbeatConfig optionally enables a single heartbeat beat.
type HeartbeatConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Message  string        `yaml:"message"`
	Channel  string        `yaml:"channel"`
	ChatID   string        `yaml:"chat_id"`
}

// BusConfig overrides the message bus's channel bounds.
type BusConfig struct {
	InboundBuffer  int `yaml:"inbound_buffer"`
	OutboundBuffer int `yaml:"outbound_buffer"`
}

// TelegramConfig configures the Telegram transport adapter.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
}

// DiscordConfig configures the Discord transport adapter.
type DiscordConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
}

// LoggingConfig configures the root slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
