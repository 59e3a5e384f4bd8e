package config

import "fmt"

// Validate rejects a config missing the fields every component requires
// to construct. It does not apply defaults; sanitizeConfig-style defaults
// live in the components that consume each section (e.g. agent.Config).
func (c *Config) Validate() error {
	if c.Identity.AgentName == "" {
		return fmt.Errorf("config: identity.agent_name is required")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("config: at least one provider is required")
	}
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("config: providers[%d].name is required", i)
		}
		if p.APIKey == "" {
			return fmt.Errorf("config: providers[%d].api_key is required", i)
		}
	}
	if c.Workspace.Path == "" {
		return fmt.Errorf("config: workspace.path is required")
	}
	if c.Heartbeat.Enabled {
		if c.Heartbeat.Channel == "" || c.Heartbeat.ChatID == "" {
			return fmt.Errorf("config: heartbeat.channel and heartbeat.chat_id are required when heartbeat.enabled")
		}
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("config: telegram.bot_token is required when telegram.enabled")
	}
	if c.Discord.Enabled && c.Discord.BotToken == "" {
		return fmt.Errorf("config: discord.bot_token is required when discord.enabled")
	}
	return nil
}
