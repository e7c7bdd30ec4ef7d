package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CorpusConfig locates the on-disk document corpus.
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// AnthropicConfig configures the Anthropic API client.
type AnthropicConfig struct {
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	EnrichModel string `yaml:"enrich_model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SelectorConfig bounds the relevance-selection call.
type SelectorConfig struct {
	MaxDocs   int `yaml:"max_docs"`
	MaxTokens int `yaml:"max_tokens"`
}

// ResponderConfig bounds the response-generation call.
type ResponderConfig struct {
	MaxTokens int `yaml:"max_tokens"`
}

// SessionConfig bounds per-user conversation history.
type SessionConfig struct {
	MaxTurns int `yaml:"max_turns"`
}

// SlackConfig names the environment variables carrying Slack credentials.
type SlackConfig struct {
	BotTokenEnv  string `yaml:"bot_token_env"`
	AppTokenEnv  string `yaml:"app_token_env"`
	ChannelIDEnv string `yaml:"channel_id_env"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Selector  SelectorConfig  `yaml:"selector"`
	Responder ResponderConfig `yaml:"responder"`
	Session   SessionConfig   `yaml:"session"`
	Slack     SlackConfig     `yaml:"slack"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/helpbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/helpbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "helpbot", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "doc_info"
	}
	if cfg.Anthropic.APIKeyEnv == "" {
		cfg.Anthropic.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.Anthropic.EnrichModel == "" {
		cfg.Anthropic.EnrichModel = "claude-sonnet-4-5-20250929"
	}
	if cfg.Anthropic.TimeoutSecs == 0 {
		cfg.Anthropic.TimeoutSecs = 60
	}
	if cfg.Selector.MaxDocs == 0 {
		cfg.Selector.MaxDocs = 3
	}
	if cfg.Selector.MaxTokens == 0 {
		cfg.Selector.MaxTokens = 256
	}
	if cfg.Responder.MaxTokens == 0 {
		cfg.Responder.MaxTokens = 2048
	}
	if cfg.Session.MaxTurns == 0 {
		cfg.Session.MaxTurns = 10
	}
	if cfg.Slack.BotTokenEnv == "" {
		cfg.Slack.BotTokenEnv = "SLACK_BOT_TOKEN"
	}
	if cfg.Slack.AppTokenEnv == "" {
		cfg.Slack.AppTokenEnv = "SLACK_APP_TOKEN"
	}
	if cfg.Slack.ChannelIDEnv == "" {
		cfg.Slack.ChannelIDEnv = "CHANNEL_ID"
	}
}
