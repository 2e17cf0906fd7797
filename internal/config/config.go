// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from an optional
// YAML file overridden by environment variables.
type Config struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
	DBPath      string `yaml:"db_path"`

	// PlatformBaseURL is the networking-platform root the browser agent
	// operates on.
	PlatformBaseURL string `yaml:"platform_base_url"`

	LLM      LLMConfig      `yaml:"llm"`
	Agent    AgentConfig    `yaml:"agent"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// LLMConfig controls the language-model completion collaborator.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// AgentConfig controls the browser-automation Sessions API collaborator.
// Mock swaps the remote agent for deterministic canned payloads.
type AgentConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"-"`
	AgentName       string        `yaml:"agent_name"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	CompleteTimeout time.Duration `yaml:"complete_timeout"`
	Mock            bool          `yaml:"mock"`
}

// TelegramConfig controls the optional outbound notification channel.
// Notifications are disabled when the token is empty.
type TelegramConfig struct {
	Token  string `yaml:"-"`
	ChatID int64  `yaml:"chat_id"`
}

// Load reads configuration: YAML file first (CONFIG_PATH, optional), then
// environment variable overrides, then defaults and validation.
func Load() (*Config, error) {
	cfg := &Config{}

	path := getEnv("CONFIG_PATH", "configs/config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", defaultStr(cfg.Port, "3000"))
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.DBPath = getEnv("DB_PATH", defaultStr(cfg.DBPath, "./data/jobagent.db"))
	cfg.PlatformBaseURL = getEnv("PLATFORM_BASE_URL", defaultStr(cfg.PlatformBaseURL, "https://real-networkin.vercel.app/platform"))

	cfg.LLM.BaseURL = getEnv("OPENAI_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("OPENAI_MODEL", defaultStr(cfg.LLM.Model, "gpt-4o-mini"))

	cfg.Agent.BaseURL = getEnv("AGI_BASE_URL", cfg.Agent.BaseURL)
	cfg.Agent.APIKey = getEnv("AGI_API_KEY", "")
	cfg.Agent.AgentName = getEnv("AGI_AGENT_NAME", defaultStr(cfg.Agent.AgentName, "jobagent"))
	cfg.Agent.RequestTimeout = getEnvDuration("AGI_REQUEST_TIMEOUT", defaultDur(cfg.Agent.RequestTimeout, 30*time.Second))
	cfg.Agent.PollInterval = getEnvDuration("AGI_POLL_INTERVAL", defaultDur(cfg.Agent.PollInterval, 2*time.Second))
	cfg.Agent.CompleteTimeout = getEnvDuration("AGI_COMPLETE_TIMEOUT", defaultDur(cfg.Agent.CompleteTimeout, 5*time.Minute))
	cfg.Agent.Mock = getEnvBool("AGI_MOCK", cfg.Agent.Mock)

	cfg.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", "")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.PlatformBaseURL == "" {
		return fmt.Errorf("PLATFORM_BASE_URL cannot be empty")
	}
	if !c.Agent.Mock && c.Agent.BaseURL == "" {
		return fmt.Errorf("AGI_BASE_URL is required unless AGI_MOCK is enabled")
	}
	if c.Agent.PollInterval <= 0 || c.Agent.CompleteTimeout <= 0 {
		return fmt.Errorf("agent poll interval and complete timeout must be positive")
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func defaultStr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func defaultDur(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
