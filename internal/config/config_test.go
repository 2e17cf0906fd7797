package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "PORT", "FRONTEND_URL", "DB_PATH", "PLATFORM_BASE_URL",
		"OPENAI_BASE_URL", "OPENAI_MODEL",
		"AGI_BASE_URL", "AGI_API_KEY", "AGI_AGENT_NAME",
		"AGI_REQUEST_TIMEOUT", "AGI_POLL_INTERVAL", "AGI_COMPLETE_TIMEOUT", "AGI_MOCK",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGI_MOCK", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "./data/jobagent.db", cfg.DBPath)
	assert.Equal(t, "https://real-networkin.vercel.app/platform", cfg.PlatformBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "jobagent", cfg.Agent.AgentName)
	assert.Equal(t, 2*time.Second, cfg.Agent.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Agent.CompleteTimeout)
	assert.True(t, cfg.Agent.Mock)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRequiresAgentEndpointUnlessMocked(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGI_BASE_URL")

	t.Setenv("AGI_BASE_URL", "https://agent.example")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4000"
db_path: /tmp/from-yaml.db
agent:
  mock: true
  agent_name: yaml-agent
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port, "environment wins over the file")
	assert.Equal(t, "/tmp/from-yaml.db", cfg.DBPath)
	assert.True(t, cfg.Agent.Mock)
	assert.Equal(t, "yaml-agent", cfg.Agent.AgentName)
}

func TestLoadTelegramValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGI_MOCK", "1")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")

	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), cfg.Telegram.ChatID)
}
