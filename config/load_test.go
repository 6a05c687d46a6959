package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests run from the package directory, so no mayordomo.yaml is picked up
// and values come from defaults plus the environment.

func setRequiredEnv(t *testing.T) {
	t.Setenv("MAYORDOMO_NOTION_API_KEY", "secret")
	t.Setenv("MAYORDOMO_NOTION_TASKS_DATABASE_ID", "db-tasks")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "json", cfg.Server.LogFormat)

	assert.Equal(t, 6.0, cfg.Assistant.DeadlineSeconds)
	assert.Equal(t, 5, cfg.Assistant.SessionMaxTurns)
	assert.Equal(t, 120.0, cfg.Assistant.SessionTTLSeconds)
	assert.Equal(t, 300.0, cfg.Assistant.TaskTTLSeconds)
	assert.Equal(t, 50, cfg.Assistant.TaskMaxRecords)
	assert.Equal(t, "America/Bogota", cfg.Assistant.Timezone)

	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.False(t, cfg.Calendar.Enabled)
	assert.Equal(t, "primary", cfg.Calendar.CalendarID)

	assert.Equal(t, "secret", cfg.Notion.APIKey)
	assert.Equal(t, "db-tasks", cfg.Notion.TasksDatabaseID)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAYORDOMO_SERVER_PORT", "9090")
	t.Setenv("MAYORDOMO_SERVER_LOG_LEVEL", "debug")
	t.Setenv("MAYORDOMO_ASSISTANT_DEADLINE_SECONDS", "2.5")
	t.Setenv("MAYORDOMO_MODEL_PROVIDER", "anthropic")
	t.Setenv("MAYORDOMO_CALENDAR_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 2.5, cfg.Assistant.DeadlineSeconds)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.True(t, cfg.Calendar.Enabled)
}

func TestLoadMissingNotionKey(t *testing.T) {
	t.Setenv("MAYORDOMO_NOTION_API_KEY", "")
	t.Setenv("MAYORDOMO_NOTION_TASKS_DATABASE_ID", "db-tasks")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequiredEnv(t)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "MAYORDOMO_SERVER_LOG_LEVEL", "verbose"},
		{"bad log format", "MAYORDOMO_SERVER_LOG_FORMAT", "xml"},
		{"bad provider", "MAYORDOMO_MODEL_PROVIDER", "llama"},
		{"zero turns", "MAYORDOMO_ASSISTANT_SESSION_MAX_TURNS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
