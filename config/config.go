// Package config loads and validates service configuration from the
// environment (prefix MAYORDOMO_) and an optional YAML file. Values only;
// consumers receive the populated struct, never the loading mechanism.
package config

// Config holds all application configuration grouped by concern.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Model     ModelConfig     `mapstructure:"model"`
	Notion    NotionConfig    `mapstructure:"notion"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
}

// ServerConfig contains HTTP transport and logging settings.
type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`
}

// AssistantConfig contains the core timing knobs: the caller-facing
// deadline, the session window and TTL, and task retention.
type AssistantConfig struct {
	DeadlineSeconds   float64 `mapstructure:"deadline_seconds" validate:"gte=0"`
	SessionMaxTurns   int     `mapstructure:"session_max_turns" validate:"gte=1"`
	SessionTTLSeconds float64 `mapstructure:"session_ttl_seconds" validate:"gte=0"`
	TaskTTLSeconds    float64 `mapstructure:"task_ttl_seconds" validate:"gte=0"`
	TaskMaxRecords    int     `mapstructure:"task_max_records" validate:"gte=0"`
	Timezone          string  `mapstructure:"timezone"`
}

// ModelConfig selects and configures the LLM provider.
type ModelConfig struct {
	Provider        string `mapstructure:"provider" validate:"oneof=openai anthropic"`
	Name            string `mapstructure:"name"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
}

// NotionConfig contains the integration token and database ids.
type NotionConfig struct {
	APIKey             string `mapstructure:"api_key" validate:"required"`
	TasksDatabaseID    string `mapstructure:"tasks_database_id" validate:"required"`
	AreasDatabaseID    string `mapstructure:"areas_database_id"`
	ProjectsDatabaseID string `mapstructure:"projects_database_id"`
	ContactsDatabaseID string `mapstructure:"contacts_database_id"`
}

// CalendarConfig contains Google Calendar sync settings. When disabled the
// assistant skips event sync entirely.
type CalendarConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	CalendarID      string `mapstructure:"calendar_id"`
}
