package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment variable, e.g.
// MAYORDOMO_SERVER_PORT maps to server.port.
const envPrefix = "MAYORDOMO"

// Load reads configuration from the environment and, when present, a
// mayordomo.yaml file in the working directory or /etc/mayordomo.
// Environment variables take precedence over file values. Returns a
// populated Config or an error when loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("mayordomo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/mayordomo")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No file is fine; the environment alone can carry everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")

	v.SetDefault("assistant.deadline_seconds", 6.0)
	v.SetDefault("assistant.session_max_turns", 5)
	v.SetDefault("assistant.session_ttl_seconds", 120.0)
	v.SetDefault("assistant.task_ttl_seconds", 300.0)
	v.SetDefault("assistant.task_max_records", 50)
	v.SetDefault("assistant.timezone", "America/Bogota")

	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "")
	v.SetDefault("model.openai_api_key", "")
	v.SetDefault("model.anthropic_api_key", "")

	// Empty defaults register the keys so AutomaticEnv can fill them; viper
	// only unmarshals keys it already knows about.
	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.tasks_database_id", "")
	v.SetDefault("notion.areas_database_id", "")
	v.SetDefault("notion.projects_database_id", "")
	v.SetDefault("notion.contacts_database_id", "")

	v.SetDefault("calendar.enabled", false)
	v.SetDefault("calendar.credentials_file", "credentials.json")
	v.SetDefault("calendar.token_file", "token.json")
	v.SetDefault("calendar.calendar_id", "primary")
}
