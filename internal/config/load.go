package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. CREWLOG_DATABASE_URL maps to database.url.
const envPrefix = "CREWLOG"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Keys without a meaningful default still need to be registered so
	// AutomaticEnv can surface them through Unmarshal.
	v.SetDefault("database.url", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("providers.openai_api_key", "")
	v.SetDefault("providers.gemini_api_key", "")

	v.SetDefault("storage.presign_expiry_minutes", 60)

	v.SetDefault("providers.gemini_model", "gemini-2.0-flash")

	v.SetDefault("worker.loops", 1)
	v.SetDefault("worker.poll_interval_seconds", 3)
	v.SetDefault("worker.error_pause_seconds", 5)
	v.SetDefault("worker.handler_timeout_minutes", 10)
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.metrics_port", 9090)
}
