package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence and use the ENGLISHLEARN_ prefix with underscores for nesting
// (e.g. ENGLISHLEARN_DATABASE_URL, ENGLISHLEARN_LLM_GEMINI_API_KEY).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("grading.mode", "auto")
	v.SetDefault("grading.ink_ratio_threshold", 0.02)
	v.SetDefault("retention.archive_after_days", 90)
	v.SetDefault("retention.sweep_interval_minutes", 60)

	// Optional config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file values.
	v.SetEnvPrefix("ENGLISHLEARN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only surfaces env-only keys that were bound explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"llm.gemini_api_key",
		"llm.model_name",
		"llm.max_output_tokens",
		"llm.timeout_seconds",
		"grading.mode",
		"grading.ink_ratio_threshold",
		"retention.archive_after_days",
		"retention.sweep_interval_minutes",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
