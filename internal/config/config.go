package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Grading   GradingConfig   `mapstructure:"grading"   validate:"required"`
	Retention RetentionConfig `mapstructure:"retention" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains all vision-model integration settings. An empty API key
// is valid configuration: grading then runs on the ink-mark heuristic only.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"      validate:"required"`
	// MaxOutputTokens is the initial response budget. The truncation retry
	// doubles it once.
	MaxOutputTokens int `mapstructure:"max_output_tokens" validate:"required,gt=0"`
	// TimeoutSeconds bounds a single provider call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// GradingConfig contains grading pipeline settings.
type GradingConfig struct {
	// Mode selects the provider path: "auto" tries the vision model first
	// and falls back to the heuristic; "heuristic" skips the vision model.
	Mode string `mapstructure:"mode" validate:"required,oneof=auto heuristic"`
	// InkRatioThreshold is the red-pixel fraction above which an answer
	// region counts as marked wrong.
	InkRatioThreshold float64 `mapstructure:"ink_ratio_threshold" validate:"required,gt=0,lt=1"`
}

// RetentionConfig contains the session archival settings.
type RetentionConfig struct {
	// ArchiveAfterDays is how long a corrected session stays queryable
	// before the retention job archives it.
	ArchiveAfterDays int `mapstructure:"archive_after_days" validate:"required,gt=0"`
	// SweepIntervalMinutes is how often the retention job runs.
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"required,gt=0"`
}
