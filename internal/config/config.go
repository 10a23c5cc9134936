package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"   validate:"required"`
	Providers ProvidersConfig `mapstructure:"providers" validate:"required"`
	Worker    WorkerConfig    `mapstructure:"worker"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// StorageConfig contains the object-storage settings for uploaded media.
type StorageConfig struct {
	Region string `mapstructure:"region" validate:"required"`
	Bucket string `mapstructure:"bucket" validate:"required"`

	// PresignExpiryMinutes bounds the lifetime of generated upload URLs.
	PresignExpiryMinutes int `mapstructure:"presign_expiry_minutes" validate:"gte=1,lte=1440"`
}

// ProvidersConfig contains settings for the external AI providers.
type ProvidersConfig struct {
	// OpenAIAPIKey authenticates speech-to-text requests.
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required"`

	// GeminiAPIKey authenticates structured completion requests.
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// GeminiModel is the completion model name.
	GeminiModel string `mapstructure:"gemini_model" validate:"required"`
}

// WorkerConfig contains the claim-loop settings for the worker process.
type WorkerConfig struct {
	// Loops is the number of concurrent claim loops this process runs.
	// Each loop is a sequential claim -> dispatch -> outcome cycle.
	Loops int `mapstructure:"loops" validate:"gte=1,lte=64"`

	// PollIntervalSeconds is the sleep between claim attempts when no
	// eligible job is found.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"gte=1"`

	// ErrorPauseSeconds is the longer sleep after a store-level error.
	ErrorPauseSeconds int `mapstructure:"error_pause_seconds" validate:"gte=1"`

	// HandlerTimeoutMinutes bounds a single handler invocation. On expiry
	// the invocation is treated as a handler failure.
	HandlerTimeoutMinutes int `mapstructure:"handler_timeout_minutes" validate:"gte=1"`

	// MaxAttempts is the claim-attempt cap before a job is marked FAILED.
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=1"`

	// MetricsPort is where the worker exposes its Prometheus endpoint.
	MetricsPort int `mapstructure:"metrics_port" validate:"required,gt=0,lt=65536"`
}
