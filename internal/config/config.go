package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Store   StoreConfig   `mapstructure:"store"   validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm"     validate:"required"`
	Review  ReviewConfig  `mapstructure:"review"  validate:"required"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
	Gateway GatewayConfig `mapstructure:"gateway" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// StoreConfig selects where the vocabulary collection is persisted.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory file sqlite postgres redis"`
	// Path is the file for the file and sqlite drivers.
	Path string `mapstructure:"path"`
	// URL is the connection string for postgres or redis (redis://host:port/db).
	URL string `mapstructure:"url"`
	// Key names the collection row or redis key.
	Key string `mapstructure:"key" validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"           validate:"required"`
	// PromptTemplatePath overrides the built-in prompt when set.
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	// PacingDelay is the fixed pause between generator calls in batch work.
	PacingDelay time.Duration `mapstructure:"pacing_delay" validate:"gte=0"`
}

// Queue orders.
const (
	QueueOrderInsertion = "insertion"
	QueueOrderDue       = "due"
)

// ReviewConfig holds the lifecycle policies left open by the product.
type ReviewConfig struct {
	RestoreReviewOnUnarchive bool   `mapstructure:"restore_review_on_unarchive"`
	QueueOrder               string `mapstructure:"queue_order" validate:"required,oneof=insertion due"`
}

// JobsConfig holds scheduled background work.
type JobsConfig struct {
	// HintBackfillCron is a five-field cron expression. Empty disables the job.
	HintBackfillCron string `mapstructure:"hint_backfill_cron"`
}

// GatewayConfig configures the credential gateway.
type GatewayConfig struct {
	Port             int      `mapstructure:"port"              validate:"required,gt=0,lt=65536"`
	UpstreamURL      string   `mapstructure:"upstream_url"      validate:"required,url"`
	AllowedHosts     []string `mapstructure:"allowed_hosts"`
	CredentialHeader string   `mapstructure:"credential_header" validate:"required"`
	APIKey           string   `mapstructure:"api_key"`
	// ClientSecret enables HS256 bearer token checks when set.
	ClientSecret string `mapstructure:"client_secret" validate:"omitempty,min=32"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" validate:"gt=0"`
}
