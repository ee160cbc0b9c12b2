package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("configuration validation failed")

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LEXICON"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.path", "data/vocabulary.json")
	v.SetDefault("store.url", "")
	v.SetDefault("store.key", "vocabulary")

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.pacing_delay", "2s")

	v.SetDefault("review.restore_review_on_unarchive", false)
	v.SetDefault("review.queue_order", QueueOrderInsertion)

	v.SetDefault("jobs.hint_backfill_cron", "")

	v.SetDefault("gateway.port", 8081)
	v.SetDefault("gateway.upstream_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gateway.allowed_hosts", []string{})
	v.SetDefault("gateway.credential_header", "x-goog-api-key")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.client_secret", "")
	v.SetDefault("gateway.max_body_bytes", 1<<20)
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory and LEXICON_* environment variables, in increasing order
// of precedence. A .env file, if present, is loaded into the environment first.
func Load() (*Config, error) {
	return load(".")
}

func load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field store requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("%w: store.path is required for the %s driver", ErrInvalidConfig, c.Store.Driver)
		}
	case DriverPostgres, DriverRedis:
		if strings.TrimSpace(c.Store.URL) == "" {
			return fmt.Errorf("%w: store.url is required for the %s driver", ErrInvalidConfig, c.Store.Driver)
		}
	}

	return nil
}
