package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port         string        `env:"PORT" envDefault:"4000"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`
	Provider     string        `env:"PROVIDER" envDefault:"fixture"`
	AdminToken   string        `env:"ADMIN_TOKEN"`

	Log         LogConfig
	Rules       RulesConfig
	ScoreServer ScoreServerConfig
	Publish     PublishConfig
	Kafka       KafkaConfig
	Archive     ArchiveConfig
	Auth        AuthConfig
	Metrics     MetricsConfig
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	Format  string `env:"LOG_FORMAT" envDefault:"text"`
	Version string `env:"SERVICE_VERSION" envDefault:"dev"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	switch c.Provider {
	case ProviderFixture:
	case ProviderScoreServer:
		if c.ScoreServer.BaseURL == "" {
			errs = append(errs, errors.New("SCORESERVER_BASE_URL is required for the scoreserver provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown PROVIDER %q", c.Provider))
	}
	if _, err := c.Rules.ScoringRules(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Archive.validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if c.Publish.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("PUBLISH_QUEUE_SIZE must be positive, got %d", c.Publish.QueueSize))
	}
	return errors.Join(errs...)
}
