package config

import "time"

// ScoreServerConfig controls how we talk to the remote score server.
type ScoreServerConfig struct {
	BaseURL string        `env:"SCORESERVER_BASE_URL"`
	APIKey  string        `env:"SCORESERVER_API_KEY"`
	Timeout time.Duration `env:"SCORESERVER_TIMEOUT" envDefault:"10s"`
}

// PublishConfig controls delivery of overlay events.
type PublishConfig struct {
	QueueSize  int           `env:"PUBLISH_QUEUE_SIZE" envDefault:"256"`
	MaxRetries uint64        `env:"PUBLISH_MAX_RETRIES" envDefault:"3"`
	MaxElapsed time.Duration `env:"PUBLISH_MAX_ELAPSED" envDefault:"15s"`
}

// KafkaConfig controls the optional event log sink.
type KafkaConfig struct {
	Enabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"tennis.match-events"`
}

// AuthConfig controls court session tokens. An empty secret disables enforcement.
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TOKEN_TTL" envDefault:"12h"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"tennis-referee-service"`
}

// Enabled reports whether mutating match routes require a court token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}
