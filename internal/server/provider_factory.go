package server

import (
	"log/slog"

	"tennis-referee-service/internal/config"
	"tennis-referee-service/internal/eventlog"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/providers"
)

const kafkaSink = "kafka"

// providerComponents are the score server roles, each wrapped the way its caller needs.
type providerComponents struct {
	name       string
	catalog    providers.CatalogProvider
	authorizer providers.CourtAuthorizer
	stats      providers.StatisticsSink
	publisher  providers.EventPublisher
}

// eventPipeline is the queued fanout of overlay events plus the Kafka writer it owns.
type eventPipeline struct {
	publisher *providers.AsyncPublisher
	kafka     *eventlog.KafkaPublisher
	sinks     []string
}

// providerFactory assembles the provider with shared retry wrappers.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

// build wraps base, or the configured provider when base is nil.
func (f providerFactory) build(cfg config.Config, base providers.ScoreServer) providerComponents {
	if base == nil {
		base = selectProvider(cfg, f.logger)
	}
	name := normalizeProviderName(cfg.Provider, base)
	policy := providers.RetryPolicy{
		MaxRetries: cfg.Publish.MaxRetries,
		MaxElapsed: cfg.Publish.MaxElapsed,
	}
	return providerComponents{
		name:       name,
		catalog:    providers.NewRetryingCatalog(base, f.logger, f.metrics, name, providers.RetryPolicy{}),
		authorizer: base,
		stats:      base,
		publisher:  providers.NewRetryingPublisher(base, f.logger, f.metrics, name, policy),
	}
}

// events fans overlay events out to the score server and, when enabled, the Kafka event
// log, behind one bounded queue.
func (f providerFactory) events(cfg config.Config, comps providerComponents) eventPipeline {
	sinks := []eventlog.Sink{{Name: comps.name, Publisher: comps.publisher}}

	kafka := eventlog.NewKafkaPublisher(eventlog.KafkaConfig{
		Enabled: cfg.Kafka.Enabled,
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, f.logger)
	if kafka.Enabled() {
		sinks = append(sinks, eventlog.Sink{Name: kafkaSink, Publisher: kafka})
	}

	fanout := eventlog.NewFanout(f.logger, f.metrics, sinks...)
	return eventPipeline{
		publisher: providers.NewAsyncPublisher(fanout, f.logger, f.metrics, "events", cfg.Publish.QueueSize),
		kafka:     kafka,
		sinks:     fanout.Sinks(),
	}
}
