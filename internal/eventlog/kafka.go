package eventlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/logging"
)

const headerEventType = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig selects the brokers and topic of the match event log.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// KafkaPublisher appends overlay events to a Kafka topic keyed by court, so each court's
// events stay ordered within a partition. Disabled publishers accept and discard events.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	enabled bool
}

// NewKafkaPublisher creates the event log sink. Without brokers it is a no-op.
func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logging.Info(logger, "kafka event log disabled")
		return &KafkaPublisher{logger: logger}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logging.Info(logger, "kafka event log initialized", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return newKafkaPublisher(w, cfg.Topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: logger, enabled: true}
}

// Enabled reports whether events actually reach Kafka.
func (p *KafkaPublisher) Enabled() bool {
	return p != nil && p.enabled
}

// PublishEvent writes event as JSON. No-op if disabled.
func (p *KafkaPublisher) PublishEvent(ctx context.Context, event matches.Event) error {
	if !p.Enabled() {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(event.CourtID),
		Value:   value,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(event.EventType)}},
		Time:    time.UnixMilli(event.Timestamp),
	})
}

// Close shuts down the Kafka writer.
func (p *KafkaPublisher) Close() error {
	if p != nil && p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
