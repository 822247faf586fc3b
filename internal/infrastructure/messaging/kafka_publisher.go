package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bobbykesh/lms/internal/domain/event"
	platformkafka "github.com/bobbykesh/lms/internal/platform/kafka"
)

// KafkaEventPublisher implements port.EventPublisher by writing events to
// Kafka, keyed by aggregate id so per-aggregate ordering is preserved.
type KafkaEventPublisher struct {
	producer *platformkafka.Producer
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher over the given producer.
func NewKafkaEventPublisher(producer *platformkafka.Producer, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, logger: logger}
}

// Publish serialises and sends domain events.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages := make([]platformkafka.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"payload_size", len(payload),
		)

		messages = append(messages, platformkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
			},
		})
	}

	if err := p.producer.Publish(ctx, messages...); err != nil {
		return fmt.Errorf("publish events: %w", err)
	}
	return nil
}

// NopEventPublisher drops events. Used when Kafka is disabled.
type NopEventPublisher struct{}

// Publish discards the events.
func (NopEventPublisher) Publish(context.Context, ...event.DomainEvent) error { return nil }
