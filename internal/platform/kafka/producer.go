package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Config holds Kafka connection parameters.
type Config struct {
	Brokers []string
	Topic   string
}

// Message is one record to publish.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer wraps a kafka-go writer for a single topic.
type Producer struct {
	writer *kafkago.Writer
	topic  string
}

// NewProducer creates a Producer for the configured topic.
func NewProducer(cfg Config) *Producer {
	return &Producer{
		topic: cfg.Topic,
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
	}
}

// Publish writes the messages to the topic.
func (p *Producer) Publish(ctx context.Context, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	records := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		record := kafkago.Message{
			Key:   msg.Key,
			Value: msg.Value,
		}
		for k, v := range msg.Headers {
			record.Headers = append(record.Headers, kafkago.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
		records = append(records, record)
	}

	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
