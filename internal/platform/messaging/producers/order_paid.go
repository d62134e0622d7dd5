package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/membership-loyalty-core/internal/config"
)

// OrderPaidProducer publishes order-paid events keyed by order id. Keying by
// order id keeps redeliveries of the same order on one partition so the
// consumer sees them in order.
type OrderPaidProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewOrderPaidProducer creates the producer and ensures the topic exists
func NewOrderPaidProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*OrderPaidProducer, error) {
	if cfg.OrderPaidTopic == "" {
		return nil, fmt.Errorf("kafka order paid topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for order paid producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.OrderPaidTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure order paid topic %s exists: %w", cfg.OrderPaidTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.OrderPaidTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.OrderPaidTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.OrderPaidTopic, "count", len(messages))
			}
		},
	}

	return &OrderPaidProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.OrderPaidTopic,
	}, nil
}

func (p *OrderPaidProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for order paid producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish order paid event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published order paid event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *OrderPaidProducer) Close() error {
	p.logger.Info("Closing order paid Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
