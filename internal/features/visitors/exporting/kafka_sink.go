package visitors_exporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"github.com/segmentio/kafka-go"
)

const (
	kafkaBatchIDHeader   = "batch-id"
	kafkaWriteTimeout    = 10 * time.Second
	kafkaMaxAttempts     = 3
	kafkaMaxBatchRecords = 100
)

// KafkaSink publishes one message per record, keyed by the visitor IP so
// that visits of one organization land on the same partition.
type KafkaSink struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) *KafkaSink {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           kafkaWriteTimeout,
		ReadTimeout:            kafkaWriteTimeout,
		MaxAttempts:            kafkaMaxAttempts,
		BatchSize:              kafkaMaxBatchRecords,
	}

	return &KafkaSink{
		writer: writer,
		logger: logger,
	}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Write(ctx context.Context, batch *visitors_core.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	messages, err := buildKafkaMessages(batch)
	if err != nil {
		return err
	}

	if err := s.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish batch %s to %s: %w", batch.ID, s.writer.Topic, err)
	}

	s.logger.Debug("Batch published to Kafka",
		slog.String("topic", s.writer.Topic),
		slog.String("batchId", batch.ID.String()),
		slog.Int("count", len(messages)),
	)

	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func buildKafkaMessages(batch *visitors_core.Batch) ([]kafka.Message, error) {
	messages := make([]kafka.Message, 0, batch.Len())
	batchID := []byte(batch.ID.String())

	for i, record := range batch.Records {
		value, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i, err)
		}

		messages = append(messages, kafka.Message{
			Key:     []byte(record.IP),
			Value:   value,
			Headers: []kafka.Header{{Key: kafkaBatchIDHeader, Value: batchID}},
			Time:    batch.GeneratedAt,
		})
	}

	return messages, nil
}
