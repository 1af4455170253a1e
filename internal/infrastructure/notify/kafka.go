// Package notify delivers stock warnings raised after a completed sale to
// back-office consumers. Delivery is asynchronous and non-critical: a failed
// publish is logged and the sale stays completed.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"pannpos/pkg/logger"
)

// TopicStockWarnings receives out-of-stock and low-stock events.
const TopicStockWarnings = "pos.stock.warnings"

// StockEvent is the wire envelope published to Kafka.
type StockEvent struct {
	EventID   string         `json:"event_id"`
	Kind      string         `json:"kind"`
	Priority  string         `json:"priority"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// KafkaSink implements checkout.NotificationSink over a sarama SyncProducer.
type KafkaSink struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

func NewKafkaSink(brokers []string, log *logger.Logger) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("kafka_sink")
	log.Infow("kafka sink initialized", "brokers", brokers, "topic", TopicStockWarnings)

	return &KafkaSink{producer: producer, log: log}, nil
}

// Emit publishes a single stock warning. The partition key is the product id
// when present so per-product warnings stay ordered.
func (s *KafkaSink) Emit(ctx context.Context, kind, priority string, payload map[string]any) error {
	event := StockEvent{
		EventID:   uuid.NewString(),
		Kind:      kind,
		Priority:  priority,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stock event: %w", err)
	}

	key := event.EventID
	if productID, ok := payload["productId"].(string); ok && productID != "" {
		key = productID
	}

	msg := &sarama.ProducerMessage{
		Topic: TopicStockWarnings,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(kind)},
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish stock event: %w", err)
	}

	s.log.Infow("stock warning published",
		"event_id", event.EventID,
		"kind", kind,
		"priority", priority,
		"partition", partition,
		"offset", offset)
	return nil
}

func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

// LogSink is a fallback NotificationSink used when no broker is configured.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Default()
	}
	return &LogSink{log: log.WithComponent("stock_warnings")}
}

func (s *LogSink) Emit(_ context.Context, kind, priority string, payload map[string]any) error {
	s.log.Warnw("stock warning", "kind", kind, "priority", priority, "payload", payload)
	return nil
}
