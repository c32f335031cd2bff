package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topics for checkout service events
const (
	TopicSessionCreated        = "checkout.session.created"
	TopicInstallmentsCompleted = "subscription.installments.completed"
	TopicContactReceived       = "contact.message.received"
)

// Event конверт события для Kafka
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher определяет интерфейс для публикации событий сервиса.
// Ключ сообщения используется Kafka для партиционирования.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload map[string]any) error
	Close() error
}

// kafkaPublisher реализует Publisher поверх sarama.SyncProducer
type kafkaPublisher struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

// NewPublisher создает и настраивает новый продюсер Kafka
func NewPublisher(brokers []string, log *zap.Logger) (Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Kafka producer initialized", zap.Strings("brokers", brokers))
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}, nil
}

// Publish публикует событие в указанный топик
func (p *kafkaPublisher) Publish(ctx context.Context, topic, key string, payload map[string]any) error {
	event := Event{
		ID:        uuid.NewString(),
		Type:      topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(topic)},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Info("Published event",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close закрывает продюсер
func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher заглушка, используется когда брокеры не сконфигурированы.
// Публикация событий для сервиса best-effort, основной флоу от нее не зависит.
type NoopPublisher struct{}

// Publish ничего не делает
func (NoopPublisher) Publish(ctx context.Context, topic, key string, payload map[string]any) error {
	return nil
}

// Close ничего не делает
func (NoopPublisher) Close() error { return nil }
