// Package kafka contains Kafka repository implementations
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/feedbot/config"
	"github.com/Conte777/feedbot/internal/domain/feed/consts"
	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/dto"
	feederrors "github.com/Conte777/feedbot/internal/domain/feed/errors"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
)

// Producer implements deps.SubscriptionEventProducer
type Producer struct {
	producer sarama.SyncProducer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewProducer creates a Kafka producer. Without configured brokers events are
// dropped by a no-op producer.
func NewProducer(cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) (deps.SubscriptionEventProducer, error) {
	if len(cfg.Brokers) == 0 {
		logger.Warn().Msg("KAFKA_BROKERS is empty, subscription events are disabled")
		return NopProducer{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Msg("Kafka producer initialized successfully")

	return NewProducerWithClient(producer, m, logger), nil
}

// NewProducerWithClient wraps an existing sarama producer
func NewProducerWithClient(producer sarama.SyncProducer, m *metrics.Metrics, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// SendSubscriptionCreated sends subscription created event to Kafka
func (p *Producer) SendSubscriptionCreated(ctx context.Context, event *dto.SubscriptionCreatedEvent) error {
	return p.sendEvent(ctx, consts.TopicSubscriptionCreated, event.UserID, event)
}

// SendSubscriptionDeleted sends subscription deleted event to Kafka
func (p *Producer) SendSubscriptionDeleted(ctx context.Context, event *dto.SubscriptionDeletedEvent) error {
	return p.sendEvent(ctx, consts.TopicSubscriptionDeleted, event.UserID, event)
}

// sendEvent sends an event keyed by user so one user's events stay ordered
func (p *Producer) sendEvent(ctx context.Context, topic string, userID int64, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(userID, 10)),
		Value: sarama.ByteEncoder(jsonData),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.metrics.RecordKafkaError(topic)
		p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to send Kafka message")
		return fmt.Errorf("%w: topic %s: %w", feederrors.ErrEventPublishingFailed, topic, err)
	}

	p.metrics.RecordKafkaMessage(topic)
	p.logger.Debug().
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Kafka message sent successfully")

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}

// NopProducer discards events
type NopProducer struct{}

func (NopProducer) SendSubscriptionCreated(context.Context, *dto.SubscriptionCreatedEvent) error {
	return nil
}

func (NopProducer) SendSubscriptionDeleted(context.Context, *dto.SubscriptionDeletedEvent) error {
	return nil
}

func (NopProducer) Close() error {
	return nil
}
