package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/feedbot/config"
	"github.com/Conte777/feedbot/internal/domain/feed/consts"
	"github.com/Conte777/feedbot/internal/domain/feed/dto"
	feederrors "github.com/Conte777/feedbot/internal/domain/feed/errors"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
)

func TestProducer_SendSubscriptionCreated(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != consts.TopicSubscriptionCreated {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return errors.New("unexpected key " + string(key))
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event dto.SubscriptionCreatedEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.ChannelName != "@news" || event.ChannelID != 3 {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	})

	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := NewProducerWithClient(mock, m, zerolog.Nop())

	err := p.SendSubscriptionCreated(context.Background(), &dto.SubscriptionCreatedEvent{
		UserID:      42,
		ChannelID:   3,
		ChannelName: "@news",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessagesProduced.WithLabelValues(consts.TopicSubscriptionCreated)))
}

func TestProducer_SendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := NewProducerWithClient(mock, m, zerolog.Nop())

	err := p.SendSubscriptionDeleted(context.Background(), &dto.SubscriptionDeletedEvent{UserID: 1, ChannelID: 2})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.ErrorIs(t, err, feederrors.ErrEventPublishingFailed)
	assert.Contains(t, err.Error(), consts.TopicSubscriptionDeleted)
	require.NoError(t, p.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaProduceErrors.WithLabelValues(consts.TopicSubscriptionDeleted)))
}

func TestProducer_CanceledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := NewProducerWithClient(mock, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.SendSubscriptionCreated(ctx, &dto.SubscriptionCreatedEvent{UserID: 1})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, p.Close())
}

func TestNewProducer_WithoutBrokersIsNop(t *testing.T) {
	p, err := NewProducer(&config.KafkaConfig{}, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.IsType(t, NopProducer{}, p)
	assert.NoError(t, p.SendSubscriptionCreated(context.Background(), &dto.SubscriptionCreatedEvent{}))
	assert.NoError(t, p.Close())
}
