package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot. A nil *Metrics records nothing.
type Metrics struct {
	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	CommandPanics   prometheus.Counter

	// Subscription metrics
	SubscriptionsCreated prometheus.Counter
	SubscriptionsDeleted prometheus.Counter

	// Kafka metrics
	KafkaMessagesProduced *prometheus.CounterVec
	KafkaProduceErrors    *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return DefaultMetrics
}

// NewMetrics creates all collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedbot_commands_total",
				Help: "Total number of processed bot commands",
			},
			[]string{"command", "result"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedbot_command_duration_seconds",
				Help:    "Duration of bot command handling in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"command"},
		),
		CommandPanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedbot_command_panics_total",
			Help: "Total number of recovered handler panics",
		}),

		SubscriptionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedbot_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		}),
		SubscriptionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedbot_subscriptions_deleted_total",
			Help: "Total number of subscriptions deleted",
		}),

		KafkaMessagesProduced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedbot_kafka_messages_produced_total",
				Help: "Total number of messages produced to Kafka",
			},
			[]string{"topic"},
		),
		KafkaProduceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedbot_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"topic"},
		),
	}
}

// RecordCommand records a handled command with its outcome
func (m *Metrics) RecordCommand(command, result string, duration float64) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.CommandsTotal.WithLabelValues(command, result).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration)
}

// RecordPanic records a recovered handler panic
func (m *Metrics) RecordPanic() {
	if m == nil {
		return
	}
	m.CommandPanics.Inc()
}

// RecordSubscriptionCreated records a new subscription
func (m *Metrics) RecordSubscriptionCreated() {
	if m == nil {
		return
	}
	m.SubscriptionsCreated.Inc()
}

// RecordSubscriptionDeleted records a removed subscription
func (m *Metrics) RecordSubscriptionDeleted() {
	if m == nil {
		return
	}
	m.SubscriptionsDeleted.Inc()
}

// RecordKafkaMessage records a produced Kafka message
func (m *Metrics) RecordKafkaMessage(topic string) {
	if m == nil {
		return
	}
	m.KafkaMessagesProduced.WithLabelValues(topic).Inc()
}

// RecordKafkaError records a Kafka production error
func (m *Metrics) RecordKafkaError(topic string) {
	if m == nil {
		return
	}
	m.KafkaProduceErrors.WithLabelValues(topic).Inc()
}
