// Package feed contains the channel feed domain module
package feed

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/feedbot/config"
	httpDelivery "github.com/Conte777/feedbot/internal/domain/feed/delivery/http"
	telegramDelivery "github.com/Conte777/feedbot/internal/domain/feed/delivery/telegram"
	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	kafkaRepo "github.com/Conte777/feedbot/internal/domain/feed/repository/kafka"
	"github.com/Conte777/feedbot/internal/domain/feed/repository/memory"
	"github.com/Conte777/feedbot/internal/domain/feed/repository/postgres"
	"github.com/Conte777/feedbot/internal/domain/feed/usecase/business"
	"github.com/Conte777/feedbot/internal/infrastructure/database"
	"github.com/Conte777/feedbot/internal/infrastructure/http/server"
	"github.com/Conte777/feedbot/internal/infrastructure/i18n"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
	"github.com/Conte777/feedbot/internal/infrastructure/telegram"
)

// Module provides feed domain components for fx dependency injection
var Module = fx.Module("feed",
	// Repository
	fx.Provide(provideStore),
	fx.Provide(provideProducer),
	fx.Provide(provideTranslator),

	// UseCase
	fx.Provide(provideUseCase),

	// Delivery
	fx.Provide(provideTelegramHandlers),
	fx.Provide(provideRouter),
	fx.Provide(provideHealthHandler),

	fx.Invoke(registerRoutes),
)

// provideStore picks the storage backend from config
func provideStore(lc fx.Lifecycle, cfg *config.DatabaseConfig, logger zerolog.Logger) (deps.Store, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := database.NewPostgresDBWithLifecycle(lc, cfg, logger.With().Str("component", "database").Logger())
	if err != nil {
		return nil, err
	}
	return postgres.NewStore(db), nil
}

// provideProducer creates the subscription event producer and closes it on shutdown
func provideProducer(lc fx.Lifecycle, cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) (deps.SubscriptionEventProducer, error) {
	producer, err := kafkaRepo.NewProducer(cfg, m, logger.With().Str("component", "kafka-producer").Logger())
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})
	return producer, nil
}

func provideTranslator(l *i18n.Localizer) deps.Translator {
	return l
}

func provideUseCase(
	store deps.Store,
	producer deps.SubscriptionEventProducer,
	translator deps.Translator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *business.UseCase {
	return business.NewUseCase(store, producer, translator, m, logger.With().Str("component", "feed").Logger())
}

// provideTelegramHandlers creates Telegram handlers sending through the raw bot
func provideTelegramHandlers(
	uc *business.UseCase,
	bot *telegram.Bot,
	translator deps.Translator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(uc, bot.Raw(), translator, m, logger.With().Str("component", "handlers").Logger())
}

func provideRouter(handlers *telegramDelivery.Handlers, logger zerolog.Logger) *telegramDelivery.Router {
	return telegramDelivery.NewRouter(handlers, logger)
}

func provideHealthHandler(store deps.Store, logger zerolog.Logger) *httpDelivery.HealthHandler {
	return httpDelivery.NewHealthHandler(
		[]httpDelivery.Check{{Name: "database", Probe: store.Ping}},
		logger.With().Str("component", "health").Logger(),
	)
}

// registerRoutes wires delivery handlers into the bot and the HTTP server
func registerRoutes(
	lc fx.Lifecycle,
	bot *telegram.Bot,
	router *telegramDelivery.Router,
	handlers *telegramDelivery.Handlers,
	health *httpDelivery.HealthHandler,
	srv *server.Server,
	logger zerolog.Logger,
) {
	router.RegisterRoutes(bot.Raw())
	bot.SetDefaultHandler(handlers.HandleUnknown)
	srv.RegisterHealth(health.Handle)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := router.RegisterMenu(ctx, bot.Raw()); err != nil {
				logger.Warn().Err(err).Msg("Failed to register bot command menu")
			}
			return nil
		},
	})
}
