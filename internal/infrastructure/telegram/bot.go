// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// PanicObserver is notified about recovered handler panics
type PanicObserver interface {
	RecordPanic()
}

// Bot wraps the Telegram bot for infrastructure layer
type Bot struct {
	bot      *tgbot.Bot
	fallback atomic.Pointer[tgbot.HandlerFunc]
	logger   zerolog.Logger
}

// NewBot creates a new Telegram bot wrapper. Every handler runs behind a
// recover middleware so a failing command never stops update polling.
func NewBot(token string, observer PanicObserver, logger zerolog.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	b := &Bot{logger: logger}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(b.defaultHandler),
		tgbot.WithMiddlewares(Recoverer(observer, logger)),
	}

	bot, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.bot = bot

	logger.Info().Msg("Telegram bot created successfully")

	return b, nil
}

// Raw returns the underlying telegram bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// SetDefaultHandler sets the handler for updates no route matched
func (b *Bot) SetDefaultHandler(handler tgbot.HandlerFunc) {
	b.fallback.Store(&handler)
}

// Start starts the bot (blocking call)
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info().Msg("Starting Telegram bot...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	b.logger.Info().Msg("Stopping Telegram bot...")
	return nil
}

func (b *Bot) defaultHandler(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if h := b.fallback.Load(); h != nil {
		(*h)(ctx, bot, update)
	}
}

// Recoverer returns middleware that logs and swallows handler panics
func Recoverer(observer PanicObserver, logger zerolog.Logger) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					if observer != nil {
						observer.RecordPanic()
					}
					logger.Error().
						Int64("update_id", update.ID).
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("Telegram handler panicked")
				}
			}()
			next(ctx, bot, update)
		}
	}
}
