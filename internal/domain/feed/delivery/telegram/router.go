package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/feedbot/internal/domain/feed/consts"
)

// CommandRegistrar publishes the bot command menu. *tgbot.Bot satisfies it.
type CommandRegistrar interface {
	SetMyCommands(ctx context.Context, params *tgbot.SetMyCommandsParams) (bool, error)
}

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers all command handlers on the bot. Prefix matching
// lets /cmd@bot and /start payloads through; handlers check the command word.
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+consts.CommandStart.Name, tgbot.MatchTypePrefix, r.handlers.HandleStart)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+consts.CommandHelp.Name, tgbot.MatchTypePrefix, r.handlers.HandleHelp)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+consts.CommandAdd.Name, tgbot.MatchTypePrefix, r.handlers.HandleAdd)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+consts.CommandDelete.Name, tgbot.MatchTypePrefix, r.handlers.HandleDelete)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+consts.CommandList.Name, tgbot.MatchTypePrefix, r.handlers.HandleList)

	r.logger.Info().Msg("All Telegram command handlers registered successfully")
}

// RegisterMenu publishes the command list shown by Telegram clients
func (r *Router) RegisterMenu(ctx context.Context, registrar CommandRegistrar) error {
	commands := make([]models.BotCommand, 0, len(consts.AllCommands))
	for _, cmd := range consts.AllCommands {
		commands = append(commands, models.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		})
	}

	if _, err := registrar.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands}); err != nil {
		return err
	}

	r.logger.Info().Int("commands", len(commands)).Msg("Bot command menu registered")
	return nil
}
