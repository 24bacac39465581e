// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/feedbot/internal/domain/feed/consts"
	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/dto"
	"github.com/Conte777/feedbot/internal/domain/feed/usecase/business"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/feedbot/pkg/errors"
)

// RequestTimeout bounds a single Telegram API call
const RequestTimeout = 30 * time.Second

// Command results reported to metrics and logs
const (
	resultSuccess = "success"
	resultError   = "error"
)

// Sender sends text messages. *tgbot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Handlers contains Telegram command handlers
type Handlers struct {
	uc         *business.UseCase
	sender     Sender
	translator deps.Translator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(
	uc *business.UseCase,
	sender Sender,
	translator deps.Translator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		uc:         uc,
		sender:     sender,
		translator: translator,
		metrics:    m,
		logger:     logger,
	}
}

// HandleStart handles /start command, deep-link payloads included
func (h *Handlers) HandleStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg, ok := h.commandMessage(ctx, update, consts.CommandStart.Name)
	if !ok {
		return
	}
	start := time.Now()

	req := &dto.StartCommandRequest{
		UserID:    msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
	}

	resp, err := h.uc.HandleStart(ctx, req)
	h.reply(ctx, msg, consts.CommandStart.Name, start, resp, err)
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg, ok := h.commandMessage(ctx, update, consts.CommandHelp.Name)
	if !ok {
		return
	}
	start := time.Now()

	h.reply(ctx, msg, consts.CommandHelp.Name, start, h.uc.HandleHelp(ctx), nil)
}

// HandleAdd handles /add @channel_name
func (h *Handlers) HandleAdd(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.handleChannelCommand(ctx, update, consts.CommandAdd.Name, h.uc.HandleAddChannel)
}

// HandleDelete handles /del @channel_name
func (h *Handlers) HandleDelete(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	h.handleChannelCommand(ctx, update, consts.CommandDelete.Name, h.uc.HandleDeleteChannel)
}

// HandleList handles /list command
func (h *Handlers) HandleList(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg, ok := h.commandMessage(ctx, update, consts.CommandList.Name)
	if !ok {
		return
	}
	start := time.Now()

	resp, err := h.uc.HandleListSubscriptions(ctx, msg.From.ID)
	h.reply(ctx, msg, consts.CommandList.Name, start, resp, err)
}

// HandleUnknown answers any text no command handler matched
func (h *Handlers) HandleUnknown(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	h.sendResponse(ctx, msg.Chat.ID, h.translator.Text(consts.MsgUnknownCommand, consts.CommandHelp.Name))
}

type channelHandler func(ctx context.Context, req *dto.ChannelCommandRequest) (*dto.CommandResponse, error)

func (h *Handlers) handleChannelCommand(ctx context.Context, update *models.Update, command string, handle channelHandler) {
	msg, ok := h.commandMessage(ctx, update, command)
	if !ok {
		return
	}
	_, args := parseCommand(msg.Text)
	start := time.Now()

	req := &dto.ChannelCommandRequest{
		UserID:      msg.From.ID,
		Username:    msg.From.Username,
		ChannelName: strings.Join(args, ""),
	}

	resp, err := handle(ctx, req)
	h.reply(ctx, msg, command, start, resp, err)
}

// commandMessage returns the message when its command word is command.
// Prefix routes also catch longer words such as /delete; those get the
// unknown-command hint.
func (h *Handlers) commandMessage(ctx context.Context, update *models.Update, command string) (*models.Message, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil, false
	}
	if name, _ := parseCommand(msg.Text); name != command {
		h.HandleUnknown(ctx, nil, update)
		return nil, false
	}
	return msg, true
}

// reply sends resp or, when err is set, a generic failure message
func (h *Handlers) reply(ctx context.Context, msg *models.Message, command string, start time.Time, resp *dto.CommandResponse, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
		h.logError(msg.From.ID, command, err)
		h.sendResponse(ctx, msg.Chat.ID, h.translator.Text(consts.MsgCommandFailed))
	} else {
		h.sendResponse(ctx, msg.Chat.ID, resp.Message)
		h.logCommand(msg.From.ID, command, result)
	}

	h.metrics.RecordCommand(command, result, time.Since(start).Seconds())
}

func (h *Handlers) sendResponse(ctx context.Context, chatID int64, text string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.sender.SendMessage(msgCtx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send Telegram response")
	}
}

// parseCommand splits "/add@feedbot @a b" into "add" and its arguments
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name, fields[1:]
}

// logCommand logs successful commands
func (h *Handlers) logCommand(userID int64, command, result string) {
	h.logger.Info().Int64("user_id", userID).Str("command", command).Str("result", result).Msg("Telegram command processed")
}

// logError logs command errors
func (h *Handlers) logError(userID int64, command string, err error) {
	h.logger.Error().
		Int64("user_id", userID).
		Str("command", command).
		Str("error_type", pkgerrors.TypeOf(err).String()).
		Err(err).
		Msg("Telegram command failed")
}
