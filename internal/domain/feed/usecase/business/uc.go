// Package business implements the feed bot commands
package business

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/feedbot/internal/domain/feed/consts"
	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/dto"
	"github.com/Conte777/feedbot/internal/domain/feed/entities"
	feederrors "github.com/Conte777/feedbot/internal/domain/feed/errors"
	"github.com/Conte777/feedbot/internal/domain/feed/filter"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/feedbot/pkg/errors"
)

// UseCase implements feed bot business logic
type UseCase struct {
	store      deps.Store
	producer   deps.SubscriptionEventProducer
	translator deps.Translator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewUseCase creates a new feed use case
func NewUseCase(
	store deps.Store,
	producer deps.SubscriptionEventProducer,
	translator deps.Translator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		store:      store,
		producer:   producer,
		translator: translator,
		metrics:    m,
		logger:     logger,
	}
}

// HandleStart registers the sender and greets them
func (u *UseCase) HandleStart(ctx context.Context, req *dto.StartCommandRequest) (*dto.CommandResponse, error) {
	err := u.store.WithinTransaction(ctx, func(tx deps.Store) error {
		_, err := u.ensureUser(ctx, tx, req.UserID, req.Username)
		return err
	})
	if err != nil {
		return nil, err
	}

	name := req.FirstName
	if name == "" {
		name = req.Username
	}

	return &dto.CommandResponse{
		Message: u.translator.Text(consts.MsgStartText, name, consts.CommandHelp.Name),
	}, nil
}

// HandleHelp returns the command reference
func (u *UseCase) HandleHelp(_ context.Context) *dto.CommandResponse {
	return &dto.CommandResponse{
		Message: u.translator.Text(consts.MsgHelpText,
			consts.CommandHelp.Name,
			consts.CommandAdd.Name,
			consts.CommandDelete.Name,
			consts.CommandList.Name,
		),
	}
}

// HandleAddChannel subscribes the sender to a channel, creating the channel
// on first use
func (u *UseCase) HandleAddChannel(ctx context.Context, req *dto.ChannelCommandRequest) (*dto.CommandResponse, error) {
	if reply, ok := u.validateChannelName(req.ChannelName); !ok {
		return reply, nil
	}

	var (
		added   bool
		user    *entities.User
		channel *entities.Channel
	)
	err := u.store.WithinTransaction(ctx, func(tx deps.Store) error {
		var err error
		if user, err = u.ensureUser(ctx, tx, req.UserID, req.Username); err != nil {
			return err
		}
		if channel, err = u.ensureChannel(ctx, tx, req.ChannelName); err != nil {
			return err
		}

		exists, err := tx.SubscriptionExists(ctx, filter.SubscriptionKey{
			UserID:    filter.Eq(user.ID),
			ChannelID: filter.Eq(channel.ID),
		})
		if err != nil || exists {
			return err
		}

		// savepoint keeps the outer transaction usable after a duplicate
		err = tx.WithinTransaction(ctx, func(sp deps.Store) error {
			return sp.CreateSubscription(ctx, &entities.Subscription{UserID: user.ID, ChannelID: channel.ID})
		})
		if pkgerrors.IsConstraintViolationError(err) {
			u.logger.Warn().Err(err).
				Int64("user_id", req.UserID).
				Str("channel", req.ChannelName).
				Msg("Concurrent subscription detected")
			return nil
		}
		if err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !added {
		return &dto.CommandResponse{Message: u.translator.Text(consts.MsgYouAlreadyAddThisChannel)}, nil
	}

	u.metrics.RecordSubscriptionCreated()
	u.logger.Info().
		Int64("user_id", req.UserID).
		Str("channel", req.ChannelName).
		Msg("Subscription created")

	event := &dto.SubscriptionCreatedEvent{
		UserID:      req.UserID,
		ChannelID:   channel.ID,
		ChannelName: channel.Title,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := u.producer.SendSubscriptionCreated(ctx, event); err != nil {
		u.logger.Error().Err(err).
			Int64("user_id", req.UserID).
			Str("channel", req.ChannelName).
			Msg("Failed to publish subscription created event")
	}

	return &dto.CommandResponse{Message: u.translator.Text(consts.MsgChannelHaveAdded, req.ChannelName)}, nil
}

// HandleDeleteChannel removes a channel from the sender's feed
func (u *UseCase) HandleDeleteChannel(ctx context.Context, req *dto.ChannelCommandRequest) (*dto.CommandResponse, error) {
	if reply, ok := u.validateChannelName(req.ChannelName); !ok {
		return reply, nil
	}

	var (
		deleted bool
		channel *entities.Channel
	)
	err := u.store.WithinTransaction(ctx, func(tx deps.Store) error {
		user, err := tx.FindUser(ctx, filter.UserKey{TgID: filter.Eq(req.UserID)})
		if err != nil || user == nil {
			return err
		}
		channel, err = tx.FindChannel(ctx, filter.ChannelKey{Title: filter.Eq(req.ChannelName)})
		if err != nil || channel == nil {
			return err
		}

		key := filter.SubscriptionKey{UserID: filter.Eq(user.ID), ChannelID: filter.Eq(channel.ID)}
		exists, err := tx.SubscriptionExists(ctx, key)
		if err != nil || !exists {
			return err
		}
		if err := tx.DeleteSubscription(ctx, key); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !deleted {
		return &dto.CommandResponse{Message: u.translator.Text(consts.MsgNoSuchChannelInSubs, req.ChannelName)}, nil
	}

	u.metrics.RecordSubscriptionDeleted()
	u.logger.Info().
		Int64("user_id", req.UserID).
		Str("channel", req.ChannelName).
		Msg("Subscription deleted")

	event := &dto.SubscriptionDeletedEvent{
		UserID:      req.UserID,
		ChannelID:   channel.ID,
		ChannelName: channel.Title,
		DeletedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := u.producer.SendSubscriptionDeleted(ctx, event); err != nil {
		u.logger.Error().Err(err).
			Int64("user_id", req.UserID).
			Str("channel", req.ChannelName).
			Msg("Failed to publish subscription deleted event")
	}

	return &dto.CommandResponse{Message: u.translator.Text(consts.MsgChannelDeleted, req.ChannelName)}, nil
}

// HandleListSubscriptions lists the sender's channels
func (u *UseCase) HandleListSubscriptions(ctx context.Context, userID int64) (*dto.CommandResponse, error) {
	var titles []string
	err := u.store.WithinTransaction(ctx, func(tx deps.Store) error {
		user, err := tx.FindUser(ctx, filter.UserKey{TgID: filter.Eq(userID)})
		if err != nil || user == nil {
			return err
		}

		subs, err := tx.FindSubscriptions(ctx, filter.SubscriptionCriteria{UserID: filter.In(user.ID)})
		if err != nil || len(subs) == 0 {
			return err
		}

		ids := make([]int64, 0, len(subs))
		for _, sub := range subs {
			ids = append(ids, sub.ChannelID)
		}
		channels, err := tx.FindChannels(ctx, filter.ChannelCriteria{ID: filter.In(ids...)})
		if err != nil {
			return err
		}
		for _, ch := range channels {
			titles = append(titles, ch.Title)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(titles) == 0 {
		return &dto.CommandResponse{Message: u.translator.Text(consts.MsgSubscriptionsEmpty, consts.CommandAdd.Name)}, nil
	}
	return &dto.CommandResponse{Message: u.translator.Text(consts.MsgSubscriptionsList, strings.Join(titles, "\n"))}, nil
}

// validateChannelName returns the localized reply for a malformed name
func (u *UseCase) validateChannelName(name string) (*dto.CommandResponse, bool) {
	err := ValidateChannelName(name)
	switch err {
	case nil:
		return nil, true
	case feederrors.ErrChannelNameEmpty:
		return &dto.CommandResponse{Message: u.translator.Text(consts.MsgChannelNameIsEmpty)}, false
	default:
		return &dto.CommandResponse{Message: u.translator.Text(consts.MsgChannelNameShouldStart)}, false
	}
}

// ValidateChannelName checks that name is a non-empty @-prefixed channel name
func ValidateChannelName(name string) error {
	if name == "" {
		return feederrors.ErrChannelNameEmpty
	}
	if !strings.HasPrefix(name, consts.ChannelPrefix) {
		return feederrors.ErrChannelNameFormat
	}
	return nil
}

// ensureUser finds the user by Telegram id or creates it. A nickname taken by
// another row is dropped rather than failing the command.
func (u *UseCase) ensureUser(ctx context.Context, tx deps.Store, tgID int64, username string) (*entities.User, error) {
	user, err := tx.FindUser(ctx, filter.UserKey{TgID: filter.Eq(tgID)})
	if err != nil || user != nil {
		return user, err
	}

	user = &entities.User{TgID: &tgID}
	if username != "" {
		user.Nickname = &username
	}

	err = tx.WithinTransaction(ctx, func(sp deps.Store) error {
		return sp.CreateUser(ctx, user)
	})
	if pkgerrors.IsConstraintViolationError(err) {
		// a concurrent start may have inserted the same tg_id
		if existing, findErr := tx.FindUser(ctx, filter.UserKey{TgID: filter.Eq(tgID)}); findErr != nil || existing != nil {
			return existing, findErr
		}
		if user.Nickname == nil {
			return nil, err
		}
		u.logger.Warn().Err(err).
			Int64("user_id", tgID).
			Str("nickname", username).
			Msg("Nickname already taken, creating user without it")
		user = &entities.User{TgID: &tgID}
		err = tx.WithinTransaction(ctx, func(sp deps.Store) error {
			return sp.CreateUser(ctx, user)
		})
	}
	if err != nil {
		return nil, err
	}

	u.logger.Info().Int64("user_id", tgID).Msg("User registered")
	return user, nil
}

// ensureChannel finds the channel by title or creates it
func (u *UseCase) ensureChannel(ctx context.Context, tx deps.Store, title string) (*entities.Channel, error) {
	key := filter.ChannelKey{Title: filter.Eq(title)}
	channel, err := tx.FindChannel(ctx, key)
	if err != nil || channel != nil {
		return channel, err
	}

	channel = &entities.Channel{Title: title}
	err = tx.WithinTransaction(ctx, func(sp deps.Store) error {
		return sp.CreateChannel(ctx, channel)
	})
	if pkgerrors.IsConstraintViolationError(err) {
		existing, findErr := tx.FindChannel(ctx, key)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return channel, nil
}
