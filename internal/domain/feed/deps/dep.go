// Package deps contains interface definitions for the feed domain dependencies
package deps

import (
	"context"

	"github.com/Conte777/feedbot/internal/domain/feed/dto"
	"github.com/Conte777/feedbot/internal/domain/feed/entities"
	"github.com/Conte777/feedbot/internal/domain/feed/filter"
)

// Store is the data-access layer over users, channels and subscriptions.
//
// Find* return all rows matching every set criterion, ordered by id.
// FindUser, FindChannel and FindSubscription return nil without error when
// nothing matches.
type Store interface {
	FindUsers(ctx context.Context, criteria filter.UserCriteria) ([]entities.User, error)
	FindUser(ctx context.Context, key filter.UserKey) (*entities.User, error)
	UserExists(ctx context.Context, key filter.UserKey) (bool, error)
	CreateUser(ctx context.Context, user *entities.User) error
	// DeleteUser removes the user selected by ID, else TgID, else Nickname,
	// together with its subscriptions. An empty key is a no-op.
	DeleteUser(ctx context.Context, key filter.UserKey) error

	FindChannels(ctx context.Context, criteria filter.ChannelCriteria) ([]entities.Channel, error)
	FindChannel(ctx context.Context, key filter.ChannelKey) (*entities.Channel, error)
	ChannelExists(ctx context.Context, key filter.ChannelKey) (bool, error)
	CreateChannel(ctx context.Context, channel *entities.Channel) error
	// DeleteChannel removes the channel selected by ID, else TgID, else Title,
	// together with its subscriptions. An empty key is a no-op.
	DeleteChannel(ctx context.Context, key filter.ChannelKey) error

	FindSubscriptions(ctx context.Context, criteria filter.SubscriptionCriteria) ([]entities.Subscription, error)
	FindSubscription(ctx context.Context, key filter.SubscriptionKey) (*entities.Subscription, error)
	// SubscriptionExists requires both UserID and ChannelID.
	SubscriptionExists(ctx context.Context, key filter.SubscriptionKey) (bool, error)
	// CreateSubscription requires non-zero UserID and ChannelID.
	CreateSubscription(ctx context.Context, subscription *entities.Subscription) error
	// DeleteSubscription removes subscriptions matching all set fields of key.
	// An empty key is a no-op.
	DeleteSubscription(ctx context.Context, key filter.SubscriptionKey) error

	// WithinTransaction runs fn in one unit of work. fn receives a Store bound
	// to the transaction; returning an error rolls everything back. A nested
	// call on tx is a savepoint: its failure undoes only its own writes.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}

// SubscriptionEventProducer defines interface for sending subscription events to Kafka
type SubscriptionEventProducer interface {
	// SendSubscriptionCreated sends subscription created event
	SendSubscriptionCreated(ctx context.Context, event *dto.SubscriptionCreatedEvent) error

	// SendSubscriptionDeleted sends subscription deleted event
	SendSubscriptionDeleted(ctx context.Context, event *dto.SubscriptionDeletedEvent) error

	// Close closes the producer
	Close() error
}

// Translator renders localized messages by key
type Translator interface {
	Text(key string, args ...any) string
}
