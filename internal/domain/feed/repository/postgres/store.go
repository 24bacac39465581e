package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/entities"
	feederrors "github.com/Conte777/feedbot/internal/domain/feed/errors"
	"github.com/Conte777/feedbot/internal/domain/feed/filter"
	pkgerrors "github.com/Conte777/feedbot/pkg/errors"
)

// Store implements deps.Store on top of gorm. The DB must be opened with
// TranslateError enabled so constraint errors can be recognised.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ deps.Store = (*Store)(nil)

// where folds terms into conjunctive IN predicates.
func where(db *gorm.DB, terms []filter.Term) *gorm.DB {
	for _, term := range terms {
		if len(term.Values) == 0 {
			return db.Where(clause.Expr{SQL: "1 = 0"})
		}
		db = db.Where(clause.IN{Column: clause.Column{Name: term.Column}, Values: term.Values})
	}
	return db
}

func (r *Store) FindUsers(ctx context.Context, criteria filter.UserCriteria) ([]entities.User, error) {
	var users []entities.User
	result := where(r.db.WithContext(ctx), criteria.Terms()).Order("id").Find(&users)
	if result.Error != nil {
		return nil, dbError("find users", result.Error)
	}
	return users, nil
}

func (r *Store) FindUser(ctx context.Context, key filter.UserKey) (*entities.User, error) {
	users, err := r.FindUsers(ctx, key.Criteria())
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return &users[0], nil
}

func (r *Store) UserExists(ctx context.Context, key filter.UserKey) (bool, error) {
	return r.exists(ctx, &entities.User{}, key.Criteria().Terms())
}

func (r *Store) CreateUser(ctx context.Context, user *entities.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		return dbError("create user", result.Error)
	}
	return nil
}

func (r *Store) DeleteUser(ctx context.Context, key filter.UserKey) error {
	var c filter.UserCriteria
	switch {
	case key.ID.IsSet():
		c.ID = key.ID.AsSet()
	case key.TgID.IsSet():
		c.TgID = key.TgID.AsSet()
	case key.Nickname.IsSet():
		c.Nickname = key.Nickname.AsSet()
	default:
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := where(tx.Model(&entities.User{}), c.Terms()).Select("id")
		if err := tx.Where("user_id IN (?)", ids).Delete(&entities.Subscription{}).Error; err != nil {
			return dbError("delete user subscriptions", err)
		}
		if err := where(tx, c.Terms()).Delete(&entities.User{}).Error; err != nil {
			return dbError("delete user", err)
		}
		return nil
	})
}

func (r *Store) FindChannels(ctx context.Context, criteria filter.ChannelCriteria) ([]entities.Channel, error) {
	var channels []entities.Channel
	result := where(r.db.WithContext(ctx), criteria.Terms()).Order("id").Find(&channels)
	if result.Error != nil {
		return nil, dbError("find channels", result.Error)
	}
	return channels, nil
}

func (r *Store) FindChannel(ctx context.Context, key filter.ChannelKey) (*entities.Channel, error) {
	channels, err := r.FindChannels(ctx, key.Criteria())
	if err != nil || len(channels) == 0 {
		return nil, err
	}
	return &channels[0], nil
}

func (r *Store) ChannelExists(ctx context.Context, key filter.ChannelKey) (bool, error) {
	return r.exists(ctx, &entities.Channel{}, key.Criteria().Terms())
}

func (r *Store) CreateChannel(ctx context.Context, channel *entities.Channel) error {
	if err := channel.Validate(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Create(channel)
	if result.Error != nil {
		return dbError("create channel", result.Error)
	}
	return nil
}

func (r *Store) DeleteChannel(ctx context.Context, key filter.ChannelKey) error {
	var c filter.ChannelCriteria
	switch {
	case key.ID.IsSet():
		c.ID = key.ID.AsSet()
	case key.TgID.IsSet():
		c.TgID = key.TgID.AsSet()
	case key.Title.IsSet():
		c.Title = key.Title.AsSet()
	default:
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := where(tx.Model(&entities.Channel{}), c.Terms()).Select("id")
		if err := tx.Where("channel_id IN (?)", ids).Delete(&entities.Subscription{}).Error; err != nil {
			return dbError("delete channel subscriptions", err)
		}
		if err := where(tx, c.Terms()).Delete(&entities.Channel{}).Error; err != nil {
			return dbError("delete channel", err)
		}
		return nil
	})
}

func (r *Store) FindSubscriptions(ctx context.Context, criteria filter.SubscriptionCriteria) ([]entities.Subscription, error) {
	var subs []entities.Subscription
	result := where(r.db.WithContext(ctx), criteria.Terms()).Order("id").Find(&subs)
	if result.Error != nil {
		return nil, dbError("find subscriptions", result.Error)
	}
	return subs, nil
}

func (r *Store) FindSubscription(ctx context.Context, key filter.SubscriptionKey) (*entities.Subscription, error) {
	subs, err := r.FindSubscriptions(ctx, key.Criteria())
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

func (r *Store) SubscriptionExists(ctx context.Context, key filter.SubscriptionKey) (bool, error) {
	if !key.UserID.IsSet() {
		return false, feederrors.ErrUserIDRequired
	}
	if !key.ChannelID.IsSet() {
		return false, feederrors.ErrChannelIDRequired
	}
	c := filter.SubscriptionCriteria{UserID: key.UserID.AsSet(), ChannelID: key.ChannelID.AsSet()}
	return r.exists(ctx, &entities.Subscription{}, c.Terms())
}

func (r *Store) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	if subscription.UserID == 0 {
		return feederrors.ErrUserIDRequired
	}
	if subscription.ChannelID == 0 {
		return feederrors.ErrChannelIDRequired
	}
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(subscription)
	if result.Error != nil {
		return dbError("create subscription", result.Error)
	}
	return nil
}

func (r *Store) DeleteSubscription(ctx context.Context, key filter.SubscriptionKey) error {
	terms := key.Criteria().Terms()
	if len(terms) == 0 {
		return nil
	}
	if err := where(r.db.WithContext(ctx), terms).Delete(&entities.Subscription{}).Error; err != nil {
		return dbError("delete subscription", err)
	}
	return nil
}

// WithinTransaction runs fn inside a database transaction. Nested calls
// become savepoints.
func (r *Store) WithinTransaction(ctx context.Context, fn func(tx deps.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (r *Store) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Store) exists(ctx context.Context, model any, terms []filter.Term) (bool, error) {
	var count int64
	result := where(r.db.WithContext(ctx).Model(model), terms).Limit(1).Count(&count)
	if result.Error != nil {
		return false, dbError("check existence", result.Error)
	}
	return count > 0, nil
}

func dbError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return pkgerrors.NewConstraintViolationError(op, err)
	}
	return fmt.Errorf("%w: %s: %v", feederrors.ErrDatabaseOperation, op, err)
}
