// Package memory contains an in-process implementation of deps.Store
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/entities"
	feederrors "github.com/Conte777/feedbot/internal/domain/feed/errors"
	"github.com/Conte777/feedbot/internal/domain/feed/filter"
	pkgerrors "github.com/Conte777/feedbot/pkg/errors"
)

type state struct {
	nextUserID    int64
	nextChannelID int64
	nextSubID     int64

	// each slice is kept in id order
	users    []entities.User
	channels []entities.Channel
	subs     []entities.Subscription
}

func (s *state) clone() *state {
	return &state{
		nextUserID:    s.nextUserID,
		nextChannelID: s.nextChannelID,
		nextSubID:     s.nextSubID,
		users:         append([]entities.User(nil), s.users...),
		channels:      append([]entities.Channel(nil), s.channels...),
		subs:          append([]entities.Subscription(nil), s.subs...),
	}
}

type shared struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
}

// Store keeps entities in memory. Transactions are serialized and roll back
// by restoring a snapshot; calls made outside a transaction wait for the
// running one to finish.
type Store struct {
	*shared
	inTx bool
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{shared: &shared{state: &state{}}}
}

// serialize takes the transaction lock unless s is bound to a transaction
func (s *Store) serialize() func() {
	if s.inTx {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

var _ deps.Store = (*Store)(nil)

func (s *Store) FindUsers(ctx context.Context, criteria filter.UserCriteria) ([]entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.serialize()()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findUsers(criteria), nil
}

func (s *Store) findUsers(c filter.UserCriteria) []entities.User {
	out := []entities.User{}
	for _, u := range s.state.users {
		if c.ID.Matches(u.ID) && filter.MatchesPtr(c.TgID, u.TgID) && filter.MatchesPtr(c.Nickname, u.Nickname) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Store) FindUser(ctx context.Context, key filter.UserKey) (*entities.User, error) {
	users, err := s.FindUsers(ctx, key.Criteria())
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return &users[0], nil
}

func (s *Store) UserExists(ctx context.Context, key filter.UserKey) (bool, error) {
	user, err := s.FindUser(ctx, key)
	return user != nil, err
}

func (s *Store) CreateUser(ctx context.Context, user *entities.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.serialize()()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.state.users {
		if sameValue(u.TgID, user.TgID) {
			return pkgerrors.NewConstraintViolationError("user tg_id already exists", fmt.Errorf("tg_id %d", *user.TgID))
		}
		if sameValue(u.Nickname, user.Nickname) {
			return pkgerrors.NewConstraintViolationError("user nickname already exists", fmt.Errorf("nickname %q", *user.Nickname))
		}
	}

	s.state.nextUserID++
	user.ID = s.state.nextUserID
	s.state.users = append(s.state.users, *user)
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, key filter.UserKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
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

	defer s.serialize()()
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := map[int64]bool{}
	kept := s.state.users[:0:0]
	for _, u := range s.state.users {
		if c.ID.Matches(u.ID) && filter.MatchesPtr(c.TgID, u.TgID) && filter.MatchesPtr(c.Nickname, u.Nickname) {
			doomed[u.ID] = true
			continue
		}
		kept = append(kept, u)
	}
	s.state.users = kept
	s.dropSubscriptions(func(sub entities.Subscription) bool { return doomed[sub.UserID] })
	return nil
}

func (s *Store) FindChannels(ctx context.Context, criteria filter.ChannelCriteria) ([]entities.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.serialize()()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entities.Channel{}
	for _, ch := range s.state.channels {
		if matchChannel(criteria, ch) {
			out = append(out, ch)
		}
	}
	return out, nil
}

func matchChannel(c filter.ChannelCriteria, ch entities.Channel) bool {
	return c.ID.Matches(ch.ID) && filter.MatchesPtr(c.TgID, ch.TgID) && c.Title.Matches(ch.Title)
}

func (s *Store) FindChannel(ctx context.Context, key filter.ChannelKey) (*entities.Channel, error) {
	channels, err := s.FindChannels(ctx, key.Criteria())
	if err != nil || len(channels) == 0 {
		return nil, err
	}
	return &channels[0], nil
}

func (s *Store) ChannelExists(ctx context.Context, key filter.ChannelKey) (bool, error) {
	channel, err := s.FindChannel(ctx, key)
	return channel != nil, err
}

func (s *Store) CreateChannel(ctx context.Context, channel *entities.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := channel.Validate(); err != nil {
		return err
	}
	defer s.serialize()()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.state.channels {
		if ch.Title == channel.Title {
			return pkgerrors.NewConstraintViolationError("channel title already exists", fmt.Errorf("title %q", channel.Title))
		}
		if sameValue(ch.TgID, channel.TgID) {
			return pkgerrors.NewConstraintViolationError("channel tg_id already exists", fmt.Errorf("tg_id %d", *channel.TgID))
		}
	}

	s.state.nextChannelID++
	channel.ID = s.state.nextChannelID
	s.state.channels = append(s.state.channels, *channel)
	return nil
}

func (s *Store) DeleteChannel(ctx context.Context, key filter.ChannelKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
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

	defer s.serialize()()
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := map[int64]bool{}
	kept := s.state.channels[:0:0]
	for _, ch := range s.state.channels {
		if matchChannel(c, ch) {
			doomed[ch.ID] = true
			continue
		}
		kept = append(kept, ch)
	}
	s.state.channels = kept
	s.dropSubscriptions(func(sub entities.Subscription) bool { return doomed[sub.ChannelID] })
	return nil
}

func (s *Store) FindSubscriptions(ctx context.Context, criteria filter.SubscriptionCriteria) ([]entities.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.serialize()()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entities.Subscription{}
	for _, sub := range s.state.subs {
		if matchSubscription(criteria, sub) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func matchSubscription(c filter.SubscriptionCriteria, sub entities.Subscription) bool {
	return c.ID.Matches(sub.ID) && c.UserID.Matches(sub.UserID) && c.ChannelID.Matches(sub.ChannelID)
}

func (s *Store) FindSubscription(ctx context.Context, key filter.SubscriptionKey) (*entities.Subscription, error) {
	subs, err := s.FindSubscriptions(ctx, key.Criteria())
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

func (s *Store) SubscriptionExists(ctx context.Context, key filter.SubscriptionKey) (bool, error) {
	if !key.UserID.IsSet() {
		return false, feederrors.ErrUserIDRequired
	}
	if !key.ChannelID.IsSet() {
		return false, feederrors.ErrChannelIDRequired
	}
	sub, err := s.FindSubscription(ctx, filter.SubscriptionKey{UserID: key.UserID, ChannelID: key.ChannelID})
	return sub != nil, err
}

func (s *Store) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subscription.UserID == 0 {
		return feederrors.ErrUserIDRequired
	}
	if subscription.ChannelID == 0 {
		return feederrors.ErrChannelIDRequired
	}
	defer s.serialize()()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.findUsers(filter.UserCriteria{ID: filter.In(subscription.UserID)})) == 0 {
		return pkgerrors.NewConstraintViolationError("subscription references missing user", fmt.Errorf("user_id %d", subscription.UserID))
	}
	if !s.hasChannel(subscription.ChannelID) {
		return pkgerrors.NewConstraintViolationError("subscription references missing channel", fmt.Errorf("channel_id %d", subscription.ChannelID))
	}
	for _, sub := range s.state.subs {
		if sub.UserID == subscription.UserID && sub.ChannelID == subscription.ChannelID {
			return pkgerrors.NewConstraintViolationError("subscription already exists",
				fmt.Errorf("user_id %d, channel_id %d", sub.UserID, sub.ChannelID))
		}
	}

	s.state.nextSubID++
	subscription.ID = s.state.nextSubID
	stored := *subscription
	stored.User, stored.Channel = nil, nil
	s.state.subs = append(s.state.subs, stored)
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, key filter.SubscriptionKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !key.ID.IsSet() && !key.UserID.IsSet() && !key.ChannelID.IsSet() {
		return nil
	}
	c := key.Criteria()

	defer s.serialize()()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropSubscriptions(func(sub entities.Subscription) bool { return matchSubscription(c, sub) })
	return nil
}

// WithinTransaction serializes fn against other transactions and restores
// the previous state when fn fails. Nested calls restore only what the
// nested fn changed.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx deps.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.serialize()()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(&Store{shared: s.shared, inTx: true}); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) hasChannel(id int64) bool {
	for _, ch := range s.state.channels {
		if ch.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) dropSubscriptions(drop func(entities.Subscription) bool) {
	kept := s.state.subs[:0:0]
	for _, sub := range s.state.subs {
		if !drop(sub) {
			kept = append(kept, sub)
		}
	}
	s.state.subs = kept
}

func sameValue[T comparable](a, b *T) bool {
	return a != nil && b != nil && *a == *b
}
