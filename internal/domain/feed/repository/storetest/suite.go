// Package storetest contains a behavioural suite every deps.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/entities"
	"github.com/Conte777/feedbot/internal/domain/feed/filter"
	pkgerrors "github.com/Conte777/feedbot/pkg/errors"
)

// Factory returns a fresh, empty store for one test
type Factory func(t *testing.T) deps.Store

// Run executes the suite against stores produced by newStore
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s deps.Store)
	}{
		{"FindUsersConjunction", testFindUsersConjunction},
		{"FindChannelsConjunction", testFindChannelsConjunction},
		{"FindSubscriptionsConjunction", testFindSubscriptionsConjunction},
		{"EmptySetMatchesNothing", testEmptySetMatchesNothing},
		{"FindOne", testFindOne},
		{"UserAndChannelExists", testUserAndChannelExists},
		{"SubscriptionExistsRequiresBothKeys", testSubscriptionExistsRequiresBothKeys},
		{"CreateSubscription", testCreateSubscription},
		{"UniqueConstraints", testUniqueConstraints},
		{"ChannelTitleValidation", testChannelTitleValidation},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"DeleteChannelCascades", testDeleteChannelCascades},
		{"DeleteSelectorPrecedence", testDeleteSelectorPrecedence},
		{"DeleteWithoutSelectorIsNoop", testDeleteWithoutSelectorIsNoop},
		{"DeleteSubscription", testDeleteSubscription},
		{"TransactionRollback", testTransactionRollback},
		{"TransactionCommit", testTransactionCommit},
		{"NestedTransactionRollback", testNestedTransactionRollback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}

func mustUser(t *testing.T, s deps.Store, tgID int64, nickname string) entities.User {
	t.Helper()
	user := entities.User{TgID: ptr(tgID)}
	if nickname != "" {
		user.Nickname = ptr(nickname)
	}
	require.NoError(t, s.CreateUser(context.Background(), &user))
	require.NotZero(t, user.ID)
	return user
}

func mustChannel(t *testing.T, s deps.Store, title string, tgID *int64) entities.Channel {
	t.Helper()
	channel := entities.Channel{Title: title, TgID: tgID}
	require.NoError(t, s.CreateChannel(context.Background(), &channel))
	require.NotZero(t, channel.ID)
	return channel
}

func mustSubscribe(t *testing.T, s deps.Store, userID, channelID int64) entities.Subscription {
	t.Helper()
	sub := entities.Subscription{UserID: userID, ChannelID: channelID}
	require.NoError(t, s.CreateSubscription(context.Background(), &sub))
	require.NotZero(t, sub.ID)
	return sub
}

func userIDs(users []entities.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func channelIDs(channels []entities.Channel) []int64 {
	ids := make([]int64, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.ID)
	}
	return ids
}

func subscriptionIDs(subs []entities.Subscription) []int64 {
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	return ids
}

// every subset of criteria must return exactly the rows satisfying all of them
func testFindUsersConjunction(t *testing.T, s deps.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, 101, "alice")
	bob := mustUser(t, s, 102, "bob")
	anon := mustUser(t, s, 103, "")
	all := []entities.User{alice, bob, anon}

	byID := filter.In(alice.ID, bob.ID)
	byTg := filter.In[int64](102, 103)
	byNick := filter.In("alice", "bob", "carol")

	for mask := 0; mask < 8; mask++ {
		var c filter.UserCriteria
		if mask&1 != 0 {
			c.ID = byID
		}
		if mask&2 != 0 {
			c.TgID = byTg
		}
		if mask&4 != 0 {
			c.Nickname = byNick
		}

		var want []int64
		for _, u := range all {
			if c.ID.Matches(u.ID) && filter.MatchesPtr(c.TgID, u.TgID) && filter.MatchesPtr(c.Nickname, u.Nickname) {
				want = append(want, u.ID)
			}
		}

		got, err := s.FindUsers(ctx, c)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, userIDs(got), fmt.Sprintf("criteria mask %03b", mask))
	}
}

func testFindChannelsConjunction(t *testing.T, s deps.Store) {
	ctx := context.Background()
	news := mustChannel(t, s, "@news", ptr[int64](-1001))
	golang := mustChannel(t, s, "@golang", nil)
	music := mustChannel(t, s, "@music", ptr[int64](-1003))
	all := []entities.Channel{news, golang, music}

	byID := filter.In(golang.ID, music.ID)
	byTg := filter.In[int64](-1001, -1003)
	byTitle := filter.In("@news", "@golang", "@music")

	for mask := 0; mask < 8; mask++ {
		var c filter.ChannelCriteria
		if mask&1 != 0 {
			c.ID = byID
		}
		if mask&2 != 0 {
			c.TgID = byTg
		}
		if mask&4 != 0 {
			c.Title = byTitle
		}

		var want []int64
		for _, ch := range all {
			if c.ID.Matches(ch.ID) && filter.MatchesPtr(c.TgID, ch.TgID) && c.Title.Matches(ch.Title) {
				want = append(want, ch.ID)
			}
		}

		got, err := s.FindChannels(ctx, c)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, channelIDs(got), fmt.Sprintf("criteria mask %03b", mask))
	}
}

func testFindSubscriptionsConjunction(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u1 := mustUser(t, s, 1, "")
	u2 := mustUser(t, s, 2, "")
	c1 := mustChannel(t, s, "@one", nil)
	c2 := mustChannel(t, s, "@two", nil)
	all := []entities.Subscription{
		mustSubscribe(t, s, u1.ID, c1.ID),
		mustSubscribe(t, s, u1.ID, c2.ID),
		mustSubscribe(t, s, u2.ID, c2.ID),
	}

	byID := filter.In(all[0].ID, all[2].ID)
	byUser := filter.In(u1.ID)
	byChannel := filter.In(c2.ID)

	for mask := 0; mask < 8; mask++ {
		var c filter.SubscriptionCriteria
		if mask&1 != 0 {
			c.ID = byID
		}
		if mask&2 != 0 {
			c.UserID = byUser
		}
		if mask&4 != 0 {
			c.ChannelID = byChannel
		}

		var want []int64
		for _, sub := range all {
			if c.ID.Matches(sub.ID) && c.UserID.Matches(sub.UserID) && c.ChannelID.Matches(sub.ChannelID) {
				want = append(want, sub.ID)
			}
		}

		got, err := s.FindSubscriptions(ctx, c)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, subscriptionIDs(got), fmt.Sprintf("criteria mask %03b", mask))
	}
}

func testEmptySetMatchesNothing(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u := mustUser(t, s, 7, "seven")
	ch := mustChannel(t, s, "@news", nil)
	mustSubscribe(t, s, u.ID, ch.ID)

	users, err := s.FindUsers(ctx, filter.UserCriteria{TgID: filter.In[int64]()})
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = s.FindUsers(ctx, filter.UserCriteria{ID: filter.In(u.ID), Nickname: filter.In[string]()})
	require.NoError(t, err)
	assert.Empty(t, users)

	channels, err := s.FindChannels(ctx, filter.ChannelCriteria{Title: filter.In[string]()})
	require.NoError(t, err)
	assert.Empty(t, channels)

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{UserID: filter.In[int64]()})
	require.NoError(t, err)
	assert.Empty(t, subs)

	// unset criteria still return everything
	users, err = s.FindUsers(ctx, filter.UserCriteria{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testFindOne(t *testing.T, s deps.Store) {
	ctx := context.Background()

	missing, err := s.FindUser(ctx, filter.UserKey{TgID: filter.Eq[int64](42)})
	require.NoError(t, err)
	assert.Nil(t, missing)

	u := mustUser(t, s, 42, "answer")
	found, err := s.FindUser(ctx, filter.UserKey{TgID: filter.Eq[int64](42)})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
	require.NotNil(t, found.Nickname)
	assert.Equal(t, "answer", *found.Nickname)

	found, err = s.FindUser(ctx, filter.UserKey{TgID: filter.Eq[int64](42), Nickname: filter.Eq("other")})
	require.NoError(t, err)
	assert.Nil(t, found)

	ch := mustChannel(t, s, "@news", nil)
	gotChannel, err := s.FindChannel(ctx, filter.ChannelKey{Title: filter.Eq("@news")})
	require.NoError(t, err)
	require.NotNil(t, gotChannel)
	assert.Equal(t, ch.ID, gotChannel.ID)
	assert.Nil(t, gotChannel.TgID)

	gotChannel, err = s.FindChannel(ctx, filter.ChannelKey{Title: filter.Eq("@absent")})
	require.NoError(t, err)
	assert.Nil(t, gotChannel)

	// several matches: the first in storage order wins
	second := mustChannel(t, s, "@second", nil)
	first, err := s.FindChannel(ctx, filter.ChannelKey{})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, ch.ID, first.ID)
	assert.NotEqual(t, second.ID, first.ID)
}

func testUserAndChannelExists(t *testing.T, s deps.Store) {
	ctx := context.Background()

	ok, err := s.UserExists(ctx, filter.UserKey{})
	require.NoError(t, err)
	assert.False(t, ok)

	mustUser(t, s, 5, "five")

	ok, err = s.UserExists(ctx, filter.UserKey{TgID: filter.Eq[int64](5)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UserExists(ctx, filter.UserKey{Nickname: filter.Eq("five")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UserExists(ctx, filter.UserKey{TgID: filter.Eq[int64](5), Nickname: filter.Eq("six")})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UserExists(ctx, filter.UserKey{})
	require.NoError(t, err)
	assert.True(t, ok)

	mustChannel(t, s, "@news", ptr[int64](-100))

	ok, err = s.ChannelExists(ctx, filter.ChannelKey{Title: filter.Eq("@news")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ChannelExists(ctx, filter.ChannelKey{TgID: filter.Eq[int64](-200)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func testSubscriptionExistsRequiresBothKeys(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u := mustUser(t, s, 1, "")
	ch := mustChannel(t, s, "@news", nil)

	_, err := s.SubscriptionExists(ctx, filter.SubscriptionKey{UserID: filter.Eq(u.ID)})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err))

	_, err = s.SubscriptionExists(ctx, filter.SubscriptionKey{ChannelID: filter.Eq(ch.ID)})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err))

	key := filter.SubscriptionKey{UserID: filter.Eq(u.ID), ChannelID: filter.Eq(ch.ID)}
	ok, err := s.SubscriptionExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	mustSubscribe(t, s, u.ID, ch.ID)

	ok, err = s.SubscriptionExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func testCreateSubscription(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u := mustUser(t, s, 1, "")
	ch := mustChannel(t, s, "@news", nil)

	err := s.CreateSubscription(ctx, &entities.Subscription{ChannelID: ch.ID})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err))

	err = s.CreateSubscription(ctx, &entities.Subscription{UserID: u.ID})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err))

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Empty(t, subs)

	created := mustSubscribe(t, s, u.ID, ch.ID)
	got, err := s.FindSubscription(ctx, filter.SubscriptionKey{UserID: filter.Eq(u.ID), ChannelID: filter.Eq(ch.ID)})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, ch.ID, got.ChannelID)

	err = s.CreateSubscription(ctx, &entities.Subscription{UserID: u.ID + 1000, ChannelID: ch.ID})
	assert.True(t, pkgerrors.IsConstraintViolationError(err), "dangling user reference: %v", err)
}

func testUniqueConstraints(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u := mustUser(t, s, 10, "ten")
	ch := mustChannel(t, s, "@news", ptr[int64](-10))

	err := s.CreateUser(ctx, &entities.User{TgID: ptr[int64](10)})
	assert.True(t, pkgerrors.IsConstraintViolationError(err), "duplicate tg_id: %v", err)

	err = s.CreateUser(ctx, &entities.User{TgID: ptr[int64](11), Nickname: ptr("ten")})
	assert.True(t, pkgerrors.IsConstraintViolationError(err), "duplicate nickname: %v", err)

	// users without external keys do not collide
	require.NoError(t, s.CreateUser(ctx, &entities.User{}))
	require.NoError(t, s.CreateUser(ctx, &entities.User{}))

	err = s.CreateChannel(ctx, &entities.Channel{Title: "@news"})
	assert.True(t, pkgerrors.IsConstraintViolationError(err), "duplicate title: %v", err)

	err = s.CreateChannel(ctx, &entities.Channel{Title: "@other", TgID: ptr[int64](-10)})
	assert.True(t, pkgerrors.IsConstraintViolationError(err), "duplicate channel tg_id: %v", err)

	mustSubscribe(t, s, u.ID, ch.ID)
	err = s.CreateSubscription(ctx, &entities.Subscription{UserID: u.ID, ChannelID: ch.ID})
	assert.True(t, pkgerrors.IsConstraintViolationError(err), "duplicate subscription: %v", err)

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func testChannelTitleValidation(t *testing.T, s deps.Store) {
	ctx := context.Background()

	err := s.CreateChannel(ctx, &entities.Channel{})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err))

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'x'
	}
	err = s.CreateChannel(ctx, &entities.Channel{Title: string(long)})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err))

	mustChannel(t, s, string(long[:500]), nil)
}

func testDeleteUserCascades(t *testing.T, s deps.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, 1, "alice")
	bob := mustUser(t, s, 2, "bob")
	news := mustChannel(t, s, "@news", nil)
	golang := mustChannel(t, s, "@golang", nil)
	mustSubscribe(t, s, alice.ID, news.ID)
	mustSubscribe(t, s, alice.ID, golang.ID)
	kept := mustSubscribe(t, s, bob.ID, news.ID)

	require.NoError(t, s.DeleteUser(ctx, filter.UserKey{TgID: filter.Eq[int64](1)}))

	gone, err := s.FindUser(ctx, filter.UserKey{ID: filter.Eq(alice.ID)})
	require.NoError(t, err)
	assert.Nil(t, gone)

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []int64{kept.ID}, subscriptionIDs(subs))

	channels, err := s.FindChannels(ctx, filter.ChannelCriteria{})
	require.NoError(t, err)
	assert.Len(t, channels, 2)
}

func testDeleteChannelCascades(t *testing.T, s deps.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, 1, "")
	bob := mustUser(t, s, 2, "")
	news := mustChannel(t, s, "@news", nil)
	golang := mustChannel(t, s, "@golang", nil)
	mustSubscribe(t, s, alice.ID, news.ID)
	mustSubscribe(t, s, bob.ID, news.ID)
	kept := mustSubscribe(t, s, bob.ID, golang.ID)

	require.NoError(t, s.DeleteChannel(ctx, filter.ChannelKey{Title: filter.Eq("@news")}))

	ok, err := s.ChannelExists(ctx, filter.ChannelKey{ID: filter.Eq(news.ID)})
	require.NoError(t, err)
	assert.False(t, ok)

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []int64{kept.ID}, subscriptionIDs(subs))

	users, err := s.FindUsers(ctx, filter.UserCriteria{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func testDeleteSelectorPrecedence(t *testing.T, s deps.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, 1, "alice")
	bob := mustUser(t, s, 2, "bob")

	// id wins over tg_id and nickname
	require.NoError(t, s.DeleteUser(ctx, filter.UserKey{
		ID:       filter.Eq(alice.ID),
		TgID:     filter.Eq[int64](2),
		Nickname: filter.Eq("bob"),
	}))

	users, err := s.FindUsers(ctx, filter.UserCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, userIDs(users))

	news := mustChannel(t, s, "@news", ptr[int64](-1))
	golang := mustChannel(t, s, "@golang", ptr[int64](-2))

	// tg_id wins over title
	require.NoError(t, s.DeleteChannel(ctx, filter.ChannelKey{
		TgID:  filter.Eq[int64](-2),
		Title: filter.Eq("@news"),
	}))

	channels, err := s.FindChannels(ctx, filter.ChannelCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []int64{news.ID}, channelIDs(channels))
	assert.NotContains(t, channelIDs(channels), golang.ID)
}

func testDeleteWithoutSelectorIsNoop(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u := mustUser(t, s, 1, "")
	ch := mustChannel(t, s, "@news", nil)
	mustSubscribe(t, s, u.ID, ch.ID)

	require.NoError(t, s.DeleteUser(ctx, filter.UserKey{}))
	require.NoError(t, s.DeleteChannel(ctx, filter.ChannelKey{}))
	require.NoError(t, s.DeleteSubscription(ctx, filter.SubscriptionKey{}))

	users, err := s.FindUsers(ctx, filter.UserCriteria{})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	channels, err := s.FindChannels(ctx, filter.ChannelCriteria{})
	require.NoError(t, err)
	assert.Len(t, channels, 1)

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func testDeleteSubscription(t *testing.T, s deps.Store) {
	ctx := context.Background()
	u1 := mustUser(t, s, 1, "")
	u2 := mustUser(t, s, 2, "")
	news := mustChannel(t, s, "@news", nil)
	golang := mustChannel(t, s, "@golang", nil)
	mustSubscribe(t, s, u1.ID, news.ID)
	keepA := mustSubscribe(t, s, u1.ID, golang.ID)
	keepB := mustSubscribe(t, s, u2.ID, news.ID)

	require.NoError(t, s.DeleteSubscription(ctx, filter.SubscriptionKey{
		UserID:    filter.Eq(u1.ID),
		ChannelID: filter.Eq(news.ID),
	}))

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{keepA.ID, keepB.ID}, subscriptionIDs(subs))

	// a single key removes every subscription of that user
	require.NoError(t, s.DeleteSubscription(ctx, filter.SubscriptionKey{UserID: filter.Eq(u1.ID)}))

	subs, err = s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []int64{keepB.ID}, subscriptionIDs(subs))
}

func testTransactionRollback(t *testing.T, s deps.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(tx deps.Store) error {
		u := entities.User{TgID: ptr[int64](1)}
		if err := tx.CreateUser(ctx, &u); err != nil {
			return err
		}
		ch := entities.Channel{Title: "@news"}
		if err := tx.CreateChannel(ctx, &ch); err != nil {
			return err
		}
		if err := tx.CreateSubscription(ctx, &entities.Subscription{UserID: u.ID, ChannelID: ch.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	users, err := s.FindUsers(ctx, filter.UserCriteria{})
	require.NoError(t, err)
	assert.Empty(t, users)

	channels, err := s.FindChannels(ctx, filter.ChannelCriteria{})
	require.NoError(t, err)
	assert.Empty(t, channels)

	subs, err := s.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func testTransactionCommit(t *testing.T, s deps.Store) {
	ctx := context.Background()

	err := s.WithinTransaction(ctx, func(tx deps.Store) error {
		u := entities.User{TgID: ptr[int64](1)}
		if err := tx.CreateUser(ctx, &u); err != nil {
			return err
		}
		// writes are visible to later reads in the same unit of work
		found, err := tx.FindUser(ctx, filter.UserKey{TgID: filter.Eq[int64](1)})
		if err != nil {
			return err
		}
		if found == nil {
			return errors.New("user not visible inside transaction")
		}

		// a failed nested unit does not poison the outer one
		dup := tx.WithinTransaction(ctx, func(inner deps.Store) error {
			return inner.CreateUser(ctx, &entities.User{TgID: ptr[int64](1)})
		})
		if !pkgerrors.IsConstraintViolationError(dup) {
			return fmt.Errorf("expected constraint violation, got %v", dup)
		}

		return tx.CreateChannel(ctx, &entities.Channel{Title: "@news"})
	})
	require.NoError(t, err)

	ok, err := s.UserExists(ctx, filter.UserKey{TgID: filter.Eq[int64](1)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ChannelExists(ctx, filter.ChannelKey{Title: filter.Eq("@news")})
	require.NoError(t, err)
	assert.True(t, ok)
}

func testNestedTransactionRollback(t *testing.T, s deps.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(tx deps.Store) error {
		if err := tx.CreateUser(ctx, &entities.User{TgID: ptr[int64](1)}); err != nil {
			return err
		}

		inner := tx.WithinTransaction(ctx, func(inner deps.Store) error {
			if err := inner.CreateUser(ctx, &entities.User{TgID: ptr[int64](9)}); err != nil {
				return err
			}
			if err := inner.CreateChannel(ctx, &entities.Channel{Title: "@inner"}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(inner, boom) {
			return fmt.Errorf("expected nested error, got %v", inner)
		}

		// the nested writes are gone before the outer unit continues
		gone, err := tx.FindUser(ctx, filter.UserKey{TgID: filter.Eq[int64](9)})
		if err != nil {
			return err
		}
		if gone != nil {
			return errors.New("nested write visible after its rollback")
		}

		return tx.CreateChannel(ctx, &entities.Channel{Title: "@outer"})
	})
	require.NoError(t, err)

	users, err := s.FindUsers(ctx, filter.UserCriteria{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].TgID)
	assert.Equal(t, int64(1), *users[0].TgID)

	channels, err := s.FindChannels(ctx, filter.ChannelCriteria{})
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "@outer", channels[0].Title)
}
