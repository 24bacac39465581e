package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_UnsetMatchesEverything(t *testing.T) {
	var s Set[int64]

	assert.False(t, s.IsSet())
	assert.False(t, s.Empty())
	assert.True(t, s.Matches(42))
	assert.True(t, MatchesPtr(s, nil))
}

func TestSet_EmptyMatchesNothing(t *testing.T) {
	s := In[string]()

	assert.True(t, s.IsSet())
	assert.True(t, s.Empty())
	assert.False(t, s.Matches(""))
	assert.False(t, s.Matches("@news"))
}

func TestSet_Membership(t *testing.T) {
	s := In[int64](1, 3)

	assert.True(t, s.Matches(1))
	assert.True(t, s.Matches(3))
	assert.False(t, s.Matches(2))

	three := int64(3)
	assert.True(t, MatchesPtr(s, &three))
	assert.False(t, MatchesPtr(s, nil))
}

func TestIn_CopiesInput(t *testing.T) {
	values := []int64{1, 2}
	s := In(values...)
	values[0] = 100

	assert.Equal(t, []int64{1, 2}, s.Values())
}

func TestValue_AsSet(t *testing.T) {
	var unset Value[int64]
	assert.False(t, unset.AsSet().IsSet())

	v := Eq[int64](7)
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(7), got)
	assert.Equal(t, []int64{7}, v.AsSet().Values())
}

func TestUserKey_Criteria(t *testing.T) {
	c := UserKey{TgID: Eq[int64](10)}.Criteria()

	assert.False(t, c.ID.IsSet())
	assert.False(t, c.Nickname.IsSet())
	assert.Equal(t, []int64{10}, c.TgID.Values())
}

func TestTerms_OnlySetCriteria(t *testing.T) {
	c := ChannelCriteria{
		Title: In("@news", "@go"),
		TgID:  In[int64](),
	}

	assert.Equal(t, []Term{
		{Column: "tg_id", Values: []any{}},
		{Column: "title", Values: []any{"@news", "@go"}},
	}, c.Terms())

	assert.Empty(t, SubscriptionCriteria{}.Terms())
	assert.Equal(t, []Term{{Column: "user_id", Values: []any{int64(5)}}},
		SubscriptionKey{UserID: Eq[int64](5)}.Criteria().Terms())
}
