package filter

// UserCriteria selects users. Every field is optional.
type UserCriteria struct {
	ID       Set[int64]
	TgID     Set[int64]
	Nickname Set[string]
}

// Terms folds the set criteria into column terms, in a stable order.
func (c UserCriteria) Terms() []Term {
	var terms []Term
	terms = appendTerm(terms, "id", c.ID)
	terms = appendTerm(terms, "tg_id", c.TgID)
	terms = appendTerm(terms, "nickname", c.Nickname)
	return terms
}

// UserKey identifies users by single values.
type UserKey struct {
	ID       Value[int64]
	TgID     Value[int64]
	Nickname Value[string]
}

// Criteria adapts the key into the set form.
func (k UserKey) Criteria() UserCriteria {
	return UserCriteria{
		ID:       k.ID.AsSet(),
		TgID:     k.TgID.AsSet(),
		Nickname: k.Nickname.AsSet(),
	}
}

// ChannelCriteria selects channels. Every field is optional.
type ChannelCriteria struct {
	ID    Set[int64]
	TgID  Set[int64]
	Title Set[string]
}

func (c ChannelCriteria) Terms() []Term {
	var terms []Term
	terms = appendTerm(terms, "id", c.ID)
	terms = appendTerm(terms, "tg_id", c.TgID)
	terms = appendTerm(terms, "title", c.Title)
	return terms
}

// ChannelKey identifies channels by single values.
type ChannelKey struct {
	ID    Value[int64]
	TgID  Value[int64]
	Title Value[string]
}

func (k ChannelKey) Criteria() ChannelCriteria {
	return ChannelCriteria{
		ID:    k.ID.AsSet(),
		TgID:  k.TgID.AsSet(),
		Title: k.Title.AsSet(),
	}
}

// SubscriptionCriteria selects subscriptions. Every field is optional.
type SubscriptionCriteria struct {
	ID        Set[int64]
	UserID    Set[int64]
	ChannelID Set[int64]
}

func (c SubscriptionCriteria) Terms() []Term {
	var terms []Term
	terms = appendTerm(terms, "id", c.ID)
	terms = appendTerm(terms, "user_id", c.UserID)
	terms = appendTerm(terms, "channel_id", c.ChannelID)
	return terms
}

// SubscriptionKey identifies subscriptions by single values.
type SubscriptionKey struct {
	ID        Value[int64]
	UserID    Value[int64]
	ChannelID Value[int64]
}

func (k SubscriptionKey) Criteria() SubscriptionCriteria {
	return SubscriptionCriteria{
		ID:        k.ID.AsSet(),
		UserID:    k.UserID.AsSet(),
		ChannelID: k.ChannelID.AsSet(),
	}
}
