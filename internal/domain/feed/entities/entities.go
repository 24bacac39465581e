// Package entities contains persistent models of the feed domain
package entities

import (
	"unicode/utf8"

	"github.com/Conte777/feedbot/internal/domain/feed/consts"
	feederrors "github.com/Conte777/feedbot/internal/domain/feed/errors"
)

// User represents a chat-platform user known to the bot
type User struct {
	ID       int64   `gorm:"primaryKey"`
	Nickname *string `gorm:"size:255;uniqueIndex"`
	TgID     *int64  `gorm:"column:tg_id;uniqueIndex"`
}

func (User) TableName() string {
	return "users"
}

// Channel represents a feed source referenced by its title, e.g. "@news"
type Channel struct {
	ID    int64  `gorm:"primaryKey"`
	Title string `gorm:"size:500;not null;uniqueIndex"`
	TgID  *int64 `gorm:"column:tg_id;uniqueIndex"`
}

func (Channel) TableName() string {
	return "channels"
}

// Validate checks the title against the column constraints
func (c *Channel) Validate() error {
	if c.Title == "" {
		return feederrors.ErrChannelTitleRequired
	}
	if utf8.RuneCountInString(c.Title) > consts.MaxChannelTitleLength {
		return feederrors.ErrChannelTitleTooLong
	}
	return nil
}

// Subscription links a user to a channel
type Subscription struct {
	ID        int64    `gorm:"primaryKey"`
	UserID    int64    `gorm:"not null;uniqueIndex:uq_subs_user_channel"`
	ChannelID int64    `gorm:"not null;uniqueIndex:uq_subs_user_channel;index"`
	User      *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Channel   *Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}

func (Subscription) TableName() string {
	return "subs"
}
