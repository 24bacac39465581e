// Package dto contains data transfer objects for the feed domain
package dto

// StartCommandRequest represents a request to handle /start command
type StartCommandRequest struct {
	UserID    int64
	Username  string
	FirstName string
}

// ChannelCommandRequest represents /add and /del commands
type ChannelCommandRequest struct {
	UserID      int64
	Username    string
	ChannelName string
}

// CommandResponse represents a reply for bot commands
type CommandResponse struct {
	Message string
}

// SubscriptionCreatedEvent represents a Kafka event for subscription creation
type SubscriptionCreatedEvent struct {
	UserID      int64  `json:"user_id"`
	ChannelID   int64  `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	CreatedAt   string `json:"created_at"`
}

// SubscriptionDeletedEvent represents a Kafka event for subscription deletion
type SubscriptionDeletedEvent struct {
	UserID      int64  `json:"user_id"`
	ChannelID   int64  `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	DeletedAt   string `json:"deleted_at"`
}
