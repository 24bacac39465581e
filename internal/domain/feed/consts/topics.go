package consts

// Kafka topics for subscription events
const (
	TopicSubscriptionCreated = "subscriptions.created"
	TopicSubscriptionDeleted = "subscriptions.deleted"
)
