package consts

// Localized message keys
const (
	MsgChannelNameIsEmpty       = "channel_name_is_empty"
	MsgChannelNameShouldStart   = "channel_name_should_starts_with"
	MsgYouAlreadyAddThisChannel = "you_already_add_this_channel"
	MsgChannelHaveAdded         = "channel_have_added"
	MsgNoSuchChannelInSubs      = "no_such_channel_in_subs"
	MsgChannelDeleted           = "channel_deleted"
	MsgStartText                = "start_msg_text"
	MsgHelpText                 = "help_msg_text"
	MsgSubscriptionsList        = "subscriptions_list"
	MsgSubscriptionsEmpty       = "subscriptions_empty"
	MsgUnknownCommand           = "unknown_command"
	MsgCommandFailed            = "command_failed"
)

// MessageKeys lists every key a locale catalog must define
var MessageKeys = []string{
	MsgChannelNameIsEmpty,
	MsgChannelNameShouldStart,
	MsgYouAlreadyAddThisChannel,
	MsgChannelHaveAdded,
	MsgNoSuchChannelInSubs,
	MsgChannelDeleted,
	MsgStartText,
	MsgHelpText,
	MsgSubscriptionsList,
	MsgSubscriptionsEmpty,
	MsgUnknownCommand,
	MsgCommandFailed,
}
