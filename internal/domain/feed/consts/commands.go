// Package consts contains constants for the feed domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart  = Command{Name: "start", Description: "Start the bot"}
	CommandHelp   = Command{Name: "help", Description: "Show usage reference"}
	CommandAdd    = Command{Name: "add", Description: "Add a channel to your feed"}
	CommandDelete = Command{Name: "del", Description: "Delete a channel from your feed"}
	CommandList   = Command{Name: "list", Description: "List your channels"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
	CommandAdd,
	CommandDelete,
	CommandList,
}

// ChannelPrefix is the mandatory first character of a channel name
const ChannelPrefix = "@"

// MaxChannelTitleLength mirrors the channels.title column size
const MaxChannelTitleLength = 500
