package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/database"
)

// Cog groups related commands. Cogs that also want raw gateway events
// implement EventHandler.
type Cog interface {
	Name() string
	Description() string
	Commands() []*Command
}

// EventHandler receives every gateway event. Handlers run in their own
// goroutine and must not block on the event channel.
type EventHandler interface {
	HandleEvent(ctx *EventContext, evt interface{})
}

// EventContext carries the shared state an event handler needs.
// GuildConfig is nil for events without a guild.
type EventContext struct {
	Bot         *Bot
	Sess        *discordgo.Session
	GuildConfig *database.Guild
	Log         *zap.Logger
}

// Command is a prefix command. RequiredPerms is a discordgo permission
// bitmask the author must hold in the channel; admins and guild owners
// always pass.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Cog         string

	OwnerOnly     bool
	AdminOnly     bool
	RequiredPerms int64

	Run func(ctx *Context) error
}
