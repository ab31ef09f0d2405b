// Package serverlog posts member and message activity to per-guild log
// channels.
package serverlog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/kvstore"
)

type Cog struct {
	store *kvstore.Store
	log   *zap.Logger
}

func New(store *kvstore.Store, log *zap.Logger) *Cog {
	return &Cog{
		store: store,
		log:   log.Named("serverlog"),
	}
}

func (c *Cog) Name() string        { return "serverlog" }
func (c *Cog) Description() string { return "Log member and message events to channels" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "setlog",
			Description: "Set a log channel, or clear it with 'off'",
			Usage:       "setlog <join|leave|msgdelete|msgedit|ban|unban|modlog> [channel|off]",
			AdminOnly:   true,
			Run:         c.setLog,
		},
		{
			Name:        "logsettings",
			Description: "Show the configured log channels",
			AdminOnly:   true,
			Run:         c.logSettings,
		},
	}
}

func (c *Cog) setLog(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `setlog <join|leave|msgdelete|msgedit|ban|unban|modlog> [channel|off]`")
	}

	target := ctx.Channel.ID
	if len(ctx.Args) >= 2 {
		if strings.EqualFold(ctx.Args[1], "off") {
			target = ""
		} else {
			chStr := bot.TrimChannelString(ctx.Args[1])
			setChannel, err := ctx.Sess.State.Channel(chStr)
			if err != nil || setChannel.GuildID != ctx.Guild.ID {
				return ctx.Reply("I could not find that channel in this server.")
			}
			target = setChannel.ID
		}
	}

	gc := ctx.GuildConfig
	switch strings.ToLower(ctx.Args[0]) {
	case "join":
		gc.JoinLog = target
	case "leave":
		gc.LeaveLog = target
	case "msgdelete":
		gc.MsgDeleteLog = target
	case "msgedit":
		gc.MsgEditLog = target
	case "ban":
		gc.BanLog = target
	case "unban":
		gc.UnbanLog = target
	case "modlog":
		gc.ModLog = target
	default:
		return ctx.Reply("Unknown log type. Valid types: join, leave, msgdelete, msgedit, ban, unban, modlog")
	}

	if err := ctx.SaveGuildConfig(); err != nil {
		return err
	}
	if target == "" {
		return ctx.Reply("Log channel cleared.")
	}
	return ctx.Reply(fmt.Sprintf("Log channel set to <#%v>.", target))
}

func (c *Cog) logSettings(ctx *bot.Context) error {
	gc := ctx.GuildConfig
	format := func(id string) string {
		if id == "" {
			return "not set"
		}
		return "<#" + id + ">"
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("join: %v\n", format(gc.JoinLog)))
	text.WriteString(fmt.Sprintf("leave: %v\n", format(gc.LeaveLog)))
	text.WriteString(fmt.Sprintf("msgdelete: %v\n", format(gc.MsgDeleteLog)))
	text.WriteString(fmt.Sprintf("msgedit: %v\n", format(gc.MsgEditLog)))
	text.WriteString(fmt.Sprintf("ban: %v\n", format(gc.BanLog)))
	text.WriteString(fmt.Sprintf("unban: %v\n", format(gc.UnbanLog)))
	text.WriteString(fmt.Sprintf("modlog: %v\n", format(gc.ModLog)))
	return ctx.Reply(text.String())
}
