// Package core implements the built-in bot management commands.
package core

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/database"
)

type Cog struct {
	db  database.DB
	log *zap.Logger
}

func New(db database.DB, log *zap.Logger) *Cog {
	return &Cog{
		db:  db,
		log: log.Named("core"),
	}
}

func (c *Cog) Name() string        { return "core" }
func (c *Cog) Description() string { return "Bot management and information" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "help",
			Description: "List commands, or show help for one command",
			Usage:       "help [command]",
			Run:         c.help,
		},
		{
			Name:        "info",
			Description: "Show information about the bot",
			Run:         c.info,
		},
		{
			Name:        "ping",
			Description: "Check the gateway latency",
			Run:         c.ping,
		},
		{
			Name:        "prefix",
			Description: "Set the command prefix for this server",
			Usage:       "prefix <new prefix>",
			AdminOnly:   true,
			Run:         c.prefix,
		},
		{
			Name:        "cog",
			Description: "List, enable or disable cogs for this server",
			Usage:       "cog [enable|disable] [name]",
			AdminOnly:   true,
			Run:         c.cog,
		},
		{
			Name:        "shutdown",
			Description: "Shut the bot down",
			OwnerOnly:   true,
			Run:         c.shutdown,
		},
		{
			Name:        "restart",
			Description: "Restart the bot",
			OwnerOnly:   true,
			Run:         c.restart,
		},
	}
}

func (c *Cog) help(ctx *bot.Context) error {
	if len(ctx.Args) > 0 {
		cmd, ok := ctx.Bot.Command(ctx.Args[0])
		if !ok {
			return ctx.Reply("No command with that name.")
		}
		text := strings.Builder{}
		text.WriteString(fmt.Sprintf("**%v** - %v\n", cmd.Name, cmd.Description))
		if cmd.Usage != "" {
			text.WriteString(fmt.Sprintf("Usage: `%v`\n", cmd.Usage))
		}
		if len(cmd.Aliases) > 0 {
			text.WriteString(fmt.Sprintf("Aliases: %v\n", strings.Join(cmd.Aliases, ", ")))
		}
		return ctx.Reply(text.String())
	}

	text := strings.Builder{}
	for _, cog := range ctx.Bot.Cogs() {
		text.WriteString(fmt.Sprintf("**%v** - %v\n", cog.Name(), cog.Description()))
		var names []string
		for _, cmd := range cog.Commands() {
			names = append(names, cmd.Name)
		}
		text.WriteString("`" + strings.Join(names, "` `") + "`\n\n")
	}
	return ctx.ReplyPages(text.String())
}

func (c *Cog) info(ctx *bot.Context) error {
	embed := &discordgo.MessageEmbed{
		Title: "Info",
		Color: bot.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Golang version",
				Value: runtime.Version(),
			},
			{
				Name:  "Running since",
				Value: fmt.Sprintf("<t:%v:R>", ctx.Bot.StartTime().Unix()),
			},
		},
	}
	return ctx.ReplyEmbed(embed)
}

func (c *Cog) ping(ctx *bot.Context) error {
	return ctx.Reply(fmt.Sprintf("Pong! Heartbeat: %v", ctx.Sess.HeartbeatLatency().Round(time.Millisecond)))
}

func (c *Cog) prefix(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `prefix <new prefix>`")
	}
	p := ctx.Args[0]
	if len(p) > 8 {
		return ctx.Reply("That prefix is too long.")
	}

	ctx.GuildConfig.Prefix = p
	if err := ctx.SaveGuildConfig(); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Prefix set to `%v`", p))
}

func (c *Cog) cog(ctx *bot.Context) error {
	if len(ctx.Args) == 0 {
		disabled, err := c.db.DisabledCogs(ctx.Guild.ID)
		if err != nil {
			return err
		}
		disabledSet := map[string]bool{}
		for _, name := range disabled {
			disabledSet[name] = true
		}

		text := strings.Builder{}
		for _, cog := range ctx.Bot.Cogs() {
			state := "enabled"
			if disabledSet[cog.Name()] {
				state = "disabled"
			}
			text.WriteString(fmt.Sprintf("`%v` - %v\n", cog.Name(), state))
		}
		return ctx.Reply(text.String())
	}

	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `cog [enable|disable] [name]`")
	}

	name := strings.ToLower(ctx.Args[1])
	var found bool
	for _, cog := range ctx.Bot.Cogs() {
		if cog.Name() == name {
			found = true
			break
		}
	}
	if !found {
		return ctx.Reply("No cog with that name.")
	}

	switch strings.ToLower(ctx.Args[0]) {
	case "disable":
		if name == c.Name() {
			return ctx.Reply("The core cog cannot be disabled.")
		}
		if err := c.db.DisableCog(ctx.Guild.ID, name); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("Disabled the `%v` cog.", name))
	case "enable":
		if err := c.db.EnableCog(ctx.Guild.ID, name); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("Enabled the `%v` cog.", name))
	default:
		return ctx.Reply("Usage: `cog [enable|disable] [name]`")
	}
}

func (c *Cog) shutdown(ctx *bot.Context) error {
	_ = ctx.Reply("Shutting down.")
	ctx.Bot.Shutdown()
	return nil
}

func (c *Cog) restart(ctx *bot.Context) error {
	_ = ctx.Reply("Restarting.")
	ctx.Bot.Restart()
	return nil
}
