// Package warnings lets moderators issue, list and remove warnings, with
// per-guild reason registration and delivery settings.
package warnings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/database"
	"github.com/griefbot/grief/modlog"
)

type Cog struct {
	db     database.DB
	modlog *modlog.Log
	log    *zap.Logger
}

func New(db database.DB, ml *modlog.Log, log *zap.Logger) *Cog {
	return &Cog{
		db:     db,
		modlog: ml,
		log:    log.Named("warnings"),
	}
}

func (c *Cog) Name() string        { return "warnings" }
func (c *Cog) Description() string { return "Warn users and keep track of warnings" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:          "warn",
			Description:   "Warn a user, using a registered reason name or a custom reason",
			Usage:         "warn <user> <reason>",
			RequiredPerms: discordgo.PermissionKickMembers,
			Run:           c.warn,
		},
		{
			Name:          "warnings",
			Description:   "List the warnings a user has received",
			Usage:         "warnings <user>",
			RequiredPerms: discordgo.PermissionKickMembers,
			Run:           c.warnings,
		},
		{
			Name:        "mywarnings",
			Description: "List the warnings you have received in this server",
			Run:         c.myWarnings,
		},
		{
			Name:          "unwarn",
			Description:   "Remove a warning by its ID",
			Usage:         "unwarn <user> <warning id>",
			RequiredPerms: discordgo.PermissionKickMembers,
			Run:           c.unwarn,
		},
		{
			Name:        "warningset",
			Description: "Configure how warnings are issued and delivered",
			Usage:       "warningset [senddm|showmod|allowcustom|usechannel|channel|addreason|delreason|reasons] [args]",
			AdminOnly:   true,
			Run:         c.warningSet,
		},
	}
}

func (c *Cog) warn(ctx *bot.Context) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `warn <user> <reason>`")
	}

	target, err := ctx.Sess.State.Member(ctx.Guild.ID, bot.TrimUserString(ctx.Args[0]))
	if err != nil {
		return ctx.Reply("I could not find that member.")
	}

	if target.User.ID == ctx.Msg.Author.ID {
		return ctx.Reply("You cannot warn yourself.")
	}
	if target.User.Bot {
		return ctx.Reply("You cannot warn a bot.")
	}
	if !c.canActOn(ctx, target) {
		return ctx.Reply("You cannot warn a member whose top role is not below yours.")
	}

	reason, err := c.resolveReason(ctx, strings.Join(ctx.Args[1:], " "))
	if err != nil {
		return err
	}
	if reason == "" {
		return nil
	}

	w := &database.Warning{
		ID:        uuid.NewString(),
		GuildID:   ctx.Guild.ID,
		UserID:    target.User.ID,
		ModID:     ctx.Msg.Author.ID,
		Reason:    reason,
		CreatedAt: time.Now().Unix(),
	}
	if err := c.db.AddWarning(w); err != nil {
		return err
	}

	if _, err := c.modlog.CreateCase(ctx.Sess, ctx.GuildConfig, &database.Case{
		GuildID: ctx.Guild.ID,
		Type:    database.CaseWarning,
		UserID:  target.User.ID,
		ModID:   ctx.Msg.Author.ID,
		Reason:  reason,
	}); err != nil {
		c.log.Error("failed to create warning case", zap.Error(err))
	}

	c.deliver(ctx, target.User, reason)
	return ctx.Tick()
}

// resolveReason maps a registered reason name to its description, or passes
// a custom reason through when the guild allows it. An empty return with a
// nil error means a reply was already sent.
func (c *Cog) resolveReason(ctx *bot.Context, raw string) (string, error) {
	name := strings.ToLower(strings.Fields(raw)[0])
	wr, err := c.db.GetWarnReason(ctx.Guild.ID, name)
	if err == nil {
		return wr.Description, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return "", err
	}

	if !ctx.GuildConfig.WarnAllowCustom {
		return "", ctx.Reply("Custom reasons are disabled here. Use a registered reason, see `warningset reasons`.")
	}
	return raw, nil
}

// deliver sends the warning to the user by DM, the warn channel, or both,
// per the guild's settings.
func (c *Cog) deliver(ctx *bot.Context, user *discordgo.User, reason string) {
	text := fmt.Sprintf("You have received a warning in **%v**.\nReason: %v", ctx.Guild.Name, reason)
	if ctx.GuildConfig.WarnShowMod {
		text += fmt.Sprintf("\nModerator: %v", ctx.Msg.Author.String())
	}

	if ctx.GuildConfig.WarnDM {
		if ch, err := ctx.Sess.UserChannelCreate(user.ID); err == nil {
			if _, err := ctx.Sess.ChannelMessageSend(ch.ID, text); err != nil {
				c.log.Info("failed to DM warning", zap.String("user", user.ID), zap.Error(err))
			}
		}
	}

	if ctx.GuildConfig.WarnUseChannel && ctx.GuildConfig.WarnChannel != "" {
		embed := &discordgo.MessageEmbed{
			Color: bot.ColorOrange,
			Title: "Warning",
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "User",
					Value:  fmt.Sprintf("%v\n%v", user.Mention(), user.ID),
					Inline: true,
				},
				{
					Name:  "Reason",
					Value: reason,
				},
			},
		}
		if ctx.GuildConfig.WarnShowMod {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Moderator",
				Value:  ctx.Msg.Author.String(),
				Inline: true,
			})
		}
		_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.WarnChannel, ctx.FooterEmbed(embed))
	}
}

func (c *Cog) warnings(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `warnings <user>`")
	}
	uid := bot.TrimUserString(ctx.Args[0])
	return c.listWarnings(ctx, uid, fmt.Sprintf("Warnings for <@%v>", uid))
}

func (c *Cog) myWarnings(ctx *bot.Context) error {
	return c.listWarnings(ctx, ctx.Msg.Author.ID, "Your warnings")
}

func (c *Cog) listWarnings(ctx *bot.Context, uid, title string) error {
	warns, err := c.db.GetWarnings(ctx.Guild.ID, uid)
	if err != nil {
		return err
	}
	if len(warns) == 0 {
		return ctx.Reply("No warnings.")
	}

	text := strings.Builder{}
	text.WriteString(title + "\n")
	for _, w := range warns {
		text.WriteString(fmt.Sprintf("\n`%v` - <t:%v:R>\n%v\n", w.ID, w.CreatedAt, w.Reason))
		if ctx.GuildConfig.WarnShowMod || uid != ctx.Msg.Author.ID {
			text.WriteString(fmt.Sprintf("Moderator: <@%v>\n", w.ModID))
		}
	}
	return ctx.ReplyPages(text.String())
}

func (c *Cog) unwarn(ctx *bot.Context) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `unwarn <user> <warning id>`")
	}

	uid := bot.TrimUserString(ctx.Args[0])
	id := ctx.Args[1]

	if uid == ctx.Msg.Author.ID {
		return ctx.Reply("You cannot remove your own warnings.")
	}

	w, err := c.db.GetWarning(ctx.Guild.ID, id)
	if errors.Is(err, database.ErrNotFound) || (err == nil && w.UserID != uid) {
		return ctx.Reply("That user has no warning with that ID.")
	}
	if err != nil {
		return err
	}

	if err := c.db.DeleteWarning(ctx.Guild.ID, id); err != nil {
		return err
	}

	if _, err := c.modlog.CreateCase(ctx.Sess, ctx.GuildConfig, &database.Case{
		GuildID: ctx.Guild.ID,
		Type:    database.CaseUnwarned,
		UserID:  w.UserID,
		ModID:   ctx.Msg.Author.ID,
		Reason:  w.Reason,
	}); err != nil {
		c.log.Error("failed to create unwarn case", zap.Error(err))
	}
	return ctx.Tick()
}

func (c *Cog) warningSet(ctx *bot.Context) error {
	if len(ctx.Args) == 0 {
		return c.showSettings(ctx)
	}

	gc := ctx.GuildConfig
	switch settingKey(ctx.Args[0]) {
	case "senddm":
		gc.WarnDM = !gc.WarnDM
		if err := ctx.SaveGuildConfig(); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("DMing warned users: %v", onOff(gc.WarnDM)))
	case "showmod":
		gc.WarnShowMod = !gc.WarnShowMod
		if err := ctx.SaveGuildConfig(); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("Showing the moderator on warnings: %v", onOff(gc.WarnShowMod)))
	case "allowcustom":
		gc.WarnAllowCustom = !gc.WarnAllowCustom
		if err := ctx.SaveGuildConfig(); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("Custom warning reasons: %v", onOff(gc.WarnAllowCustom)))
	case "usechannel":
		gc.WarnUseChannel = !gc.WarnUseChannel
		if err := ctx.SaveGuildConfig(); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("Posting warnings to the warn channel: %v", onOff(gc.WarnUseChannel)))
	case "channel":
		return c.setChannel(ctx)
	case "addreason":
		return c.addReason(ctx)
	case "delreason":
		return c.delReason(ctx)
	case "reasons":
		return c.listReasons(ctx)
	default:
		return ctx.Reply("Unknown setting. See `help warningset`.")
	}
}

// settingKey normalizes a warningset subcommand name, accepting both the
// short spellings and the longer historical ones.
func settingKey(name string) string {
	switch strings.ToLower(name) {
	case "showmoderator":
		return "showmod"
	case "warnchannel":
		return "channel"
	case "usewarnchannel":
		return "usechannel"
	case "allowcustomreasons":
		return "allowcustom"
	default:
		return strings.ToLower(name)
	}
}

func (c *Cog) showSettings(ctx *bot.Context) error {
	gc := ctx.GuildConfig
	channel := "not set"
	if gc.WarnChannel != "" {
		channel = "<#" + gc.WarnChannel + ">"
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("senddm: %v\n", onOff(gc.WarnDM)))
	text.WriteString(fmt.Sprintf("showmod: %v\n", onOff(gc.WarnShowMod)))
	text.WriteString(fmt.Sprintf("allowcustom: %v\n", onOff(gc.WarnAllowCustom)))
	text.WriteString(fmt.Sprintf("usechannel: %v\n", onOff(gc.WarnUseChannel)))
	text.WriteString(fmt.Sprintf("channel: %v\n", channel))
	return ctx.Reply(text.String())
}

func (c *Cog) setChannel(ctx *bot.Context) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `warningset channel <channel|off>`")
	}
	if strings.EqualFold(ctx.Args[1], "off") {
		ctx.GuildConfig.WarnChannel = ""
		if err := ctx.SaveGuildConfig(); err != nil {
			return err
		}
		return ctx.Reply("Warn channel cleared.")
	}

	ch, err := ctx.Sess.State.Channel(bot.TrimChannelString(ctx.Args[1]))
	if err != nil || ch.GuildID != ctx.Guild.ID {
		return ctx.Reply("I could not find that channel in this server.")
	}
	ctx.GuildConfig.WarnChannel = ch.ID
	if err := ctx.SaveGuildConfig(); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Warn channel set to <#%v>.", ch.ID))
}

func (c *Cog) addReason(ctx *bot.Context) error {
	if len(ctx.Args) < 3 {
		return ctx.Reply("Usage: `warningset addreason <name> <description>`")
	}
	name := strings.ToLower(ctx.Args[1])
	if err := c.db.SetWarnReason(ctx.Guild.ID, name, strings.Join(ctx.Args[2:], " ")); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Registered the reason `%v`.", name))
}

func (c *Cog) delReason(ctx *bot.Context) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `warningset delreason <name>`")
	}
	name := strings.ToLower(ctx.Args[1])
	err := c.db.DeleteWarnReason(ctx.Guild.ID, name)
	if errors.Is(err, database.ErrNotFound) {
		return ctx.Reply("No reason with that name.")
	}
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Removed the reason `%v`.", name))
}

func (c *Cog) listReasons(ctx *bot.Context) error {
	reasons, err := c.db.ListWarnReasons(ctx.Guild.ID)
	if err != nil {
		return err
	}
	if len(reasons) == 0 {
		return ctx.Reply("No registered reasons. Add one with `warningset addreason`.")
	}

	text := strings.Builder{}
	for _, r := range reasons {
		text.WriteString(fmt.Sprintf("`%v` - %v\n", r.Name, r.Description))
	}
	return ctx.ReplyPages(text.String())
}

// canActOn reports whether the author outranks the target.
func (c *Cog) canActOn(ctx *bot.Context, target *discordgo.Member) bool {
	author, err := ctx.Sess.State.Member(ctx.Guild.ID, ctx.Msg.Author.ID)
	if err != nil {
		return false
	}
	return bot.CanActOn(ctx.Guild, author, target)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
