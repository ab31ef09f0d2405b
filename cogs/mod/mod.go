// Package mod implements the kick, ban and unban commands, each recorded
// as a modlog case.
package mod

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
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
		log:    log.Named("mod"),
	}
}

func (c *Cog) Name() string        { return "mod" }
func (c *Cog) Description() string { return "Kick, ban and look up moderation cases" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:          "kick",
			Description:   "Kick a member",
			Usage:         "kick <user> [reason]",
			RequiredPerms: discordgo.PermissionKickMembers,
			Run:           c.kick,
		},
		{
			Name:          "ban",
			Description:   "Ban a user. Works on users who are not in the server",
			Usage:         "ban <user> [reason]",
			RequiredPerms: discordgo.PermissionBanMembers,
			Run:           c.ban,
		},
		{
			Name:          "unban",
			Description:   "Unban a user by ID",
			Usage:         "unban <user id> [reason]",
			RequiredPerms: discordgo.PermissionBanMembers,
			Run:           c.unban,
		},
		{
			Name:          "case",
			Description:   "Show a modlog case by number",
			Usage:         "case <number>",
			RequiredPerms: discordgo.PermissionKickMembers,
			Run:           c.caseLookup,
		},
		{
			Name:          "cases",
			Description:   "List the modlog cases for a user",
			Usage:         "cases <user>",
			RequiredPerms: discordgo.PermissionKickMembers,
			Run:           c.casesByUser,
		},
	}
}

func (c *Cog) kick(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `kick <user> [reason]`")
	}

	target, err := ctx.Sess.State.Member(ctx.Guild.ID, bot.TrimUserString(ctx.Args[0]))
	if err != nil {
		return ctx.Reply("I could not find that member.")
	}
	if reply, ok := c.checkTarget(ctx, target); !ok {
		return ctx.Reply(reply)
	}

	reason := strings.Join(ctx.Args[1:], " ")

	// notify before kicking, a DM cannot be opened afterwards
	c.notify(ctx, target.User.ID, "kicked from", reason)
	if err := ctx.Sess.GuildMemberDeleteWithReason(ctx.Guild.ID, target.User.ID, reason); err != nil {
		return ctx.Reply("I could not kick that member. Check my permissions and role position.")
	}

	c.record(ctx, database.CaseKick, target.User.ID, reason)
	return ctx.Tick()
}

func (c *Cog) ban(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `ban <user> [reason]`")
	}

	uid := bot.TrimUserString(ctx.Args[0])
	if _, err := strconv.ParseInt(uid, 10, 64); err != nil {
		return ctx.Reply("That does not look like a user mention or ID.")
	}

	// the target may not be a member; hierarchy only applies when they are
	if target, err := ctx.Sess.State.Member(ctx.Guild.ID, uid); err == nil {
		if reply, ok := c.checkTarget(ctx, target); !ok {
			return ctx.Reply(reply)
		}
	}

	reason := strings.Join(ctx.Args[1:], " ")
	if _, err := ctx.Sess.State.Member(ctx.Guild.ID, uid); err == nil {
		c.notify(ctx, uid, "banned from", reason)
	}
	if err := ctx.Sess.GuildBanCreateWithReason(ctx.Guild.ID, uid, reason, 0); err != nil {
		return ctx.Reply("I could not ban that user. Check my permissions and role position.")
	}

	c.record(ctx, database.CaseBan, uid, reason)
	return ctx.Tick()
}

func (c *Cog) unban(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `unban <user id> [reason]`")
	}

	uid := bot.TrimUserString(ctx.Args[0])
	if err := ctx.Sess.GuildBanDelete(ctx.Guild.ID, uid); err != nil {
		return ctx.Reply("I could not unban that user. Are they banned?")
	}

	c.record(ctx, database.CaseUnban, uid, strings.Join(ctx.Args[1:], " "))
	return ctx.Tick()
}

func (c *Cog) caseLookup(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `case <number>`")
	}
	number, err := strconv.Atoi(ctx.Args[0])
	if err != nil {
		return ctx.Reply("Case numbers are numbers.")
	}

	cs, err := c.db.GetCase(ctx.Guild.ID, number)
	if errors.Is(err, database.ErrNotFound) {
		return ctx.Reply("No case with that number.")
	}
	if err != nil {
		return err
	}
	return ctx.ReplyEmbed(modlog.Embed(cs))
}

func (c *Cog) casesByUser(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `cases <user>`")
	}

	uid := bot.TrimUserString(ctx.Args[0])
	cases, err := c.db.GetCasesByUser(ctx.Guild.ID, uid)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return ctx.Reply("No cases for that user.")
	}

	text := strings.Builder{}
	for _, cs := range cases {
		reason := cs.Reason
		if reason == "" {
			reason = "No reason given"
		}
		text.WriteString(fmt.Sprintf("`#%v` %v - <t:%v:R> - %v\n", cs.Number, cs.Type, cs.CreatedAt, reason))
	}
	return ctx.ReplyPages(text.String())
}

// checkTarget runs the shared sanity and hierarchy checks for actions that
// target a member.
func (c *Cog) checkTarget(ctx *bot.Context, target *discordgo.Member) (string, bool) {
	if target.User.ID == ctx.Msg.Author.ID {
		return "You cannot do that to yourself.", false
	}
	if target.User.ID == ctx.Sess.State.User.ID {
		return "I am not doing that to myself.", false
	}

	author, err := ctx.Sess.State.Member(ctx.Guild.ID, ctx.Msg.Author.ID)
	if err != nil || !bot.CanActOn(ctx.Guild, author, target) {
		return "You cannot act on a member whose top role is not below yours.", false
	}
	return "", true
}

// notify DMs the target about the action. Failures are expected, users can
// block DMs.
func (c *Cog) notify(ctx *bot.Context, uid, verb, reason string) {
	ch, err := ctx.Sess.UserChannelCreate(uid)
	if err != nil {
		return
	}
	text := fmt.Sprintf("You have been %v **%v**.", verb, ctx.Guild.Name)
	if reason != "" {
		text += fmt.Sprintf("\nReason: %v", reason)
	}
	_, _ = ctx.Sess.ChannelMessageSend(ch.ID, text)
}

func (c *Cog) record(ctx *bot.Context, caseType, uid, reason string) {
	if _, err := c.modlog.CreateCase(ctx.Sess, ctx.GuildConfig, &database.Case{
		GuildID: ctx.Guild.ID,
		Type:    caseType,
		UserID:  uid,
		ModID:   ctx.Msg.Author.ID,
		Reason:  reason,
	}); err != nil {
		c.log.Error("failed to create case", zap.String("type", caseType), zap.Error(err))
	}
}
