// Package economy implements the per-guild credit bank: balances, payments,
// payday claims and a leaderboard.
package economy

import (
	"errors"
	"fmt"
	"strconv"
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
		log: log.Named("economy"),
	}
}

func (c *Cog) Name() string        { return "economy" }
func (c *Cog) Description() string { return "Credits, payday and the leaderboard" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "balance",
			Aliases:     []string{"bal"},
			Description: "Show your balance, or someone else's",
			Usage:       "balance [user]",
			Run:         c.balance,
		},
		{
			Name:        "pay",
			Description: "Send credits to another member",
			Usage:       "pay <user> <amount>",
			Run:         c.pay,
		},
		{
			Name:        "payday",
			Description: "Claim your payday credits",
			Run:         c.payday,
		},
		{
			Name:        "leaderboard",
			Aliases:     []string{"lb"},
			Description: "Show the richest members of this server",
			Run:         c.leaderboard,
		},
		{
			Name:        "bankset",
			Description: "Show or change the bank settings for this server",
			Usage:       "bankset [default|payday|cooldown] [value]",
			AdminOnly:   true,
			Run:         c.bankSet,
		},
	}
}

func (c *Cog) balance(ctx *bot.Context) error {
	uid := ctx.Msg.Author.ID
	if len(ctx.Args) > 0 {
		uid = bot.TrimUserString(ctx.Args[0])
	}

	acc, err := c.db.GetAccount(ctx.Guild.ID, uid)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("<@%v> has **%v** credits.", uid, acc.Balance))
}

func (c *Cog) pay(ctx *bot.Context) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `pay <user> <amount>`")
	}

	to := bot.TrimUserString(ctx.Args[0])
	if to == ctx.Msg.Author.ID {
		return ctx.Reply("You cannot pay yourself.")
	}
	if _, err := ctx.Sess.State.Member(ctx.Guild.ID, to); err != nil {
		return ctx.Reply("I could not find that member.")
	}

	amount, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil || amount <= 0 {
		return ctx.Reply("The amount has to be a positive number.")
	}

	err = c.db.Transfer(ctx.Guild.ID, ctx.Msg.Author.ID, to, amount)
	if errors.Is(err, database.ErrInsufficientFunds) {
		return ctx.Reply("You do not have that many credits.")
	}
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Sent **%v** credits to <@%v>.", amount, to))
}

func (c *Cog) payday(ctx *bot.Context) error {
	bs, err := c.db.GetBankSettings(ctx.Guild.ID)
	if err != nil {
		return err
	}
	acc, err := c.db.GetAccount(ctx.Guild.ID, ctx.Msg.Author.ID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	next := acc.LastPayday + bs.PaydayCooldown
	if now < next {
		return ctx.Reply(fmt.Sprintf("Too soon. You can claim again <t:%v:R>.", next))
	}

	if err := c.db.Payday(ctx.Guild.ID, ctx.Msg.Author.ID, bs.PaydayAmount, now); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Here are **%v** credits. Come back <t:%v:R>.", bs.PaydayAmount, now+bs.PaydayCooldown))
}

func (c *Cog) leaderboard(ctx *bot.Context) error {
	accounts, err := c.db.Leaderboard(ctx.Guild.ID, 10)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ctx.Reply("Nobody has an account here yet.")
	}

	text := strings.Builder{}
	for i, acc := range accounts {
		text.WriteString(fmt.Sprintf("**%v.** <@%v> - %v credits\n", i+1, acc.UserID, acc.Balance))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Leaderboard",
		Color:       bot.ColorGreen,
		Description: text.String(),
	}
	return ctx.ReplyEmbed(ctx.FooterEmbed(embed))
}

func (c *Cog) bankSet(ctx *bot.Context) error {
	bs, err := c.db.GetBankSettings(ctx.Guild.ID)
	if err != nil {
		return err
	}

	if len(ctx.Args) == 0 {
		text := strings.Builder{}
		text.WriteString(fmt.Sprintf("default: %v credits\n", bs.DefaultBalance))
		text.WriteString(fmt.Sprintf("payday: %v credits\n", bs.PaydayAmount))
		text.WriteString(fmt.Sprintf("cooldown: %v seconds\n", bs.PaydayCooldown))
		return ctx.Reply(text.String())
	}

	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `bankset [default|payday|cooldown] [value]`")
	}
	value, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil || value < 0 {
		return ctx.Reply("The value has to be a non-negative number.")
	}

	switch strings.ToLower(ctx.Args[0]) {
	case "default":
		bs.DefaultBalance = value
	case "payday":
		bs.PaydayAmount = value
	case "cooldown":
		bs.PaydayCooldown = value
	default:
		return ctx.Reply("Unknown setting. Valid settings: default, payday, cooldown")
	}

	if err := c.db.SetBankSettings(bs); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Set %v to %v.", strings.ToLower(ctx.Args[0]), value))
}
