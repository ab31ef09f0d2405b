// Package cleanup bulk-deletes recent messages in a channel, optionally
// filtered to one user or to bots.
package cleanup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
)

// Bulk deletion only works on messages younger than this.
const maxMessageAge = 14 * 24 * time.Hour

// bulkDeleteLimit is the most IDs one bulk delete call accepts; anything
// beyond it would be silently dropped.
const bulkDeleteLimit = 100

// How far back the cleanup commands will look.
const searchLimit = 1000

type Cog struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Cog {
	return &Cog{
		log: log.Named("cleanup"),
	}
}

func (c *Cog) Name() string        { return "cleanup" }
func (c *Cog) Description() string { return "Bulk delete messages" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:          "cleanup",
			Description:   "Delete the last messages in this channel, optionally filtered",
			Usage:         "cleanup [user|bots] [args] <count>",
			RequiredPerms: discordgo.PermissionManageMessages,
			Run:           c.cleanup,
		},
	}
}

func (c *Cog) cleanup(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `cleanup [user|bots] [args] <count>`")
	}

	var filter func(*discordgo.Message) bool
	countArg := ctx.Args[0]

	switch strings.ToLower(ctx.Args[0]) {
	case "user":
		if len(ctx.Args) < 3 {
			return ctx.Reply("Usage: `cleanup user <user> <count>`")
		}
		uid := bot.TrimUserString(ctx.Args[1])
		filter = func(m *discordgo.Message) bool {
			return m.Author != nil && m.Author.ID == uid
		}
		countArg = ctx.Args[2]
	case "bots":
		if len(ctx.Args) < 2 {
			return ctx.Reply("Usage: `cleanup bots <count>`")
		}
		filter = func(m *discordgo.Message) bool {
			return m.Author != nil && m.Author.Bot
		}
		countArg = ctx.Args[1]
	}

	count, err := strconv.Atoi(countArg)
	if err != nil || count < 1 {
		return ctx.Reply("The count has to be a positive number.")
	}
	count = clampCount(count)

	ids, err := c.collect(ctx, count, filter)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ctx.Reply("Found no messages to delete.")
	}

	if err := ctx.Sess.ChannelMessagesBulkDelete(ctx.Channel.ID, ids); err != nil {
		return ctx.Reply("I could not delete the messages. Check my permissions.")
	}

	c.log.Info("cleaned up messages",
		zap.String("channel", ctx.Channel.ID),
		zap.String("mod", ctx.Msg.Author.ID),
		zap.Int("count", len(ids)))

	reply, err := ctx.Sess.ChannelMessageSend(ctx.Channel.ID, fmt.Sprintf("Deleted %v messages.", len(ids)-1))
	if err == nil {
		// keep the channel tidy, remove the confirmation after a moment
		time.AfterFunc(5*time.Second, func() {
			_ = ctx.Sess.ChannelMessageDelete(ctx.Channel.ID, reply.ID)
		})
	}
	return nil
}

// clampCount bounds a requested count so the matched messages plus the
// invoking message still fit in a single bulk delete call.
func clampCount(count int) int {
	if count > bulkDeleteLimit-1 {
		return bulkDeleteLimit - 1
	}
	return count
}

// collect walks the channel history backwards from the invoking message and
// returns up to count message IDs matching the filter, skipping anything too
// old to bulk delete.
func (c *Cog) collect(ctx *bot.Context, count int, filter func(*discordgo.Message) bool) ([]string, error) {
	cutoff := time.Now().Add(-maxMessageAge).Add(time.Minute)

	var ids []string
	before := ctx.Msg.ID
	seen := 0
	ids = append(ids, ctx.Msg.ID) // the invoking message goes too

	for len(ids) < count+1 && seen < searchLimit {
		batch, err := ctx.Sess.ChannelMessages(ctx.Channel.ID, 100, before, "", "")
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for _, m := range batch {
			before = m.ID
			seen++
			ts, err := bot.ParseSnowflake(m.ID)
			if err != nil || ts.Before(cutoff) {
				return ids, nil
			}
			if filter != nil && !filter(m) {
				continue
			}
			ids = append(ids, m.ID)
			if len(ids) == count+1 {
				break
			}
		}
	}
	return ids, nil
}
