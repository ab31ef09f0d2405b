// Package modlog records moderation actions as numbered cases and posts
// them to the guild's modlog channel.
package modlog

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/database"
)

type Log struct {
	db  database.DB
	log *zap.Logger
}

func New(db database.DB, log *zap.Logger) *Log {
	return &Log{
		db:  db,
		log: log,
	}
}

// CreateCase assigns the next case number, stores the case and posts it to
// the guild's modlog channel if one is configured. The posting failure is
// logged but does not fail the action that created the case.
func (l *Log) CreateCase(s *discordgo.Session, gc *database.Guild, c *database.Case) (int, error) {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}

	number, err := l.db.CreateCase(c)
	if err != nil {
		return 0, fmt.Errorf("create case: %w", err)
	}

	if gc != nil && gc.ModLog != "" {
		if _, err := s.ChannelMessageSendEmbed(gc.ModLog, Embed(c)); err != nil {
			l.log.Info("failed to post modlog case",
				zap.String("guild", c.GuildID),
				zap.Int("case", number),
				zap.Error(err))
		}
	}
	return number, nil
}

// Embed renders a case the way it appears in the modlog channel.
func Embed(c *database.Case) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: caseColor(c.Type),
		Title: fmt.Sprintf("Case #%d | %s", c.Number, caseTitle(c.Type)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "User",
				Value:  fmt.Sprintf("<@%v> (%v)", c.UserID, c.UserID),
				Inline: true,
			},
			{
				Name:   "Moderator",
				Value:  fmt.Sprintf("<@%v> (%v)", c.ModID, c.ModID),
				Inline: true,
			},
			{
				Name:  "Reason",
				Value: reasonOrPlaceholder(c.Reason),
			},
		},
		Timestamp: time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
	}
}

func reasonOrPlaceholder(reason string) string {
	if reason == "" {
		return "No reason given"
	}
	return reason
}

func caseTitle(t string) string {
	switch t {
	case database.CaseWarning:
		return "Warning"
	case database.CaseUnwarned:
		return "Unwarned"
	case database.CaseKick:
		return "Kick"
	case database.CaseBan:
		return "Ban"
	case database.CaseUnban:
		return "Unban"
	default:
		return t
	}
}

func caseColor(t string) int {
	switch t {
	case database.CaseWarning, database.CaseUnwarned:
		return bot.ColorOrange
	case database.CaseKick:
		return bot.ColorOrange
	case database.CaseBan:
		return bot.ColorRed
	case database.CaseUnban:
		return bot.ColorGreen
	default:
		return bot.ColorWhite
	}
}
