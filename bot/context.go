package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/database"
)

// Context is handed to command handlers. Args excludes the command name.
type Context struct {
	Bot         *Bot
	Sess        *discordgo.Session
	Msg         *discordgo.MessageCreate
	Guild       *discordgo.Guild
	Channel     *discordgo.Channel
	GuildConfig *database.Guild
	Args        []string
	Log         *zap.Logger
}

func (c *Context) Reply(text string) error {
	_, err := c.Sess.ChannelMessageSend(c.Msg.ChannelID, text)
	return err
}

func (c *Context) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := c.Sess.ChannelMessageSendEmbed(c.Msg.ChannelID, embed)
	return err
}

// ReplyPages sends long text as a series of messages, split on line
// boundaries so each stays within the message size limit.
func (c *Context) ReplyPages(text string) error {
	for _, page := range Pagify(text, 1990) {
		if _, err := c.Sess.ChannelMessageSend(c.Msg.ChannelID, page); err != nil {
			return err
		}
	}
	return nil
}

// Tick acknowledges a command with a check mark reaction, the way most
// moderation commands confirm success.
func (c *Context) Tick() error {
	return c.Sess.MessageReactionAdd(c.Msg.ChannelID, c.Msg.ID, "✅")
}

// SaveGuildConfig persists the context's guild row.
func (c *Context) SaveGuildConfig() error {
	return c.Bot.DB().UpdateGuild(c.GuildConfig)
}

// FooterEmbed stamps the standard guild footer and timestamp on an embed.
func (c *Context) FooterEmbed(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	embed.Timestamp = time.Now().Format(time.RFC3339)
	embed.Footer = &discordgo.MessageEmbedFooter{
		IconURL: discordgo.EndpointGuildIcon(c.Guild.ID, c.Guild.Icon),
		Text:    c.Guild.Name,
	}
	return embed
}
