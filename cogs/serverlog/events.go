package serverlog

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
)

func (c *Cog) HandleEvent(ctx *bot.EventContext, evt interface{}) {
	switch e := evt.(type) {
	case *discordgo.GuildCreate:
		c.guildCreate(ctx, e)
	case *discordgo.GuildMembersChunk:
		c.guildMembersChunk(ctx, e)
	case *discordgo.GuildMemberAdd:
		c.guildMemberAdd(ctx, e)
	case *discordgo.GuildMemberRemove:
		c.guildMemberRemove(ctx, e)
	case *discordgo.GuildMemberUpdate:
		c.guildMemberUpdate(ctx, e)
	case *discordgo.GuildBanAdd:
		c.guildBanAdd(ctx, e)
	case *discordgo.GuildBanRemove:
		c.guildBanRemove(ctx, e)
	case *discordgo.MessageUpdate:
		c.messageUpdate(ctx, e)
	case *discordgo.MessageDelete:
		c.messageDelete(ctx, e)
	case *discordgo.MessageDeleteBulk:
		c.messageDeleteBulk(ctx, e)
	}
}

func (c *Cog) guildCreate(ctx *bot.EventContext, g *discordgo.GuildCreate) {
	if len(g.Members) != g.MemberCount {
		_ = ctx.Sess.RequestGuildMembers(g.ID, "", 0, "", false)
		return
	}

	for _, mem := range g.Members {
		if err := c.store.SetMember(mem); err != nil {
			c.log.Error("failed to set member", zap.Error(err))
		}
	}
	c.log.Info("guild loaded", zap.String("name", g.Name))
}

func (c *Cog) guildMembersChunk(ctx *bot.EventContext, g *discordgo.GuildMembersChunk) {
	for _, mem := range g.Members {
		if err := c.store.SetMember(mem); err != nil {
			c.log.Error("failed to set member", zap.Error(err))
		}
	}
}

func (c *Cog) guildMemberAdd(ctx *bot.EventContext, m *discordgo.GuildMemberAdd) {
	if err := c.store.SetMember(m.Member); err != nil {
		c.log.Error("failed to set member", zap.Error(err))
	}

	if ctx.GuildConfig == nil || ctx.GuildConfig.JoinLog == "" {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}

	ts, _ := bot.ParseSnowflake(m.User.ID)
	embed := discordgo.MessageEmbed{
		Color: bot.ColorBlue,
		Title: "User joined",
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.User.AvatarURL("256"),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "User",
				Value: fmt.Sprintf("%v\n%v (%v)", m.User.Mention(), m.User.String(), m.User.ID),
			},
			{
				Name:  "Creation date",
				Value: fmt.Sprintf("<t:%v:R>", ts.Unix()),
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}

	_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.JoinLog, &embed)
}

func (c *Cog) guildMemberRemove(ctx *bot.EventContext, m *discordgo.GuildMemberRemove) {
	defer func() {
		if err := c.store.DeleteMember(m.GuildID, m.User.ID); err != nil {
			c.log.Error("failed to delete member", zap.Error(err))
		}
	}()

	if ctx.GuildConfig == nil || ctx.GuildConfig.LeaveLog == "" {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}

	embed := discordgo.MessageEmbed{
		Color: bot.ColorOrange,
		Title: "User left or kicked",
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.User.AvatarURL("256"),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "User",
				Value:  fmt.Sprintf("%v\n%v", m.User.Mention(), m.User.String()),
				Inline: true,
			},
			{
				Name:   "ID",
				Value:  m.User.ID,
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}

	roles := "None"
	if mem, err := c.store.GetMember(m.GuildID, m.User.ID); err == nil {
		roles = bot.JoinRoleMentions(mem.Roles, 760)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Roles",
		Value: roles,
	})

	_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.LeaveLog, &embed)
}

func (c *Cog) guildMemberUpdate(ctx *bot.EventContext, m *discordgo.GuildMemberUpdate) {
	if err := c.store.SetMember(m.Member); err != nil {
		c.log.Error("failed to update member", zap.Error(err))
	}
}

func (c *Cog) guildBanAdd(ctx *bot.EventContext, m *discordgo.GuildBanAdd) {
	if ctx.GuildConfig == nil || ctx.GuildConfig.BanLog == "" {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}

	embed := discordgo.MessageEmbed{
		Color: bot.ColorRed,
		Title: "User banned",
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.User.AvatarURL("256"),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "User",
				Value: fmt.Sprintf("%v\n%v", m.User.Mention(), m.User.String()),
			},
			{
				Name:  "ID",
				Value: m.User.ID,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}

	if _, err := c.store.GetMember(m.GuildID, m.User.ID); err != nil {
		// user was never in the server
		embed.Title += " - Hackban"
		_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.BanLog, &embed)
		return
	}

	messageLog, err := c.store.GetMessageLog(m.GuildID, "", m.User.ID)
	if err != nil || len(messageLog) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "24h user log",
			Value: "No history.",
		})
		_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.BanLog, &embed)
		return
	}

	text := strings.Builder{}
	for _, cmsg := range messageLog {
		ch, err := ctx.Sess.State.Channel(cmsg.Message.ChannelID)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("\nUser: %v (%v)\nChannel: %v (%v)\nContent: %v\n",
			cmsg.Message.Author.String(), cmsg.Message.Author.ID, ch.Name, ch.ID, cmsg.Message.Content))
		if len(cmsg.Attachments) > 0 {
			text.WriteString("Message had attachment\n")
		}
	}

	msg, err := ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.BanLog, &embed)
	if err != nil {
		c.log.Info("failed to send ban log", zap.Error(err))
		return
	}

	buf := bytes.Buffer{}
	buf.WriteString(text.String())
	_, _ = ctx.Sess.ChannelMessageSendComplex(ctx.GuildConfig.BanLog, &discordgo.MessageSend{
		Content: fmt.Sprintf("Log file for ban log message ID %v:", msg.ID),
		File: &discordgo.File{
			Name:   fmt.Sprintf("banlog_%v.txt", m.User.ID),
			Reader: &buf,
		},
	})
}

func (c *Cog) guildBanRemove(ctx *bot.EventContext, m *discordgo.GuildBanRemove) {
	if ctx.GuildConfig == nil || ctx.GuildConfig.UnbanLog == "" {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}

	embed := discordgo.MessageEmbed{
		Color: bot.ColorGreen,
		Title: "User unbanned",
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.User.AvatarURL("256"),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "User",
				Value: fmt.Sprintf("%v\n%v", m.User.Mention(), m.User.String()),
			},
			{
				Name:  "ID",
				Value: m.User.ID,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}
	_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.UnbanLog, &embed)
}

func (c *Cog) messageUpdate(ctx *bot.EventContext, m *discordgo.MessageUpdate) {
	if ctx.GuildConfig == nil || ctx.GuildConfig.MsgEditLog == "" {
		return
	}
	// an empty content update is an embed or attachment change
	if m.Content == "" {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}

	oldm, err := c.store.GetMessage(m.GuildID, m.ChannelID, m.ID)
	if err != nil {
		return
	}
	oldmsg := oldm.Message
	if oldmsg.Content == m.Content {
		return
	}

	embed := discordgo.MessageEmbed{
		Color: bot.ColorBlue,
		Title: "Message edited",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "User",
				Value:  fmt.Sprintf("%v\n%v\n%v", oldmsg.Author.Mention(), oldmsg.Author.String(), oldmsg.Author.ID),
				Inline: true,
			},
			{
				Name:   "Message ID",
				Value:  m.ID,
				Inline: true,
			},
			{
				Name:  "Channel",
				Value: fmt.Sprintf("<#%v> (%v)", m.ChannelID, m.ChannelID),
			},
			{
				Name:  "Old content",
				Value: truncateField(oldmsg.Content),
			},
			{
				Name:  "New content",
				Value: truncateField(m.Content),
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}

	_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.MsgEditLog, &embed)

	oldm.Message.Content = m.Content
	if err := c.store.SetMessage(oldm); err != nil {
		c.log.Error("failed to update cached message", zap.Error(err))
	}
}

func (c *Cog) messageDelete(ctx *bot.EventContext, m *discordgo.MessageDelete) {
	if ctx.GuildConfig == nil || ctx.GuildConfig.MsgDeleteLog == "" {
		return
	}

	msg, err := c.store.GetMessage(m.GuildID, m.ChannelID, m.ID)
	if err != nil {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}

	embed := discordgo.MessageEmbed{
		Color: bot.ColorWhite,
		Title: "Message deleted",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "User",
				Value:  fmt.Sprintf("%v\n%v\n%v", msg.Message.Author.Mention(), msg.Message.Author.String(), msg.Message.Author.ID),
				Inline: true,
			},
			{
				Name:   "Message ID",
				Value:  m.ID,
				Inline: true,
			},
			{
				Name:  "Channel",
				Value: fmt.Sprintf("<#%v> (%v)", m.ChannelID, m.ChannelID),
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}

	content := msg.Message.Content
	if content == "" {
		content = "No content"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Content",
		Value: truncateField(content),
	})

	if len(msg.Attachments) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Total attachments",
			Value: fmt.Sprint(len(msg.Attachments)),
		})
	}

	_, _ = ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.MsgDeleteLog, &embed)

	if len(msg.Attachments) > 0 {
		data := &discordgo.MessageSend{
			Content: fmt.Sprintf("File(s) attached to message ID %v:", m.ID),
		}
		for _, att := range msg.Attachments {
			data.Files = append(data.Files, &discordgo.File{
				Name:   att.Filename,
				Reader: bytes.NewReader(att.Data),
			})
		}
		_, _ = ctx.Sess.ChannelMessageSendComplex(ctx.GuildConfig.MsgDeleteLog, data)
	}
}

func (c *Cog) messageDeleteBulk(ctx *bot.EventContext, m *discordgo.MessageDeleteBulk) {
	if ctx.GuildConfig == nil || ctx.GuildConfig.MsgDeleteLog == "" {
		return
	}
	g, err := ctx.Sess.State.Guild(m.GuildID)
	if err != nil {
		return
	}
	ts := time.Now()

	embed := discordgo.MessageEmbed{
		Color: bot.ColorWhite,
		Title: fmt.Sprintf("Bulk message delete - (%v) messages deleted", len(m.Messages)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Channel",
				Value:  fmt.Sprintf("<#%v>", m.ChannelID),
				Inline: true,
			},
		},
		Timestamp: ts.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			IconURL: discordgo.EndpointGuildIcon(g.ID, g.Icon),
			Text:    g.Name,
		},
	}

	var deleted []*struct {
		author  string
		id      string
		content string
		files   int
	}
	for _, msgid := range m.Messages {
		delmsg, err := c.store.GetMessage(m.GuildID, m.ChannelID, msgid)
		if err != nil {
			continue
		}
		deleted = append(deleted, &struct {
			author  string
			id      string
			content string
			files   int
		}{
			author:  delmsg.Message.Author.String(),
			id:      delmsg.Message.Author.ID,
			content: delmsg.Message.Content,
			files:   len(delmsg.Attachments),
		})
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("%v - %v\n\n\n", m.ChannelID, ts.Format(time.RFC1123)))
	for _, msg := range deleted {
		text.WriteString(fmt.Sprintf("\nUser: %v (%v)\nContent: %v\n", msg.author, msg.id, msg.content))
		if msg.files > 0 {
			text.WriteString("Message had attachment\n")
		}
	}

	sent, err := ctx.Sess.ChannelMessageSendEmbed(ctx.GuildConfig.MsgDeleteLog, &embed)
	if err != nil {
		c.log.Info("failed to send bulk delete log", zap.Error(err))
		return
	}

	buf := bytes.Buffer{}
	buf.WriteString(text.String())
	_, _ = ctx.Sess.ChannelMessageSendComplex(ctx.GuildConfig.MsgDeleteLog, &discordgo.MessageSend{
		Content: fmt.Sprintf("Log file for delete log message ID %v:", sent.ID),
		File: &discordgo.File{
			Name:   "deletelog_" + m.ChannelID + ".txt",
			Reader: &buf,
		},
	})
}

// truncateField keeps a value within the embed field limit.
func truncateField(s string) string {
	if len(s) > 1024 {
		return s[:1021] + "..."
	}
	return s
}
