// Package audio plays music through a Lavalink node: queueing, skipping,
// volume and now-playing information.
package audio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/lavalink"
)

type Cog struct {
	client *lavalink.Client
	log    *zap.Logger
}

func New(client *lavalink.Client, log *zap.Logger) *Cog {
	c := &Cog{
		client: client,
		log:    log.Named("audio"),
	}
	client.OnTrackEnd(c.trackEnd)
	return c
}

func (c *Cog) Name() string        { return "audio" }
func (c *Cog) Description() string { return "Play music in voice channels" }

func (c *Cog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "play",
			Aliases:     []string{"p"},
			Description: "Play a track by URL or search query",
			Usage:       "play <url or query>",
			Run:         c.play,
		},
		{
			Name:        "pause",
			Description: "Pause playback",
			Run:         c.pause,
		},
		{
			Name:        "resume",
			Description: "Resume playback",
			Run:         c.resume,
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
			Run:         c.skip,
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
			Run:         c.stop,
		},
		{
			Name:        "queue",
			Aliases:     []string{"q"},
			Description: "Show the queue",
			Run:         c.queue,
		},
		{
			Name:        "nowplaying",
			Aliases:     []string{"np"},
			Description: "Show the current track",
			Run:         c.nowPlaying,
		},
		{
			Name:        "volume",
			Description: "Set the playback volume (0-150)",
			Usage:       "volume <percent>",
			Run:         c.volume,
		},
		{
			Name:        "disconnect",
			Aliases:     []string{"dc"},
			Description: "Leave the voice channel",
			Run:         c.disconnect,
		},
	}
}

// trackEnd advances the queue when the node finishes a track.
func (c *Cog) trackEnd(guildID, reason string) {
	if reason != lavalink.ReasonFinished && reason != lavalink.ReasonLoadFailed {
		return
	}
	if _, err := c.client.Player(guildID).Next(); err != nil {
		c.log.Error("failed to advance queue", zap.String("guild", guildID), zap.Error(err))
	}
}

func (c *Cog) HandleEvent(ctx *bot.EventContext, evt interface{}) {
	switch e := evt.(type) {
	case *discordgo.VoiceServerUpdate:
		if err := c.client.Player(e.GuildID).OnVoiceServerUpdate(e.Token, e.Endpoint); err != nil {
			c.log.Error("failed to forward voice server update", zap.Error(err))
		}
	case *discordgo.VoiceStateUpdate:
		if e.UserID != ctx.Sess.State.User.ID {
			return
		}
		if err := c.client.Player(e.GuildID).OnVoiceStateUpdate(e.SessionID, e.ChannelID); err != nil {
			c.log.Error("failed to forward voice state update", zap.Error(err))
		}
	}
}

func (c *Cog) play(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `play <url or query>`")
	}

	vc := authorVoiceChannel(ctx)
	if vc == "" {
		return ctx.Reply("Join a voice channel first.")
	}

	player := c.client.Player(ctx.Guild.ID)
	if player.ChannelID() != vc {
		sess := ctx.Bot.Discord().SessionForGuild(ctx.Guild.ID)
		if err := sess.ChannelVoiceJoinManual(ctx.Guild.ID, vc, false, true); err != nil {
			return fmt.Errorf("join voice channel: %w", err)
		}
	}

	result, err := c.client.LoadTracks(Identifier(strings.Join(ctx.Args, " ")))
	if err != nil {
		return ctx.Reply("I could not load that.")
	}
	tracks, err := result.Tracks()
	if err != nil {
		return ctx.Reply("I could not load that.")
	}
	if len(tracks) == 0 {
		return ctx.Reply("No results.")
	}

	if result.LoadType == lavalink.LoadTypePlaylist {
		var started bool
		for _, t := range tracks {
			s, err := player.Enqueue(t)
			if err != nil {
				return err
			}
			started = started || s
		}
		if started {
			return ctx.Reply(fmt.Sprintf("Playing a playlist of %v tracks.", len(tracks)))
		}
		return ctx.Reply(fmt.Sprintf("Queued %v tracks.", len(tracks)))
	}

	t := tracks[0]
	started, err := player.Enqueue(t)
	if err != nil {
		return err
	}
	if started {
		return ctx.Reply(fmt.Sprintf("Playing **%v** [%v]", t.Info.Title, FormatDuration(t.Info.Length)))
	}
	return ctx.Reply(fmt.Sprintf("Queued **%v** [%v]", t.Info.Title, FormatDuration(t.Info.Length)))
}

func (c *Cog) pause(ctx *bot.Context) error {
	if err := c.client.Player(ctx.Guild.ID).SetPaused(true); err != nil {
		return err
	}
	return ctx.Tick()
}

func (c *Cog) resume(ctx *bot.Context) error {
	if err := c.client.Player(ctx.Guild.ID).SetPaused(false); err != nil {
		return err
	}
	return ctx.Tick()
}

func (c *Cog) skip(ctx *bot.Context) error {
	player := c.client.Player(ctx.Guild.ID)
	if player.Current() == nil {
		return ctx.Reply("Nothing is playing.")
	}

	next, err := player.Next()
	if err != nil {
		return err
	}
	if next == nil {
		return ctx.Reply("Skipped. The queue is empty.")
	}
	return ctx.Reply(fmt.Sprintf("Skipped. Now playing **%v**", next.Info.Title))
}

func (c *Cog) stop(ctx *bot.Context) error {
	if err := c.client.Player(ctx.Guild.ID).Stop(); err != nil {
		return err
	}
	return ctx.Tick()
}

func (c *Cog) queue(ctx *bot.Context) error {
	player := c.client.Player(ctx.Guild.ID)
	current := player.Current()
	if current == nil {
		return ctx.Reply("Nothing is playing.")
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("Now playing: **%v** [%v]\n", current.Info.Title, FormatDuration(current.Info.Length)))
	for i, t := range player.Queue() {
		text.WriteString(fmt.Sprintf("`%v.` %v [%v]\n", i+1, t.Info.Title, FormatDuration(t.Info.Length)))
		if i == 14 {
			text.WriteString("...\n")
			break
		}
	}
	return ctx.ReplyPages(text.String())
}

func (c *Cog) nowPlaying(ctx *bot.Context) error {
	player := c.client.Player(ctx.Guild.ID)
	t := player.Current()
	if t == nil {
		return ctx.Reply("Nothing is playing.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "Now playing",
		Color: bot.ColorBlue,
		Description: fmt.Sprintf("[%v](%v)\nby %v\n%v / %v",
			t.Info.Title, t.Info.URI, t.Info.Author,
			FormatDuration(player.Position()), FormatDuration(t.Info.Length)),
	}
	return ctx.ReplyEmbed(embed)
}

func (c *Cog) volume(ctx *bot.Context) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply(fmt.Sprintf("Volume is %v%%.", c.client.Player(ctx.Guild.ID).Volume()))
	}

	vol, err := strconv.Atoi(ctx.Args[0])
	if err != nil || vol < 0 || vol > 150 {
		return ctx.Reply("The volume has to be between 0 and 150.")
	}
	if err := c.client.Player(ctx.Guild.ID).SetVolume(vol); err != nil {
		return err
	}
	return ctx.Tick()
}

func (c *Cog) disconnect(ctx *bot.Context) error {
	sess := ctx.Bot.Discord().SessionForGuild(ctx.Guild.ID)
	if err := sess.ChannelVoiceJoinManual(ctx.Guild.ID, "", false, false); err != nil {
		return err
	}
	if err := c.client.RemovePlayer(ctx.Guild.ID); err != nil {
		c.log.Error("failed to remove player", zap.String("guild", ctx.Guild.ID), zap.Error(err))
	}
	return ctx.Tick()
}

// authorVoiceChannel finds the voice channel the command author is in.
func authorVoiceChannel(ctx *bot.Context) string {
	for _, vs := range ctx.Guild.VoiceStates {
		if vs.UserID == ctx.Msg.Author.ID {
			return vs.ChannelID
		}
	}
	return ""
}

// Identifier turns user input into a node identifier. URLs pass through,
// anything else becomes a youtube search.
func Identifier(input string) string {
	if strings.Contains(input, "://") {
		return input
	}
	return "ytsearch:" + input
}

// FormatDuration renders a track length in milliseconds as m:ss or h:mm:ss.
func FormatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
