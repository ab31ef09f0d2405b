package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/griefbot/grief/config"
	"github.com/griefbot/grief/database"
	"github.com/griefbot/grief/discord"
	"github.com/griefbot/grief/kvstore"
)

// Exit codes the launcher understands.
const (
	ExitShutdown = 0
	ExitRestart  = 26
)

// maxAttachmentSize caps attachment downloads for the message cache.
const maxAttachmentSize = 1024 * 1024 * 10

type Bot struct {
	cfg   *config.Config
	db    database.DB
	store *kvstore.Store
	disc  *discord.Discord
	sess  *discordgo.Session
	log   *zap.Logger

	cogs     []Cog
	commands map[string]*Command

	startTime time.Time
	done      chan int
}

type Config struct {
	Config *config.Config
	DB     database.DB
	Store  *kvstore.Store
	Log    *zap.Logger
}

func NewBot(c *Config) (*Bot, error) {
	b := &Bot{
		cfg:       c.Config,
		db:        c.DB,
		store:     c.Store,
		log:       c.Log,
		commands:  map[string]*Command{},
		startTime: time.Now(),
		done:      make(chan int, 1),
	}

	disc, err := discord.NewDiscord(c.Config.Token, c.Config.Shards, c.Log.Named("discord"))
	if err != nil {
		return nil, err
	}
	b.disc = disc
	b.sess = disc.Sess

	return b, nil
}

// RegisterCog adds a cog and indexes its commands. Command names and
// aliases must be unique across cogs.
func (b *Bot) RegisterCog(c Cog) error {
	for _, cmd := range c.Commands() {
		cmd.Cog = c.Name()
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			name = strings.ToLower(name)
			if _, ok := b.commands[name]; ok {
				return fmt.Errorf("duplicate command name %q in cog %q", name, c.Name())
			}
			b.commands[name] = cmd
		}
	}
	b.cogs = append(b.cogs, c)
	b.log.Info("registered cog", zap.String("cog", c.Name()), zap.Int("commands", len(c.Commands())))
	return nil
}

// Cogs returns the registered cogs in registration order.
func (b *Bot) Cogs() []Cog {
	return b.cogs
}

// Command looks up a command by name or alias.
func (b *Bot) Command(name string) (*Command, bool) {
	cmd, ok := b.commands[strings.ToLower(name)]
	return cmd, ok
}

// Run opens the gateway sessions and starts the event loop.
func (b *Bot) Run() error {
	go b.listen(b.disc.Events)
	return b.disc.Open()
}

func (b *Bot) Close() {
	b.disc.Close()
}

// Done yields the requested process exit code once Shutdown or Restart has
// been called.
func (b *Bot) Done() <-chan int {
	return b.done
}

// Shutdown asks the process to exit cleanly.
func (b *Bot) Shutdown() {
	select {
	case b.done <- ExitShutdown:
	default:
	}
}

// Restart exits with the code that makes the launcher start a fresh
// process.
func (b *Bot) Restart() {
	select {
	case b.done <- ExitRestart:
	default:
	}
}

func (b *Bot) StartTime() time.Time {
	return b.startTime
}

func (b *Bot) Discord() *discord.Discord {
	return b.disc
}

func (b *Bot) DB() database.DB {
	return b.db
}

func (b *Bot) Store() *kvstore.Store {
	return b.store
}

func (b *Bot) BotConfig() *config.Config {
	return b.cfg
}

func (b *Bot) listen(evtCh <-chan interface{}) {
	for evt := range evtCh {
		switch e := evt.(type) {
		case *discordgo.Ready:
			b.log.Info("logged in", zap.String("user", e.User.String()))
		case *discordgo.Disconnect:
			b.log.Info("disconnected")
		case *discordgo.GuildCreate:
			if _, err := b.db.GetGuild(e.ID); errors.Is(err, database.ErrNotFound) {
				if err := b.db.CreateGuild(e.ID); err != nil {
					b.log.Error("failed to create guild", zap.Error(err))
				}
			}
		case *discordgo.MessageCreate:
			go b.handleMessage(e)
		}

		b.dispatchEvent(evt)
	}
}

// dispatchEvent hands the raw event to every cog that listens for events.
// Guild config is resolved once and shared.
func (b *Bot) dispatchEvent(evt interface{}) {
	gid := eventGuildID(evt)

	ctx := &EventContext{
		Bot:  b,
		Sess: b.sess,
		Log:  b.log,
	}
	if gid != "" {
		gc, err := b.guildConfig(gid)
		if err != nil {
			return
		}
		ctx.GuildConfig = gc
		ctx.Sess = b.disc.SessionForGuild(gid)
	}

	for _, cog := range b.cogs {
		if h, ok := cog.(EventHandler); ok {
			go h.HandleEvent(ctx, evt)
		}
	}
}

// guildConfig fetches a guild row, creating it for guilds joined while the
// bot was offline.
func (b *Bot) guildConfig(gid string) (*database.Guild, error) {
	gc, err := b.db.GetGuild(gid)
	if errors.Is(err, database.ErrNotFound) {
		if err := b.db.CreateGuild(gid); err != nil {
			return nil, err
		}
		return b.db.GetGuild(gid)
	}
	return gc, err
}

func (b *Bot) handleMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	// cache every guild message for the serverlog and cleanup cogs
	_ = b.store.SetMessage(kvstore.NewCachedMessage(m.Message, maxAttachmentSize))

	gc, err := b.guildConfig(m.GuildID)
	if err != nil {
		b.log.Error("failed to get guild config", zap.Error(err))
		return
	}

	prefix := b.cfg.Prefix
	if gc.Prefix != "" {
		prefix = gc.Prefix
	}

	name, args, ok := ParseCommand(m.Content, prefix)
	if !ok {
		return
	}

	cmd, ok := b.Command(name)
	if !ok {
		return
	}

	disabled, err := b.db.CogDisabled(m.GuildID, cmd.Cog)
	if err == nil && disabled {
		return
	}

	ctx, err := b.newContext(m, gc, args)
	if err != nil {
		return
	}

	if reply, ok := b.checkPermissions(ctx, cmd); !ok {
		_ = ctx.Reply(reply)
		return
	}

	if err := cmd.Run(ctx); err != nil {
		b.log.Error("command failed",
			zap.String("command", cmd.Name),
			zap.String("guild", m.GuildID),
			zap.Error(err))
		_ = ctx.Reply("Something went wrong running that command.")
	}
}

func (b *Bot) newContext(m *discordgo.MessageCreate, gc *database.Guild, args []string) (*Context, error) {
	g, err := b.disc.Guild(m.GuildID)
	if err != nil {
		return nil, err
	}
	ch, err := b.disc.Channel(m.ChannelID)
	if err != nil {
		return nil, err
	}
	return &Context{
		Bot:         b,
		Sess:        b.disc.SessionForGuild(m.GuildID),
		Msg:         m,
		Guild:       g,
		Channel:     ch,
		GuildConfig: gc,
		Args:        args,
		Log:         b.log,
	}, nil
}

// checkPermissions returns a user-facing message and false when the author
// may not run the command.
func (b *Bot) checkPermissions(ctx *Context, cmd *Command) (string, bool) {
	if cmd.OwnerOnly && !b.cfg.IsOwner(ctx.Msg.Author.ID) {
		return "This command is owner only.", false
	}

	required := cmd.RequiredPerms
	if cmd.AdminOnly {
		required |= discordgo.PermissionAdministrator
	}
	if required == 0 {
		return "", true
	}

	// guild owners and configured bot owners always pass
	if ctx.Guild.OwnerID == ctx.Msg.Author.ID || b.cfg.IsOwner(ctx.Msg.Author.ID) {
		return "", true
	}

	uperms, err := ctx.Sess.State.UserChannelPermissions(ctx.Msg.Author.ID, ctx.Channel.ID)
	if err != nil {
		return "You don't have permission to use that command.", false
	}
	if uperms&discordgo.PermissionAdministrator != 0 {
		return "", true
	}
	if uperms&required != required {
		return "You don't have permission to use that command.", false
	}
	return "", true
}

// eventGuildID pulls the guild ID off the event types the cogs care about.
func eventGuildID(evt interface{}) string {
	switch e := evt.(type) {
	case *discordgo.MessageCreate:
		return e.GuildID
	case *discordgo.MessageUpdate:
		return e.GuildID
	case *discordgo.MessageDelete:
		return e.GuildID
	case *discordgo.MessageDeleteBulk:
		return e.GuildID
	case *discordgo.GuildMemberAdd:
		return e.GuildID
	case *discordgo.GuildMemberRemove:
		return e.GuildID
	case *discordgo.GuildMemberUpdate:
		return e.GuildID
	case *discordgo.GuildMembersChunk:
		return e.GuildID
	case *discordgo.GuildBanAdd:
		return e.GuildID
	case *discordgo.GuildBanRemove:
		return e.GuildID
	case *discordgo.GuildCreate:
		return e.ID
	case *discordgo.VoiceServerUpdate:
		return e.GuildID
	case *discordgo.VoiceStateUpdate:
		return e.GuildID
	}
	return ""
}
