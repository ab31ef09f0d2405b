package discord

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Discord wraps the sharded gateway sessions and funnels every event into
// a single channel for the bot to consume.
type Discord struct {
	token    string
	Sess     *discordgo.Session
	sessions []*discordgo.Session
	log      *zap.Logger

	Events chan interface{}
}

// NewDiscord creates the shard sessions for the given token. A shard count
// of 0 asks the gateway for its recommendation.
func NewDiscord(token string, shards int, log *zap.Logger) (*Discord, error) {
	d := &Discord{
		token:  token,
		log:    log,
		Events: make(chan interface{}, 256),
	}

	if shards < 1 {
		recommended, err := recommendedShards(d.token)
		if err != nil {
			return nil, err
		}
		shards = recommended
	}

	for i := 0; i < shards; i++ {
		s, err := discordgo.New("Bot " + d.token)
		if err != nil {
			return nil, err
		}

		s.State.TrackVoice = true
		s.State.TrackPresences = false
		s.ShardCount = shards
		s.ShardID = i
		s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers | discordgo.IntentMessageContent)
		s.AddHandler(onEvent(d.Events))

		d.sessions = append(d.sessions, s)
		d.log.Info("created session", zap.Int("shard", i))
	}
	d.Sess = d.sessions[0]

	return d, nil
}

func onEvent(e chan interface{}) func(s *discordgo.Session, i interface{}) {
	return func(s *discordgo.Session, i interface{}) {
		e <- i
	}
}

func (d *Discord) AddHandler(h interface{}) {
	for _, s := range d.sessions {
		s.AddHandler(h)
	}
}

// Open opens the Discord sessions.
func (d *Discord) Open() error {
	for _, sess := range d.sessions {
		if err := sess.Open(); err != nil {
			return fmt.Errorf("open shard %d: %w", sess.ShardID, err)
		}
	}
	return nil
}

// Close closes the Discord sessions.
func (d *Discord) Close() {
	for _, sess := range d.sessions {
		if err := sess.Close(); err != nil {
			d.log.Error("failed to close discord session", zap.Int("shard", sess.ShardID), zap.Error(err))
		}
	}
}

// SessionForGuild returns the session whose shard owns the guild.
func (d *Discord) SessionForGuild(guildID string) *discordgo.Session {
	id, err := parseSnowflakeInt(guildID)
	if err != nil || len(d.sessions) == 0 {
		return d.Sess
	}
	return d.sessions[(id>>22)%int64(len(d.sessions))]
}

// recommendedShards asks discord for the recommended shard count for the
// bot given the token.
func recommendedShards(token string) (int, error) {
	req, err := http.NewRequest("GET", "https://discord.com/api/v10/gateway/bot", nil)
	if err != nil {
		return -1, err
	}
	req.Header.Add("Authorization", "Bot "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return -1, err
	}
	defer res.Body.Close()

	resp := &discordgo.GatewayBotResponse{}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return -1, err
	}
	if resp.Shards < 1 {
		return -1, fmt.Errorf("gateway returned shard count %d", resp.Shards)
	}

	return resp.Shards, nil
}
