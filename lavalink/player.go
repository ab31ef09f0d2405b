package lavalink

import "sync"

// Player tracks per-guild playback state: the current track, the queue and
// the voice credentials the node needs to join the channel.
type Player struct {
	client  *Client
	guildID string

	mu       sync.Mutex
	current  *Track
	queue    []Track
	paused   bool
	volume   int
	position int64

	voiceToken     string
	voiceEndpoint  string
	voiceSessionID string
	channelID      string
}

func newPlayer(c *Client, guildID string) *Player {
	return &Player{
		client:  c,
		guildID: guildID,
		volume:  100,
	}
}

// OnVoiceServerUpdate stores the token and endpoint from the gateway and
// pushes the voice state to the node once it is complete.
func (p *Player) OnVoiceServerUpdate(token, endpoint string) error {
	p.mu.Lock()
	p.voiceToken = token
	p.voiceEndpoint = endpoint
	p.mu.Unlock()
	return p.maybeSendVoice()
}

// OnVoiceStateUpdate stores the bot's own voice session for the guild.
func (p *Player) OnVoiceStateUpdate(sessionID, channelID string) error {
	p.mu.Lock()
	p.voiceSessionID = sessionID
	p.channelID = channelID
	p.mu.Unlock()
	return p.maybeSendVoice()
}

func (p *Player) maybeSendVoice() error {
	p.mu.Lock()
	if p.voiceToken == "" || p.voiceEndpoint == "" || p.voiceSessionID == "" {
		p.mu.Unlock()
		return nil
	}
	voice := &voiceState{
		Token:     p.voiceToken,
		Endpoint:  p.voiceEndpoint,
		SessionID: p.voiceSessionID,
	}
	p.mu.Unlock()
	return p.client.updatePlayer(p.guildID, &playerUpdateRequest{Voice: voice})
}

// ChannelID returns the voice channel the player is bound to, if any.
func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

// Enqueue either starts the track immediately or appends it to the queue.
// It returns true if playback started.
func (p *Player) Enqueue(t Track) (bool, error) {
	p.mu.Lock()
	if p.current != nil {
		p.queue = append(p.queue, t)
		p.mu.Unlock()
		return false, nil
	}
	p.current = &t
	p.mu.Unlock()
	return true, p.play(t)
}

func (p *Player) play(t Track) error {
	return p.client.updatePlayer(p.guildID, &playerUpdateRequest{
		Track: &playerTrack{Encoded: &t.Encoded},
	})
}

// Next pops the queue and plays the next track. It returns the new current
// track, or nil if the queue ran dry.
func (p *Player) Next() (*Track, error) {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.current = nil
		p.position = 0
		p.mu.Unlock()
		return nil, p.stop()
	}
	t := p.queue[0]
	p.queue = p.queue[1:]
	p.current = &t
	p.mu.Unlock()
	return &t, p.play(t)
}

// Stop clears the queue and stops playback.
func (p *Player) Stop() error {
	p.mu.Lock()
	p.queue = nil
	p.current = nil
	p.position = 0
	p.mu.Unlock()
	return p.stop()
}

func (p *Player) stop() error {
	return p.client.updatePlayer(p.guildID, &playerUpdateRequest{
		Track: &playerTrack{Encoded: nil},
	})
}

func (p *Player) SetPaused(paused bool) error {
	p.mu.Lock()
	p.paused = paused
	p.mu.Unlock()
	return p.client.updatePlayer(p.guildID, &playerUpdateRequest{Paused: &paused})
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetVolume sets the player volume, clamped to 0-1000 per the node API.
func (p *Player) SetVolume(volume int) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1000 {
		volume = 1000
	}
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	return p.client.updatePlayer(p.guildID, &playerUpdateRequest{Volume: &volume})
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) Current() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Queue returns a copy of the pending tracks.
func (p *Player) Queue() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := make([]Track, len(p.queue))
	copy(q, p.queue)
	return q
}

func (p *Player) setPosition(pos int64) {
	p.mu.Lock()
	p.position = pos
	p.mu.Unlock()
}

// Position is the playback position in milliseconds, as last reported by
// the node.
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}
