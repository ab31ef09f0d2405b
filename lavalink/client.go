// Package lavalink implements a client for a Lavalink v4 audio node. The
// bot sends play/pause/volume updates over REST and receives track events
// over the node's websocket.
package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TrackEndHandler is called from the websocket read loop whenever the node
// reports a track ended.
type TrackEndHandler func(guildID, reason string)

type Client struct {
	addr     string
	password string
	userID   string
	log      *zap.Logger

	httpc *http.Client

	mu        sync.Mutex
	ws        *websocket.Conn
	sessionID string
	players   map[string]*Player
	onEnd     TrackEndHandler
	closed    bool
}

type Config struct {
	Address  string
	Password string
	UserID   string
	Log      *zap.Logger
}

func NewClient(c *Config) *Client {
	return &Client{
		addr:     c.Address,
		password: c.Password,
		userID:   c.UserID,
		log:      c.Log,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		players:  map[string]*Player{},
	}
}

// SetUserID sets the bot user ID sent during the websocket handshake, for
// when the ID is not known until the gateway session is open.
func (c *Client) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

// OnTrackEnd registers the handler invoked for TrackEndEvent frames.
func (c *Client) OnTrackEnd(h TrackEndHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnd = h
}

// Connect opens the websocket to the node and waits for the ready frame
// that carries the session ID. The read loop runs until Close.
func (c *Client) Connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", c.password)
	header.Set("User-Id", c.userID)
	header.Set("Client-Name", "grief/1.0")

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+c.addr+"/v4/websocket", header)
	if err != nil {
		return fmt.Errorf("dial lavalink node: %w", err)
	}

	var ready message
	if err := ws.ReadJSON(&ready); err != nil {
		_ = ws.Close()
		return fmt.Errorf("read ready frame: %w", err)
	}
	if ready.Op != opReady || ready.SessionID == "" {
		_ = ws.Close()
		return fmt.Errorf("unexpected first frame op %q", ready.Op)
	}

	c.mu.Lock()
	c.ws = ws
	c.sessionID = ready.SessionID
	c.closed = false
	c.mu.Unlock()

	c.log.Info("connected to lavalink node", zap.String("session", ready.SessionID))
	go c.readLoop(ws)
	return nil
}

func (c *Client) readLoop(ws *websocket.Conn) {
	for {
		var msg message
		if err := ws.ReadJSON(&msg); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Error("lavalink websocket closed", zap.Error(err))
			}
			return
		}

		switch msg.Op {
		case opPlayerUpdate:
			if p := c.existingPlayer(msg.GuildID); p != nil && msg.State != nil {
				p.setPosition(msg.State.Position)
			}
		case opEvent:
			c.handleEvent(&msg)
		case opStats:
			// node stats are not tracked
		}
	}
}

func (c *Client) handleEvent(msg *message) {
	switch msg.Type {
	case eventTrackStart:
		c.log.Debug("track started", zap.String("guild", msg.GuildID))
	case eventTrackEnd:
		c.mu.Lock()
		h := c.onEnd
		c.mu.Unlock()
		if h != nil {
			h(msg.GuildID, msg.Reason)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.ws == nil {
		return nil
	}
	err := c.ws.Close()
	c.ws = nil
	return err
}

// Player returns the player for a guild, creating it if needed.
func (c *Client) Player(guildID string) *Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.players[guildID]; ok {
		return p
	}
	p := newPlayer(c, guildID)
	c.players[guildID] = p
	return p
}

func (c *Client) existingPlayer(guildID string) *Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.players[guildID]
}

// RemovePlayer destroys the node-side player and forgets the local one.
func (c *Client) RemovePlayer(guildID string) error {
	c.mu.Lock()
	delete(c.players, guildID)
	session := c.sessionID
	c.mu.Unlock()

	if session == "" {
		return nil
	}
	return c.do("DELETE", fmt.Sprintf("/v4/sessions/%s/players/%s", session, guildID), nil, nil)
}

// LoadTracks resolves an identifier (URL or ytsearch: query) on the node.
func (c *Client) LoadTracks(identifier string) (*LoadResult, error) {
	var result LoadResult
	path := "/v4/loadtracks?identifier=" + url.QueryEscape(identifier)
	if err := c.do("GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) updatePlayer(guildID string, req *playerUpdateRequest) error {
	c.mu.Lock()
	session := c.sessionID
	c.mu.Unlock()
	if session == "" {
		return fmt.Errorf("lavalink: not connected")
	}
	return c.do("PATCH", fmt.Sprintf("/v4/sessions/%s/players/%s", session, guildID), req, nil)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, "http://"+c.addr+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("lavalink: %s %s returned %d: %s", method, path, res.StatusCode, string(data))
	}

	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}
