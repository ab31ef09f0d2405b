package lavalink

import (
	"encoding/json"
	"fmt"
)

// Wire types for the Lavalink v4 REST and websocket APIs.

type Track struct {
	Encoded string    `json:"encoded"`
	Info    TrackInfo `json:"info"`
}

type TrackInfo struct {
	Identifier string `json:"identifier"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	SourceName string `json:"sourceName"`
	Position   int64  `json:"position"`
}

// Load types returned by /v4/loadtracks.
const (
	LoadTypeTrack    = "track"
	LoadTypePlaylist = "playlist"
	LoadTypeSearch   = "search"
	LoadTypeEmpty    = "empty"
	LoadTypeError    = "error"
)

type LoadResult struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

type playlistData struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Tracks []Track `json:"tracks"`
}

type loadError struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Tracks flattens a load result into the tracks it contains. A search
// result returns all matches; callers usually take the first.
func (r *LoadResult) Tracks() ([]Track, error) {
	switch r.LoadType {
	case LoadTypeTrack:
		var t Track
		if err := json.Unmarshal(r.Data, &t); err != nil {
			return nil, fmt.Errorf("decode track: %w", err)
		}
		return []Track{t}, nil
	case LoadTypePlaylist:
		var p playlistData
		if err := json.Unmarshal(r.Data, &p); err != nil {
			return nil, fmt.Errorf("decode playlist: %w", err)
		}
		return p.Tracks, nil
	case LoadTypeSearch:
		var tracks []Track
		if err := json.Unmarshal(r.Data, &tracks); err != nil {
			return nil, fmt.Errorf("decode search result: %w", err)
		}
		return tracks, nil
	case LoadTypeEmpty:
		return nil, nil
	case LoadTypeError:
		var le loadError
		if err := json.Unmarshal(r.Data, &le); err != nil {
			return nil, fmt.Errorf("decode load error: %w", err)
		}
		return nil, fmt.Errorf("load failed: %s (%s)", le.Message, le.Severity)
	default:
		return nil, fmt.Errorf("unknown load type %q", r.LoadType)
	}
}

// message is an inbound websocket frame. Op decides which fields are set.
type message struct {
	Op        string `json:"op"`
	SessionID string `json:"sessionId,omitempty"`
	GuildID   string `json:"guildId,omitempty"`

	// op = playerUpdate
	State *playerState `json:"state,omitempty"`

	// op = event
	Type   string `json:"type,omitempty"`
	Track  *Track `json:"track,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type playerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
}

// Websocket event types the client reacts to.
const (
	opReady        = "ready"
	opPlayerUpdate = "playerUpdate"
	opStats        = "stats"
	opEvent        = "event"

	eventTrackStart = "TrackStartEvent"
	eventTrackEnd   = "TrackEndEvent"
)

// Track end reasons that should advance the queue.
const (
	ReasonFinished   = "finished"
	ReasonLoadFailed = "loadFailed"
)

// playerUpdateRequest is the body of PATCH /v4/sessions/{session}/players/{guild}.
type playerUpdateRequest struct {
	Track  *playerTrack `json:"track,omitempty"`
	Paused *bool        `json:"paused,omitempty"`
	Volume *int         `json:"volume,omitempty"`
	Voice  *voiceState  `json:"voice,omitempty"`
}

type playerTrack struct {
	Encoded *string `json:"encoded"`
}

type voiceState struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}
