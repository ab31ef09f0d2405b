package lavalink

import (
	"encoding/json"
	"testing"
)

func TestLoadResultTracks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{
			name:    "single track",
			payload: `{"loadType":"track","data":{"encoded":"abc","info":{"title":"song","author":"artist","length":1000}}}`,
			want:    1,
		},
		{
			name:    "playlist",
			payload: `{"loadType":"playlist","data":{"info":{"name":"mix"},"tracks":[{"encoded":"a","info":{"title":"one"}},{"encoded":"b","info":{"title":"two"}}]}}`,
			want:    2,
		},
		{
			name:    "search",
			payload: `{"loadType":"search","data":[{"encoded":"a","info":{"title":"one"}},{"encoded":"b","info":{"title":"two"}},{"encoded":"c","info":{"title":"three"}}]}`,
			want:    3,
		},
		{
			name:    "empty",
			payload: `{"loadType":"empty","data":null}`,
			want:    0,
		},
		{
			name:    "error",
			payload: `{"loadType":"error","data":{"message":"video unavailable","severity":"common"}}`,
			wantErr: true,
		},
		{
			name:    "unknown",
			payload: `{"loadType":"mystery","data":null}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result LoadResult
			if err := json.Unmarshal([]byte(tt.payload), &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tracks, err := result.Tracks()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Tracks() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(tracks) != tt.want {
				t.Errorf("Tracks() = %v tracks, want %v", len(tracks), tt.want)
			}
		})
	}
}

func TestTrackInfoDecode(t *testing.T) {
	payload := `{"loadType":"track","data":{"encoded":"QAAA","info":{"identifier":"dQw4w9WgXcQ","author":"artist","length":212000,"isStream":false,"title":"a song","uri":"https://youtu.be/dQw4w9WgXcQ","sourceName":"youtube","position":0}}}`
	var result LoadResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tracks, err := result.Tracks()
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	got := tracks[0]
	if got.Encoded != "QAAA" {
		t.Errorf("Encoded = %v, want QAAA", got.Encoded)
	}
	if got.Info.Title != "a song" {
		t.Errorf("Title = %v, want a song", got.Info.Title)
	}
	if got.Info.Length != 212000 {
		t.Errorf("Length = %v, want 212000", got.Info.Length)
	}
}

func TestEventMessageDecode(t *testing.T) {
	payload := `{"op":"event","type":"TrackEndEvent","guildId":"1234","track":{"encoded":"abc","info":{"title":"song"}},"reason":"finished"}`
	var msg message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Op != opEvent || msg.Type != eventTrackEnd {
		t.Errorf("op/type = %v/%v, want event/TrackEndEvent", msg.Op, msg.Type)
	}
	if msg.GuildID != "1234" || msg.Reason != ReasonFinished {
		t.Errorf("guild/reason = %v/%v, want 1234/finished", msg.GuildID, msg.Reason)
	}
}

func TestPlayerQueue(t *testing.T) {
	p := newPlayer(nil, "g1")

	// without a client the REST call must not be reached, so only exercise
	// the queue bookkeeping that does not talk to the node
	p.mu.Lock()
	p.current = &Track{Encoded: "a"}
	p.queue = []Track{{Encoded: "b"}, {Encoded: "c"}}
	p.mu.Unlock()

	q := p.Queue()
	if len(q) != 2 || q[0].Encoded != "b" {
		t.Errorf("Queue() = %v, want [b c]", q)
	}

	// mutating the copy must not affect the player
	q[0].Encoded = "z"
	if p.Queue()[0].Encoded != "b" {
		t.Error("Queue() returned a shared slice")
	}

	if p.Current() == nil || p.Current().Encoded != "a" {
		t.Errorf("Current() = %v, want a", p.Current())
	}
}
