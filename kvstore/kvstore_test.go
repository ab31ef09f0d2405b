package kvstore

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemberRoundTrip(t *testing.T) {
	s := newTestStore(t)

	mem := &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u1", Username: "jeff"},
		Roles:   []string{"r1", "r2"},
	}
	if err := s.SetMember(mem); err != nil {
		t.Fatalf("SetMember() error = %v", err)
	}

	got, err := s.GetMember("g1", "u1")
	if err != nil {
		t.Fatalf("GetMember() error = %v", err)
	}
	if got.User.Username != "jeff" {
		t.Errorf("Username = %v, want jeff", got.User.Username)
	}
	if len(got.Roles) != 2 {
		t.Errorf("Roles = %v, want 2 roles", got.Roles)
	}

	if err := s.DeleteMember("g1", "u1"); err != nil {
		t.Fatalf("DeleteMember() error = %v", err)
	}
	if _, err := s.GetMember("g1", "u1"); !IsNotFound(err) {
		t.Errorf("GetMember() after delete error = %v, want not found", err)
	}
}

func TestMessageLog(t *testing.T) {
	s := newTestStore(t)

	msgs := []*discordgo.Message{
		{ID: "300", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "u1"}, Content: "third"},
		{ID: "100", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "u1"}, Content: "first"},
		{ID: "200", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "u2"}, Content: "second"},
		{ID: "400", GuildID: "g1", ChannelID: "c2", Author: &discordgo.User{ID: "u1"}, Content: "other channel"},
	}
	for _, m := range msgs {
		if err := s.SetMessage(&CachedMessage{Message: m}); err != nil {
			t.Fatalf("SetMessage(%v) error = %v", m.ID, err)
		}
	}

	got, err := s.GetMessage("g1", "c1", "100")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if got.Message.Content != "first" {
		t.Errorf("Content = %v, want first", got.Message.Content)
	}

	all, err := s.GetMessageLog("g1", "c1", "")
	if err != nil {
		t.Fatalf("GetMessageLog() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetMessageLog() = %v messages, want 3", len(all))
	}
	if all[0].Message.ID != "100" || all[2].Message.ID != "300" {
		t.Errorf("GetMessageLog() order = [%v %v %v], want oldest first", all[0].Message.ID, all[1].Message.ID, all[2].Message.ID)
	}

	byUser, err := s.GetMessageLog("g1", "c1", "u1")
	if err != nil {
		t.Fatalf("GetMessageLog() error = %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("GetMessageLog(u1) = %v messages, want 2", len(byUser))
	}
}

func TestMessageLogPrefixBoundaries(t *testing.T) {
	s := newTestStore(t)

	msgs := []*discordgo.Message{
		{ID: "100", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "u1"}, Content: "in c1"},
		{ID: "200", GuildID: "g1", ChannelID: "c10", Author: &discordgo.User{ID: "u1"}, Content: "in c10"},
		{ID: "300", GuildID: "g10", ChannelID: "c1", Author: &discordgo.User{ID: "u1"}, Content: "other guild"},
	}
	for _, m := range msgs {
		if err := s.SetMessage(&CachedMessage{Message: m}); err != nil {
			t.Fatalf("SetMessage(%v) error = %v", m.ID, err)
		}
	}

	// a channel scan must not bleed into channels sharing the ID prefix
	byChannel, err := s.GetMessageLog("g1", "c1", "")
	if err != nil {
		t.Fatalf("GetMessageLog() error = %v", err)
	}
	if len(byChannel) != 1 || byChannel[0].Message.ID != "100" {
		t.Errorf("GetMessageLog(g1, c1) = %v messages, want only message 100", len(byChannel))
	}

	// a guild-wide scan covers all its channels but not guild g10
	byGuild, err := s.GetMessageLog("g1", "", "")
	if err != nil {
		t.Fatalf("GetMessageLog() error = %v", err)
	}
	if len(byGuild) != 2 {
		t.Errorf("GetMessageLog(g1) = %v messages, want 2", len(byGuild))
	}
}

func TestSortByID(t *testing.T) {
	messages := []*CachedMessage{
		{Message: &discordgo.Message{ID: "3"}},
		{Message: &discordgo.Message{ID: "1"}},
		{Message: &discordgo.Message{ID: "2"}},
	}
	SortByID(messages)
	for i, want := range []string{"1", "2", "3"} {
		if messages[i].Message.ID != want {
			t.Errorf("messages[%v].ID = %v, want %v", i, messages[i].Message.ID, want)
		}
	}
}
