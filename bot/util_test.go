package bot

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestParseSnowflake(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    time.Time
		wantErr bool
	}{
		{
			name:    "valid test",
			args:    "163454407999094786",
			want:    time.Unix(1459040967, 0),
			wantErr: false,
		},
		{
			name:    "invalid test",
			args:    "asdf",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSnowflake(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSnowflake() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseSnowflake() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimChannelString(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{
			name: "mention",
			args: "<#1234>",
			want: "1234",
		},
		{
			name: "bare id",
			args: "1234",
			want: "1234",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimChannelString(tt.args); got != tt.want {
				t.Errorf("TrimChannelString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimUserString(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{
			name: "mention",
			args: "<@1234>",
			want: "1234",
		},
		{
			name: "nickname mention",
			args: "<@!1234>",
			want: "1234",
		},
		{
			name: "bare id",
			args: "1234",
			want: "1234",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimUserString(tt.args); got != tt.want {
				t.Errorf("TrimUserString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		prefix   string
		wantName string
		wantArgs []string
		wantOk   bool
	}{
		{
			name:     "simple command",
			content:  ";ping",
			prefix:   ";",
			wantName: "ping",
			wantOk:   true,
		},
		{
			name:     "command with args",
			content:  ";warn <@1234> spamming a lot",
			prefix:   ";",
			wantName: "warn",
			wantArgs: []string{"<@1234>", "spamming", "a", "lot"},
			wantOk:   true,
		},
		{
			name:     "upper case name",
			content:  ";PING",
			prefix:   ";",
			wantName: "ping",
			wantOk:   true,
		},
		{
			name:    "wrong prefix",
			content: "!ping",
			prefix:  ";",
			wantOk:  false,
		},
		{
			name:    "prefix only",
			content: ";",
			prefix:  ";",
			wantOk:  false,
		},
		{
			name:     "multi char prefix",
			content:  "fl.set join",
			prefix:   "fl.",
			wantName: "set",
			wantArgs: []string{"join"},
			wantOk:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotName, gotArgs, gotOk := ParseCommand(tt.content, tt.prefix)
			if gotOk != tt.wantOk {
				t.Fatalf("ParseCommand() ok = %v, want %v", gotOk, tt.wantOk)
			}
			if gotName != tt.wantName {
				t.Errorf("ParseCommand() name = %v, want %v", gotName, tt.wantName)
			}
			if len(gotArgs) != len(tt.wantArgs) || (len(tt.wantArgs) > 0 && !reflect.DeepEqual(gotArgs, tt.wantArgs)) {
				t.Errorf("ParseCommand() args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestPagify(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  int
	}{
		{
			name:  "empty",
			text:  "",
			limit: 10,
			want:  0,
		},
		{
			name:  "fits in one page",
			text:  "hello",
			limit: 10,
			want:  1,
		},
		{
			name:  "splits on newlines",
			text:  strings.Repeat("line\n", 10),
			limit: 12,
			want:  5,
		},
		{
			name:  "hard split without newlines",
			text:  strings.Repeat("a", 25),
			limit: 10,
			want:  3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := Pagify(tt.text, tt.limit)
			if len(pages) != tt.want {
				t.Fatalf("Pagify() = %v pages, want %v: %q", len(pages), tt.want, pages)
			}
			for i, p := range pages {
				if len(p) > tt.limit {
					t.Errorf("page %v length = %v, exceeds limit %v", i, len(p), tt.limit)
				}
			}
		})
	}
}

func TestTopRolePosition(t *testing.T) {
	g := &discordgo.Guild{
		Roles: []*discordgo.Role{
			{ID: "everyone", Position: 0},
			{ID: "member", Position: 1},
			{ID: "mod", Position: 5},
			{ID: "admin", Position: 10},
		},
	}

	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{
			name:  "no roles",
			roles: nil,
			want:  0,
		},
		{
			name:  "single role",
			roles: []string{"member"},
			want:  1,
		},
		{
			name:  "highest wins",
			roles: []string{"member", "mod"},
			want:  5,
		},
		{
			name:  "unknown role ignored",
			roles: []string{"gone", "admin"},
			want:  10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopRolePosition(g, &discordgo.Member{Roles: tt.roles}); got != tt.want {
				t.Errorf("TopRolePosition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanActOn(t *testing.T) {
	g := &discordgo.Guild{
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "member", Position: 1},
			{ID: "mod", Position: 5},
		},
	}
	member := func(id string, roles ...string) *discordgo.Member {
		return &discordgo.Member{User: &discordgo.User{ID: id}, Roles: roles}
	}

	tests := []struct {
		name   string
		author *discordgo.Member
		target *discordgo.Member
		want   bool
	}{
		{
			name:   "mod over member",
			author: member("a", "mod"),
			target: member("b", "member"),
			want:   true,
		},
		{
			name:   "equal roles",
			author: member("a", "mod"),
			target: member("b", "mod"),
			want:   false,
		},
		{
			name:   "owner over mod",
			author: member("owner"),
			target: member("b", "mod"),
			want:   true,
		},
		{
			name:   "mod cannot act on owner",
			author: member("a", "mod"),
			target: member("owner"),
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanActOn(g, tt.author, tt.target); got != tt.want {
				t.Errorf("CanActOn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinRoleMentions(t *testing.T) {
	if got := JoinRoleMentions(nil, 100); got != "None" {
		t.Errorf("JoinRoleMentions(nil) = %v, want None", got)
	}

	got := JoinRoleMentions([]string{"1", "2"}, 100)
	if got != "<@&1>, <@&2>" {
		t.Errorf("JoinRoleMentions() = %v, want <@&1>, <@&2>", got)
	}

	many := make([]string, 50)
	for i := range many {
		many[i] = "123456789012345678"
	}
	got = JoinRoleMentions(many, 100)
	if !strings.Contains(got, "more") {
		t.Errorf("JoinRoleMentions() = %v, want truncation suffix", got)
	}
	if len(got) > 130 {
		t.Errorf("JoinRoleMentions() length = %v, want bounded output", len(got))
	}
}
