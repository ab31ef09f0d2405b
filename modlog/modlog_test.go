package modlog

import (
	"strings"
	"testing"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/database"
)

func TestEmbed(t *testing.T) {
	tests := []struct {
		name      string
		c         *database.Case
		wantTitle string
		wantColor int
	}{
		{
			name:      "warning",
			c:         &database.Case{Number: 3, Type: database.CaseWarning, UserID: "u1", ModID: "m1", Reason: "spam", CreatedAt: 1000},
			wantTitle: "Case #3 | Warning",
			wantColor: bot.ColorOrange,
		},
		{
			name:      "ban",
			c:         &database.Case{Number: 1, Type: database.CaseBan, UserID: "u1", ModID: "m1", Reason: "raid", CreatedAt: 1000},
			wantTitle: "Case #1 | Ban",
			wantColor: bot.ColorRed,
		},
		{
			name:      "unban",
			c:         &database.Case{Number: 7, Type: database.CaseUnban, UserID: "u1", ModID: "m1", CreatedAt: 1000},
			wantTitle: "Case #7 | Unban",
			wantColor: bot.ColorGreen,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Embed(tt.c)
			if e.Title != tt.wantTitle {
				t.Errorf("Title = %v, want %v", e.Title, tt.wantTitle)
			}
			if e.Color != tt.wantColor {
				t.Errorf("Color = %#x, want %#x", e.Color, tt.wantColor)
			}
			if len(e.Fields) != 3 {
				t.Fatalf("Fields = %v, want 3", len(e.Fields))
			}
			if !strings.Contains(e.Fields[0].Value, tt.c.UserID) {
				t.Errorf("User field = %v, want mention of %v", e.Fields[0].Value, tt.c.UserID)
			}
		})
	}
}

func TestEmbedNoReason(t *testing.T) {
	e := Embed(&database.Case{Number: 1, Type: database.CaseKick, CreatedAt: 1000})
	if e.Fields[2].Value != "No reason given" {
		t.Errorf("Reason field = %v, want placeholder", e.Fields[2].Value)
	}
}
