package bot

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colors used across the cogs.
type Color = int

const (
	ColorRed    Color = 0xC80000
	ColorOrange Color = 0xF08152
	ColorBlue   Color = 0x61D1ED
	ColorGreen  Color = 0x00C800
	ColorWhite  Color = 0xFFFFFF
)

// TrimChannelString strips the <#...> mention wrapper off a channel
// argument, leaving a bare ID.
func TrimChannelString(chStr string) string {
	chStr = strings.TrimPrefix(chStr, "<#")
	chStr = strings.TrimSuffix(chStr, ">")
	return chStr
}

// TrimUserString strips the <@...> or <@!...> mention wrapper off a user
// argument, leaving a bare ID.
func TrimUserString(uStr string) string {
	uStr = strings.TrimPrefix(uStr, "<@")
	uStr = strings.TrimPrefix(uStr, "!")
	uStr = strings.TrimSuffix(uStr, ">")
	return uStr
}

// ParseSnowflake returns the creation time encoded in a Discord ID.
func ParseSnowflake(id string) (time.Time, error) {
	n, err := strconv.ParseInt(id, 0, 63)
	if err != nil {
		return time.Now(), err
	}
	return time.Unix(((n>>22)+1420070400000)/1000, 0), nil
}

// ParseCommand splits a message into a command name and args if it starts
// with the prefix.
func ParseCommand(content, prefix string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Pagify splits text into chunks no longer than limit, preferring to break
// on newlines.
func Pagify(text string, limit int) []string {
	if text == "" {
		return nil
	}

	var pages []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		pages = append(pages, strings.TrimRight(text[:cut], "\n"))
		text = strings.TrimLeft(text[cut:], "\n")
		if text == "" {
			return pages
		}
	}
	return append(pages, text)
}

// TopRolePosition returns the highest role position a member holds.
// Members with no roles sit at the @everyone position.
func TopRolePosition(g *discordgo.Guild, m *discordgo.Member) int {
	pos := 0
	for _, rid := range m.Roles {
		for _, role := range g.Roles {
			if role.ID == rid && role.Position > pos {
				pos = role.Position
			}
		}
	}
	return pos
}

// CanActOn reports whether the author may moderate the target, based on
// role hierarchy. Guild owners outrank everyone.
func CanActOn(g *discordgo.Guild, author, target *discordgo.Member) bool {
	if author.User.ID == g.OwnerID {
		return true
	}
	if target.User.ID == g.OwnerID {
		return false
	}
	return TopRolePosition(g, author) > TopRolePosition(g, target)
}

// JoinRoleMentions renders role IDs as mentions, truncating so the result
// fits in an embed field.
func JoinRoleMentions(roles []string, limit int) string {
	if len(roles) == 0 {
		return "None"
	}

	var mentions []string
	for _, r := range roles {
		mentions = append(mentions, "<@&"+r+">")
	}

	var shown []string
	for _, r := range mentions {
		if len(strings.Join(append(shown, r), ", ")) > limit {
			break
		}
		shown = append(shown, r)
	}

	out := strings.Join(shown, ", ")
	if len(shown) != len(mentions) {
		out += " and " + strconv.Itoa(len(mentions)-len(shown)) + " more"
	}
	return out
}
