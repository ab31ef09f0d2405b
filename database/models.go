package database

// Guild holds per-guild settings: the command prefix, the serverlog
// channels and the warning behavior toggles.
type Guild struct {
	ID           string `db:"id"`
	Prefix       string `db:"prefix"`
	JoinLog      string `db:"join_log"`
	LeaveLog     string `db:"leave_log"`
	BanLog       string `db:"ban_log"`
	UnbanLog     string `db:"unban_log"`
	MsgEditLog   string `db:"msg_edit_log"`
	MsgDeleteLog string `db:"msg_delete_log"`
	ModLog       string `db:"modlog_channel"`

	WarnDM          bool   `db:"warn_dm"`
	WarnShowMod     bool   `db:"warn_show_mod"`
	WarnChannel     string `db:"warn_channel"`
	WarnUseChannel  bool   `db:"warn_use_channel"`
	WarnAllowCustom bool   `db:"warn_allow_custom"`
}

// WarnReason is a registered warning reason that moderators can refer to
// by name instead of typing out a description.
type WarnReason struct {
	GuildID     string `db:"guild_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

type Warning struct {
	ID        string `db:"id"`
	GuildID   string `db:"guild_id"`
	UserID    string `db:"user_id"`
	ModID     string `db:"mod_id"`
	Reason    string `db:"reason"`
	CreatedAt int64  `db:"created_at"`
}

// Case is a modlog entry. Numbers are per guild and assigned by the
// database when the case is created.
type Case struct {
	GuildID   string `db:"guild_id"`
	Number    int    `db:"number"`
	Type      string `db:"type"`
	UserID    string `db:"user_id"`
	ModID     string `db:"mod_id"`
	Reason    string `db:"reason"`
	CreatedAt int64  `db:"created_at"`
}

// Case types written by the mod and warnings cogs.
const (
	CaseWarning  = "warning"
	CaseUnwarned = "unwarned"
	CaseKick     = "kick"
	CaseBan      = "ban"
	CaseUnban    = "unban"
)

type Account struct {
	GuildID    string `db:"guild_id"`
	UserID     string `db:"user_id"`
	Balance    int64  `db:"balance"`
	LastPayday int64  `db:"last_payday"`
}

type BankSettings struct {
	GuildID        string `db:"guild_id"`
	DefaultBalance int64  `db:"default_balance"`
	PaydayAmount   int64  `db:"payday_amount"`
	PaydayCooldown int64  `db:"payday_cooldown"`
}

const schema = `
CREATE TABLE IF NOT EXISTS guilds (
	id                TEXT PRIMARY KEY,
	prefix            TEXT NOT NULL DEFAULT '',
	join_log          TEXT NOT NULL DEFAULT '',
	leave_log         TEXT NOT NULL DEFAULT '',
	ban_log           TEXT NOT NULL DEFAULT '',
	unban_log         TEXT NOT NULL DEFAULT '',
	msg_edit_log      TEXT NOT NULL DEFAULT '',
	msg_delete_log    TEXT NOT NULL DEFAULT '',
	modlog_channel    TEXT NOT NULL DEFAULT '',
	warn_dm           INTEGER NOT NULL DEFAULT 1,
	warn_show_mod     INTEGER NOT NULL DEFAULT 1,
	warn_channel      TEXT NOT NULL DEFAULT '',
	warn_use_channel  INTEGER NOT NULL DEFAULT 0,
	warn_allow_custom INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS warn_reasons (
	guild_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	PRIMARY KEY (guild_id, name)
);

CREATE TABLE IF NOT EXISTS warnings (
	id         TEXT NOT NULL,
	guild_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	mod_id     TEXT NOT NULL,
	reason     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (guild_id, id)
);

CREATE INDEX IF NOT EXISTS idx_warnings_guild_user ON warnings (guild_id, user_id);

CREATE TABLE IF NOT EXISTS cases (
	guild_id   TEXT NOT NULL,
	number     INTEGER NOT NULL,
	type       TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	mod_id     TEXT NOT NULL,
	reason     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (guild_id, number)
);

CREATE TABLE IF NOT EXISTS balances (
	guild_id    TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	balance     INTEGER NOT NULL DEFAULT 0,
	last_payday INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (guild_id, user_id)
);

CREATE TABLE IF NOT EXISTS bank_settings (
	guild_id        TEXT PRIMARY KEY,
	default_balance INTEGER NOT NULL DEFAULT 100,
	payday_amount   INTEGER NOT NULL DEFAULT 120,
	payday_cooldown INTEGER NOT NULL DEFAULT 300
);

CREATE TABLE IF NOT EXISTS disabled_cogs (
	guild_id TEXT NOT NULL,
	cog      TEXT NOT NULL,
	PRIMARY KEY (guild_id, cog)
);
`
