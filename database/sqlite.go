package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type SqliteDB struct {
	pool *sqlx.DB
}

func NewSqliteDatabase(c *Config) (*SqliteDB, error) {
	pool, err := sqlx.Connect("sqlite", c.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := pool.Exec(pragma); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := pool.Exec(schema); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SqliteDB{pool: pool}, nil
}

func (s *SqliteDB) GetConn() *sqlx.DB {
	return s.pool
}

func (s *SqliteDB) Close() error {
	return s.pool.Close()
}

func (s *SqliteDB) CreateGuild(gid string) error {
	_, err := s.pool.Exec("INSERT OR IGNORE INTO guilds (id) VALUES (?);", gid)
	return err
}

func (s *SqliteDB) GetGuild(gid string) (*Guild, error) {
	var g Guild
	err := s.pool.Get(&g, "SELECT * FROM guilds WHERE id = ?;", gid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *SqliteDB) UpdateGuild(gc *Guild) error {
	_, err := s.pool.Exec(`UPDATE guilds SET
		prefix = ?, join_log = ?, leave_log = ?, ban_log = ?, unban_log = ?,
		msg_edit_log = ?, msg_delete_log = ?, modlog_channel = ?,
		warn_dm = ?, warn_show_mod = ?, warn_channel = ?, warn_use_channel = ?, warn_allow_custom = ?
		WHERE id = ?;`,
		gc.Prefix, gc.JoinLog, gc.LeaveLog, gc.BanLog, gc.UnbanLog,
		gc.MsgEditLog, gc.MsgDeleteLog, gc.ModLog,
		gc.WarnDM, gc.WarnShowMod, gc.WarnChannel, gc.WarnUseChannel, gc.WarnAllowCustom,
		gc.ID)
	return err
}

func (s *SqliteDB) SetWarnReason(gid, name, description string) error {
	_, err := s.pool.Exec(`INSERT INTO warn_reasons (guild_id, name, description) VALUES (?, ?, ?)
		ON CONFLICT (guild_id, name) DO UPDATE SET description = excluded.description;`,
		gid, name, description)
	return err
}

func (s *SqliteDB) GetWarnReason(gid, name string) (*WarnReason, error) {
	var r WarnReason
	err := s.pool.Get(&r, "SELECT * FROM warn_reasons WHERE guild_id = ? AND name = ?;", gid, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SqliteDB) DeleteWarnReason(gid, name string) error {
	res, err := s.pool.Exec("DELETE FROM warn_reasons WHERE guild_id = ? AND name = ?;", gid, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SqliteDB) ListWarnReasons(gid string) ([]*WarnReason, error) {
	var reasons []*WarnReason
	err := s.pool.Select(&reasons, "SELECT * FROM warn_reasons WHERE guild_id = ? ORDER BY name;", gid)
	return reasons, err
}

func (s *SqliteDB) AddWarning(w *Warning) error {
	_, err := s.pool.Exec(`INSERT INTO warnings (id, guild_id, user_id, mod_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?);`,
		w.ID, w.GuildID, w.UserID, w.ModID, w.Reason, w.CreatedAt)
	return err
}

func (s *SqliteDB) GetWarning(gid, id string) (*Warning, error) {
	var w Warning
	err := s.pool.Get(&w, "SELECT * FROM warnings WHERE guild_id = ? AND id = ?;", gid, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *SqliteDB) DeleteWarning(gid, id string) error {
	res, err := s.pool.Exec("DELETE FROM warnings WHERE guild_id = ? AND id = ?;", gid, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SqliteDB) GetWarnings(gid, uid string) ([]*Warning, error) {
	var warnings []*Warning
	err := s.pool.Select(&warnings,
		"SELECT * FROM warnings WHERE guild_id = ? AND user_id = ? ORDER BY created_at;", gid, uid)
	return warnings, err
}

// CreateCase assigns the next case number for the guild and inserts the
// case in one transaction.
func (s *SqliteDB) CreateCase(c *Case) (int, error) {
	tx, err := s.pool.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var number int
	if err := tx.Get(&number, "SELECT COALESCE(MAX(number), 0) + 1 FROM cases WHERE guild_id = ?;", c.GuildID); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`INSERT INTO cases (guild_id, number, type, user_id, mod_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);`,
		c.GuildID, number, c.Type, c.UserID, c.ModID, c.Reason, c.CreatedAt); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	c.Number = number
	return number, nil
}

func (s *SqliteDB) GetCase(gid string, number int) (*Case, error) {
	var c Case
	err := s.pool.Get(&c, "SELECT * FROM cases WHERE guild_id = ? AND number = ?;", gid, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SqliteDB) GetCasesByUser(gid, uid string) ([]*Case, error) {
	var cases []*Case
	err := s.pool.Select(&cases,
		"SELECT * FROM cases WHERE guild_id = ? AND user_id = ? ORDER BY number;", gid, uid)
	return cases, err
}

// GetAccount returns the bank account for the user, creating it with the
// guild's default balance on first use.
func (s *SqliteDB) GetAccount(gid, uid string) (*Account, error) {
	bs, err := s.GetBankSettings(gid)
	if err != nil {
		return nil, err
	}

	if _, err := s.pool.Exec(`INSERT OR IGNORE INTO balances (guild_id, user_id, balance) VALUES (?, ?, ?);`,
		gid, uid, bs.DefaultBalance); err != nil {
		return nil, err
	}

	var a Account
	if err := s.pool.Get(&a, "SELECT * FROM balances WHERE guild_id = ? AND user_id = ?;", gid, uid); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SqliteDB) Transfer(gid, from, to string, amount int64) error {
	if _, err := s.GetAccount(gid, from); err != nil {
		return err
	}
	if _, err := s.GetAccount(gid, to); err != nil {
		return err
	}

	tx, err := s.pool.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var balance int64
	if err := tx.Get(&balance, "SELECT balance FROM balances WHERE guild_id = ? AND user_id = ?;", gid, from); err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	if _, err := tx.Exec("UPDATE balances SET balance = balance - ? WHERE guild_id = ? AND user_id = ?;", amount, gid, from); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE balances SET balance = balance + ? WHERE guild_id = ? AND user_id = ?;", amount, gid, to); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SqliteDB) Deposit(gid, uid string, amount int64) error {
	if _, err := s.GetAccount(gid, uid); err != nil {
		return err
	}
	_, err := s.pool.Exec("UPDATE balances SET balance = balance + ? WHERE guild_id = ? AND user_id = ?;", amount, gid, uid)
	return err
}

func (s *SqliteDB) Withdraw(gid, uid string, amount int64) error {
	a, err := s.GetAccount(gid, uid)
	if err != nil {
		return err
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}
	_, err = s.pool.Exec("UPDATE balances SET balance = balance - ? WHERE guild_id = ? AND user_id = ?;", amount, gid, uid)
	return err
}

func (s *SqliteDB) SetBalance(gid, uid string, amount int64) error {
	if _, err := s.GetAccount(gid, uid); err != nil {
		return err
	}
	_, err := s.pool.Exec("UPDATE balances SET balance = ? WHERE guild_id = ? AND user_id = ?;", amount, gid, uid)
	return err
}

// Payday credits the amount and stamps last_payday. Cooldown checks are
// the caller's job; this just records the claim.
func (s *SqliteDB) Payday(gid, uid string, amount int64, now int64) error {
	if _, err := s.GetAccount(gid, uid); err != nil {
		return err
	}
	_, err := s.pool.Exec("UPDATE balances SET balance = balance + ?, last_payday = ? WHERE guild_id = ? AND user_id = ?;",
		amount, now, gid, uid)
	return err
}

func (s *SqliteDB) Leaderboard(gid string, limit int) ([]*Account, error) {
	var accounts []*Account
	err := s.pool.Select(&accounts,
		"SELECT * FROM balances WHERE guild_id = ? ORDER BY balance DESC LIMIT ?;", gid, limit)
	return accounts, err
}

func (s *SqliteDB) GetBankSettings(gid string) (*BankSettings, error) {
	if _, err := s.pool.Exec("INSERT OR IGNORE INTO bank_settings (guild_id) VALUES (?);", gid); err != nil {
		return nil, err
	}
	var bs BankSettings
	if err := s.pool.Get(&bs, "SELECT * FROM bank_settings WHERE guild_id = ?;", gid); err != nil {
		return nil, err
	}
	return &bs, nil
}

func (s *SqliteDB) SetBankSettings(bs *BankSettings) error {
	_, err := s.pool.Exec(`INSERT INTO bank_settings (guild_id, default_balance, payday_amount, payday_cooldown)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET
			default_balance = excluded.default_balance,
			payday_amount = excluded.payday_amount,
			payday_cooldown = excluded.payday_cooldown;`,
		bs.GuildID, bs.DefaultBalance, bs.PaydayAmount, bs.PaydayCooldown)
	return err
}

func (s *SqliteDB) DisableCog(gid, cog string) error {
	_, err := s.pool.Exec("INSERT OR IGNORE INTO disabled_cogs (guild_id, cog) VALUES (?, ?);", gid, cog)
	return err
}

func (s *SqliteDB) EnableCog(gid, cog string) error {
	_, err := s.pool.Exec("DELETE FROM disabled_cogs WHERE guild_id = ? AND cog = ?;", gid, cog)
	return err
}

func (s *SqliteDB) CogDisabled(gid, cog string) (bool, error) {
	var count int
	if err := s.pool.Get(&count, "SELECT COUNT(*) FROM disabled_cogs WHERE guild_id = ? AND cog = ?;", gid, cog); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SqliteDB) DisabledCogs(gid string) ([]string, error) {
	var cogs []string
	err := s.pool.Select(&cogs, "SELECT cog FROM disabled_cogs WHERE guild_id = ? ORDER BY cog;", gid)
	return cogs, err
}
