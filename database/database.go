package database

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("database: not found")

// ErrInsufficientFunds is returned when a withdrawal or transfer would
// take a balance below zero.
var ErrInsufficientFunds = errors.New("database: insufficient funds")

type DB interface {
	GetConn() *sqlx.DB
	Close() error

	CreateGuild(gid string) error
	GetGuild(gid string) (*Guild, error)
	UpdateGuild(gc *Guild) error

	SetWarnReason(gid, name, description string) error
	GetWarnReason(gid, name string) (*WarnReason, error)
	DeleteWarnReason(gid, name string) error
	ListWarnReasons(gid string) ([]*WarnReason, error)

	AddWarning(w *Warning) error
	GetWarning(gid, id string) (*Warning, error)
	DeleteWarning(gid, id string) error
	GetWarnings(gid, uid string) ([]*Warning, error)

	CreateCase(c *Case) (int, error)
	GetCase(gid string, number int) (*Case, error)
	GetCasesByUser(gid, uid string) ([]*Case, error)

	GetAccount(gid, uid string) (*Account, error)
	Transfer(gid, from, to string, amount int64) error
	Deposit(gid, uid string, amount int64) error
	Withdraw(gid, uid string, amount int64) error
	SetBalance(gid, uid string, amount int64) error
	Payday(gid, uid string, amount int64, now int64) error
	Leaderboard(gid string, limit int) ([]*Account, error)

	GetBankSettings(gid string) (*BankSettings, error)
	SetBankSettings(bs *BankSettings) error

	DisableCog(gid, cog string) error
	EnableCog(gid, cog string) error
	CogDisabled(gid, cog string) (bool, error)
	DisabledCogs(gid string) ([]string, error)
}

type Config struct {
	Path string
}
