package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SqliteDB {
	t.Helper()
	db, err := NewSqliteDatabase(&Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGuilds(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetGuild("1234")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.CreateGuild("1234"))
	// creating twice must not error
	require.NoError(t, db.CreateGuild("1234"))

	g, err := db.GetGuild("1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", g.ID)
	assert.True(t, g.WarnDM)
	assert.True(t, g.WarnAllowCustom)
	assert.False(t, g.WarnUseChannel)

	g.Prefix = "!"
	g.JoinLog = "111"
	g.WarnDM = false
	require.NoError(t, db.UpdateGuild(g))

	g, err = db.GetGuild("1234")
	require.NoError(t, err)
	assert.Equal(t, "!", g.Prefix)
	assert.Equal(t, "111", g.JoinLog)
	assert.False(t, g.WarnDM)
}

func TestWarnReasons(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetWarnReason("g1", "spam", "Spamming in chat"))
	require.NoError(t, db.SetWarnReason("g1", "spam", "Spamming channels"))

	r, err := db.GetWarnReason("g1", "spam")
	require.NoError(t, err)
	assert.Equal(t, "Spamming channels", r.Description)

	_, err = db.GetWarnReason("g1", "other")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetWarnReason("g1", "ads", "Advertising"))
	reasons, err := db.ListWarnReasons("g1")
	require.NoError(t, err)
	require.Len(t, reasons, 2)
	assert.Equal(t, "ads", reasons[0].Name)

	require.NoError(t, db.DeleteWarnReason("g1", "spam"))
	assert.ErrorIs(t, db.DeleteWarnReason("g1", "spam"), ErrNotFound)
}

func TestWarnings(t *testing.T) {
	db := newTestDB(t)

	w := &Warning{
		ID:        "msg1",
		GuildID:   "g1",
		UserID:    "u1",
		ModID:     "m1",
		Reason:    "spam",
		CreatedAt: 1000,
	}
	require.NoError(t, db.AddWarning(w))
	require.NoError(t, db.AddWarning(&Warning{
		ID: "msg2", GuildID: "g1", UserID: "u1", ModID: "m1", Reason: "ads", CreatedAt: 2000,
	}))

	got, err := db.GetWarning("g1", "msg1")
	require.NoError(t, err)
	assert.Equal(t, "spam", got.Reason)

	warnings, err := db.GetWarnings("g1", "u1")
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, "msg1", warnings[0].ID)

	require.NoError(t, db.DeleteWarning("g1", "msg1"))
	assert.ErrorIs(t, db.DeleteWarning("g1", "msg1"), ErrNotFound)

	warnings, err = db.GetWarnings("g1", "u1")
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestCaseNumbers(t *testing.T) {
	db := newTestDB(t)

	for i := 1; i <= 3; i++ {
		n, err := db.CreateCase(&Case{
			GuildID: "g1", Type: CaseWarning, UserID: "u1", ModID: "m1", Reason: "spam", CreatedAt: 1000,
		})
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	// case numbers are independent per guild
	n, err := db.CreateCase(&Case{
		GuildID: "g2", Type: CaseBan, UserID: "u1", ModID: "m1", Reason: "raid", CreatedAt: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := db.GetCase("g1", 2)
	require.NoError(t, err)
	assert.Equal(t, CaseWarning, c.Type)

	_, err = db.GetCase("g1", 99)
	assert.ErrorIs(t, err, ErrNotFound)

	cases, err := db.GetCasesByUser("g1", "u1")
	require.NoError(t, err)
	assert.Len(t, cases, 3)
}

func TestBank(t *testing.T) {
	db := newTestDB(t)

	a, err := db.GetAccount("g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), a.Balance) // default balance

	require.NoError(t, db.Deposit("g1", "u1", 50))
	a, err = db.GetAccount("g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), a.Balance)

	assert.ErrorIs(t, db.Withdraw("g1", "u1", 200), ErrInsufficientFunds)
	require.NoError(t, db.Withdraw("g1", "u1", 150))

	a, err = db.GetAccount("g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Balance)
}

func TestTransfer(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetBalance("g1", "u1", 100))
	require.NoError(t, db.SetBalance("g1", "u2", 0))

	assert.ErrorIs(t, db.Transfer("g1", "u1", "u2", 500), ErrInsufficientFunds)

	require.NoError(t, db.Transfer("g1", "u1", "u2", 60))

	a1, err := db.GetAccount("g1", "u1")
	require.NoError(t, err)
	a2, err := db.GetAccount("g1", "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(40), a1.Balance)
	assert.Equal(t, int64(60), a2.Balance)
}

func TestPaydayAndLeaderboard(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetBalance("g1", "u1", 10))
	require.NoError(t, db.Payday("g1", "u1", 120, 5000))

	a, err := db.GetAccount("g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(130), a.Balance)
	assert.Equal(t, int64(5000), a.LastPayday)

	require.NoError(t, db.SetBalance("g1", "u2", 500))
	require.NoError(t, db.SetBalance("g1", "u3", 50))

	top, err := db.Leaderboard("g1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "u2", top[0].UserID)
	assert.Equal(t, "u1", top[1].UserID)
}

func TestBankSettings(t *testing.T) {
	db := newTestDB(t)

	bs, err := db.GetBankSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), bs.DefaultBalance)

	bs.DefaultBalance = 500
	bs.PaydayAmount = 1000
	require.NoError(t, db.SetBankSettings(bs))

	bs, err = db.GetBankSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), bs.DefaultBalance)
	assert.Equal(t, int64(1000), bs.PaydayAmount)

	// new accounts pick up the new default
	a, err := db.GetAccount("g1", "u9")
	require.NoError(t, err)
	assert.Equal(t, int64(500), a.Balance)
}

func TestDisabledCogs(t *testing.T) {
	db := newTestDB(t)

	disabled, err := db.CogDisabled("g1", "economy")
	require.NoError(t, err)
	assert.False(t, disabled)

	require.NoError(t, db.DisableCog("g1", "economy"))
	require.NoError(t, db.DisableCog("g1", "economy"))
	require.NoError(t, db.DisableCog("g1", "audio"))

	disabled, err = db.CogDisabled("g1", "economy")
	require.NoError(t, err)
	assert.True(t, disabled)

	cogs, err := db.DisabledCogs("g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"audio", "economy"}, cogs)

	require.NoError(t, db.EnableCog("g1", "economy"))
	disabled, err = db.CogDisabled("g1", "economy")
	require.NoError(t, err)
	assert.False(t, disabled)
}
