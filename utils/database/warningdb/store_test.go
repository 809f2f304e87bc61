package warningdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-bot/model"
	"community-bot/services/warnings"
	"community-bot/utils/database"
)

var base = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return New(db)
}

func TestStoreFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	future := base.Add(time.Hour)
	past := base.Add(-time.Hour)
	rows := []model.Warning{
		{ID: "a", UserID: "u1", GuildID: "g1", Reason: "r", Level: model.LevelMinor, Points: 1, Active: true, CreatedAt: base.Add(-3 * time.Minute)},
		{ID: "b", UserID: "u1", GuildID: "g1", Reason: "r", Level: model.LevelMajor, Points: 3, Active: true, ExpiresAt: &past, CreatedAt: base.Add(-2 * time.Minute)},
		{ID: "c", UserID: "u1", GuildID: "g1", Reason: "r", Level: model.LevelModerate, Points: 2, Active: false, ExpiresAt: &future, CreatedAt: base.Add(-time.Minute)},
		{ID: "d", UserID: "u1", GuildID: "g1", Reason: "r", Level: model.LevelMajor, Points: 3, Active: true, ExpiresAt: &future, CreatedAt: base},
		{ID: "e", UserID: "u1", GuildID: "g2", Reason: "r", Level: model.LevelMajor, Points: 3, Active: true, CreatedAt: base},
	}
	for i := range rows {
		require.NoError(t, s.InsertWarning(ctx, &rows[i]))
	}

	active, err := s.ListWarnings(ctx, "g1", "u1", &base)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "d", active[0].ID)
	assert.Equal(t, "a", active[1].ID)
	assert.Equal(t, rows[3], active[0])

	all, err := s.ListWarnings(ctx, "g1", "u1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	recent, err := s.ListGuildWarnings(ctx, "g1", base.Add(-90*time.Second))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSetWarningActive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := model.Warning{ID: "a", UserID: "u1", GuildID: "g1", Reason: "r", Level: model.LevelMinor, Points: 1, Active: true, CreatedAt: base}
	require.NoError(t, s.InsertWarning(ctx, &w))

	require.NoError(t, s.SetWarningActive(ctx, "g1", "a", false))
	active, err := s.ListWarnings(ctx, "g1", "u1", &base)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, s.SetWarningActive(ctx, "g2", "a", false), model.ErrNotFound)
}

func TestLedgerOnSqlite(t *testing.T) {
	ctx := context.Background()
	now := base
	ledger := warnings.NewLedger(newTestStore(t), warnings.WithClock(func() time.Time { return now }))

	_, err := ledger.CreateWarning(ctx, model.Warning{UserID: "u1", GuildID: "g1", ModeratorID: "m", Reason: "spam", Level: model.LevelMajor})
	require.NoError(t, err)
	now = now.Add(time.Second)
	_, err = ledger.CreateWarning(ctx, model.Warning{UserID: "u1", GuildID: "g1", ModeratorID: "m", Reason: "spam", Level: model.LevelMinor, Points: 50})
	require.NoError(t, err)

	points, err := ledger.CalculateUserPoints(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 4, points)
}
