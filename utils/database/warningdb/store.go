package warningdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"community-bot/model"
)

// Store is the sqlite implementation of the warning store.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type warningRow struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	GuildID     string        `db:"guild_id"`
	ModeratorID string        `db:"moderator_id"`
	Reason      string        `db:"reason"`
	Level       string        `db:"level"`
	Points      int           `db:"points"`
	Evidence    string        `db:"evidence"`
	Active      bool          `db:"active"`
	ExpiresAt   sql.NullInt64 `db:"expires_at"`
	CreatedAt   int64         `db:"created_at"`
}

func fromModel(w *model.Warning) warningRow {
	row := warningRow{
		ID:          w.ID,
		UserID:      w.UserID,
		GuildID:     w.GuildID,
		ModeratorID: w.ModeratorID,
		Reason:      w.Reason,
		Level:       string(w.Level),
		Points:      w.Points,
		Evidence:    w.Evidence,
		Active:      w.Active,
		CreatedAt:   w.CreatedAt.UnixMilli(),
	}
	if w.ExpiresAt != nil {
		row.ExpiresAt = sql.NullInt64{Int64: w.ExpiresAt.UnixMilli(), Valid: true}
	}
	return row
}

func (r warningRow) toModel() model.Warning {
	w := model.Warning{
		ID:          r.ID,
		UserID:      r.UserID,
		GuildID:     r.GuildID,
		ModeratorID: r.ModeratorID,
		Reason:      r.Reason,
		Level:       model.WarningLevel(r.Level),
		Points:      r.Points,
		Evidence:    r.Evidence,
		Active:      r.Active,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.ExpiresAt.Valid {
		expires := time.UnixMilli(r.ExpiresAt.Int64).UTC()
		w.ExpiresAt = &expires
	}
	return w
}

func (s *Store) InsertWarning(ctx context.Context, w *model.Warning) error {
	query := `INSERT INTO warnings (id, user_id, guild_id, moderator_id, reason, level, points, evidence, active, expires_at, created_at)
		VALUES (:id, :user_id, :guild_id, :moderator_id, :reason, :level, :points, :evidence, :active, :expires_at, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, fromModel(w)); err != nil {
		return fmt.Errorf("failed to insert warning: %w", err)
	}
	return nil
}

func (s *Store) selectWarnings(ctx context.Context, query string, args ...any) ([]model.Warning, error) {
	var rows []warningRow
	if err := s.db.SelectContext(ctx, &rows, query+" ORDER BY created_at DESC, id DESC", args...); err != nil {
		return nil, err
	}
	out := make([]model.Warning, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) ListWarnings(ctx context.Context, guildID, userID string, activeAt *time.Time) ([]model.Warning, error) {
	query := "SELECT * FROM warnings WHERE user_id = ? AND guild_id = ?"
	args := []any{userID, guildID}
	if activeAt != nil {
		query += " AND active = 1 AND (expires_at IS NULL OR expires_at > ?)"
		args = append(args, activeAt.UnixMilli())
	}
	list, err := s.selectWarnings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %s: %w", userID, err)
	}
	return list, nil
}

func (s *Store) ListGuildWarnings(ctx context.Context, guildID string, since time.Time) ([]model.Warning, error) {
	query := "SELECT * FROM warnings WHERE guild_id = ?"
	args := []any{guildID}
	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UnixMilli())
	}
	list, err := s.selectWarnings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for guild %s: %w", guildID, err)
	}
	return list, nil
}

func (s *Store) SetWarningActive(ctx context.Context, guildID, warningID string, active bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE warnings SET active = ? WHERE guild_id = ? AND id = ?", active, guildID, warningID)
	if err != nil {
		return fmt.Errorf("failed to update warning %s: %w", warningID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for warning %s: %w", warningID, err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
