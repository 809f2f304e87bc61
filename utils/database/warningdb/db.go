package warningdb

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the warnings table when it does not exist yet.
func Migrate(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS warnings (
			id TEXT NOT NULL PRIMARY KEY,
			user_id TEXT NOT NULL,
			guild_id TEXT NOT NULL,
			moderator_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			level TEXT NOT NULL,
			points INTEGER NOT NULL,
			evidence TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			expires_at INTEGER,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_warnings_user_guild_active ON warnings (user_id, guild_id, active);`,
		`CREATE INDEX IF NOT EXISTS idx_warnings_guild_created ON warnings (guild_id, created_at);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate warnings table: %w", err)
		}
	}
	return nil
}
