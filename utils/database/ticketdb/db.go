package ticketdb

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ticket_configs (
		guild_id TEXT NOT NULL PRIMARY KEY,
		channel_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		support_role_id TEXT NOT NULL,
		categories TEXT NOT NULL DEFAULT '[]',
		settings TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS ticket_counters (
		guild_id TEXT NOT NULL PRIMARY KEY,
		value INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tickets (
		guild_id TEXT NOT NULL,
		ticket_id TEXT NOT NULL,
		channel_id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		assigned_to TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		category TEXT NOT NULL,
		subject TEXT NOT NULL,
		description TEXT NOT NULL,
		closed_by TEXT NOT NULL DEFAULT '',
		close_reason TEXT NOT NULL DEFAULT '',
		reopened_by TEXT NOT NULL DEFAULT '',
		reopen_count INTEGER NOT NULL DEFAULT 0,
		last_activity INTEGER NOT NULL DEFAULT 0,
		resolution TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		closed_at INTEGER,
		PRIMARY KEY (guild_id, ticket_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_guild_status ON tickets (guild_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_guild_user ON tickets (guild_id, user_id);`,
	`CREATE TABLE IF NOT EXISTS ticket_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		ticket_id TEXT NOT NULL,
		message_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		attachments TEXT NOT NULL DEFAULT '[]',
		timestamp INTEGER NOT NULL,
		FOREIGN KEY (guild_id, ticket_id) REFERENCES tickets (guild_id, ticket_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_messages_ticket ON ticket_messages (guild_id, ticket_id);`,
	`CREATE TABLE IF NOT EXISTS ticket_logs (
		id TEXT NOT NULL PRIMARY KEY,
		guild_id TEXT NOT NULL,
		ticket_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		target_id TEXT NOT NULL DEFAULT '',
		moderator_id TEXT NOT NULL DEFAULT '',
		old_data TEXT NOT NULL DEFAULT 'null',
		new_data TEXT NOT NULL DEFAULT 'null',
		reason TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_logs_guild ON ticket_logs (guild_id, created_at);`,
}

// Migrate creates the ticket tables when they do not exist yet.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate ticket tables: %w", err)
		}
	}
	return nil
}
