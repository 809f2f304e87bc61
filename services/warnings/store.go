package warnings

import (
	"context"
	"time"

	"community-bot/model"
)

// Store persists warnings. Listing is newest first by creation time.
type Store interface {
	InsertWarning(ctx context.Context, w *model.Warning) error
	// ListWarnings returns a user's warnings. A non-nil activeAt keeps only
	// warnings that are active and not expired at that instant.
	ListWarnings(ctx context.Context, guildID, userID string, activeAt *time.Time) ([]model.Warning, error)
	ListGuildWarnings(ctx context.Context, guildID string, since time.Time) ([]model.Warning, error)
	// SetWarningActive returns model.ErrNotFound when no warning matches.
	SetWarningActive(ctx context.Context, guildID, warningID string, active bool) error
}
