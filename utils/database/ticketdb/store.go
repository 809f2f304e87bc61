package ticketdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"community-bot/model"
)

// Store is the sqlite implementation of the ticket store.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type configRow struct {
	GuildID       string `db:"guild_id"`
	ChannelID     string `db:"channel_id"`
	CategoryID    string `db:"category_id"`
	SupportRoleID string `db:"support_role_id"`
	Categories    string `db:"categories"`
	Settings      string `db:"settings"`
	CreatedAt     int64  `db:"created_at"`
	UpdatedAt     int64  `db:"updated_at"`
}

type ticketRow struct {
	GuildID      string        `db:"guild_id"`
	TicketID     string        `db:"ticket_id"`
	ChannelID    string        `db:"channel_id"`
	UserID       string        `db:"user_id"`
	AssignedTo   string        `db:"assigned_to"`
	Status       string        `db:"status"`
	Priority     string        `db:"priority"`
	Category     string        `db:"category"`
	Subject      string        `db:"subject"`
	Description  string        `db:"description"`
	ClosedBy     string        `db:"closed_by"`
	CloseReason  string        `db:"close_reason"`
	ReopenedBy   string        `db:"reopened_by"`
	ReopenCount  int           `db:"reopen_count"`
	LastActivity int64         `db:"last_activity"`
	Resolution   string        `db:"resolution"`
	Tags         string        `db:"tags"`
	CreatedAt    int64         `db:"created_at"`
	UpdatedAt    int64         `db:"updated_at"`
	ClosedAt     sql.NullInt64 `db:"closed_at"`
}

type messageRow struct {
	MessageID   string `db:"message_id"`
	UserID      string `db:"user_id"`
	Content     string `db:"content"`
	Attachments string `db:"attachments"`
	Timestamp   int64  `db:"timestamp"`
}

type logRow struct {
	ID          string `db:"id"`
	GuildID     string `db:"guild_id"`
	TicketID    string `db:"ticket_id"`
	Action      string `db:"action"`
	UserID      string `db:"user_id"`
	TargetID    string `db:"target_id"`
	ModeratorID string `db:"moderator_id"`
	OldData     string `db:"old_data"`
	NewData     string `db:"new_data"`
	Reason      string `db:"reason"`
	Metadata    string `db:"metadata"`
	CreatedAt   int64  `db:"created_at"`
}

const ticketColumns = `guild_id, ticket_id, channel_id, user_id, assigned_to, status, priority, category,
	subject, description, closed_by, close_reason, reopened_by, reopen_count, last_activity,
	resolution, tags, created_at, updated_at, closed_at`

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func (s *Store) UpsertConfig(ctx context.Context, cfg *model.TicketConfig) error {
	categories, err := encode(cfg.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	settings, err := encode(cfg.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	row := configRow{
		GuildID:       cfg.GuildID,
		ChannelID:     cfg.ChannelID,
		CategoryID:    cfg.CategoryID,
		SupportRoleID: cfg.SupportRoleID,
		Categories:    categories,
		Settings:      settings,
		CreatedAt:     toMillis(cfg.CreatedAt),
		UpdatedAt:     toMillis(cfg.UpdatedAt),
	}
	query := `INSERT INTO ticket_configs (guild_id, channel_id, category_id, support_role_id, categories, settings, created_at, updated_at)
		VALUES (:guild_id, :channel_id, :category_id, :support_role_id, :categories, :settings, :created_at, :updated_at)
		ON CONFLICT(guild_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			category_id = excluded.category_id,
			support_role_id = excluded.support_role_id,
			categories = excluded.categories,
			settings = excluded.settings,
			updated_at = excluded.updated_at`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to upsert ticket config for guild %s: %w", cfg.GuildID, err)
	}
	return nil
}

func (r configRow) toModel() (*model.TicketConfig, error) {
	cfg := &model.TicketConfig{
		GuildID:       r.GuildID,
		ChannelID:     r.ChannelID,
		CategoryID:    r.CategoryID,
		SupportRoleID: r.SupportRoleID,
		CreatedAt:     fromMillis(r.CreatedAt),
		UpdatedAt:     fromMillis(r.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(r.Categories), &cfg.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Settings), &cfg.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return cfg, nil
}

func (s *Store) GetConfig(ctx context.Context, guildID string) (*model.TicketConfig, error) {
	var row configRow
	if err := s.db.GetContext(ctx, &row, "SELECT * FROM ticket_configs WHERE guild_id = ?", guildID); err != nil {
		return nil, notFound(err)
	}
	return row.toModel()
}

func (s *Store) ListConfigs(ctx context.Context) ([]model.TicketConfig, error) {
	var rows []configRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM ticket_configs ORDER BY guild_id"); err != nil {
		return nil, fmt.Errorf("failed to list ticket configs: %w", err)
	}
	out := make([]model.TicketConfig, 0, len(rows))
	for _, r := range rows {
		cfg, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	return out, nil
}

// NextTicketNumber bumps the guild counter and reads it back in one statement.
func (s *Store) NextTicketNumber(ctx context.Context, guildID string) (int, error) {
	var n int
	query := `INSERT INTO ticket_counters (guild_id, value) VALUES (?, 1)
		ON CONFLICT(guild_id) DO UPDATE SET value = value + 1
		RETURNING value`
	if err := s.db.GetContext(ctx, &n, query, guildID); err != nil {
		return 0, fmt.Errorf("failed to increment ticket counter for guild %s: %w", guildID, err)
	}
	return n, nil
}

func (s *Store) InsertTicket(ctx context.Context, t *model.Ticket) error {
	tags, err := encode(nonNil(t.Metadata.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	row := ticketRow{
		GuildID:      t.GuildID,
		TicketID:     t.TicketID,
		ChannelID:    t.ChannelID,
		UserID:       t.UserID,
		AssignedTo:   t.AssignedTo,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		Category:     t.Category,
		Subject:      t.Subject,
		Description:  t.Description,
		ClosedBy:     t.Metadata.ClosedBy,
		CloseReason:  t.Metadata.CloseReason,
		ReopenedBy:   t.Metadata.ReopenedBy,
		ReopenCount:  t.Metadata.ReopenCount,
		LastActivity: toMillis(t.Metadata.LastActivity),
		Resolution:   t.Metadata.Resolution,
		Tags:         tags,
		CreatedAt:    toMillis(t.CreatedAt),
		UpdatedAt:    toMillis(t.UpdatedAt),
	}
	if t.ClosedAt != nil {
		row.ClosedAt = sql.NullInt64{Int64: toMillis(*t.ClosedAt), Valid: true}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO tickets (` + ticketColumns + `) VALUES (:guild_id, :ticket_id, :channel_id, :user_id,
		:assigned_to, :status, :priority, :category, :subject, :description, :closed_by, :close_reason,
		:reopened_by, :reopen_count, :last_activity, :resolution, :tags, :created_at, :updated_at, :closed_at)`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to insert ticket %s: %w", t.TicketID, err)
	}
	for _, msg := range t.Messages {
		if err := insertMessage(ctx, tx, t.GuildID, t.TicketID, msg); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ticket %s: %w", t.TicketID, err)
	}
	return nil
}

func (r ticketRow) toModel() (model.Ticket, error) {
	t := model.Ticket{
		TicketID:    r.TicketID,
		GuildID:     r.GuildID,
		ChannelID:   r.ChannelID,
		UserID:      r.UserID,
		AssignedTo:  r.AssignedTo,
		Status:      model.TicketStatus(r.Status),
		Priority:    model.TicketPriority(r.Priority),
		Category:    r.Category,
		Subject:     r.Subject,
		Description: r.Description,
		Messages:    []model.TicketMessage{},
		Metadata: model.TicketMetadata{
			ClosedBy:     r.ClosedBy,
			CloseReason:  r.CloseReason,
			ReopenedBy:   r.ReopenedBy,
			ReopenCount:  r.ReopenCount,
			LastActivity: fromMillis(r.LastActivity),
			Resolution:   r.Resolution,
		},
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(r.Tags), &t.Metadata.Tags); err != nil {
		return t, fmt.Errorf("failed to decode tags of ticket %s: %w", r.TicketID, err)
	}
	if r.ClosedAt.Valid {
		closedAt := fromMillis(r.ClosedAt.Int64)
		t.ClosedAt = &closedAt
	}
	return t, nil
}

func getTicket(ctx context.Context, q sqlx.QueryerContext, where string, args ...any) (*model.Ticket, error) {
	var row ticketRow
	if err := sqlx.GetContext(ctx, q, &row, "SELECT "+ticketColumns+" FROM tickets WHERE "+where, args...); err != nil {
		return nil, notFound(err)
	}
	t, err := row.toModel()
	if err != nil {
		return nil, err
	}

	var msgs []messageRow
	if err := sqlx.SelectContext(ctx, q, &msgs,
		`SELECT message_id, user_id, content, attachments, timestamp FROM ticket_messages
		WHERE guild_id = ? AND ticket_id = ? ORDER BY id`, t.GuildID, t.TicketID); err != nil {
		return nil, fmt.Errorf("failed to load messages of ticket %s: %w", t.TicketID, err)
	}
	for _, m := range msgs {
		msg := model.TicketMessage{
			MessageID: m.MessageID,
			UserID:    m.UserID,
			Content:   m.Content,
			Timestamp: fromMillis(m.Timestamp),
		}
		if err := json.Unmarshal([]byte(m.Attachments), &msg.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
		t.Messages = append(t.Messages, msg)
	}
	return &t, nil
}

func (s *Store) GetTicket(ctx context.Context, guildID, ticketID string) (*model.Ticket, error) {
	return getTicket(ctx, s.db, "guild_id = ? AND ticket_id = ?", guildID, ticketID)
}

func (s *Store) GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error) {
	return getTicket(ctx, s.db, "channel_id = ?", channelID)
}

// UpdateTicket applies upd and returns the resulting ticket in one transaction.
func (s *Store) UpdateTicket(ctx context.Context, guildID, ticketID string, upd model.TicketUpdate) (*model.Ticket, error) {
	sets := []string{"updated_at = ?"}
	args := []any{toMillis(upd.UpdatedAt)}
	set := func(clause string, v any) {
		sets = append(sets, clause)
		args = append(args, v)
	}
	if upd.Status != nil {
		set("status = ?", string(*upd.Status))
	}
	if upd.Priority != nil {
		set("priority = ?", string(*upd.Priority))
	}
	if upd.AssignedTo != nil {
		set("assigned_to = ?", *upd.AssignedTo)
	}
	if upd.ChannelID != nil {
		set("channel_id = ?", *upd.ChannelID)
	}
	if upd.ClosedAt != nil {
		set("closed_at = ?", toMillis(*upd.ClosedAt))
	}
	if upd.ClearClosedAt {
		sets = append(sets, "closed_at = NULL")
	}
	if upd.ClosedBy != nil {
		set("closed_by = ?", *upd.ClosedBy)
	}
	if upd.CloseReason != nil {
		set("close_reason = ?", *upd.CloseReason)
	}
	if upd.ReopenedBy != nil {
		set("reopened_by = ?", *upd.ReopenedBy)
	}
	if upd.IncrementReopen {
		sets = append(sets, "reopen_count = reopen_count + 1")
	}
	if upd.LastActivity != nil {
		set("last_activity = ?", toMillis(*upd.LastActivity))
	}
	args = append(args, guildID, ticketID)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE tickets SET "+strings.Join(sets, ", ")+" WHERE guild_id = ? AND ticket_id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket %s: %w", ticketID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to check rows affected for ticket %s: %w", ticketID, err)
	} else if n == 0 {
		return nil, model.ErrNotFound
	}

	t, err := getTicket(ctx, tx, "guild_id = ? AND ticket_id = ?", guildID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ticket %s: %w", ticketID, err)
	}
	return t, nil
}

func (s *Store) CountOpenTickets(ctx context.Context, guildID, userID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM tickets WHERE guild_id = ? AND user_id = ? AND status != ?",
		guildID, userID, string(model.StatusClosed))
	if err != nil {
		return 0, fmt.Errorf("failed to count open tickets: %w", err)
	}
	return n, nil
}

func (s *Store) listTickets(ctx context.Context, query string, args ...any) ([]model.Ticket, error) {
	var rows []ticketRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+ticketColumns+" FROM tickets WHERE "+query, args...); err != nil {
		return nil, err
	}
	out := make([]model.Ticket, 0, len(rows))
	for _, r := range rows {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) ListOpenTickets(ctx context.Context, guildID, userID string) ([]model.Ticket, error) {
	list, err := s.listTickets(ctx,
		"guild_id = ? AND user_id = ? AND status != ? ORDER BY created_at DESC, ticket_id DESC",
		guildID, userID, string(model.StatusClosed))
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	return list, nil
}

func (s *Store) ListInactiveTickets(ctx context.Context, guildID string, before time.Time) ([]model.Ticket, error) {
	list, err := s.listTickets(ctx,
		`guild_id = ? AND status != ? AND COALESCE(NULLIF(last_activity, 0), created_at) < ?
		ORDER BY ticket_id`,
		guildID, string(model.StatusClosed), toMillis(before))
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive tickets: %w", err)
	}
	return list, nil
}

func insertMessage(ctx context.Context, tx *sqlx.Tx, guildID, ticketID string, msg model.TicketMessage) error {
	attachments, err := encode(nonNil(msg.Attachments))
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ticket_messages (guild_id, ticket_id, message_id, user_id, content, attachments, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		guildID, ticketID, msg.MessageID, msg.UserID, msg.Content, attachments, toMillis(msg.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert message of ticket %s: %w", ticketID, err)
	}
	return nil
}

// AppendMessage adds a transcript entry and moves last_activity to its timestamp.
func (s *Store) AppendMessage(ctx context.Context, guildID, ticketID string, msg model.TicketMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE tickets SET last_activity = ? WHERE guild_id = ? AND ticket_id = ?",
		toMillis(msg.Timestamp), guildID, ticketID)
	if err != nil {
		return fmt.Errorf("failed to touch ticket %s: %w", ticketID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected for ticket %s: %w", ticketID, err)
	} else if n == 0 {
		return model.ErrNotFound
	}
	if err := insertMessage(ctx, tx, guildID, ticketID, msg); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message of ticket %s: %w", ticketID, err)
	}
	return nil
}

func (s *Store) InsertLog(ctx context.Context, entry *model.TicketLog) error {
	oldData, err := encode(entry.OldData)
	if err != nil {
		return fmt.Errorf("failed to encode old data: %w", err)
	}
	newData, err := encode(entry.NewData)
	if err != nil {
		return fmt.Errorf("failed to encode new data: %w", err)
	}
	metadata, err := encode(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	row := logRow{
		ID:          entry.ID,
		GuildID:     entry.GuildID,
		TicketID:    entry.TicketID,
		Action:      string(entry.Action),
		UserID:      entry.UserID,
		TargetID:    entry.TargetID,
		ModeratorID: entry.ModeratorID,
		OldData:     oldData,
		NewData:     newData,
		Reason:      entry.Reason,
		Metadata:    metadata,
		CreatedAt:   toMillis(entry.CreatedAt),
	}
	query := `INSERT INTO ticket_logs (id, guild_id, ticket_id, action, user_id, target_id, moderator_id, old_data, new_data, reason, metadata, created_at)
		VALUES (:id, :guild_id, :ticket_id, :action, :user_id, :target_id, :moderator_id, :old_data, :new_data, :reason, :metadata, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to insert ticket log: %w", err)
	}
	return nil
}

func (s *Store) ListLogs(ctx context.Context, guildID string, q model.TicketLogQuery) ([]model.TicketLog, error) {
	query := "SELECT * FROM ticket_logs WHERE guild_id = ?"
	args := []any{guildID}
	if q.TicketID != "" {
		query += " AND ticket_id = ?"
		args = append(args, q.TicketID)
	}
	if q.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, q.UserID)
	}
	if q.Action != "" {
		query += " AND action = ?"
		args = append(args, string(q.Action))
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, q.Limit)

	var rows []logRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ticket logs: %w", err)
	}
	out := make([]model.TicketLog, 0, len(rows))
	for _, r := range rows {
		entry := model.TicketLog{
			ID:          r.ID,
			GuildID:     r.GuildID,
			TicketID:    r.TicketID,
			Action:      model.LogAction(r.Action),
			UserID:      r.UserID,
			TargetID:    r.TargetID,
			ModeratorID: r.ModeratorID,
			Reason:      r.Reason,
			CreatedAt:   fromMillis(r.CreatedAt),
		}
		if err := json.Unmarshal([]byte(r.OldData), &entry.OldData); err != nil {
			return nil, fmt.Errorf("failed to decode log %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.NewData), &entry.NewData); err != nil {
			return nil, fmt.Errorf("failed to decode log %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.Metadata), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode log %s: %w", r.ID, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
