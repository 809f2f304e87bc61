package ticketdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-bot/model"
	"community-bot/utils/database"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrations must be repeatable")
	return New(db)
}

func sampleTicket(id, channel, user string, created time.Time) *model.Ticket {
	return &model.Ticket{
		TicketID:    id,
		GuildID:     "g1",
		ChannelID:   channel,
		UserID:      user,
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		Category:    "GENERAL",
		Subject:     "New Ticket",
		Description: "No description provided",
		Metadata:    model.TicketMetadata{LastActivity: created, Tags: []string{}},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetConfig(ctx, "g1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	cfg := &model.TicketConfig{
		GuildID:       "g1",
		ChannelID:     "panel",
		CategoryID:    "cat",
		SupportRoleID: "role",
		Categories:    []model.TicketCategory{{Name: "BILLING", SupportRoles: []string{"billing"}}},
		Settings:      model.DefaultTicketSettings(),
		CreatedAt:     base,
		UpdatedAt:     base,
	}
	cfg.Settings.LogsChannelID = "logs"
	require.NoError(t, s.UpsertConfig(ctx, cfg))

	got, err := s.GetConfig(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	cfg.SupportRoleID = "new-role"
	cfg.CreatedAt = base.Add(time.Hour)
	cfg.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpsertConfig(ctx, cfg))

	got, err = s.GetConfig(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "new-role", got.SupportRoleID)
	assert.Equal(t, base, got.CreatedAt, "created_at survives an upsert")

	all, err := s.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNextTicketNumber_PerGuildAndConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	seen := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.NextTicketNumber(ctx, "g1")
			assert.NoError(t, err)
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int]bool{}
	for n := range seen {
		unique[n] = true
	}
	assert.Len(t, unique, 20)
	assert.True(t, unique[1])
	assert.True(t, unique[20])

	n, err := s.NextTicketNumber(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTicketInsertGetAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tk := sampleTicket("TICKET-0001", "c1", "u1", base)
	require.NoError(t, s.InsertTicket(ctx, tk))

	got, err := s.GetTicket(ctx, "g1", "TICKET-0001")
	require.NoError(t, err)
	assert.Equal(t, tk.Subject, got.Subject)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base, got.Metadata.LastActivity)
	assert.Nil(t, got.ClosedAt)
	assert.Empty(t, got.Messages)

	byChannel, err := s.GetTicketByChannel(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "TICKET-0001", byChannel.TicketID)

	_, err = s.GetTicket(ctx, "g2", "TICKET-0001")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetTicketByChannel(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.Error(t, s.InsertTicket(ctx, sampleTicket("TICKET-0001", "c9", "u1", base)), "duplicate id in guild")
}

func TestUpdateTicket(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertTicket(ctx, sampleTicket("TICKET-0001", "c1", "u1", base)))

	closedAt := base.Add(time.Hour)
	status := model.StatusClosed
	by, reason := "staff", "resolved"
	got, err := s.UpdateTicket(ctx, "g1", "TICKET-0001", model.TicketUpdate{
		Status: &status, ClosedAt: &closedAt, ClosedBy: &by, CloseReason: &reason, UpdatedAt: closedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, got.Status)
	require.NotNil(t, got.ClosedAt)
	assert.Equal(t, closedAt, *got.ClosedAt)
	assert.Equal(t, "resolved", got.Metadata.CloseReason)

	open := model.StatusOpen
	channel := "c2"
	got, err = s.UpdateTicket(ctx, "g1", "TICKET-0001", model.TicketUpdate{
		Status: &open, ChannelID: &channel, ClearClosedAt: true, IncrementReopen: true, UpdatedAt: closedAt,
	})
	require.NoError(t, err)
	assert.Nil(t, got.ClosedAt)
	assert.Equal(t, 1, got.Metadata.ReopenCount)
	assert.Equal(t, "c2", got.ChannelID)

	_, err = s.UpdateTicket(ctx, "g1", "TICKET-0404", model.TicketUpdate{Status: &open})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOpenTicketQueries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertTicket(ctx, sampleTicket("TICKET-0001", "c1", "u1", base)))
	require.NoError(t, s.InsertTicket(ctx, sampleTicket("TICKET-0002", "c2", "u1", base.Add(time.Hour))))
	closed := sampleTicket("TICKET-0003", "c3", "u1", base.Add(2*time.Hour))
	closed.Status = model.StatusClosed
	require.NoError(t, s.InsertTicket(ctx, closed))
	require.NoError(t, s.InsertTicket(ctx, sampleTicket("TICKET-0004", "c4", "u2", base)))

	n, err := s.CountOpenTickets(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := s.ListOpenTickets(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "TICKET-0002", list[0].TicketID)
	assert.Equal(t, "TICKET-0001", list[1].TicketID)

	stale, err := s.ListInactiveTickets(ctx, "g1", base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, "TICKET-0001", stale[0].TicketID)
	assert.Equal(t, "TICKET-0004", stale[1].TicketID)
}

func TestAppendMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertTicket(ctx, sampleTicket("TICKET-0001", "c1", "u1", base)))

	msg := model.TicketMessage{
		MessageID:   "m1",
		UserID:      "u1",
		Content:     "hello",
		Timestamp:   base.Add(time.Hour),
		Attachments: []model.TicketAttachment{{URL: "https://cdn/x.png", Name: "x.png"}},
	}
	require.NoError(t, s.AppendMessage(ctx, "g1", "TICKET-0001", msg))
	require.NoError(t, s.AppendMessage(ctx, "g1", "TICKET-0001", model.TicketMessage{MessageID: "m2", Content: "bye", Timestamp: base.Add(2 * time.Hour)}))

	got, err := s.GetTicket(ctx, "g1", "TICKET-0001")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, msg, got.Messages[0])
	assert.Equal(t, "m2", got.Messages[1].MessageID)
	assert.Equal(t, base.Add(2*time.Hour), got.Metadata.LastActivity)

	assert.ErrorIs(t, s.AppendMessage(ctx, "g1", "TICKET-0404", msg), model.ErrNotFound)
}

func TestLogs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	entries := []model.TicketLog{
		{ID: "l1", GuildID: "g1", TicketID: "TICKET-0001", Action: model.ActionCreate, UserID: "u1",
			NewData: map[string]any{"priority": "MEDIUM"}, CreatedAt: base},
		{ID: "l2", GuildID: "g1", TicketID: "TICKET-0001", Action: model.ActionClaim, UserID: "s1", CreatedAt: base.Add(time.Minute)},
		{ID: "l3", GuildID: "g1", Action: model.ActionCallUser, TargetID: "u1", ModeratorID: "s1",
			Metadata: model.TicketLogMetadata{Tickets: []string{"TICKET-0001"}}, CreatedAt: base.Add(time.Minute)},
		{ID: "l4", GuildID: "g2", Action: model.ActionCreate, CreatedAt: base},
	}
	for i := range entries {
		require.NoError(t, s.InsertLog(ctx, &entries[i]))
	}

	all, err := s.ListLogs(ctx, "g1", model.TicketLogQuery{Limit: 100})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"l3", "l2", "l1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []string{"TICKET-0001"}, all[0].Metadata.Tickets)
	assert.Equal(t, "MEDIUM", all[2].NewData["priority"])

	limited, err := s.ListLogs(ctx, "g1", model.TicketLogQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	filtered, err := s.ListLogs(ctx, "g1", model.TicketLogQuery{TicketID: "TICKET-0001", Action: model.ActionClaim, Limit: 100})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "l2", filtered[0].ID)
}
