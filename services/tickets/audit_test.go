package tickets

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"community-bot/model"
)

func configured(t *testing.T, store *memStore, logsChannel string) {
	t.Helper()
	cfg := model.TicketConfig{
		GuildID:       guildID,
		ChannelID:     "panel",
		CategoryID:    "category",
		SupportRoleID: "role",
		Settings:      model.DefaultTicketSettings(),
	}
	cfg.Settings.LogsChannelID = logsChannel
	require.NoError(t, store.UpsertConfig(context.Background(), &cfg))
}

func TestAuditLog_RecordForwardsToLogsChannel(t *testing.T) {
	store := newMemStore()
	configured(t, store, "logs-chan")
	notifier := &fakeNotifier{}
	d := NewDispatcher(4, zap.NewNop())
	d.Start(context.Background())
	audit := NewAuditLog(store, notifier, d, zap.NewNop())

	entry, err := audit.Record(context.Background(), model.TicketLog{GuildID: guildID, TicketID: "TICKET-0001", Action: model.ActionClaim, UserID: staffID})
	require.NoError(t, err)
	d.Stop()

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, []string{"logs-chan"}, notifier.targets)
	assert.Equal(t, entry.ID, notifier.sent[0].ID)
}

func TestAuditLog_NotifyFailureDoesNotFailRecord(t *testing.T) {
	store := newMemStore()
	configured(t, store, "logs-chan")
	notifier := &fakeNotifier{err: errBoom}
	d := NewDispatcher(4, zap.NewNop())
	d.Start(context.Background())
	audit := NewAuditLog(store, notifier, d, zap.NewNop())

	_, err := audit.Record(context.Background(), model.TicketLog{GuildID: guildID, Action: model.ActionClose})
	d.Stop()

	require.NoError(t, err)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, 1, notifier.count())
}

func TestAuditLog_NoLogsChannel(t *testing.T) {
	store := newMemStore()
	configured(t, store, "")
	notifier := &fakeNotifier{}
	d := NewDispatcher(4, zap.NewNop())
	d.Start(context.Background())
	audit := NewAuditLog(store, notifier, d, zap.NewNop())

	_, err := audit.Record(context.Background(), model.TicketLog{GuildID: guildID, Action: model.ActionCreate})
	d.Stop()

	require.NoError(t, err)
	assert.Zero(t, notifier.count())
}

func TestAuditLog_RejectsUnknownAction(t *testing.T) {
	store := newMemStore()
	audit := NewAuditLog(store, nil, nil, zap.NewNop())

	_, err := audit.Record(context.Background(), model.TicketLog{GuildID: guildID, Action: "EXPLODE"})

	assert.Error(t, err)
	assert.Empty(t, store.logs)
}

func TestAuditLog_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.failInsertLog = true
	audit := NewAuditLog(store, nil, nil, zap.NewNop())

	_, err := audit.Record(context.Background(), model.TicketLog{GuildID: guildID, Action: model.ActionCreate})

	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, zap.NewNop())
	release := make(chan struct{})
	var ran atomic.Int32

	// Not started yet, so the single slot fills up.
	assert.True(t, d.Submit(func(context.Context) { <-release; ran.Add(1) }))
	assert.False(t, d.Submit(func(context.Context) { ran.Add(1) }))

	d.Start(context.Background())
	close(release)
	d.Stop()

	assert.Equal(t, int32(1), ran.Load())
	assert.False(t, d.Submit(func(context.Context) {}))
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := NewDispatcher(2, zap.NewNop())
	d.Start(context.Background())
	done := make(chan struct{})

	d.Submit(func(context.Context) { panic("kaboom") })
	d.Submit(func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker stopped after a panic")
	}
	d.Stop()
}

func TestDispatcher_JobsOutliveCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(1, zap.NewNop())
	d.Start(ctx)
	cancel()

	errCh := make(chan error, 1)
	d.Submit(func(jobCtx context.Context) { errCh <- jobCtx.Err() })
	d.Stop()

	assert.NoError(t, <-errCh)
}
