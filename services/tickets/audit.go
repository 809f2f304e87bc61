package tickets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"community-bot/model"
)

const (
	defaultDispatchQueue = 64
	notifyTimeout        = 10 * time.Second
)

// Dispatcher runs detached side effects on a single worker. Jobs carry no
// ordering guarantee relative to the write that produced them and are never
// retried; a full queue drops the job.
type Dispatcher struct {
	jobs   chan func(context.Context)
	logger *zap.Logger
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(size int, logger *zap.Logger) *Dispatcher {
	if size <= 0 {
		size = defaultDispatchQueue
	}
	return &Dispatcher{jobs: make(chan func(context.Context), size), logger: logger}
}

// Start launches the worker. It exits once Stop drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for job := range d.jobs {
			d.run(ctx, job)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, job func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification job panicked", zap.Any("panic", r))
		}
	}()
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	job(jobCtx)
}

// Submit enqueues job without blocking and reports whether it was accepted.
func (d *Dispatcher) Submit(job func(context.Context)) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		d.logger.Warn("notification queue full, dropping job")
		return false
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

// AuditLog appends ticket lifecycle entries and mirrors them to the guild
// logs channel when one is configured. The store write is the transaction
// boundary; the mirror is fire-and-forget.
type AuditLog struct {
	store      Store
	notifier   Notifier
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewAuditLog(store Store, notifier Notifier, dispatcher *Dispatcher, logger *zap.Logger) *AuditLog {
	return &AuditLog{store: store, notifier: notifier, dispatcher: dispatcher, logger: logger}
}

// Record persists entry and schedules its notification. Only the persist
// step can fail the call.
func (a *AuditLog) Record(ctx context.Context, entry model.TicketLog) (*model.TicketLog, error) {
	if !entry.Action.Valid() {
		return nil, errors.New("unknown ticket log action: " + string(entry.Action))
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := a.store.InsertLog(ctx, &entry); err != nil {
		return nil, storeFailure("insert ticket log", err)
	}

	a.forward(ctx, entry)
	return &entry, nil
}

func (a *AuditLog) forward(ctx context.Context, entry model.TicketLog) {
	if a.notifier == nil || a.dispatcher == nil {
		return
	}
	cfg, err := a.store.GetConfig(ctx, entry.GuildID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Warn("failed to load config for log notification",
				zap.String("guild_id", entry.GuildID), zap.Error(err))
		}
		return
	}
	channelID := cfg.Settings.LogsChannelID
	if channelID == "" {
		return
	}
	a.dispatcher.Submit(func(jobCtx context.Context) {
		if err := a.notifier.NotifyLog(jobCtx, channelID, entry); err != nil {
			a.logger.Warn("failed to send ticket log notification",
				zap.String("guild_id", entry.GuildID),
				zap.String("ticket_id", entry.TicketID),
				zap.String("action", string(entry.Action)),
				zap.Error(err))
		}
	})
}

// List returns audit entries newest first; Limit defaults to 100.
func (a *AuditLog) List(ctx context.Context, guildID string, q model.TicketLogQuery) ([]model.TicketLog, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	logs, err := a.store.ListLogs(ctx, guildID, q)
	if err != nil {
		return nil, storeFailure("list ticket logs", err)
	}
	return logs, nil
}
