package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"community-bot/model"
)

// TicketCloser closes tickets that went quiet for too long.
type TicketCloser interface {
	AutoCloseInactive(ctx context.Context) ([]model.Ticket, error)
}

// ChannelDeleter removes the channel of a closed ticket.
type ChannelDeleter interface {
	DeleteChannel(ctx context.Context, channelID string) error
}

// CooldownPruner drops expired cooldown entries. Only the in-memory cache needs it.
type CooldownPruner interface {
	Prune(now time.Time) int
}

// SchedulerConfig holds the cron specs of the background jobs.
type SchedulerConfig struct {
	AutoCloseSchedule string
	PruneSchedule     string
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	tickets  TicketCloser
	channels ChannelDeleter
	pruner   CooldownPruner
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
}

// NewScheduler registers the jobs. pruner may be nil.
func NewScheduler(cfg SchedulerConfig, tickets TicketCloser, channels ChannelDeleter, pruner CooldownPruner, logger *zap.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(),
		tickets:  tickets,
		channels: channels,
		pruner:   pruner,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if _, err := s.cron.AddFunc(cfg.AutoCloseSchedule, s.autoCloseTickets); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid auto-close schedule %q: %w", cfg.AutoCloseSchedule, err)
	}
	if pruner != nil {
		if _, err := s.cron.AddFunc(cfg.PruneSchedule, s.pruneCooldowns); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid cooldown prune schedule %q: %w", cfg.PruneSchedule, err)
		}
	}
	return s, nil
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop terminates all scheduled tasks and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	if !s.running {
		return
	}
	s.running = false
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) autoCloseTickets() {
	closed, err := s.tickets.AutoCloseInactive(s.ctx)
	if err != nil {
		s.logger.Error("auto-close run finished with errors", zap.Error(err))
	}
	for _, t := range closed {
		if err := s.channels.DeleteChannel(s.ctx, t.ChannelID); err != nil {
			s.logger.Warn("failed to delete auto-closed ticket channel",
				zap.String("guild_id", t.GuildID),
				zap.String("ticket_id", t.TicketID),
				zap.Error(err))
		}
	}
	if len(closed) > 0 {
		s.logger.Info("auto-closed inactive tickets", zap.Int("count", len(closed)))
	}
}

func (s *Scheduler) pruneCooldowns() {
	if removed := s.pruner.Prune(time.Now()); removed > 0 {
		s.logger.Debug("pruned expired cooldowns", zap.Int("count", removed))
	}
}
