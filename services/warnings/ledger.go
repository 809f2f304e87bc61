package warnings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"community-bot/model"
)

const (
	DefaultStatsDays = 30
	DefaultTopWarned = 10
	statsDayLayout   = "2006-01-02"
)

// Ledger issues warnings and totals their points per member.
type Ledger struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Ledger)

func WithLogger(l *zap.Logger) Option {
	return func(g *Ledger) { g.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(g *Ledger) { g.now = now }
}

func NewLedger(store Store, opts ...Option) *Ledger {
	g := &Ledger{store: store, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateWarning stores w as an active warning. Points always follow the level,
// whatever the caller put in w.Points.
func (g *Ledger) CreateWarning(ctx context.Context, w model.Warning) (*model.Warning, error) {
	level, ok := model.ParseWarningLevel(string(w.Level))
	if !ok {
		return nil, ErrInvalidLevel
	}
	if strings.TrimSpace(w.Reason) == "" {
		return nil, ErrMissingReason
	}

	w.ID = uuid.NewString()
	w.Level = level
	w.Points = level.Points()
	w.Active = true
	w.CreatedAt = g.now()
	if err := g.store.InsertWarning(ctx, &w); err != nil {
		return nil, fmt.Errorf("failed to create warning: %w", err)
	}

	g.logger.Info("warning issued",
		zap.String("guild_id", w.GuildID),
		zap.String("user_id", w.UserID),
		zap.String("moderator_id", w.ModeratorID),
		zap.String("level", string(w.Level)))
	return &w, nil
}

// GetUserWarnings lists a member's warnings newest first. With activeOnly,
// inactive and expired warnings are left out.
func (g *Ledger) GetUserWarnings(ctx context.Context, userID, guildID string, activeOnly bool) ([]model.Warning, error) {
	var activeAt *time.Time
	if activeOnly {
		now := g.now()
		activeAt = &now
	}
	list, err := g.store.ListWarnings(ctx, guildID, userID, activeAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	return list, nil
}

func (g *Ledger) CalculateUserPoints(ctx context.Context, userID, guildID string) (int, error) {
	list, err := g.GetUserWarnings(ctx, userID, guildID, true)
	if err != nil {
		return 0, err
	}
	return SumPoints(list, g.now()), nil
}

// SumPoints totals the warnings that count at now.
func SumPoints(list []model.Warning, now time.Time) int {
	total := 0
	for i := range list {
		if list[i].CountsAt(now) {
			total += list[i].Points
		}
	}
	return total
}

// DeactivateWarning pardons a warning; it stays in the history.
func (g *Ledger) DeactivateWarning(ctx context.Context, guildID, warningID string) error {
	if err := g.store.SetWarningActive(ctx, guildID, warningID, false); err != nil {
		return fmt.Errorf("failed to deactivate warning %s: %w", warningID, err)
	}
	return nil
}

// GuildWarnings returns every warning of the guild, newest first.
func (g *Ledger) GuildWarnings(ctx context.Context, guildID string) ([]model.Warning, error) {
	list, err := g.store.ListGuildWarnings(ctx, guildID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to list guild warnings: %w", err)
	}
	return list, nil
}

// DayStat counts warnings of one level issued on one UTC day.
type DayStat struct {
	Day   string
	Level model.WarningLevel
	Count int
}

// GetGuildStats groups the last days of warnings by day and level, newest day first.
func (g *Ledger) GetGuildStats(ctx context.Context, guildID string, days int) ([]DayStat, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	since := g.now().AddDate(0, 0, -days)
	list, err := g.store.ListGuildWarnings(ctx, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild stats: %w", err)
	}

	type bucket struct {
		day   string
		level model.WarningLevel
	}
	counts := map[bucket]int{}
	for _, w := range list {
		counts[bucket{w.CreatedAt.UTC().Format(statsDayLayout), w.Level}]++
	}

	stats := make([]DayStat, 0, len(counts))
	for b, n := range counts {
		stats = append(stats, DayStat{Day: b.day, Level: b.level, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Day != stats[j].Day {
			return stats[i].Day > stats[j].Day
		}
		return stats[i].Level.Points() < stats[j].Level.Points()
	})
	return stats, nil
}

// UserSummary aggregates the counting warnings of one member.
type UserSummary struct {
	UserID        string
	TotalWarnings int
	TotalPoints   int
	Warnings      []model.Warning
}

// GetMostWarnedUsers ranks members by the points of their counting warnings.
func (g *Ledger) GetMostWarnedUsers(ctx context.Context, guildID string, limit int) ([]UserSummary, error) {
	if limit <= 0 {
		limit = DefaultTopWarned
	}
	list, err := g.store.ListGuildWarnings(ctx, guildID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to rank warned users: %w", err)
	}

	now := g.now()
	byUser := map[string]*UserSummary{}
	for _, w := range list {
		if !w.CountsAt(now) {
			continue
		}
		s, ok := byUser[w.UserID]
		if !ok {
			s = &UserSummary{UserID: w.UserID}
			byUser[w.UserID] = s
		}
		s.TotalWarnings++
		s.TotalPoints += w.Points
		s.Warnings = append(s.Warnings, w)
	}

	out := make([]UserSummary, 0, len(byUser))
	for _, s := range byUser {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
