package tickets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"community-bot/model"
)

const (
	ticketIDPrefix = "TICKET-"

	// SystemActorID marks actions taken by the bot itself.
	SystemActorID   = "system"
	AutoCloseReason = "Auto-closed due to inactivity"

	// PendingChannelName names a ticket channel until its number is allocated.
	PendingChannelName = "ticket-pending"

	defaultCategory    = "GENERAL"
	defaultSubject     = "New Ticket"
	defaultDescription = "No description provided"
)

// CreateTicketRequest carries a member's request for a new ticket.
type CreateTicketRequest struct {
	RequesterID string
	GuildID     string
	Category    string
	Subject     string
	Description string
	Priority    model.TicketPriority
}

// Service orchestrates the ticket lifecycle. Role checks are a precondition
// owned by the caller (see Authorize); no method here inspects roles.
type Service struct {
	store     Store
	cooldowns CooldownCache
	gateway   ChannelGateway
	audit     *AuditLog
	archiver  Archiver
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, cooldowns CooldownCache, gateway ChannelGateway, audit *AuditLog, opts ...Option) *Service {
	s := &Service{
		store:     store,
		cooldowns: cooldowns,
		gateway:   gateway,
		audit:     audit,
		validate:  validator.New(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupSystem creates or updates the guild configuration. Existing settings
// and categories survive a repeated setup.
func (s *Service) SetupSystem(ctx context.Context, guildID, panelChannelID, categoryID, supportRoleID string) (*model.TicketConfig, error) {
	now := s.now()
	cfg, err := s.store.GetConfig(ctx, guildID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		cfg = &model.TicketConfig{
			GuildID:    guildID,
			Categories: []model.TicketCategory{},
			Settings:   model.DefaultTicketSettings(),
			CreatedAt:  now,
		}
	case err != nil:
		return nil, storeFailure("load ticket config", err)
	}

	cfg.ChannelID = panelChannelID
	cfg.CategoryID = categoryID
	cfg.SupportRoleID = supportRoleID
	cfg.UpdatedAt = now
	if err := s.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.store.UpsertConfig(ctx, cfg); err != nil {
		return nil, storeFailure("save ticket config", err)
	}
	s.logger.Info("ticket system configured", zap.String("guild_id", guildID))
	return cfg, nil
}

// GetConfig returns ErrNotConfigured when the guild never ran setup.
func (s *Service) GetConfig(ctx context.Context, guildID string) (*model.TicketConfig, error) {
	cfg, err := s.store.GetConfig(ctx, guildID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, storeFailure("load ticket config", err)
	}
	return cfg, nil
}

// UpdateSettings applies mutate to a copy of the settings and saves it if it validates.
func (s *Service) UpdateSettings(ctx context.Context, guildID string, mutate func(*model.TicketSettings)) (*model.TicketConfig, error) {
	cfg, err := s.GetConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings
	mutate(&settings)
	if err := s.validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	cfg.Settings = settings
	cfg.UpdatedAt = s.now()
	if err := s.store.UpsertConfig(ctx, cfg); err != nil {
		return nil, storeFailure("save ticket config", err)
	}
	return cfg, nil
}

// CanCreateTicket runs the creation eligibility check without side effects.
func (s *Service) CanCreateTicket(ctx context.Context, userID, guildID string) error {
	_, err := s.eligibility(ctx, userID, guildID)
	return err
}

func (s *Service) eligibility(ctx context.Context, userID, guildID string) (*model.TicketConfig, error) {
	cfg, err := s.GetConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if until, ok := s.cooldowns.Get(ctx, CooldownKey{UserID: userID, GuildID: guildID}); ok && until.After(now) {
		return nil, &CooldownError{Remaining: until.Sub(now)}
	}

	open, err := s.store.CountOpenTickets(ctx, guildID, userID)
	if err != nil {
		return nil, storeFailure("count open tickets", err)
	}
	if max := cfg.MaxOpenTickets(); open >= max {
		return nil, &TicketLimitError{Max: max}
	}
	return cfg, nil
}

// CreateTicket opens a ticket and its private channel. The channel is created
// under PendingChannelName first so a failed creation never consumes a ticket
// number. A failed insert after allocation still leaves a gap in the sequence.
// The cooldown is set only after the ticket is stored.
func (s *Service) CreateTicket(ctx context.Context, req CreateTicketRequest) (*model.Ticket, error) {
	cfg, err := s.eligibility(ctx, req.RequesterID, req.GuildID)
	if err != nil {
		return nil, err
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		p, ok := model.ParsePriority(string(req.Priority))
		if !ok {
			return nil, ErrInvalidPriority
		}
		priority = p
	}

	category := firstNonEmpty(req.Category, defaultCategory)

	channelID, err := s.gateway.CreateTicketChannel(ctx, ChannelRequest{
		GuildID:        req.GuildID,
		Name:           PendingChannelName,
		ParentID:       cfg.CategoryID,
		UserID:         req.RequesterID,
		SupportRoleIDs: supportRoles(cfg, category),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket channel: %w", err)
	}

	number, err := s.store.NextTicketNumber(ctx, req.GuildID)
	if err != nil {
		s.discardChannel(ctx, channelID, "")
		return nil, storeFailure("allocate ticket number", err)
	}
	ticketID := formatTicketID(number)
	if err := s.gateway.RenameTicketChannel(ctx, channelID, cfg.ChannelName(number), ticketID); err != nil {
		s.logger.Warn("failed to rename ticket channel",
			zap.String("channel_id", channelID), zap.String("ticket_id", ticketID), zap.Error(err))
	}

	now := s.now()
	t := &model.Ticket{
		TicketID:    ticketID,
		GuildID:     req.GuildID,
		ChannelID:   channelID,
		UserID:      req.RequesterID,
		Status:      model.StatusOpen,
		Priority:    priority,
		Category:    category,
		Subject:     firstNonEmpty(req.Subject, defaultSubject),
		Description: firstNonEmpty(req.Description, defaultDescription),
		Messages:    []model.TicketMessage{},
		Metadata:    model.TicketMetadata{LastActivity: now, Tags: []string{}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertTicket(ctx, t); err != nil {
		s.discardChannel(ctx, channelID, ticketID)
		return nil, storeFailure("insert ticket", err)
	}

	s.cooldowns.Set(ctx, CooldownKey{UserID: req.RequesterID, GuildID: req.GuildID}, now.Add(cfg.CooldownDuration()))

	if _, err := s.audit.Record(ctx, model.TicketLog{
		GuildID:   t.GuildID,
		TicketID:  t.TicketID,
		Action:    model.ActionCreate,
		UserID:    t.UserID,
		NewData:   map[string]any{"priority": string(t.Priority), "description": t.Description},
		Metadata:  model.TicketLogMetadata{ChannelID: channelID, Category: t.Category, Subject: t.Subject},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := s.gateway.SendWelcome(ctx, channelID, t, cfg); err != nil {
		s.logger.Warn("failed to send ticket welcome message",
			zap.String("guild_id", t.GuildID), zap.String("ticket_id", t.TicketID), zap.Error(err))
	}

	s.logger.Info("ticket created",
		zap.String("guild_id", t.GuildID), zap.String("ticket_id", t.TicketID), zap.String("user_id", t.UserID))
	return t, nil
}

// discardChannel removes a channel whose ticket could not be stored.
func (s *Service) discardChannel(ctx context.Context, channelID, ticketID string) {
	if err := s.gateway.DeleteChannel(context.WithoutCancel(ctx), channelID); err != nil {
		s.logger.Error("orphan ticket channel left behind",
			zap.String("channel_id", channelID), zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *Service) GetTicket(ctx context.Context, guildID, ticketID string) (*model.Ticket, error) {
	t, err := s.store.GetTicket(ctx, guildID, ticketID)
	if err != nil {
		return nil, storeFailure("load ticket", err)
	}
	return t, nil
}

func (s *Service) GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error) {
	t, err := s.store.GetTicketByChannel(ctx, channelID)
	if err != nil {
		return nil, storeFailure("load ticket by channel", err)
	}
	return t, nil
}

// ClaimTicket assigns the ticket behind channelID to staffID. A later claim
// by someone else overwrites the assignee.
func (s *Service) ClaimTicket(ctx context.Context, channelID, staffID string) (*model.Ticket, error) {
	t, err := s.GetTicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := model.StatusInProgress
	updated, err := s.store.UpdateTicket(ctx, t.GuildID, t.TicketID, model.TicketUpdate{
		Status:       &status,
		AssignedTo:   &staffID,
		LastActivity: &now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, storeFailure("claim ticket", err)
	}

	if _, err := s.audit.Record(ctx, model.TicketLog{
		GuildID:   updated.GuildID,
		TicketID:  updated.TicketID,
		Action:    model.ActionClaim,
		UserID:    staffID,
		OldData:   map[string]any{"assignedTo": t.AssignedTo, "status": string(t.Status)},
		Metadata:  model.TicketLogMetadata{ChannelID: updated.ChannelID, AssignedTo: staffID},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// CloseTicket marks the ticket closed. Deleting the channel is left to the
// caller. A ticket that was reopened before gets its transcript archived.
func (s *Service) CloseTicket(ctx context.Context, guildID, ticketID, closedBy, reason string) (*model.Ticket, error) {
	now := s.now()
	status := model.StatusClosed
	updated, err := s.store.UpdateTicket(ctx, guildID, ticketID, model.TicketUpdate{
		Status:      &status,
		ClosedAt:    &now,
		ClosedBy:    &closedBy,
		CloseReason: &reason,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, storeFailure("close ticket", err)
	}

	if updated.Metadata.ReopenCount > 0 {
		s.archive(ctx, updated)
	}

	if _, err := s.audit.Record(ctx, model.TicketLog{
		GuildID:   updated.GuildID,
		TicketID:  updated.TicketID,
		Action:    model.ActionClose,
		UserID:    closedBy,
		Reason:    reason,
		Metadata:  model.TicketLogMetadata{ChannelID: updated.ChannelID, Category: updated.Category},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("ticket closed",
		zap.String("guild_id", guildID), zap.String("ticket_id", ticketID), zap.String("user_id", closedBy))
	return updated, nil
}

func (s *Service) archive(ctx context.Context, t *model.Ticket) {
	if s.archiver == nil {
		return
	}
	cfg, err := s.store.GetConfig(ctx, t.GuildID)
	if err != nil {
		s.logger.Warn("skipping transcript, config unavailable", zap.String("guild_id", t.GuildID), zap.Error(err))
		return
	}
	if !cfg.Settings.Transcripts.Enabled {
		return
	}
	if err := s.archiver.Archive(ctx, t, cfg); err != nil {
		s.logger.Warn("failed to archive transcript",
			zap.String("guild_id", t.GuildID), zap.String("ticket_id", t.TicketID), zap.Error(err))
	}
}

func (s *Service) UpdateTicketPriority(ctx context.Context, guildID, ticketID string, priority model.TicketPriority, actorID string) (*model.Ticket, error) {
	p, ok := model.ParsePriority(string(priority))
	if !ok {
		return nil, ErrInvalidPriority
	}
	existing, err := s.GetTicket(ctx, guildID, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.store.UpdateTicket(ctx, guildID, ticketID, model.TicketUpdate{
		Priority:     &p,
		LastActivity: &now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, storeFailure("update ticket priority", err)
	}

	if _, err := s.audit.Record(ctx, model.TicketLog{
		GuildID:  guildID,
		TicketID: ticketID,
		Action:   model.ActionUpdatePriority,
		UserID:   actorID,
		Metadata: model.TicketLogMetadata{
			ChannelID:   updated.ChannelID,
			OldPriority: string(existing.Priority),
			NewPriority: string(p),
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// GetUserTickets lists the user's tickets that are not closed, newest first.
func (s *Service) GetUserTickets(ctx context.Context, userID, guildID string) ([]model.Ticket, error) {
	if _, err := s.GetConfig(ctx, guildID); err != nil {
		return nil, err
	}
	list, err := s.store.ListOpenTickets(ctx, guildID, userID)
	if err != nil {
		return nil, storeFailure("list user tickets", err)
	}
	return list, nil
}

// ReopenTicket brings a closed ticket back with a fresh channel.
func (s *Service) ReopenTicket(ctx context.Context, guildID, ticketID, actorID string) (*model.Ticket, error) {
	cfg, err := s.GetConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	t, err := s.GetTicket(ctx, guildID, ticketID)
	if err != nil {
		return nil, err
	}
	if !t.IsClosed() {
		return nil, ErrInvalidState
	}

	channelID, err := s.gateway.CreateTicketChannel(ctx, ChannelRequest{
		GuildID:        guildID,
		Name:           cfg.ChannelName(ticketNumber(ticketID)),
		ParentID:       cfg.CategoryID,
		UserID:         t.UserID,
		SupportRoleIDs: supportRoles(cfg, t.Category),
		Topic:          ticketID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket channel: %w", err)
	}

	now := s.now()
	status := model.StatusOpen
	updated, err := s.store.UpdateTicket(ctx, guildID, ticketID, model.TicketUpdate{
		Status:          &status,
		ChannelID:       &channelID,
		ClearClosedAt:   true,
		ReopenedBy:      &actorID,
		IncrementReopen: true,
		LastActivity:    &now,
		UpdatedAt:       now,
	})
	if err != nil {
		s.discardChannel(ctx, channelID, ticketID)
		return nil, storeFailure("reopen ticket", err)
	}

	if _, err := s.audit.Record(ctx, model.TicketLog{
		GuildID:   guildID,
		TicketID:  ticketID,
		Action:    model.ActionReopen,
		UserID:    actorID,
		OldData:   map[string]any{"channelId": t.ChannelID},
		Metadata:  model.TicketLogMetadata{ChannelID: channelID, Category: updated.Category},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := s.gateway.SendWelcome(ctx, channelID, updated, cfg); err != nil {
		s.logger.Warn("failed to send ticket welcome message",
			zap.String("guild_id", guildID), zap.String("ticket_id", ticketID), zap.Error(err))
	}
	return updated, nil
}

// AppendMessage records a channel message in the ticket transcript.
// Messages for closed tickets are ignored.
func (s *Service) AppendMessage(ctx context.Context, channelID string, msg model.TicketMessage) error {
	t, err := s.GetTicketByChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if t.IsClosed() {
		return nil
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	if msg.Attachments == nil {
		msg.Attachments = []model.TicketAttachment{}
	}
	if err := s.store.AppendMessage(ctx, t.GuildID, t.TicketID, msg); err != nil {
		return storeFailure("append ticket message", err)
	}
	return nil
}

// CallUser returns the target's open tickets and records the call when there are any.
func (s *Service) CallUser(ctx context.Context, guildID, targetID, moderatorID string) ([]model.Ticket, error) {
	open, err := s.GetUserTickets(ctx, targetID, guildID)
	if err != nil || len(open) == 0 {
		return open, err
	}

	ids := make([]string, 0, len(open))
	for _, t := range open {
		ids = append(ids, t.TicketID)
	}
	if _, err := s.audit.Record(ctx, model.TicketLog{
		GuildID:     guildID,
		Action:      model.ActionCallUser,
		TargetID:    targetID,
		ModeratorID: moderatorID,
		Metadata:    model.TicketLogMetadata{Tickets: ids},
		CreatedAt:   s.now(),
	}); err != nil {
		return nil, err
	}
	return open, nil
}

// LogTicketAction persists entry and forwards it to the logs channel.
func (s *Service) LogTicketAction(ctx context.Context, entry model.TicketLog) (*model.TicketLog, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.audit.Record(ctx, entry)
}

func (s *Service) GetTicketLogs(ctx context.Context, guildID string, q model.TicketLogQuery) ([]model.TicketLog, error) {
	return s.audit.List(ctx, guildID, q)
}

// AutoCloseInactive closes tickets idle for longer than their guild allows
// and returns them so the caller can remove the channels.
func (s *Service) AutoCloseInactive(ctx context.Context) ([]model.Ticket, error) {
	configs, err := s.store.ListConfigs(ctx)
	if err != nil {
		return nil, storeFailure("list ticket configs", err)
	}

	var closed []model.Ticket
	var errs []error
	now := s.now()
	for _, cfg := range configs {
		ac := cfg.Settings.AutoClose
		if !ac.Enabled || ac.InactivityDays <= 0 {
			continue
		}
		cutoff := now.Add(-time.Duration(ac.InactivityDays) * 24 * time.Hour)
		stale, err := s.store.ListInactiveTickets(ctx, cfg.GuildID, cutoff)
		if err != nil {
			errs = append(errs, storeFailure("list inactive tickets", err))
			continue
		}
		for _, t := range stale {
			updated, err := s.CloseTicket(ctx, t.GuildID, t.TicketID, SystemActorID, AutoCloseReason)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			closed = append(closed, *updated)
		}
	}
	return closed, errors.Join(errs...)
}

func formatTicketID(number int) string {
	return fmt.Sprintf("%s%04d", ticketIDPrefix, number)
}

func ticketNumber(ticketID string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(ticketID, ticketIDPrefix))
	if err != nil {
		return 0
	}
	return n
}

func supportRoles(cfg *model.TicketConfig, category string) []string {
	roles := []string{}
	if cfg.SupportRoleID != "" {
		roles = append(roles, cfg.SupportRoleID)
	}
	if cat, ok := cfg.Category(category); ok {
		for _, r := range cat.SupportRoles {
			if r != "" && !slices.Contains(roles, r) {
				roles = append(roles, r)
			}
		}
	}
	return roles
}

func firstNonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
