package tickets

import (
	"context"
	"io"
	"time"

	"community-bot/model"
)

// Store persists tickets, per-guild configuration and the audit trail.
// Implementations return model.ErrNotFound for lookups that match nothing
// and serialize conflicting writes themselves (last write wins).
type Store interface {
	UpsertConfig(ctx context.Context, cfg *model.TicketConfig) error
	GetConfig(ctx context.Context, guildID string) (*model.TicketConfig, error)
	ListConfigs(ctx context.Context) ([]model.TicketConfig, error)

	// NextTicketNumber increments and returns the guild counter in one operation.
	NextTicketNumber(ctx context.Context, guildID string) (int, error)
	InsertTicket(ctx context.Context, t *model.Ticket) error
	GetTicket(ctx context.Context, guildID, ticketID string) (*model.Ticket, error)
	GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, guildID, ticketID string, upd model.TicketUpdate) (*model.Ticket, error)
	CountOpenTickets(ctx context.Context, guildID, userID string) (int, error)
	// ListOpenTickets returns non-closed tickets of a user, newest first.
	ListOpenTickets(ctx context.Context, guildID, userID string) ([]model.Ticket, error)
	ListInactiveTickets(ctx context.Context, guildID string, before time.Time) ([]model.Ticket, error)
	AppendMessage(ctx context.Context, guildID, ticketID string, msg model.TicketMessage) error

	InsertLog(ctx context.Context, entry *model.TicketLog) error
	ListLogs(ctx context.Context, guildID string, q model.TicketLogQuery) ([]model.TicketLog, error)
}

// ChannelRequest describes the private channel backing a new ticket.
type ChannelRequest struct {
	GuildID        string
	Name           string
	ParentID       string
	UserID         string
	SupportRoleIDs []string
	Topic          string
}

// ChannelGateway is the part of the chat platform the service drives.
type ChannelGateway interface {
	CreateTicketChannel(ctx context.Context, req ChannelRequest) (string, error)
	// RenameTicketChannel gives a pending channel its final name and topic.
	RenameTicketChannel(ctx context.Context, channelID, name, topic string) error
	DeleteChannel(ctx context.Context, channelID string) error
	SendWelcome(ctx context.Context, channelID string, t *model.Ticket, cfg *model.TicketConfig) error
}

// Notifier forwards persisted audit entries to a guild logs channel.
type Notifier interface {
	NotifyLog(ctx context.Context, channelID string, entry model.TicketLog) error
}

// Archiver stores the transcript of a closed ticket session.
type Archiver interface {
	Archive(ctx context.Context, t *model.Ticket, cfg *model.TicketConfig) error
}

// Uploader sends a rendered file to a channel.
type Uploader interface {
	UploadFile(ctx context.Context, channelID, name, contentType string, r io.Reader) error
}
