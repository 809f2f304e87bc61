package model

import (
	"strings"
	"time"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "OPEN"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusOnHold     TicketStatus = "ON_HOLD"
	StatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority orders tickets for staff attention.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// ParsePriority accepts a priority name in any case.
func ParsePriority(s string) (TicketPriority, bool) {
	switch p := TicketPriority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

func (p TicketPriority) Emoji() string {
	switch p {
	case PriorityLow:
		return "🟢"
	case PriorityHigh:
		return "🟠"
	case PriorityUrgent:
		return "🔴"
	default:
		return "🟡"
	}
}

func (p TicketPriority) Color() int {
	switch p {
	case PriorityLow:
		return 0x00ff00
	case PriorityHigh:
		return 0xff9900
	case PriorityUrgent:
		return 0xff0000
	default:
		return 0xffff00
	}
}

type TicketAttachment struct {
	URL  string `json:"url" bson:"url"`
	Name string `json:"name" bson:"name"`
}

// TicketMessage is one transcript entry. Entries are append-only.
type TicketMessage struct {
	MessageID   string             `json:"messageId" bson:"messageId"`
	UserID      string             `json:"userId" bson:"userId"`
	Content     string             `json:"content" bson:"content"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	Attachments []TicketAttachment `json:"attachments" bson:"attachments"`
}

type TicketMetadata struct {
	ClosedBy     string    `json:"closedBy,omitempty" bson:"closedBy,omitempty"`
	CloseReason  string    `json:"closeReason,omitempty" bson:"closeReason,omitempty"`
	ReopenedBy   string    `json:"reopenedBy,omitempty" bson:"reopenedBy,omitempty"`
	ReopenCount  int       `json:"reopenCount" bson:"reopenCount"`
	LastActivity time.Time `json:"lastActivity" bson:"lastActivity"`
	Resolution   string    `json:"resolution,omitempty" bson:"resolution,omitempty"`
	Tags         []string  `json:"tags" bson:"tags"`
}

// Ticket is a tracked support interaction backed by a dedicated channel.
// TicketID is sequential per guild, so (GuildID, TicketID) is the identity.
type Ticket struct {
	TicketID    string          `json:"ticketId" bson:"ticketId"`
	GuildID     string          `json:"guildId" bson:"guildId"`
	ChannelID   string          `json:"channelId" bson:"channelId"`
	UserID      string          `json:"userId" bson:"userId"`
	AssignedTo  string          `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Status      TicketStatus    `json:"status" bson:"status"`
	Priority    TicketPriority  `json:"priority" bson:"priority"`
	Category    string          `json:"category" bson:"category"`
	Subject     string          `json:"subject" bson:"subject"`
	Description string          `json:"description" bson:"description"`
	Messages    []TicketMessage `json:"messages" bson:"messages"`
	Metadata    TicketMetadata  `json:"metadata" bson:"metadata"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
	ClosedAt    *time.Time      `json:"closedAt,omitempty" bson:"closedAt,omitempty"`
}

func (t *Ticket) IsClosed() bool {
	return t.Status == StatusClosed
}

// LastActive is the last recorded activity, falling back to creation time.
func (t *Ticket) LastActive() time.Time {
	if t.Metadata.LastActivity.IsZero() {
		return t.CreatedAt
	}
	return t.Metadata.LastActivity
}

// TicketUpdate is a partial update applied atomically by a store.
// Nil fields are left untouched.
type TicketUpdate struct {
	Status          *TicketStatus
	Priority        *TicketPriority
	AssignedTo      *string
	ChannelID       *string
	ClosedAt        *time.Time
	ClearClosedAt   bool
	ClosedBy        *string
	CloseReason     *string
	ReopenedBy      *string
	IncrementReopen bool
	LastActivity    *time.Time
	UpdatedAt       time.Time
}
