package model

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultMaxOpenTickets   = 3
	DefaultTicketCooldown   = 5
	DefaultInactivityDays   = 3
	DefaultTicketNameFormat = "ticket-{number}"
)

type TicketCategory struct {
	Name         string   `json:"name" bson:"name"`
	Description  string   `json:"description" bson:"description"`
	Emoji        string   `json:"emoji" bson:"emoji"`
	SupportRoles []string `json:"supportRoles" bson:"supportRoles"`
	AutoAssign   bool     `json:"autoAssign" bson:"autoAssign"`
	MaxTickets   int      `json:"maxTickets" bson:"maxTickets"`
}

type AutoCloseSettings struct {
	Enabled        bool `json:"enabled" bson:"enabled"`
	InactivityDays int  `json:"inactivityDays" bson:"inactivityDays" validate:"min=1,max=30"`
}

type TranscriptSettings struct {
	Enabled   bool   `json:"enabled" bson:"enabled"`
	ChannelID string `json:"channelId,omitempty" bson:"channelId,omitempty"`
}

type TicketSettings struct {
	MaxOpenTickets   int                `json:"maxOpenTickets" bson:"maxOpenTickets" validate:"min=1,max=10"`
	TicketNameFormat string             `json:"ticketNameFormat" bson:"ticketNameFormat" validate:"required,max=90"`
	AutoClose        AutoCloseSettings  `json:"autoClose" bson:"autoClose"`
	Transcripts      TranscriptSettings `json:"transcripts" bson:"transcripts"`
	WelcomeMessage   string             `json:"welcomeMessage,omitempty" bson:"welcomeMessage,omitempty" validate:"max=2000"`
	CloseMessage     string             `json:"closeMessage,omitempty" bson:"closeMessage,omitempty" validate:"max=2000"`
	// TicketCooldown is expressed in minutes.
	TicketCooldown int    `json:"ticketCooldown" bson:"ticketCooldown" validate:"min=1,max=60"`
	LogsChannelID  string `json:"logsChannelId,omitempty" bson:"logsChannelId,omitempty"`
}

// DefaultTicketSettings mirrors the values a freshly set up guild receives.
func DefaultTicketSettings() TicketSettings {
	return TicketSettings{
		MaxOpenTickets:   DefaultMaxOpenTickets,
		TicketNameFormat: DefaultTicketNameFormat,
		AutoClose:        AutoCloseSettings{Enabled: true, InactivityDays: DefaultInactivityDays},
		Transcripts:      TranscriptSettings{Enabled: true},
		TicketCooldown:   DefaultTicketCooldown,
	}
}

// TicketConfig is the single per-guild ticket system document.
// Its absence means the guild has not set up the ticket system.
type TicketConfig struct {
	GuildID       string           `json:"guildId" bson:"guildId"`
	ChannelID     string           `json:"channelId" bson:"channelId" validate:"required"`
	CategoryID    string           `json:"categoryId" bson:"categoryId" validate:"required"`
	SupportRoleID string           `json:"supportRoleId" bson:"supportRoleId" validate:"required"`
	Categories    []TicketCategory `json:"categories" bson:"categories"`
	Settings      TicketSettings   `json:"settings" bson:"settings"`
	CreatedAt     time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// CooldownDuration falls back to the default when the stored value is unset.
func (c *TicketConfig) CooldownDuration() time.Duration {
	minutes := c.Settings.TicketCooldown
	if minutes <= 0 {
		minutes = DefaultTicketCooldown
	}
	return time.Duration(minutes) * time.Minute
}

func (c *TicketConfig) MaxOpenTickets() int {
	if c.Settings.MaxOpenTickets <= 0 {
		return DefaultMaxOpenTickets
	}
	return c.Settings.MaxOpenTickets
}

// ChannelName renders the ticket channel name from ticketNameFormat.
func (c *TicketConfig) ChannelName(number int) string {
	format := c.Settings.TicketNameFormat
	if format == "" {
		format = DefaultTicketNameFormat
	}
	padded := leftPad(strconv.Itoa(number), 4)
	if !strings.Contains(format, "{number}") {
		return format + "-" + padded
	}
	return strings.ReplaceAll(format, "{number}", padded)
}

// Category returns the configured category with the given name, if any.
func (c *TicketConfig) Category(name string) (TicketCategory, bool) {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return TicketCategory{}, false
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
