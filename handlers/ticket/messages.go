package ticket

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/services/tickets"
)

// HandleMessageCreate appends messages posted in ticket channels to the
// ticket transcript.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()
	if err := b.Tickets.AppendMessage(ctx, m.ChannelID, transcriptEntry(m.Message)); err != nil {
		if errors.Is(err, tickets.ErrNotFound) {
			return
		}
		b.Logger.Warn("failed to record ticket message",
			zap.String("channel_id", m.ChannelID), zap.String("message_id", m.ID), zap.Error(err))
	}
}

func transcriptEntry(m *discordgo.Message) model.TicketMessage {
	attachments := make([]model.TicketAttachment, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, model.TicketAttachment{URL: a.URL, Name: a.Filename})
	}
	return model.TicketMessage{
		MessageID:   m.ID,
		UserID:      m.Author.ID,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		Attachments: attachments,
	}
}
