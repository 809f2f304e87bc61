package ticket

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/services/tickets"
	"community-bot/utils"
)

// HandleComponent routes the ticket buttons and the create modal.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		return
	}
	switch i.Type {
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == TicketModalID {
			handleModalSubmit(s, i, b)
		}
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case CreateTicketID:
			handleCreateButton(s, i, b)
		case ViewTicketsID:
			handleViewButton(s, i, b)
		case ClaimTicketID:
			handleClaimButton(s, i, b)
		case CloseTicketID:
			handleCloseButton(s, i, b)
		}
	}
}

// IsComponentID reports whether customID belongs to the ticket flow.
func IsComponentID(customID string) bool {
	switch customID {
	case CreateTicketID, ViewTicketsID, ClaimTicketID, CloseTicketID, TicketModalID:
		return true
	}
	return false
}

// handleCreateButton checks eligibility up front so a member on cooldown
// never fills in the modal for nothing.
func handleCreateButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := b.RequestContext()
	defer cancel()
	if err := b.Tickets.CanCreateTicket(ctx, i.Member.User.ID, i.GuildID); err != nil {
		respondError(s, i, b, "create", err)
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: TicketModal(),
	})
	if err != nil {
		b.Logger.Warn("failed to open ticket modal", zap.Error(err))
	}
}

func handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger.Warn("failed to defer ticket creation", zap.Error(err))
		return
	}
	data := i.ModalSubmitData()
	ctx, cancel := b.RequestContext()
	defer cancel()
	t, err := b.Tickets.CreateTicket(ctx, tickets.CreateTicketRequest{
		RequesterID: i.Member.User.ID,
		GuildID:     i.GuildID,
		Subject:     modalValue(data, "subject"),
		Description: modalValue(data, "description"),
	})
	if err != nil {
		followUpError(s, i, b, "create", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Your ticket has been created: <#%s>", t.ChannelID))
}

func modalValue(data discordgo.ModalSubmitInteractionData, id string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if input, ok := c.(*discordgo.TextInput); ok && input.CustomID == id {
				return input.Value
			}
		}
	}
	return ""
}

func handleViewButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := b.RequestContext()
	defer cancel()
	list, err := b.Tickets.GetUserTickets(ctx, i.Member.User.ID, i.GuildID)
	if err != nil {
		respondError(s, i, b, "view", err)
		return
	}
	utils.SendEmbedResponse(s, i, true, TicketListEmbed("📋 Your Open Tickets", list))
}

// ticketContext loads the ticket behind the interaction channel and checks
// that the member may perform action on it.
func ticketContext(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate, action model.LogAction) (*model.Ticket, *model.TicketConfig, error) {
	cfg, err := b.Tickets.GetConfig(ctx, i.GuildID)
	if err != nil {
		return nil, nil, err
	}
	t, err := b.Tickets.GetTicketByChannel(ctx, i.ChannelID)
	if err != nil {
		return nil, nil, err
	}
	if err := tickets.Authorize(actorFromMember(i.Member), action, t, cfg); err != nil {
		return nil, nil, err
	}
	if t.IsClosed() {
		return nil, nil, tickets.ErrInvalidState
	}
	return t, cfg, nil
}

func handleClaimButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := b.RequestContext()
	defer cancel()
	if _, _, err := ticketContext(ctx, b, i, model.ActionClaim); err != nil {
		respondError(s, i, b, "claim", err)
		return
	}
	staffID := i.Member.User.ID
	t, err := b.Tickets.ClaimTicket(ctx, i.ChannelID, staffID)
	if err != nil {
		respondError(s, i, b, "claim", err)
		return
	}
	utils.SendEmbedResponse(s, i, false, &discordgo.MessageEmbed{
		Title:       "🙋 Ticket Claimed",
		Description: fmt.Sprintf("%s is now being handled by <@%s>.", t.TicketID, staffID),
		Color:       colorSuccess,
	})
}

func handleCloseButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		b.Logger.Warn("failed to defer ticket close", zap.Error(err))
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()
	t, cfg, err := ticketContext(ctx, b, i, model.ActionClose)
	if err != nil {
		followUpError(s, i, b, "close", err)
		return
	}
	closedBy := i.Member.User.ID
	closed, err := b.Tickets.CloseTicket(ctx, i.GuildID, t.TicketID, closedBy, "Closed by "+i.Member.User.Username)
	if err != nil {
		followUpError(s, i, b, "close", err)
		return
	}
	utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{CloseEmbed(closed, cfg, b.Config.Tickets.CloseDelay)}, nil)
	b.ScheduleChannelDelete(i.GuildID, closed.ChannelID)
}
