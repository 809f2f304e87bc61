package ticket

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/services/tickets"
	"community-bot/utils"
)

// HandlePriorityCommand changes the priority of the ticket in the current channel.
func HandlePriorityCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	opt, ok := opts["level"]
	if !ok {
		utils.SendErrorResponse(s, i, "Please choose a priority.")
		return
	}
	priority, ok := model.ParsePriority(opt.StringValue())
	if !ok {
		respondError(s, i, b, "priority", tickets.ErrInvalidPriority)
		return
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	t, _, err := ticketContext(ctx, b, i, model.ActionUpdatePriority)
	if err != nil {
		respondError(s, i, b, "priority", err)
		return
	}
	old := t.Priority
	updated, err := b.Tickets.UpdateTicketPriority(ctx, i.GuildID, t.TicketID, priority, i.Member.User.ID)
	if err != nil {
		respondError(s, i, b, "priority", err)
		return
	}
	utils.SendEmbedResponse(s, i, false, &discordgo.MessageEmbed{
		Title:       "📊 Priority Updated",
		Description: fmt.Sprintf("%s priority changed from %s to %s.", updated.TicketID, priorityLabel(old), priorityLabel(updated.Priority)),
		Color:       updated.Priority.Color(),
	})
}

// HandleCallUserCommand pings a member in every ticket they still have open.
func HandleCallUserCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	opt, ok := opts["user"]
	if !ok {
		utils.SendErrorResponse(s, i, "Please choose a user.")
		return
	}
	targetID := opt.UserValue(nil).ID

	ctx, cancel := b.RequestContext()
	defer cancel()
	cfg, err := b.Tickets.GetConfig(ctx, i.GuildID)
	if err != nil {
		respondError(s, i, b, "calluser", err)
		return
	}
	if !actorFromMember(i.Member).IsSupport(cfg, "") {
		respondError(s, i, b, "calluser", tickets.ErrUnauthorized)
		return
	}

	open, err := b.Tickets.CallUser(ctx, i.GuildID, targetID, i.Member.User.ID)
	if err != nil {
		respondError(s, i, b, "calluser", err)
		return
	}
	if len(open) == 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("<@%s> has no open tickets.", targetID))
		return
	}

	called := make([]string, 0, len(open))
	for _, t := range open {
		msg := fmt.Sprintf("📢 <@%s>, <@%s> is waiting for your reply in this ticket.", targetID, i.Member.User.ID)
		if _, err := s.ChannelMessageSend(t.ChannelID, msg); err != nil {
			b.Logger.Warn("failed to call user in ticket",
				zap.String("ticket_id", t.TicketID), zap.String("user_id", targetID), zap.Error(err))
			continue
		}
		called = append(called, fmt.Sprintf("%s (<#%s>)", t.TicketID, t.ChannelID))
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("📢 Called <@%s> in: %s", targetID, strings.Join(called, ", ")))
}
