package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/services/tickets"
	"community-bot/utils"
)

func actorFromMember(m *discordgo.Member) tickets.Actor {
	if m == nil {
		return tickets.Actor{}
	}
	actor := tickets.Actor{
		RoleIDs:       m.Roles,
		Administrator: m.Permissions&discordgo.PermissionAdministrator != 0,
	}
	if m.User != nil {
		actor.UserID = m.User.ID
	}
	return actor
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return utils.HasPermission(i.Member, discordgo.PermissionManageGuild)
}

// logFailure records internal failures; user errors are expected outcomes.
func logFailure(b *bot.Bot, op string, i *discordgo.InteractionCreate, err error) {
	if tickets.IsUserError(err) {
		return
	}
	b.Logger.Error("ticket operation failed",
		zap.String("operation", op),
		zap.String("guild_id", i.GuildID),
		zap.String("channel_id", i.ChannelID),
		zap.Error(err))
	b.LogChannel(utils.Error, "Tickets", op, err.Error())
}

// respondError answers an interaction that has not been acknowledged yet.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, op string, err error) {
	logFailure(b, op, i, err)
	utils.SendErrorResponse(s, i, tickets.UserMessage(err))
}

// followUpError edits a deferred reply.
func followUpError(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, op string, err error) {
	logFailure(b, op, i, err)
	utils.SendFollowUpError(s, i.Interaction, tickets.UserMessage(err))
}

// HandleTicketCommand routes /ticket subcommands.
func HandleTicketCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	sub, opts := utils.Subcommand(i)
	switch sub {
	case "setup":
		handleSetup(s, i, b, opts)
	case "panel":
		handlePanel(s, i, b)
	case "reopen":
		handleReopen(s, i, b, opts)
	case "logs":
		handleLogs(s, i, b, opts)
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !isAdmin(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to set up tickets.")
		return
	}
	panel, category, role := opts["channel"], opts["category"], opts["support_role"]
	if panel == nil || category == nil || role == nil {
		utils.SendErrorResponse(s, i, "Please provide a channel, a category and a support role.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger.Warn("failed to defer ticket setup", zap.Error(err))
		return
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	panelChannelID := panel.ChannelValue(nil).ID
	cfg, err := b.Tickets.SetupSystem(ctx, i.GuildID, panelChannelID, category.ChannelValue(nil).ID, role.RoleValue(nil, i.GuildID).ID)
	if err != nil {
		followUpError(s, i, b, "setup", err)
		return
	}

	if _, err := s.ChannelMessageSendComplex(cfg.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{PanelEmbed()},
		Components: PanelComponents(),
	}); err != nil {
		b.Logger.Warn("failed to post ticket panel", zap.String("guild_id", i.GuildID), zap.Error(err))
		utils.SendFollowUp(s, i.Interaction, "⚠️ Ticket system saved, but the panel could not be posted. Check my permissions in <#"+cfg.ChannelID+">.")
		return
	}
	utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{{
		Title:       "✅ Ticket System Set Up",
		Description: "The ticket panel has been posted in <#" + cfg.ChannelID + ">.",
		Color:       colorSuccess,
	}, SettingsEmbed(cfg)}, nil)
	b.LogChannel(utils.Info, "Tickets", "setup", "guild "+i.GuildID)
}

func handlePanel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !isAdmin(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to post the panel.")
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()
	if _, err := b.Tickets.GetConfig(ctx, i.GuildID); err != nil {
		respondError(s, i, b, "panel", err)
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{PanelEmbed()},
			Components: PanelComponents(),
		},
	})
	if err != nil {
		b.Logger.Warn("failed to post ticket panel", zap.Error(err))
	}
}

func handleReopen(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	opt := opts["ticket_id"]
	if opt == nil {
		utils.SendErrorResponse(s, i, "Please provide a ticket ID.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger.Warn("failed to defer ticket reopen", zap.Error(err))
		return
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	cfg, err := b.Tickets.GetConfig(ctx, i.GuildID)
	if err != nil {
		followUpError(s, i, b, "reopen", err)
		return
	}
	ticketID := normalizeTicketID(opt.StringValue())
	t, err := b.Tickets.GetTicket(ctx, i.GuildID, ticketID)
	if errors.Is(err, tickets.ErrNotFound) {
		utils.SendFollowUpError(s, i.Interaction, "Ticket "+ticketID+" was not found.")
		return
	}
	if err != nil {
		followUpError(s, i, b, "reopen", err)
		return
	}
	if err := tickets.Authorize(actorFromMember(i.Member), model.ActionReopen, t, cfg); err != nil {
		followUpError(s, i, b, "reopen", err)
		return
	}

	reopened, err := b.Tickets.ReopenTicket(ctx, i.GuildID, ticketID, i.Member.User.ID)
	if err != nil {
		followUpError(s, i, b, "reopen", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, "🔓 "+reopened.TicketID+" has been reopened in <#"+reopened.ChannelID+">.")
}

func handleLogs(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx, cancel := b.RequestContext()
	defer cancel()
	cfg, err := b.Tickets.GetConfig(ctx, i.GuildID)
	if err != nil {
		respondError(s, i, b, "logs", err)
		return
	}
	if !actorFromMember(i.Member).IsSupport(cfg, "") {
		respondError(s, i, b, "logs", tickets.ErrUnauthorized)
		return
	}

	q := model.TicketLogQuery{Limit: 15}
	if opt, ok := opts["ticket_id"]; ok {
		q.TicketID = normalizeTicketID(opt.StringValue())
	}
	if opt, ok := opts["user"]; ok {
		q.UserID = opt.UserValue(nil).ID
	}
	if opt, ok := opts["action"]; ok {
		q.Action = model.LogAction(opt.StringValue())
	}
	logs, err := b.Tickets.GetTicketLogs(ctx, i.GuildID, q)
	if err != nil {
		respondError(s, i, b, "logs", err)
		return
	}
	utils.SendEmbedResponse(s, i, true, LogsEmbed(logs))
}

// normalizeTicketID accepts "12", "0012" or "ticket-0012" for TICKET-0012.
func normalizeTicketID(raw string) string {
	id := strings.ToUpper(strings.TrimSpace(raw))
	id = strings.TrimPrefix(id, "#")
	id = strings.TrimPrefix(id, "TICKET-")
	if n, err := strconv.Atoi(id); err == nil && n > 0 {
		return fmt.Sprintf("TICKET-%04d", n)
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}
