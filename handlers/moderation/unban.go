package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/utils"
)

// HandleUnbanCommand looks up the ban, asks for confirmation and lifts it.
func HandleUnbanCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !utils.HasPermission(i.Member, discordgo.PermissionBanMembers) {
		utils.SendErrorResponse(s, i, "You need the Ban Members permission to unban members.")
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	userID := strings.TrimSpace(optionString(opts, "userid", ""))
	if userID == "" {
		utils.SendErrorResponse(s, i, "Please provide a user ID.")
		return
	}
	reason := optionString(opts, "reason", defaultReason)
	notify := true
	if opt, ok := opts["dm"]; ok {
		notify = opt.BoolValue()
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	ban, err := s.GuildBan(i.GuildID, userID, discordgo.WithContext(ctx))
	if err != nil || ban == nil || ban.User == nil {
		utils.SendErrorResponse(s, i, "User `"+userID+"` is not banned from this server.")
		return
	}

	banReason := ban.Reason
	if banReason == "" {
		banReason = defaultReason
	}
	prompt := &discordgo.MessageEmbed{
		Title:       "⚠️ Confirm Unban",
		Description: fmt.Sprintf("Are you sure you want to unban **%s**?", ban.User.Username),
		Color:       utils.ColorPrompt,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", ban.User.Mention(), ban.User.ID), Inline: true},
			{Name: "Ban Reason", Value: utils.Truncate(banReason, 1024)},
			{Name: "Unban Reason", Value: utils.Truncate(reason, 1024)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "This prompt expires in 30 seconds."},
	}

	token := b.Confirmations.Add(utils.Confirmation{
		OwnerID: i.Member.User.ID,
		Timeout: banConfirmTimeout,
		OnConfirm: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			executeUnban(s, i, b, ban.User, reason, notify)
		},
		OnCancel: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Unban Cancelled", "The unban was cancelled."),
			}, nil)
		},
		OnExpire: func() {
			utils.EditEmbeds(b.Session, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Unban Expired", "No response within 30 seconds. The ban is still in place."),
			}, nil)
		},
	})

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{prompt},
			Components: utils.ConfirmButtons(token, "Unban", "🔓"),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.Logger.Warn("failed to send unban prompt", zap.Error(err))
	}
}

func executeUnban(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, user *discordgo.User, reason string, notify bool) {
	ctx, cancel := b.RequestContext()
	defer cancel()
	if err := s.GuildBanDelete(i.GuildID, user.ID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)); err != nil {
		b.Logger.Error("unban failed", zap.String("guild_id", i.GuildID), zap.String("user_id", user.ID), zap.Error(err))
		utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{failureEmbed("Failed to unban the user.")}, nil)
		return
	}

	utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{{
		Title: "🔓 User Unbanned",
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", user.Mention(), user.ID), Inline: true},
			{Name: "Reason", Value: utils.Truncate(reason, 1024)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}}, nil)

	if notify {
		guildName := i.GuildID
		if g, err := s.State.Guild(i.GuildID); err == nil {
			guildName = g.Name
		}
		msg := fmt.Sprintf("🔓 You have been unbanned from **%s**. Reason: %s", guildName, reason)
		if err := utils.SendPrivateMessage(s, user.ID, msg); err != nil {
			b.Logger.Info("could not notify unbanned user", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	b.LogChannel(utils.Info, "Moderation", "unban", fmt.Sprintf("<@%s> unbanned <@%s>: %s", i.Member.User.ID, user.ID, reason))
}
