package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/utils"
)

const (
	banConfirmTimeout = 30 * time.Second
	defaultReason     = "No reason provided"
)

func optionString(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name, fallback string) string {
	if opt, ok := opts[name]; ok && opt.StringValue() != "" {
		return opt.StringValue()
	}
	return fallback
}

// HandleBanCommand asks for confirmation, then bans the member and deletes
// their recent messages.
func HandleBanCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !utils.HasPermission(i.Member, discordgo.PermissionBanMembers) {
		utils.SendErrorResponse(s, i, "You need the Ban Members permission to ban members.")
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	targetOpt, ok := opts["target"]
	if !ok {
		utils.SendErrorResponse(s, i, "Please choose a member to ban.")
		return
	}
	target := targetOpt.UserValue(s)
	if target.ID == i.Member.User.ID {
		utils.SendErrorResponse(s, i, "You cannot ban yourself.")
		return
	}
	reason := optionString(opts, "reason", defaultReason)
	days := 0
	if opt, ok := opts["days"]; ok {
		days = min(max(int(opt.IntValue()), 0), 7)
	}

	lockKey := utils.TargetLockKey("ban", i.GuildID, target.ID)
	if !utils.TryLockTarget(lockKey, banConfirmTimeout) {
		utils.SendErrorResponse(s, i, "A ban for this member is already awaiting confirmation.")
		return
	}

	prompt := &discordgo.MessageEmbed{
		Title:       "⚠️ Confirm Ban",
		Description: fmt.Sprintf("Are you sure you want to ban %s?", target.Mention()),
		Color:       utils.ColorPrompt,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target", Value: fmt.Sprintf("%s (%s)", target.Mention(), target.ID), Inline: true},
			{Name: "Delete Messages", Value: fmt.Sprintf("Last %d days", days), Inline: true},
			{Name: "Reason", Value: utils.Truncate(reason, 1024)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "This prompt expires in 30 seconds."},
	}

	token := b.Confirmations.Add(utils.Confirmation{
		OwnerID: i.Member.User.ID,
		Timeout: banConfirmTimeout,
		OnConfirm: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			defer utils.UnlockTarget(lockKey)
			executeBan(s, i, b, target, reason, days)
		},
		OnCancel: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			utils.UnlockTarget(lockKey)
			utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Ban Cancelled", "The ban was cancelled."),
			}, nil)
		},
		OnExpire: func() {
			utils.UnlockTarget(lockKey)
			utils.EditEmbeds(b.Session, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Ban Expired", "No response within 30 seconds. Nobody was banned."),
			}, nil)
		},
	})

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{prompt},
			Components: utils.ConfirmButtons(token, "Ban", "🔨"),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.Logger.Warn("failed to send ban prompt", zap.Error(err))
	}
}

func executeBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, target *discordgo.User, reason string, days int) {
	guildName := i.GuildID
	if g, err := s.State.Guild(i.GuildID); err == nil {
		guildName = g.Name
	}
	// The notice has to go out before the ban removes the shared server.
	notice := &discordgo.MessageEmbed{
		Title:       "🔨 You have been banned",
		Description: fmt.Sprintf("You were banned from **%s**.", guildName),
		Color:       0xff0000,
		Fields:      []*discordgo.MessageEmbedField{{Name: "Reason", Value: utils.Truncate(reason, 1024)}},
	}
	if err := utils.SendPrivateEmbedMessage(s, target.ID, notice); err != nil {
		b.Logger.Info("could not notify banned user", zap.String("user_id", target.ID), zap.Error(err))
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, days, discordgo.WithContext(ctx)); err != nil {
		b.Logger.Error("ban failed", zap.String("guild_id", i.GuildID), zap.String("user_id", target.ID), zap.Error(err))
		utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{failureEmbed("Failed to ban the member. Check my role position and permissions.")}, nil)
		return
	}

	utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{{
		Title: "🔨 Member Banned",
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", target.Mention(), target.ID), Inline: true},
			{Name: "Messages Deleted", Value: fmt.Sprintf("Last %d days", days), Inline: true},
			{Name: "Reason", Value: utils.Truncate(reason, 1024)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}}, nil)
	b.LogChannel(utils.Warn, "Moderation", "ban", fmt.Sprintf("<@%s> banned <@%s>: %s", i.Member.User.ID, target.ID, reason))
}
