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
	purgeConfirmTimeout = 15 * time.Second
	maxPurge            = 100
)

// HandlePurgeCommand asks for confirmation, then bulk deletes the matching
// messages among the latest ones in the channel.
func HandlePurgeCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !utils.HasPermission(i.Member, discordgo.PermissionManageMessages) {
		utils.SendErrorResponse(s, i, "You need the Manage Messages permission to purge messages.")
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	amountOpt, ok := opts["amount"]
	if !ok {
		utils.SendErrorResponse(s, i, "Please provide an amount.")
		return
	}
	filter := PurgeFilter{Amount: min(max(int(amountOpt.IntValue()), 1), maxPurge), Type: PurgeAll}
	if opt, ok := opts["type"]; ok {
		filter.Type = opt.StringValue()
	}
	if opt, ok := opts["user"]; ok {
		filter.UserID = opt.UserValue(nil).ID
	}
	if opt, ok := opts["contains"]; ok {
		filter.Contains = opt.StringValue()
	}

	userFilter := "None"
	if filter.UserID != "" {
		userFilter = "<@" + filter.UserID + ">"
	}
	prompt := &discordgo.MessageEmbed{
		Title:       "⚠️ Confirm Message Purge",
		Description: "Are you sure you want to delete messages with these filters?",
		Color:       utils.ColorPrompt,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔢 Amount", Value: fmt.Sprintf("%d messages", filter.Amount), Inline: true},
			{Name: "📋 Type", Value: filter.Type, Inline: true},
			{Name: "👤 User Filter", Value: userFilter, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "This prompt expires in 15 seconds."},
	}
	if filter.Contains != "" {
		prompt.Fields = append(prompt.Fields, &discordgo.MessageEmbedField{
			Name:  "🔍 Content Filter",
			Value: fmt.Sprintf("Messages containing: %q", utils.Truncate(filter.Contains, 900)),
		})
	}

	token := b.Confirmations.Add(utils.Confirmation{
		OwnerID: i.Member.User.ID,
		Timeout: purgeConfirmTimeout,
		OnConfirm: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			executePurge(s, i, b, filter)
		},
		OnCancel: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Purge Cancelled", "Message deletion was cancelled."),
			}, nil)
		},
		OnExpire: func() {
			utils.EditEmbeds(b.Session, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Purge Expired", "No response within 15 seconds. No messages were deleted."),
			}, nil)
		},
	})

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{prompt},
			Components: utils.ConfirmButtons(token, "Confirm Delete", "🗑️"),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.Logger.Warn("failed to send purge prompt", zap.Error(err))
	}
}

func executePurge(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, filter PurgeFilter) {
	ctx, cancel := b.RequestContext()
	defer cancel()

	msgs, err := s.ChannelMessages(i.ChannelID, maxPurge, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		b.Logger.Error("failed to fetch messages for purge", zap.String("channel_id", i.ChannelID), zap.Error(err))
		utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{failureEmbed("Could not read the channel history.")}, nil)
		return
	}

	ids, tooOld := SelectMessages(msgs, filter, time.Now())
	if len(ids) == 0 {
		desc := "No messages matched your filter criteria."
		if tooOld > 0 {
			desc = "Cannot delete messages older than 14 days."
		}
		utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{utils.ExpiredEmbed("No Messages Found", desc)}, nil)
		return
	}

	if len(ids) == 1 {
		err = s.ChannelMessageDelete(i.ChannelID, ids[0], discordgo.WithContext(ctx))
	} else {
		err = s.ChannelMessagesBulkDelete(i.ChannelID, ids, discordgo.WithContext(ctx))
	}
	if err != nil {
		b.Logger.Error("purge failed", zap.String("channel_id", i.ChannelID), zap.Int("count", len(ids)), zap.Error(err))
		utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{failureEmbed("Failed to delete messages. Check my permissions.")}, nil)
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Messages Deleted", Value: fmt.Sprintf("%d", len(ids)), Inline: true},
		{Name: "Channel", Value: "<#" + i.ChannelID + ">", Inline: true},
	}
	if tooOld > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Skipped (older than 14 days)", Value: fmt.Sprintf("%d", tooOld), Inline: true})
	}
	utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{{
		Title:     "🗑️ Messages Deleted Successfully",
		Color:     0x00ff00,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}}, nil)
	b.LogChannel(utils.Info, "Moderation", "purge",
		fmt.Sprintf("<@%s> deleted %d messages in <#%s> (type %s)", i.Member.User.ID, len(ids), i.ChannelID, filter.Type))
}

func failureEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Action Failed",
		Description: description,
		Color:       0xff0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
