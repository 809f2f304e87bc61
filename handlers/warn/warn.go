package warn

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/services/warnings"
	"community-bot/utils"
)

const confirmTimeout = 30 * time.Second

func canModerate(i *discordgo.InteractionCreate) bool {
	return utils.HasPermission(i.Member, discordgo.PermissionModerateMembers)
}

// HandleWarnCommand previews a warning and stores it once the moderator confirms.
func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !canModerate(i) {
		utils.SendErrorResponse(s, i, "You need the Timeout Members permission to warn members.")
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	userOpt, levelOpt, reasonOpt := opts["user"], opts["level"], opts["reason"]
	if userOpt == nil || levelOpt == nil || reasonOpt == nil {
		utils.SendErrorResponse(s, i, "Please provide a user, a level and a reason.")
		return
	}
	target := userOpt.UserValue(s)
	if target == nil {
		utils.SendErrorResponse(s, i, "That user could not be found.")
		return
	}
	if target.Bot {
		utils.SendErrorResponse(s, i, "Bots cannot be warned.")
		return
	}
	moderator := i.Member.User
	if target.ID == moderator.ID {
		utils.SendErrorResponse(s, i, "You cannot warn yourself.")
		return
	}
	level, ok := model.ParseWarningLevel(levelOpt.StringValue())
	if !ok {
		utils.SendErrorResponse(s, i, "That is not a valid warning level.")
		return
	}

	w := model.Warning{
		UserID:      target.ID,
		GuildID:     i.GuildID,
		ModeratorID: moderator.ID,
		Reason:      reasonOpt.StringValue(),
		Level:       level,
	}
	if opt, ok := opts["evidence"]; ok {
		w.Evidence = opt.StringValue()
	}
	if opt, ok := opts["expires_days"]; ok && opt.IntValue() > 0 {
		expires := time.Now().AddDate(0, 0, int(opt.IntValue()))
		w.ExpiresAt = &expires
	}

	// One pending prompt per member, so two moderators cannot stack the same incident.
	lockKey := utils.TargetLockKey("warn", i.GuildID, target.ID)
	if !utils.TryLockTarget(lockKey, confirmTimeout) {
		utils.SendErrorResponse(s, i, "Another warning for this member is awaiting confirmation.")
		return
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	current, err := b.Warnings.CalculateUserPoints(ctx, target.ID, i.GuildID)
	if err != nil {
		utils.UnlockTarget(lockKey)
		b.Logger.Error("failed to load warning points", zap.String("user_id", target.ID), zap.Error(err))
		utils.SendErrorResponse(s, i, "Something went wrong. Please try again later.")
		return
	}

	token := b.Confirmations.Add(utils.Confirmation{
		OwnerID: moderator.ID,
		Timeout: confirmTimeout,
		OnConfirm: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			defer utils.UnlockTarget(lockKey)
			issueWarning(s, i, b, w)
		},
		OnCancel: func(s *discordgo.Session, _ *discordgo.InteractionCreate) {
			utils.UnlockTarget(lockKey)
			utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Warning Cancelled", "No warning was issued."),
			}, nil)
		},
		OnExpire: func() {
			utils.UnlockTarget(lockKey)
			utils.EditEmbeds(b.Session, i.Interaction, []*discordgo.MessageEmbed{
				utils.ExpiredEmbed("Warning Expired", "No response within 30 seconds. No warning was issued."),
			}, nil)
		},
	})

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{PromptEmbed(target, level, w.Reason, current)},
			Components: utils.ConfirmButtons(token, "Warn", "⚠️"),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.Logger.Warn("failed to send warning prompt", zap.Error(err))
	}
}

func issueWarning(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, w model.Warning) {
	ctx, cancel := b.RequestContext()
	defer cancel()

	created, err := b.Warnings.CreateWarning(ctx, w)
	if err != nil {
		msg := "Something went wrong. Please try again later."
		switch {
		case errors.Is(err, warnings.ErrInvalidLevel):
			msg = "That is not a valid warning level."
		case errors.Is(err, warnings.ErrMissingReason):
			msg = "A warning needs a reason."
		default:
			b.Logger.Error("failed to create warning", zap.String("user_id", w.UserID), zap.Error(err))
		}
		utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{{Title: "❌ Warning Failed", Description: msg, Color: 0xff0000}}, nil)
		return
	}

	total, err := b.Warnings.CalculateUserPoints(ctx, created.UserID, created.GuildID)
	if err != nil {
		b.Logger.Warn("failed to total warning points", zap.String("user_id", created.UserID), zap.Error(err))
		total = created.Points
	}
	utils.EditEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{IssuedEmbed(created, total)}, nil)

	guildName := i.GuildID
	if g, err := s.State.Guild(i.GuildID); err == nil {
		guildName = g.Name
	}
	if err := utils.SendPrivateEmbedMessage(s, created.UserID, NoticeEmbed(guildName, created, total)); err != nil {
		b.Logger.Info("could not notify warned user", zap.String("user_id", created.UserID), zap.Error(err))
	}
	b.LogChannel(utils.Info, "Warnings", "warn",
		fmt.Sprintf("<@%s> warned <@%s> (%s, %d pts total): %s", created.ModeratorID, created.UserID, created.Level, total, created.Reason))
}
