package warn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/services/warnings"
	"community-bot/utils"
)

// HandleWarningsCommand routes /warnings subcommands.
func HandleWarningsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !canModerate(i) {
		utils.SendErrorResponse(s, i, "You need the Timeout Members permission to manage warnings.")
		return
	}
	sub, opts := utils.Subcommand(i)
	switch sub {
	case "view":
		userOpt := opts["user"]
		if userOpt == nil {
			utils.SendErrorResponse(s, i, "Please choose a user.")
			return
		}
		activeOnly := true
		if opt, ok := opts["all"]; ok {
			activeOnly = !opt.BoolValue()
		}
		embed, components, err := historyPage(b, i.GuildID, userOpt.UserValue(nil).ID, 1, activeOnly)
		if err != nil {
			b.Logger.Error("failed to load warnings", zap.Error(err))
			utils.SendErrorResponse(s, i, "Something went wrong. Please try again later.")
			return
		}
		respond(s, i, b, discordgo.InteractionResponseChannelMessageWithSource, embed, components)
	case "remove":
		handleRemove(s, i, b, opts)
	case "stats":
		handleStats(s, i, b, opts)
	case "export":
		handleExport(s, i, b)
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind discordgo.InteractionResponseType, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}
	if kind == discordgo.InteractionResponseChannelMessageWithSource {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: kind, Data: data})
	if err != nil {
		b.Logger.Warn("failed to send warnings page", zap.Error(err))
	}
}

func historyPage(b *bot.Bot, guildID, userID string, page int, activeOnly bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	ctx, cancel := b.RequestContext()
	defer cancel()
	list, err := b.Warnings.GetUserWarnings(ctx, userID, guildID, activeOnly)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	points := warnings.SumPoints(list, now)
	items, current, pages := utils.Paginate(list, page, warningsPerPage)
	embed := HistoryEmbed(userID, items, points, current, pages, activeOnly, now)
	components := utils.CreatePaginationComponents(current, pages, pagePrefix, userID, strconv.FormatBool(activeOnly))
	return embed, components, nil
}

// IsPageID reports whether customID is a warnings pagination button.
func IsPageID(customID string) bool {
	return strings.HasPrefix(customID, pagePrefix+":")
}

// parsePageID splits "warnings_page:<page>:<user>:<activeOnly>".
func parsePageID(customID string) (page int, userID string, activeOnly bool, err error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || parts[0] != pagePrefix {
		return 0, "", false, fmt.Errorf("malformed page id %q", customID)
	}
	page, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", false, fmt.Errorf("malformed page number in %q: %w", customID, err)
	}
	activeOnly, err = strconv.ParseBool(parts[3])
	if err != nil {
		return 0, "", false, fmt.Errorf("malformed filter in %q: %w", customID, err)
	}
	return page, parts[2], activeOnly, nil
}

// HandlePageButton flips a /warnings view message to another page.
func HandlePageButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !canModerate(i) {
		utils.SendErrorResponse(s, i, "You need the Timeout Members permission to view warnings.")
		return
	}
	page, userID, activeOnly, err := parsePageID(i.MessageComponentData().CustomID)
	if err != nil {
		b.Logger.Warn("ignoring warnings page button", zap.Error(err))
		return
	}
	embed, components, err := historyPage(b, i.GuildID, userID, page, activeOnly)
	if err != nil {
		b.Logger.Error("failed to load warnings", zap.Error(err))
		utils.SendErrorResponse(s, i, "Something went wrong. Please try again later.")
		return
	}
	respond(s, i, b, discordgo.InteractionResponseUpdateMessage, embed, components)
}

func handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	opt := opts["warning_id"]
	if opt == nil {
		utils.SendErrorResponse(s, i, "Please provide a warning ID.")
		return
	}
	warningID := strings.TrimSpace(opt.StringValue())
	ctx, cancel := b.RequestContext()
	defer cancel()
	if err := b.Warnings.DeactivateWarning(ctx, i.GuildID, warningID); err != nil {
		if errors.Is(err, warnings.ErrNotFound) {
			utils.SendErrorResponse(s, i, "No warning with ID `"+warningID+"` exists in this server.")
			return
		}
		b.Logger.Error("failed to remove warning", zap.String("warning_id", warningID), zap.Error(err))
		utils.SendErrorResponse(s, i, "Something went wrong. Please try again later.")
		return
	}
	utils.SendSimpleResponse(s, i, "✅ Warning `"+warningID+"` has been removed.")
	b.LogChannel(utils.Info, "Warnings", "remove", fmt.Sprintf("<@%s> removed warning %s", i.Member.User.ID, warningID))
}

func handleStats(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	days := warnings.DefaultStatsDays
	if opt, ok := opts["days"]; ok && opt.IntValue() > 0 {
		days = int(opt.IntValue())
	}
	ctx, cancel := b.RequestContext()
	defer cancel()
	stats, err := b.Warnings.GetGuildStats(ctx, i.GuildID, days)
	if err != nil {
		b.Logger.Error("failed to load warning stats", zap.Error(err))
		utils.SendErrorResponse(s, i, "Something went wrong. Please try again later.")
		return
	}
	top, err := b.Warnings.GetMostWarnedUsers(ctx, i.GuildID, 5)
	if err != nil {
		b.Logger.Error("failed to rank warned users", zap.Error(err))
		utils.SendErrorResponse(s, i, "Something went wrong. Please try again later.")
		return
	}
	utils.SendEmbedResponse(s, i, true, StatsEmbed(days, stats, top))
}

func handleExport(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger.Warn("failed to defer warnings export", zap.Error(err))
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()
	list, err := b.Warnings.GuildWarnings(ctx, i.GuildID)
	if err != nil {
		b.Logger.Error("failed to export warnings", zap.Error(err))
		utils.SendFollowUpError(s, i.Interaction, "Something went wrong. Please try again later.")
		return
	}
	now := time.Now()
	buf, err := ExportWarnings(list, now)
	if err != nil {
		b.Logger.Error("failed to render warnings workbook", zap.Error(err))
		utils.SendFollowUpError(s, i.Interaction, "Something went wrong. Please try again later.")
		return
	}
	content := fmt.Sprintf("📁 Exported %d warnings.", len(list))
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Files: []*discordgo.File{{
			Name:        exportFileName(i.GuildID, now),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Reader:      buf,
		}},
	})
	if err != nil {
		b.Logger.Warn("failed to upload warnings export", zap.Error(err))
	}
}
