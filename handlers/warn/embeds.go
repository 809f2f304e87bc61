package warn

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"community-bot/model"
	"community-bot/services/warnings"
	"community-bot/utils"
)

const (
	pagePrefix      = "warnings_page"
	warningsPerPage = 5
)

func suggestion(points int) string {
	if t, ok := warnings.SuggestedAction(points); ok {
		return t.String()
	}
	return "None"
}

// PromptEmbed previews a warning before the moderator confirms it.
func PromptEmbed(target *discordgo.User, level model.WarningLevel, reason string, currentPoints int) *discordgo.MessageEmbed {
	after := currentPoints + level.Points()
	return &discordgo.MessageEmbed{
		Title:       level.Emoji() + " Confirm Warning",
		Description: fmt.Sprintf("Issue a **%s** warning to %s?", level.Label(), target.Mention()),
		Color:       level.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: utils.Truncate(reason, 1024)},
			{Name: "Points", Value: fmt.Sprintf("%d → %d", currentPoints, after), Inline: true},
			{Name: "Suggested Action", Value: suggestion(after), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "This prompt expires in 30 seconds."},
	}
}

// IssuedEmbed confirms a stored warning to the moderator.
func IssuedEmbed(w *model.Warning, totalPoints int) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: "<@" + w.UserID + ">", Inline: true},
		{Name: "Level", Value: w.Level.Label(), Inline: true},
		{Name: "Total Points", Value: fmt.Sprintf("%d", totalPoints), Inline: true},
		{Name: "Reason", Value: utils.Truncate(w.Reason, 1024)},
	}
	if w.Evidence != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Evidence", Value: utils.Truncate(w.Evidence, 1024)})
	}
	if w.ExpiresAt != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", w.ExpiresAt.Unix()), Inline: true})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Suggested Action", Value: suggestion(totalPoints), Inline: true})
	return &discordgo.MessageEmbed{
		Title:     w.Level.Emoji() + " Warning Issued",
		Color:     w.Level.Color(),
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: "Warning ID: " + w.ID},
		Timestamp: w.CreatedAt.Format(time.RFC3339),
	}
}

// NoticeEmbed is sent to the warned member.
func NoticeEmbed(guildName string, w *model.Warning, totalPoints int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       w.Level.Emoji() + " You have received a warning",
		Description: fmt.Sprintf("You were warned in **%s**.", guildName),
		Color:       w.Level.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: utils.Truncate(w.Reason, 1024)},
			{Name: "Level", Value: w.Level.Label(), Inline: true},
			{Name: "Your Points", Value: fmt.Sprintf("%d", totalPoints), Inline: true},
		},
		Timestamp: w.CreatedAt.Format(time.RFC3339),
	}
}

// HistoryEmbed renders one page of a member's warnings.
func HistoryEmbed(userID string, page []model.Warning, totalPoints, current, pages int, activeOnly bool, now time.Time) *discordgo.MessageEmbed {
	title := "📋 Active Warnings"
	if !activeOnly {
		title = "📋 Warning History"
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("<@%s> has **%d** active points. Suggested action: %s", userID, totalPoints, suggestion(totalPoints)),
		Color:       0xffa500,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d of %d", current, pages)},
	}
	if len(page) == 0 {
		embed.Description += "\n\nNo warnings found."
		return embed
	}
	for _, w := range page {
		var lines []string
		lines = append(lines, utils.Truncate(w.Reason, 300))
		lines = append(lines, fmt.Sprintf("By <@%s> · <t:%d:d> · %d pts", w.ModeratorID, w.CreatedAt.Unix(), w.Points))
		switch {
		case !w.Active:
			lines = append(lines, "*Removed*")
		case w.ExpiresAt != nil && !w.CountsAt(now):
			lines = append(lines, "*Expired*")
		case w.ExpiresAt != nil:
			lines = append(lines, fmt.Sprintf("Expires <t:%d:R>", w.ExpiresAt.Unix()))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s · `%s`", w.Level.Emoji(), w.Level.Label(), w.ID),
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

// StatsEmbed summarises recent warnings and the most warned members.
func StatsEmbed(days int, stats []warnings.DayStat, top []warnings.UserSummary) *discordgo.MessageEmbed {
	perLevel := map[model.WarningLevel]int{}
	perDay := map[string]int{}
	var dayOrder []string
	total := 0
	for _, st := range stats {
		perLevel[st.Level] += st.Count
		if _, seen := perDay[st.Day]; !seen {
			dayOrder = append(dayOrder, st.Day)
		}
		perDay[st.Day] += st.Count
		total += st.Count
	}

	levels := make([]string, 0, 3)
	for _, l := range []model.WarningLevel{model.LevelMinor, model.LevelModerate, model.LevelMajor} {
		levels = append(levels, fmt.Sprintf("%s %s: **%d**", l.Emoji(), l.Label(), perLevel[l]))
	}

	daily := "No warnings."
	if len(dayOrder) > 0 {
		lines := make([]string, 0, len(dayOrder))
		for _, d := range dayOrder {
			lines = append(lines, fmt.Sprintf("`%s` %d", d, perDay[d]))
		}
		daily = utils.Truncate(strings.Join(lines, "\n"), 1024)
	}

	ranking := "Nobody has active warnings."
	if len(top) > 0 {
		lines := make([]string, 0, len(top))
		for n, u := range top {
			lines = append(lines, fmt.Sprintf("%d. <@%s> · %d pts (%d warnings)", n+1, u.UserID, u.TotalPoints, u.TotalWarnings))
		}
		ranking = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "📊 Warning Statistics",
		Description: fmt.Sprintf("**%d** warnings in the last %d days.", total, days),
		Color:       0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "By Level", Value: strings.Join(levels, "\n")},
			{Name: "By Day", Value: daily, Inline: true},
			{Name: "Most Warned", Value: ranking, Inline: true},
		},
	}
}
