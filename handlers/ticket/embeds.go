package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"community-bot/model"
	"community-bot/services/tickets"
	"community-bot/utils"
)

// Component custom IDs.
const (
	CreateTicketID = "create_ticket"
	ViewTicketsID  = "view_tickets"
	ClaimTicketID  = "claim_ticket"
	CloseTicketID  = "close_ticket"
	TicketModalID  = "ticket_modal"
)

const (
	colorBlurple = 0x5865F2
	colorSuccess = 0x00ff00
	colorDanger  = 0xff0000

	defaultWelcome = "Thank you for creating a ticket! Support staff will be with you shortly."
)

func WelcomeEmbed(t *model.Ticket, cfg *model.TicketConfig) *discordgo.MessageEmbed {
	welcome := cfg.Settings.WelcomeMessage
	if welcome == "" {
		welcome = defaultWelcome
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 %s", t.TicketID),
		Description: welcome,
		Color:       t.Priority.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Subject", Value: utils.Truncate(t.Subject, 1024)},
			{Name: "Description", Value: utils.Truncate(t.Description, 1024)},
			{Name: "Category", Value: t.Category, Inline: true},
			{Name: "Priority", Value: priorityLabel(t.Priority), Inline: true},
			{Name: "Created by", Value: "<@" + t.UserID + ">", Inline: true},
		},
		Timestamp: t.CreatedAt.Format(time.RFC3339),
	}
}

// TicketControls are the buttons posted in every ticket channel.
func TicketControls() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Claim",
					Style:    discordgo.SuccessButton,
					CustomID: ClaimTicketID,
					Emoji:    &discordgo.ComponentEmoji{Name: "🙋"},
				},
				discordgo.Button{
					Label:    "Close",
					Style:    discordgo.DangerButton,
					CustomID: CloseTicketID,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
				},
			},
		},
	}
}

func PanelEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎫 Support Tickets",
		Description: "Need help? Press **Create Ticket** and a private channel will be opened for you and the support team.",
		Color:       colorBlurple,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Please do not open tickets for the same issue twice."},
	}
}

func PanelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Create Ticket",
					Style:    discordgo.PrimaryButton,
					CustomID: CreateTicketID,
					Emoji:    &discordgo.ComponentEmoji{Name: "📩"},
				},
				discordgo.Button{
					Label:    "My Tickets",
					Style:    discordgo.SecondaryButton,
					CustomID: ViewTicketsID,
					Emoji:    &discordgo.ComponentEmoji{Name: "📋"},
				},
			},
		},
	}
}

// TicketModal asks for the subject and description of a new ticket.
func TicketModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: TicketModalID,
		Title:    "Create Ticket",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  "subject",
					Label:     "Subject",
					Style:     discordgo.TextInputShort,
					Required:  true,
					MaxLength: 100,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  "description",
					Label:     "Describe your issue",
					Style:     discordgo.TextInputParagraph,
					Required:  false,
					MaxLength: 1000,
				},
			}},
		},
	}
}

var actionTitles = map[model.LogAction]string{
	model.ActionCreate:         "🎫 Ticket Created",
	model.ActionClose:          "🔒 Ticket Closed",
	model.ActionClaim:          "🙋 Ticket Claimed",
	model.ActionUnclaim:        "↩️ Ticket Unclaimed",
	model.ActionReopen:         "🔓 Ticket Reopened",
	model.ActionDelete:         "🗑️ Ticket Deleted",
	model.ActionCallUser:       "📢 User Called",
	model.ActionAddUser:        "➕ User Added",
	model.ActionRemoveUser:     "➖ User Removed",
	model.ActionUpdatePriority: "📊 Priority Updated",
}

func actionColor(a model.LogAction) int {
	switch a {
	case model.ActionCreate, model.ActionReopen:
		return colorSuccess
	case model.ActionClose, model.ActionDelete:
		return colorDanger
	case model.ActionUpdatePriority:
		return 0xffa500
	default:
		return colorBlurple
	}
}

// LogEntryEmbed renders one audit entry for the guild logs channel.
func LogEntryEmbed(entry model.TicketLog) *discordgo.MessageEmbed {
	title, ok := actionTitles[entry.Action]
	if !ok {
		title = string(entry.Action)
	}
	var fields []*discordgo.MessageEmbedField
	if entry.TicketID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Ticket", Value: entry.TicketID, Inline: true})
	}
	if entry.UserID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "User", Value: mention(entry.UserID), Inline: true})
	}
	if entry.TargetID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Target", Value: mention(entry.TargetID), Inline: true})
	}
	if entry.ModeratorID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Moderator", Value: mention(entry.ModeratorID), Inline: true})
	}
	md := entry.Metadata
	if md.ChannelID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Channel", Value: "<#" + md.ChannelID + ">", Inline: true})
	}
	if md.Category != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Category", Value: md.Category, Inline: true})
	}
	if md.OldPriority != "" || md.NewPriority != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Priority",
			Value: fmt.Sprintf("%s → %s", md.OldPriority, md.NewPriority),
		})
	}
	if len(md.Tickets) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Tickets", Value: strings.Join(md.Tickets, ", ")})
	}
	if entry.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: utils.Truncate(entry.Reason, 1024)})
	}
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     actionColor(entry.Action),
		Fields:    fields,
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
	}
}

// CloseEmbed announces a closed ticket and the pending channel deletion.
func CloseEmbed(t *model.Ticket, cfg *model.TicketConfig, deleteAfter time.Duration) *discordgo.MessageEmbed {
	description := fmt.Sprintf("%s has been closed by %s.", t.TicketID, mention(t.Metadata.ClosedBy))
	if cfg.Settings.CloseMessage != "" {
		description += "\n\n" + cfg.Settings.CloseMessage
	}
	return &discordgo.MessageEmbed{
		Title:       "🔒 Ticket Closed",
		Description: description,
		Color:       colorDanger,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("This channel will be deleted in %s.", deleteAfter)},
	}
}

// TicketListEmbed lists tickets one per line.
func TicketListEmbed(title string, list []model.Ticket) *discordgo.MessageEmbed {
	if len(list) == 0 {
		return &discordgo.MessageEmbed{Title: title, Description: "No open tickets.", Color: colorBlurple}
	}
	lines := make([]string, 0, len(list))
	for _, t := range list {
		lines = append(lines, fmt.Sprintf("%s **%s** · <#%s> · %s · <t:%d:R>",
			t.Priority.Emoji(), t.TicketID, t.ChannelID, statusLabel(t.Status), t.CreatedAt.Unix()))
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       colorBlurple,
	}
}

// LogsEmbed renders a page of audit entries.
func LogsEmbed(logs []model.TicketLog) *discordgo.MessageEmbed {
	if len(logs) == 0 {
		return &discordgo.MessageEmbed{Title: "📜 Ticket Logs", Description: "No log entries found.", Color: colorBlurple}
	}
	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		actor := l.UserID
		if actor == "" {
			actor = l.ModeratorID
		}
		line := fmt.Sprintf("<t:%d:f> `%s`", l.CreatedAt.Unix(), l.Action)
		if l.TicketID != "" {
			line += " " + l.TicketID
		}
		if actor != "" {
			line += " by " + mention(actor)
		}
		lines = append(lines, line)
	}
	return &discordgo.MessageEmbed{
		Title:       "📜 Ticket Logs",
		Description: utils.Truncate(strings.Join(lines, "\n"), 4096),
		Color:       colorBlurple,
	}
}

func SettingsEmbed(cfg *model.TicketConfig) *discordgo.MessageEmbed {
	st := cfg.Settings
	autoClose := "Disabled"
	if st.AutoClose.Enabled {
		autoClose = fmt.Sprintf("After %d days of inactivity", st.AutoClose.InactivityDays)
	}
	transcripts := "Disabled"
	if st.Transcripts.Enabled {
		transcripts = "Enabled"
		if st.Transcripts.ChannelID != "" {
			transcripts += " in <#" + st.Transcripts.ChannelID + ">"
		}
	}
	return &discordgo.MessageEmbed{
		Title: "⚙️ Ticket Settings",
		Color: colorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Panel Channel", Value: "<#" + cfg.ChannelID + ">", Inline: true},
			{Name: "Category", Value: "<#" + cfg.CategoryID + ">", Inline: true},
			{Name: "Support Role", Value: "<@&" + cfg.SupportRoleID + ">", Inline: true},
			{Name: "Max Open Tickets", Value: fmt.Sprintf("%d", cfg.MaxOpenTickets()), Inline: true},
			{Name: "Cooldown", Value: fmt.Sprintf("%d minutes", st.TicketCooldown), Inline: true},
			{Name: "Name Format", Value: "`" + st.TicketNameFormat + "`", Inline: true},
			{Name: "Logs Channel", Value: channelOrNone(st.LogsChannelID), Inline: true},
			{Name: "Auto Close", Value: autoClose, Inline: true},
			{Name: "Transcripts", Value: transcripts, Inline: true},
			{Name: "Welcome Message", Value: utils.Truncate(orDefault(st.WelcomeMessage, defaultWelcome), 1024)},
			{Name: "Close Message", Value: utils.Truncate(orDefault(st.CloseMessage, "-"), 1024)},
		},
	}
}

func priorityLabel(p model.TicketPriority) string {
	return p.Emoji() + " " + string(p)
}

func statusLabel(s model.TicketStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}

func mention(userID string) string {
	if userID == tickets.SystemActorID {
		return "System"
	}
	return "<@" + userID + ">"
}

func channelOrNone(channelID string) string {
	if channelID == "" {
		return "None"
	}
	return "<#" + channelID + ">"
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
