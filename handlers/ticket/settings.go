package ticket

import (
	"github.com/bwmarrin/discordgo"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/utils"
)

// HandleSettingsCommand routes /settings subcommands. Only server managers
// may change ticket settings.
func HandleSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	if !isAdmin(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to change ticket settings.")
		return
	}

	sub, opts := utils.Subcommand(i)
	if sub == "view" {
		ctx, cancel := b.RequestContext()
		defer cancel()
		cfg, err := b.Tickets.GetConfig(ctx, i.GuildID)
		if err != nil {
			respondError(s, i, b, "settings", err)
			return
		}
		utils.SendEmbedResponse(s, i, true, SettingsEmbed(cfg))
		return
	}

	mutate := settingsMutation(sub, opts)
	if mutate == nil {
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()
	cfg, err := b.Tickets.UpdateSettings(ctx, i.GuildID, mutate)
	if err != nil {
		respondError(s, i, b, "settings "+sub, err)
		return
	}
	utils.SendEmbedResponse(s, i, true, &discordgo.MessageEmbed{
		Title:       "✅ Settings Updated",
		Description: "The ticket settings have been saved.",
		Color:       colorSuccess,
	}, SettingsEmbed(cfg))
}

// settingsMutation turns a /settings subcommand into an update of the
// stored settings. Options that were not given are left as they are.
func settingsMutation(sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) func(*model.TicketSettings) {
	switch sub {
	case "logs":
		return func(st *model.TicketSettings) {
			if opt, ok := opts["channel"]; ok {
				st.LogsChannelID = opt.ChannelValue(nil).ID
			}
			if opt, ok := opts["transcripts"]; ok {
				st.Transcripts.ChannelID = opt.ChannelValue(nil).ID
			}
			if opt, ok := opts["transcripts_enabled"]; ok {
				st.Transcripts.Enabled = opt.BoolValue()
			}
		}
	case "messages":
		return func(st *model.TicketSettings) {
			if opt, ok := opts["welcome"]; ok {
				st.WelcomeMessage = opt.StringValue()
			}
			if opt, ok := opts["close"]; ok {
				st.CloseMessage = opt.StringValue()
			}
			if opt, ok := opts["name_format"]; ok {
				st.TicketNameFormat = opt.StringValue()
			}
		}
	case "limits":
		return func(st *model.TicketSettings) {
			if opt, ok := opts["max_tickets"]; ok {
				st.MaxOpenTickets = int(opt.IntValue())
			}
			if opt, ok := opts["cooldown"]; ok {
				st.TicketCooldown = int(opt.IntValue())
			}
		}
	case "autoclose":
		return func(st *model.TicketSettings) {
			if opt, ok := opts["enabled"]; ok {
				st.AutoClose.Enabled = opt.BoolValue()
			}
			if opt, ok := opts["days"]; ok {
				st.AutoClose.InactivityDays = int(opt.IntValue())
			}
		}
	}
	return nil
}
