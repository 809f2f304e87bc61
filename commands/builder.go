package commands

import (
	"github.com/bwmarrin/discordgo"

	"community-bot/commands/defs"
)

// All returns every application command the bot serves.
func All() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Ticket,
		defs.Settings,
		defs.Priority,
		defs.CallUser,
		defs.Warn,
		defs.Warnings,
		defs.Ban,
		defs.Unban,
		defs.Purge,
		defs.Whois,
		defs.Roll,
		defs.RPS,
		defs.TruthOrDare,
		defs.Ping,
		defs.Avatar,
		defs.Ethereum,
	}
}
