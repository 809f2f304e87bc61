package defs

import "github.com/bwmarrin/discordgo"

var Whois = &discordgo.ApplicationCommand{
	Name:         "whois",
	Description:  "Display detailed information about a user",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "target",
			Description: "The user to get information about",
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "silent",
			Description: "Show the response only to you (default: true)",
		},
	},
}
