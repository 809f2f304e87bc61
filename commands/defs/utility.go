package defs

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

var Ping = &discordgo.ApplicationCommand{
	Name:        "ping",
	Description: "Show bot latency and host stats",
}

var Avatar = &discordgo.ApplicationCommand{
	Name:        "avatar",
	Description: "Show a user's avatar",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Whose avatar (default: yours)",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "format",
			Description: "Image format",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "png", Value: "png"},
				{Name: "jpg", Value: "jpg"},
				{Name: "webp", Value: "webp"},
				{Name: "gif", Value: "gif"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "size",
			Description: "Image size",
			Choices:     sizeChoices(),
		},
	},
}

var Ethereum = &discordgo.ApplicationCommand{
	Name:        "ethereum",
	Description: "Get real-time Ethereum information",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "currency",
			Description: "Select currency for price (default: USD)",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "🇺🇸 USD", Value: "usd"},
				{Name: "🇪🇺 EUR", Value: "eur"},
				{Name: "🇬🇧 GBP", Value: "gbp"},
				{Name: "🇯🇵 JPY", Value: "jpy"},
				{Name: "🇨🇭 CHF", Value: "chf"},
			},
		},
	},
}

func sizeChoices() []*discordgo.ApplicationCommandOptionChoice {
	var out []*discordgo.ApplicationCommandOptionChoice
	for size := 16; size <= 4096; size *= 2 {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: strconv.Itoa(size), Value: size})
	}
	return out
}
