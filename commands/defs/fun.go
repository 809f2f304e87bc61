package defs

import "github.com/bwmarrin/discordgo"

var Roll = &discordgo.ApplicationCommand{
	Name:        "roll",
	Description: "Roll dice or pick something at random",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "dice",
			Description: "Roll one or more dice",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "sides",
					Description: "Number of sides on the dice (default: 6)",
					MinValue:    ptr(2.0),
					MaxValue:    100,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Number of dice to roll (default: 1)",
					MinValue:    ptr(1.0),
					MaxValue:    25,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "number",
			Description: "Random number between min and max",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "min",
					Description: "Minimum number",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max",
					Description: "Maximum number",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "custom",
			Description: "Pick from your own list",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "options",
					Description: "Options separated by commas",
					Required:    true,
				},
			},
		},
	},
}

var RPS = &discordgo.ApplicationCommand{
	Name:        "rps",
	Description: "Rock, paper, scissors with a few extra weapons",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "choice",
			Description: "Choose your weapon",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "🪨 Rock", Value: "rock"},
				{Name: "📄 Paper", Value: "paper"},
				{Name: "✂️ Scissors", Value: "scissors"},
				{Name: "🔥 Fire", Value: "fire"},
				{Name: "💧 Water", Value: "water"},
				{Name: "🌪️ Wind", Value: "wind"},
			},
		},
	},
}

var TruthOrDare = &discordgo.ApplicationCommand{
	Name:         "truthordare",
	Description:  "Play Truth or Dare with another user!",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "target",
			Description: "Who do you want to play with?",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "choice",
			Description: "Truth or Dare?",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "🤔 Truth", Value: "truth"},
				{Name: "🎯 Dare", Value: "dare"},
			},
		},
	},
}
