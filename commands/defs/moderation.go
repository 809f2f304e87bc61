package defs

import "github.com/bwmarrin/discordgo"

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a member",
	DefaultMemberPermissions: &moderate,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to warn",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "level",
			Description: "Severity of the warning",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Minor (1 point)", Value: "MINOR"},
				{Name: "Moderate (2 points)", Value: "MODERATE"},
				{Name: "Major (3 points)", Value: "MAJOR"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    true,
			MaxLength:   1000,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "evidence",
			Description: "Link or description of evidence",
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "expires_days",
			Description: "Days until the warning stops counting",
			MinValue:    ptr(1.0),
			MaxValue:    365,
		},
	},
}

var Warnings = &discordgo.ApplicationCommand{
	Name:                     "warnings",
	Description:              "Manage member warnings",
	DefaultMemberPermissions: &moderate,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "View a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to look up",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "all",
					Description: "Include removed and expired warnings",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove a warning",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "warning_id",
					Description: "ID of the warning",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "stats",
			Description: "Warning statistics for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days",
					Description: "Number of days to cover",
					MinValue:    ptr(1.0),
					MaxValue:    365,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "export",
			Description: "Export all warnings to a spreadsheet",
		},
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Ban a member",
	DefaultMemberPermissions: &banMembers,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "target",
			Description: "Member to ban",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the ban",
			MaxLength:   512,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "days",
			Description: "Days of messages to delete",
			MinValue:    ptr(0.0),
			MaxValue:    7,
		},
	},
}

var Unban = &discordgo.ApplicationCommand{
	Name:                     "unban",
	Description:              "Unban a user",
	DefaultMemberPermissions: &banMembers,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "userid",
			Description: "ID of the user to unban",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the unban",
			MaxLength:   512,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "dm",
			Description: "Tell the user they were unbanned (default: yes)",
		},
	},
}

var Purge = &discordgo.ApplicationCommand{
	Name:                     "purge",
	Description:              "Bulk delete recent messages",
	DefaultMemberPermissions: &manageMessages,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Number of messages to delete",
			Required:    true,
			MinValue:    ptr(1.0),
			MaxValue:    100,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Only delete this kind of message",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "All", Value: "ALL"},
				{Name: "Text only", Value: "TEXT"},
				{Name: "Embeds", Value: "EMBEDS"},
				{Name: "Files", Value: "FILES"},
				{Name: "Links", Value: "LINKS"},
				{Name: "Bots", Value: "BOTS"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Only messages from this user",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "contains",
			Description: "Only messages containing this text",
		},
	},
}
