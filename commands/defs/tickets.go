package defs

import "github.com/bwmarrin/discordgo"

var (
	manageGuild    int64 = discordgo.PermissionManageGuild
	manageMessages int64 = discordgo.PermissionManageMessages
	moderate       int64 = discordgo.PermissionModerateMembers
	banMembers     int64 = discordgo.PermissionBanMembers
	guildOnly            = false
)

var priorityChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "🟢 Low", Value: "LOW"},
	{Name: "🟡 Medium", Value: "MEDIUM"},
	{Name: "🟠 High", Value: "HIGH"},
	{Name: "🔴 Urgent", Value: "URGENT"},
}

var logActionChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Create", Value: "CREATE"},
	{Name: "Close", Value: "CLOSE"},
	{Name: "Claim", Value: "CLAIM"},
	{Name: "Reopen", Value: "REOPEN"},
	{Name: "Call User", Value: "CALL_USER"},
	{Name: "Update Priority", Value: "UPDATE_PRIORITY"},
}

func ptr[T any](v T) *T { return &v }

var Ticket = &discordgo.ApplicationCommand{
	Name:         "ticket",
	Description:  "Manage the support ticket system",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "setup",
			Description: "Set up the ticket system for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel where the ticket panel is posted",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "Category new ticket channels are created in",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "support_role",
					Description: "Role that handles tickets",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "panel",
			Description: "Post the ticket panel in this channel",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "reopen",
			Description: "Reopen a closed ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "ticket_id",
					Description: "Ticket ID, e.g. TICKET-0001",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "logs",
			Description: "Show recent ticket activity",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "ticket_id",
					Description: "Only this ticket",
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Only actions by this user",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Only this action",
					Choices:     logActionChoices,
				},
			},
		},
	},
}

var Settings = &discordgo.ApplicationCommand{
	Name:                     "settings",
	Description:              "Configure the ticket system",
	DefaultMemberPermissions: &manageGuild,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "Show the current ticket settings",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "logs",
			Description: "Configure log and transcript channels",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel that receives ticket logs",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "transcripts",
					Description:  "Channel that receives ticket transcripts",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "transcripts_enabled",
					Description: "Archive transcripts when tickets close",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "messages",
			Description: "Customize ticket messages",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "welcome",
					Description: "Message shown when a ticket opens",
					MaxLength:   2000,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "close",
					Description: "Message shown when a ticket closes",
					MaxLength:   2000,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name_format",
					Description: "Channel name format, {number} is replaced by the ticket number",
					MaxLength:   90,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "limits",
			Description: "Configure ticket limits",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max_tickets",
					Description: "Maximum open tickets per user",
					MinValue:    ptr(1.0),
					MaxValue:    10,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cooldown",
					Description: "Minutes between ticket creations",
					MinValue:    ptr(1.0),
					MaxValue:    60,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "autoclose",
			Description: "Configure closing of inactive tickets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Close inactive tickets automatically",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days",
					Description: "Days of inactivity before closing",
					MinValue:    ptr(1.0),
					MaxValue:    30,
				},
			},
		},
	},
}

var Priority = &discordgo.ApplicationCommand{
	Name:         "priority",
	Description:  "Set the priority of the ticket in this channel",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "level",
			Description: "New priority",
			Required:    true,
			Choices:     priorityChoices,
		},
	},
}

var CallUser = &discordgo.ApplicationCommand{
	Name:         "calluser",
	Description:  "Ping a user in all of their open tickets",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to call",
			Required:    true,
		},
	},
}
