package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/handlers/fun"
	"community-bot/handlers/info"
	"community-bot/handlers/moderation"
	"community-bot/handlers/ticket"
	"community-bot/handlers/utility"
	"community-bot/handlers/warn"
	"community-bot/utils"
)

type commandFunc func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)

// guildOnly rejects invocations from direct messages and records who ran what.
func guildOnly(b *bot.Bot, name string, h commandFunc) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.GuildID == "" || i.Member == nil {
			utils.SendErrorResponse(s, i, "This command can only be used in a server.")
			return
		}
		if ce := b.Logger.Check(zap.DebugLevel, "command invoked"); ce != nil {
			ce.Write(
				zap.String("command", name),
				zap.String("guild_id", i.GuildID),
				zap.String("user_id", i.Member.User.ID),
				zap.String("permission", permissionLevel(b, i, name)))
		}
		h(s, i, b)
	}
}

func permissionLevel(b *bot.Bot, i *discordgo.InteractionCreate, name string) string {
	supportRoleID := ""
	switch name {
	case "ticket", "priority", "calluser":
		ctx, cancel := b.RequestContext()
		defer cancel()
		if cfg, err := b.Tickets.GetConfig(ctx, i.GuildID); err == nil {
			supportRoleID = cfg.SupportRoleID
		}
	}
	return utils.CheckPermission(i.Member, b.Config.DeveloperUserIDs, supportRoleID)
}

func anywhere(b *bot.Bot, h commandFunc) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h(s, i, b)
	}
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guild := map[string]commandFunc{
		"ticket":      ticket.HandleTicketCommand,
		"settings":    ticket.HandleSettingsCommand,
		"priority":    ticket.HandlePriorityCommand,
		"calluser":    ticket.HandleCallUserCommand,
		"warn":        warn.HandleWarnCommand,
		"warnings":    warn.HandleWarningsCommand,
		"ban":         moderation.HandleBanCommand,
		"unban":       moderation.HandleUnbanCommand,
		"purge":       moderation.HandlePurgeCommand,
		"whois":       info.HandleWhoisCommand,
		"truthordare": fun.HandleTruthOrDareCommand,
	}
	handlers := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(guild)+5)
	for name, h := range guild {
		handlers[name] = guildOnly(b, name, h)
	}
	handlers["roll"] = anywhere(b, fun.HandleRollCommand)
	handlers["rps"] = anywhere(b, fun.HandleRPSCommand)
	handlers["ping"] = anywhere(b, utility.HandlePingCommand)
	handlers["avatar"] = anywhere(b, utility.HandleAvatarCommand)
	handlers["ethereum"] = anywhere(b, utility.HandleEthereumCommand)
	return handlers
}
