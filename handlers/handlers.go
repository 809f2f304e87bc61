package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/handlers/ticket"
)

// Register wires command handlers and gateway event handlers onto the bot.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Logger.Info("logged in",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		ticket.HandleMessageCreate(s, m, b)
	})
}
