package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/handlers/fun"
	"community-bot/handlers/info"
	"community-bot/handlers/ticket"
	"community-bot/handlers/warn"
	"community-bot/utils"
)

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("interaction handler panicked",
				zap.String("interaction_id", i.ID),
				zap.Any("panic", r))
			b.LogChannel(utils.Error, "System", "Interaction", fmt.Sprintf("panic: %v", r))
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case utils.IsConfirmationID(customID):
			b.Confirmations.Handle(s, i)
		case ticket.IsComponentID(customID):
			ticket.HandleComponent(s, i, b)
		case warn.IsPageID(customID):
			warn.HandlePageButton(s, i, b)
		case info.IsWhoisID(customID):
			info.HandleWhoisButton(s, i, b)
		case fun.IsChallengeID(customID):
			fun.HandleChallengeButton(s, i, b)
		default:
			b.Logger.Debug("unhandled component", zap.String("custom_id", customID))
		}
	case discordgo.InteractionModalSubmit:
		if ticket.IsComponentID(i.ModalSubmitData().CustomID) {
			ticket.HandleComponent(s, i, b)
		}
	}
}
