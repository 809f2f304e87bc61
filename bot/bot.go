package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/commands"
	"community-bot/model"
	"community-bot/services/market"
	"community-bot/services/tickets"
	"community-bot/services/warnings"
	"community-bot/utils"
)

const requestTimeout = 15 * time.Second

// Services are the domain collaborators the handlers drive.
type Services struct {
	Tickets    *tickets.Service
	Warnings   *warnings.Ledger
	Market     *market.Client
	Gateway    tickets.ChannelGateway
	Dispatcher *tickets.Dispatcher
	Scheduler  *Scheduler
}

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	Config             *model.Config
	Logger             *zap.Logger
	Tickets            *tickets.Service
	Warnings           *warnings.Ledger
	Market             *market.Client
	Gateway            tickets.ChannelGateway
	Confirmations      *utils.Confirmations
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	dispatcher *tickets.Dispatcher
	scheduler  *Scheduler
	closers    []func() error
	closeOnce  sync.Once
}

func New(cfg *model.Config, session *discordgo.Session, logger *zap.Logger, svc Services) *Bot {
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences |
		discordgo.IntentMessageContent

	return &Bot{
		Session:         session,
		Config:          cfg,
		Logger:          logger,
		Tickets:         svc.Tickets,
		Warnings:        svc.Warnings,
		Market:          svc.Market,
		Gateway:         svc.Gateway,
		Confirmations:   utils.NewConfirmations(logger),
		CommandHandlers: make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
		dispatcher:      svc.Dispatcher,
		scheduler:       svc.Scheduler,
	}
}

// AddCloser registers a resource released on Close, in reverse order.
func (b *Bot) AddCloser(fn func() error) {
	b.closers = append(b.closers, fn)
}

// RegisterCommands overwrites the global application commands.
func (b *Bot) RegisterCommands() error {
	cmds := commands.All()
	b.Logger.Info("registering application commands", zap.Int("count", len(cmds)))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, "", cmds)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}
	b.RegisteredCommands = registered
	return nil
}

// RequestContext bounds the store and API work of one interaction.
func (b *Bot) RequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// ScheduleChannelDelete removes a closed ticket's channel after the configured grace period.
func (b *Bot) ScheduleChannelDelete(guildID, channelID string) {
	delay := b.Config.Tickets.CloseDelay
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.Gateway.DeleteChannel(ctx, channelID); err != nil {
			b.Logger.Warn("failed to delete ticket channel",
				zap.String("guild_id", guildID), zap.String("channel_id", channelID), zap.Error(err))
		}
	})
}

// LogChannel mirrors an operational event to the bot log channel.
func (b *Bot) LogChannel(level utils.LogLevel, module, operation, extraInfo string) {
	var err error
	switch level {
	case utils.Error:
		err = utils.LogError(b.Session, b.Config.LogChannelID, module, operation, extraInfo)
	case utils.Warn:
		err = utils.LogWarn(b.Session, b.Config.LogChannelID, module, operation, extraInfo)
	default:
		err = utils.LogInfo(b.Session, b.Config.LogChannelID, module, operation, extraInfo)
	}
	if err != nil {
		b.Logger.Warn("failed to send channel log", zap.String("module", module), zap.Error(err))
	}
}

func (b *Bot) Close() error {
	var errs []error
	b.closeOnce.Do(func() {
		b.Logger.Info("gracefully shutting down")
		if b.scheduler != nil {
			b.scheduler.Stop()
		}
		b.Confirmations.Stop()
		if b.dispatcher != nil {
			b.dispatcher.Stop()
		}
		if err := b.Session.Close(); err != nil {
			errs = append(errs, err)
		}
		for i := len(b.closers) - 1; i >= 0; i-- {
			if err := b.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		_ = b.Logger.Sync()
	})
	return errors.Join(errs...)
}
