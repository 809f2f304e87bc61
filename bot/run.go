package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"community-bot/utils"
)

// Run opens the gateway connection and blocks until the process is signalled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.RegisterCommands(); err != nil {
		b.Logger.Error("command registration failed", zap.Error(err))
	}

	if b.dispatcher != nil {
		b.dispatcher.Start(ctx)
	}
	if b.scheduler != nil {
		b.scheduler.Start()
	}

	b.Logger.Info("bot is now running, press CTRL-C to exit")
	b.LogChannel(utils.Info, "System", "Startup", "Bot has started successfully.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sc)
	select {
	case <-sc:
	case <-ctx.Done():
	}
	return nil
}
