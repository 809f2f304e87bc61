package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"community-bot/commands"
	"community-bot/config"
	"community-bot/handlers"
	"community-bot/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "community-bot",
		Short:         "Community management bot: tickets, warnings and moderation",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newDeployCmd(), newMigrateCmd())
	return root
}

// setup loads configuration and installs the global logger.
func setup() (*model.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if err := config.RequireCredentials(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := buildBot(ctx, cfg, logger)
			if err != nil {
				logger.Error("failed to start", zap.Error(err))
				return err
			}
			handlers.Register(b)

			runErr := b.Run(ctx)
			if err := b.Close(); err != nil {
				logger.Warn("error during shutdown", zap.Error(err))
			}
			return runErr
		},
	}
}

func newDeployCmd() *cobra.Command {
	var guildID string
	cmd := &cobra.Command{
		Use:   "deploy-commands",
		Short: "Overwrite the registered slash commands without connecting to the gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if err := config.RequireCredentials(cfg); err != nil {
				return err
			}
			s, err := discordgo.New("Bot " + cfg.BotToken)
			if err != nil {
				return fmt.Errorf("error creating Discord session: %w", err)
			}
			cmds := commands.All()
			registered, err := s.ApplicationCommandBulkOverwrite(cfg.AppID, guildID, cmds, discordgo.WithContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("cannot register commands: %w", err)
			}
			scope := "global"
			if guildID != "" {
				scope = "guild " + guildID
			}
			logger.Info("commands deployed", zap.Int("count", len(registered)), zap.String("scope", scope))
			return nil
		},
	}
	cmd.Flags().StringVar(&guildID, "guild", "", "register the commands on one guild only (instant, for testing)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables or indexes for the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			st, err := openStorage(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer st.close()
			logger.Info("database ready", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}
