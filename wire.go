package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/handlers/ticket"
	"community-bot/model"
	"community-bot/services/market"
	"community-bot/services/tickets"
	"community-bot/services/warnings"
	"community-bot/utils"
	"community-bot/utils/database"
	"community-bot/utils/database/mongostore"
	"community-bot/utils/database/ticketdb"
	"community-bot/utils/database/warningdb"
)

const (
	driverSQLite = "sqlite"
	driverMongo  = "mongo"

	backendMemory = "memory"
	backendRedis  = "redis"

	notifyQueueSize = 64
	connectTimeout  = 10 * time.Second
)

type storage struct {
	tickets  tickets.Store
	warnings warnings.Store
	close    func() error
}

// openStorage connects the configured backend and makes sure its schema exists.
func openStorage(ctx context.Context, cfg model.DatabaseConfig, logger *zap.Logger) (*storage, error) {
	switch cfg.Driver {
	case driverSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err := database.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := ticketdb.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		if err := warningdb.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("using sqlite storage", zap.String("path", cfg.Path))
		return &storage{tickets: ticketdb.New(db), warnings: warningdb.New(db), close: db.Close}, nil

	case driverMongo:
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		d, err := mongostore.Connect(cctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := d.EnsureIndexes(cctx); err != nil {
			_ = d.Close(context.Background())
			return nil, err
		}
		logger.Info("using mongo storage", zap.String("database", cfg.MongoDB))
		return &storage{
			tickets:  mongostore.NewTicketStore(d),
			warnings: mongostore.NewWarningStore(d),
			close: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
				defer cancel()
				return d.Close(ctx)
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// openCooldowns returns the cooldown cache and, for the in-memory backend,
// the cache itself so the scheduler can prune it.
func openCooldowns(ctx context.Context, cfg *model.Config, logger *zap.Logger) (tickets.CooldownCache, bot.CooldownPruner, func() error, error) {
	switch cfg.Cooldown.Backend {
	case backendMemory, "":
		mem := tickets.NewMemoryCooldownCache()
		return mem, mem, func() error { return nil }, nil
	case backendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis cooldowns", zap.String("addr", cfg.Redis.Addr))
		return tickets.NewRedisCooldownCache(client, logger), nil, client.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown cooldown backend %q", cfg.Cooldown.Backend)
}

// buildBot assembles the session, stores and services. Resources opened here
// are released by Bot.Close.
func buildBot(ctx context.Context, cfg *model.Config, logger *zap.Logger) (_ *bot.Bot, err error) {
	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				err = errors.Join(err, closers[i]())
			}
		}
	}()

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	st, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, st.close)

	cooldowns, pruner, closeCooldowns, err := openCooldowns(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeCooldowns)

	gateway := ticket.NewGateway(session, logger)
	dispatcher := tickets.NewDispatcher(notifyQueueSize, logger)
	audit := tickets.NewAuditLog(st.tickets, gateway, dispatcher, logger)
	archiver := tickets.NewHTMLArchiver(cfg.Tickets.TranscriptDir, gateway, logger)
	svc := tickets.NewService(st.tickets, cooldowns, gateway, audit,
		tickets.WithArchiver(archiver),
		tickets.WithLogger(logger))
	ledger := warnings.NewLedger(st.warnings, warnings.WithLogger(logger))

	scheduler, err := bot.NewScheduler(bot.SchedulerConfig{
		AutoCloseSchedule: cfg.Tickets.AutoCloseSchedule,
		PruneSchedule:     cfg.Cooldown.PruneSchedule,
	}, svc, gateway, pruner, logger)
	if err != nil {
		return nil, err
	}

	b := bot.New(cfg, session, logger, bot.Services{
		Tickets:    svc,
		Warnings:   ledger,
		Market:     market.NewClient(utils.NewHTTPClient(cfg.Market.Timeout), cfg.Market.BaseURL),
		Gateway:    gateway,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
	})
	for _, c := range closers {
		b.AddCloser(c)
	}
	return b, nil
}
