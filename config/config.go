package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"community-bot/model"
)

// Load loads the configuration from environment variables and an optional
// config.yaml. Credentials only come from the environment (.env supported).
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./data")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	cfg.AppID = os.Getenv("APP_ID")
	cfg.LogChannelID = os.Getenv("LOG_CHANNEL_ID")
	cfg.DeveloperUserIDs = splitList(os.Getenv("DEVELOPER_USER_IDS"))
	if cfg.LogChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}
	return cfg, nil
}

// RequireCredentials fails when the gateway credentials are missing.
func RequireCredentials(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN environment variable not set")
	}
	if cfg.AppID == "" {
		return errors.New("APP_ID environment variable not set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/bot.db")
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo_db", "community_bot")

	v.SetDefault("cooldown.backend", "memory")
	v.SetDefault("cooldown.prune_schedule", "@every 1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	v.SetDefault("tickets.close_delay", 5*time.Second)
	v.SetDefault("tickets.autoclose_schedule", "@every 1h")
	v.SetDefault("tickets.transcript_dir", "data/transcripts")

	v.SetDefault("market.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("market.timeout", 10*time.Second)
}

func fromViper(v *viper.Viper) (*model.Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	switch cfg.Database.Driver {
	case "sqlite", "mongo":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	switch cfg.Cooldown.Backend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unsupported cooldown backend %q", cfg.Cooldown.Backend)
	}
	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
