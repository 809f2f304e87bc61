package model

import "time"

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	MongoURI string `mapstructure:"mongo_uri"`
	MongoDB  string `mapstructure:"mongo_db"`
}

type CooldownConfig struct {
	Backend       string `mapstructure:"backend"`
	PruneSchedule string `mapstructure:"prune_schedule"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type TicketsConfig struct {
	CloseDelay        time.Duration `mapstructure:"close_delay"`
	AutoCloseSchedule string        `mapstructure:"autoclose_schedule"`
	TranscriptDir     string        `mapstructure:"transcript_dir"`
}

type MarketConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config holds process-wide settings. Per-guild ticket settings live in the store.
type Config struct {
	BotToken         string   `mapstructure:"-"`
	AppID            string   `mapstructure:"-"`
	LogChannelID     string   `mapstructure:"-"`
	DeveloperUserIDs []string `mapstructure:"-"`

	Database DatabaseConfig `mapstructure:"database"`
	Cooldown CooldownConfig `mapstructure:"cooldown"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Tickets  TicketsConfig  `mapstructure:"tickets"`
	Market   MarketConfig   `mapstructure:"market"`
}
