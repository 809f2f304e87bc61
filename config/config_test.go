package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-bot/model"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/bot.db", cfg.Database.Path)
	assert.Equal(t, "memory", cfg.Cooldown.Backend)
	assert.Equal(t, 5*time.Second, cfg.Tickets.CloseDelay)
	assert.Equal(t, "@every 1h", cfg.Tickets.AutoCloseSchedule)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.Market.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Market.Timeout)
}

func TestFromViper_File(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
database:
  driver: mongo
  mongo_db: tickets
cooldown:
  backend: redis
tickets:
  close_delay: 10s
`)))

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "tickets", cfg.Database.MongoDB)
	assert.Equal(t, "redis", cfg.Cooldown.Backend)
	assert.Equal(t, 10*time.Second, cfg.Tickets.CloseDelay)
}

func TestFromViper_EnvOverride(t *testing.T) {
	t.Setenv("BOT_LOG_LEVEL", "debug")

	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestFromViper_RejectsUnknownBackends(t *testing.T) {
	v := viper.New()
	v.Set("database.driver", "postgres")
	_, err := fromViper(v)
	assert.ErrorContains(t, err, "unsupported database driver")

	v = viper.New()
	v.Set("cooldown.backend", "memcached")
	_, err = fromViper(v)
	assert.ErrorContains(t, err, "unsupported cooldown backend")
}

func TestRequireCredentials(t *testing.T) {
	assert.Error(t, RequireCredentials(&model.Config{}))
	assert.Error(t, RequireCredentials(&model.Config{BotToken: "t"}))
	assert.NoError(t, RequireCredentials(&model.Config{BotToken: "t", AppID: "a"}))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, splitList(" 1, ,2 "))
	assert.Nil(t, splitList(""))
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(model.LogConfig{Level: "loud"})
	assert.Error(t, err)

	logger, err := NewLogger(model.LogConfig{Level: "warn", Encoding: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
