package utility

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"community-bot/services/market"
)

func TestAvatarURL(t *testing.T) {
	static := &discordgo.User{ID: "42", Avatar: "abc"}
	anim := &discordgo.User{ID: "43", Avatar: "a_def"}

	tests := []struct {
		name   string
		user   *discordgo.User
		format string
		size   int
		want   string
	}{
		{"png", static, "png", 1024, discordgo.EndpointCDNAvatars + "42/abc.png?size=1024"},
		{"webp", static, "webp", 64, discordgo.EndpointCDNAvatars + "42/abc.webp?size=64"},
		{"gif on static falls back", static, "gif", 256, discordgo.EndpointCDNAvatars + "42/abc.png?size=256"},
		{"gif on animated", anim, "gif", 512, discordgo.EndpointCDNAvatars + "43/a_def.gif?size=512"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvatarURL(tt.user, tt.format, tt.size))
		})
	}
}

func TestAvatarURLDefaultAvatar(t *testing.T) {
	u := &discordgo.User{ID: "42"}
	assert.Contains(t, AvatarURL(u, "webp", 128), "embed/avatars")
}

func TestAvatarButtons(t *testing.T) {
	labels := func(rows []discordgo.MessageComponent) []string {
		row := rows[0].(discordgo.ActionsRow)
		var out []string
		for _, c := range row.Components {
			out = append(out, c.(discordgo.Button).Label)
		}
		return out
	}
	assert.Equal(t, []string{"PNG", "JPG", "WEBP"}, labels(AvatarButtons(&discordgo.User{ID: "1", Avatar: "x"}, 1024)))
	assert.Equal(t, []string{"PNG", "JPG", "WEBP", "GIF"}, labels(AvatarButtons(&discordgo.User{ID: "1", Avatar: "a_x"}, 1024)))
}

func TestPingEmbed(t *testing.T) {
	st := RuntimeStats{
		CPUCount:   8,
		CPUPercent: 12.345,
		MemPercent: 50,
		MemUsedMB:  512,
		MemTotalMB: 1024,
		Goroutines: 17,
		Guilds:     3,
		Uptime:     90*time.Minute + 30*time.Second,
		Heartbeat:  42 * time.Millisecond,
		Roundtrip:  120 * time.Millisecond,
	}
	e := PingEmbed(st, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	values := map[string]string{}
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "120ms", values["⏱️ Bot Latency"])
	assert.Equal(t, "42ms", values["📡 API Latency"])
	assert.Equal(t, "3", values["🌍 Servers"])
	assert.Equal(t, "unknown", values["💻 OS"])
	assert.Equal(t, "12.3%", values["🔥 CPU Usage"])
	assert.Equal(t, "50.0% (512 MB / 1024 MB)", values["🧠 Memory"])
	assert.Equal(t, "1h30m0s", values["⌛ Host Uptime"])
	assert.Equal(t, "2025-01-01T00:00:00Z", e.Timestamp)
}

func TestCollectRuntimeStats(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st := CollectRuntimeStats(ctx, zap.NewNop())
	require.Positive(t, st.Goroutines)
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		n        float64
		currency string
		want     string
	}{
		{3120.554, "usd", "$3,120.55"},
		{375000000000, "eur", "€375,000,000,000.00"},
		{0.5, "gbp", "£0.50"},
		{1234567, "chf", "CHF 1,234,567.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.n, tt.currency))
		})
	}
	assert.Equal(t, "120,200,001", FormatNumber(120200000.6, 0))
}

func sampleCoin(change float64) *market.Coin {
	up := 72.5
	return &market.Coin{
		ID:          "ethereum",
		Image:       market.Image{Large: "https://example.test/eth.png"},
		SentimentUp: &up,
		Market: market.Market{
			CurrentPrice:      map[string]float64{"usd": 3120.55},
			MarketCap:         map[string]float64{"usd": 1000},
			TotalVolume:       map[string]float64{"usd": 10},
			High24h:           map[string]float64{"usd": 3200},
			Low24h:            map[string]float64{"usd": 3050},
			ATH:               map[string]float64{"usd": 4878.26},
			ATHDate:           map[string]time.Time{"usd": time.Date(2021, 11, 10, 0, 0, 0, 0, time.UTC)},
			Change24h:         change,
			Change1hIn:        map[string]float64{"usd": 0.1},
			Change24hIn:       map[string]float64{"usd": change},
			Change7dIn:        map[string]float64{"usd": 4.5},
			Change30dIn:       map[string]float64{"usd": -8},
			CirculatingSupply: 1200,
			LastUpdated:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestEthereumEmbed(t *testing.T) {
	e, err := EthereumEmbed(sampleCoin(-1.234), "usd")
	require.NoError(t, err)

	values := map[string]string{}
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, 0xff0000, e.Color)
	assert.Contains(t, e.Title, "📉")
	assert.Equal(t, "$3,120.55", values["💰 Current Price"])
	assert.Equal(t, "-1.23%", values["📊 24h Change"])
	assert.Equal(t, "1,200 ETH", values["💫 Circulating Supply"])
	assert.Equal(t, "unlimited", values["🌐 Total Supply"])
	assert.Equal(t, "1h: 0.10%\n24h: -1.23%\n7d: 4.50%\n30d: -8.00%", values["📈 Price Changes"])
	assert.Contains(t, values["📊 All Time High"], "<t:1636502400:d>")
	assert.Equal(t, "👍 72.5% Positive\n👎 27.5% Negative", values["📊 Market Sentiment"])
	assert.Equal(t, "2024-03-01T12:00:00Z", e.Timestamp)

	e, err = EthereumEmbed(sampleCoin(2), "usd")
	require.NoError(t, err)
	assert.Equal(t, 0x00ff00, e.Color)
}

func TestEthereumEmbedMissingCurrency(t *testing.T) {
	_, err := EthereumEmbed(sampleCoin(0), "jpy")
	assert.ErrorContains(t, err, "no jpy quote")
}
