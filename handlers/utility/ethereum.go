package utility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"community-bot/bot"
	"community-bot/services/market"
	"community-bot/utils"
)

const (
	ethereumID      = "ethereum"
	defaultCurrency = "usd"
	coinGeckoPage   = "https://www.coingecko.com/en/coins/ethereum"
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
	"chf": "CHF ",
}

var numbers = message.NewPrinter(language.English)

// FormatNumber groups thousands with commas.
func FormatNumber(n float64, decimals int) string {
	return numbers.Sprintf(fmt.Sprintf("%%.%df", decimals), n)
}

// FormatCurrency prefixes the currency symbol to an amount with two decimals.
func FormatCurrency(n float64, currency string) string {
	return currencySymbols[currency] + FormatNumber(n, 2)
}

func percent(n float64) string {
	return fmt.Sprintf("%.2f%%", n)
}

// EthereumEmbed renders coin market data in currency.
func EthereumEmbed(c *market.Coin, currency string) (*discordgo.MessageEmbed, error) {
	m := c.Market
	if _, ok := m.CurrentPrice[currency]; !ok {
		return nil, fmt.Errorf("no %s quote for %s", currency, c.ID)
	}

	color, trend := 0x00ff00, "📈"
	if m.Change24h < 0 {
		color, trend = 0xff0000, "📉"
	}
	total := "unlimited"
	if m.TotalSupply != nil {
		total = FormatNumber(*m.TotalSupply, 0) + " ETH"
	}
	ath := FormatCurrency(m.ATH[currency], currency)
	if d, ok := m.ATHDate[currency]; ok {
		ath += fmt.Sprintf("\n(<t:%d:d>)", d.Unix())
	}
	changes := strings.Join([]string{
		"1h: " + percent(m.Change1hIn[currency]),
		"24h: " + percent(m.Change24hIn[currency]),
		"7d: " + percent(m.Change7dIn[currency]),
		"30d: " + percent(m.Change30dIn[currency]),
	}, "\n")

	embed := &discordgo.MessageEmbed{
		Title:     "Ethereum (ETH) Information " + trend,
		Color:     color,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: c.Image.Large},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Current Price", Value: FormatCurrency(m.CurrentPrice[currency], currency), Inline: true},
			{Name: "📊 24h Change", Value: percent(m.Change24h), Inline: true},
			{Name: "💎 Market Cap", Value: FormatCurrency(m.MarketCap[currency], currency), Inline: true},
			{Name: "📈 24h High", Value: FormatCurrency(m.High24h[currency], currency), Inline: true},
			{Name: "📉 24h Low", Value: FormatCurrency(m.Low24h[currency], currency), Inline: true},
			{Name: "🔄 24h Volume", Value: FormatCurrency(m.TotalVolume[currency], currency), Inline: true},
			{Name: "📊 All Time High", Value: ath, Inline: true},
			{Name: "💫 Circulating Supply", Value: FormatNumber(m.CirculatingSupply, 0) + " ETH", Inline: true},
			{Name: "🌐 Total Supply", Value: total, Inline: true},
			{Name: "📈 Price Changes", Value: changes},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Data from CoinGecko"},
		Timestamp: m.LastUpdated.Format(time.RFC3339),
	}
	if c.SentimentUp != nil {
		up := *c.SentimentUp
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📊 Market Sentiment",
			Value: fmt.Sprintf("👍 %.1f%% Positive\n👎 %.1f%% Negative", up, 100-up),
		})
	}
	return embed, nil
}

func fetchEthereum(ctx context.Context, b *bot.Bot, currency string) (*discordgo.MessageEmbed, error) {
	coin, err := b.Market.Coin(ctx, ethereumID)
	if err != nil {
		return nil, err
	}
	return EthereumEmbed(coin, currency)
}

// HandleEthereumCommand shows live Ethereum market data.
func HandleEthereumCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.Logger.Warn("failed to defer ethereum", zap.Error(err))
		return
	}

	currency := defaultCurrency
	if opt, ok := utils.OptionMap(i.ApplicationCommandData().Options)["currency"]; ok {
		currency = opt.StringValue()
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	embed, err := fetchEthereum(ctx, b, currency)
	if err != nil {
		b.Logger.Error("failed to fetch ethereum data", zap.String("currency", currency), zap.Error(err))
		content := "❌ Error fetching Ethereum data. Please try again later."
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
			b.Logger.Warn("failed to report ethereum error", zap.Error(err))
		}
		return
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
		Components: &[]discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: "More Details on CoinGecko",
					Style: discordgo.LinkButton,
					URL:   coinGeckoPage,
					Emoji: &discordgo.ComponentEmoji{Name: "🔗"},
				},
			}},
		},
	})
	if err != nil {
		b.Logger.Warn("failed to send ethereum", zap.Error(err))
	}
}
