// Package market reads cryptocurrency market data from the CoinGecko API.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Coin is the part of a CoinGecko coin document the bot displays.
type Coin struct {
	ID          string   `json:"id"`
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Image       Image    `json:"image"`
	SentimentUp *float64 `json:"sentiment_votes_up_percentage"`
	Market      Market   `json:"market_data"`
}

type Image struct {
	Large string `json:"large"`
}

// Market holds figures keyed by lower case currency code where CoinGecko
// quotes them per currency.
type Market struct {
	CurrentPrice      map[string]float64   `json:"current_price"`
	MarketCap         map[string]float64   `json:"market_cap"`
	TotalVolume       map[string]float64   `json:"total_volume"`
	High24h           map[string]float64   `json:"high_24h"`
	Low24h            map[string]float64   `json:"low_24h"`
	ATH               map[string]float64   `json:"ath"`
	ATHDate           map[string]time.Time `json:"ath_date"`
	Change24h         float64              `json:"price_change_percentage_24h"`
	Change1hIn        map[string]float64   `json:"price_change_percentage_1h_in_currency"`
	Change24hIn       map[string]float64   `json:"price_change_percentage_24h_in_currency"`
	Change7dIn        map[string]float64   `json:"price_change_percentage_7d_in_currency"`
	Change30dIn       map[string]float64   `json:"price_change_percentage_30d_in_currency"`
	CirculatingSupply float64              `json:"circulating_supply"`
	TotalSupply       *float64             `json:"total_supply"`
	LastUpdated       time.Time            `json:"last_updated"`
}

// Client calls the CoinGecko REST API.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Coin fetches market data for the coin with the given CoinGecko id.
func (c *Client) Coin(ctx context.Context, id string) (*Coin, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "true")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")
	endpoint := c.baseURL + "/coins/" + url.PathEscape(id) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build coin request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coin %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch coin %s: unexpected status %s", id, resp.Status)
	}

	var coin Coin
	if err := json.NewDecoder(resp.Body).Decode(&coin); err != nil {
		return nil, fmt.Errorf("failed to decode coin %s: %w", id, err)
	}
	return &coin, nil
}
