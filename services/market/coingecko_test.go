package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ethereumBody = `{
  "id": "ethereum",
  "symbol": "eth",
  "name": "Ethereum",
  "image": {"large": "https://example.test/eth.png"},
  "sentiment_votes_up_percentage": 72.5,
  "market_data": {
    "current_price": {"usd": 3120.55, "eur": 2890.1},
    "market_cap": {"usd": 375000000000},
    "total_volume": {"usd": 15000000000},
    "high_24h": {"usd": 3200},
    "low_24h": {"usd": 3050},
    "ath": {"usd": 4878.26},
    "ath_date": {"usd": "2021-11-10T14:24:19.604Z"},
    "price_change_percentage_24h": -1.234,
    "price_change_percentage_1h_in_currency": {"usd": 0.1},
    "price_change_percentage_24h_in_currency": {"usd": -1.234},
    "price_change_percentage_7d_in_currency": {"usd": 4.5},
    "price_change_percentage_30d_in_currency": {"usd": -8},
    "circulating_supply": 120200000.5,
    "total_supply": null,
    "last_updated": "2024-03-01T12:00:00.000Z"
  }
}`

func TestClientCoin(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ethereumBody))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/")
	coin, err := c.Coin(context.Background(), "ethereum")
	require.NoError(t, err)

	assert.Equal(t, "/coins/ethereum", gotPath)
	assert.Contains(t, gotQuery, "market_data=true")
	assert.Contains(t, gotQuery, "tickers=false")

	assert.Equal(t, "Ethereum", coin.Name)
	assert.Equal(t, "https://example.test/eth.png", coin.Image.Large)
	require.NotNil(t, coin.SentimentUp)
	assert.InDelta(t, 72.5, *coin.SentimentUp, 1e-9)
	assert.InDelta(t, 3120.55, coin.Market.CurrentPrice["usd"], 1e-9)
	assert.InDelta(t, -1.234, coin.Market.Change24h, 1e-9)
	assert.Nil(t, coin.Market.TotalSupply)
	assert.Equal(t, 2021, coin.Market.ATHDate["usd"].Year())
	assert.True(t, coin.Market.LastUpdated.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestClientCoinStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL).Coin(context.Background(), "ethereum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClientCoinBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL).Coin(context.Background(), "ethereum")
	assert.ErrorContains(t, err, "failed to decode coin")
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient(http.DefaultClient, "").baseURL)
}
