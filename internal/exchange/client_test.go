package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

func TestSymbol(t *testing.T) {
	require.Equal(t, "BTCUSDT", Symbol("BTC/USDT"))
	require.Equal(t, "ETHUSDT", Symbol("eth/usdt"))
}

func TestCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		require.Equal(t, "5m", r.URL.Query().Get("interval"))
		require.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.0","101.0","99.0","100.5","1200.0",1700000299999,"0","0","0","0","0"],
			[1700000300000,"100.5","102.0","100.0","101.5","900.0",1700000599999,"0","0","0","0","0"]
		]`))
	}))
	defer srv.Close()

	w, err := testClient(srv.URL).Candles(context.Background(), "BTC/USDT", "5m", 2)
	require.NoError(t, err)
	require.Len(t, w, 2)
	require.Equal(t, int64(1700000000000), w[0].Timestamp)
	require.Equal(t, 100.5, w[0].Close)
	require.Equal(t, 1200.0, w[0].Volume)
	require.Equal(t, 102.0, w[1].High)
}

func TestCandlesBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Candles(context.Background(), "BTC/USDT", "5m", 2)
	require.ErrorIs(t, err, ErrDataFetch)
}

func TestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"2450.75"}`))
	}))
	defer srv.Close()

	price, err := testClient(srv.URL).Price(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	require.Equal(t, 2450.75, price)
}

func TestPriceGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"not-a-number"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Price(context.Background(), "ETH/USDT")
	require.ErrorIs(t, err, ErrDataFetch)
}

func TestPriceFeedLastRespectsMaxAge(t *testing.T) {
	feed := &PriceFeed{prices: map[string]pricePoint{}, now: time.Now}
	clock := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return clock }

	feed.set("BTCUSDT", 65000)

	price, ok := feed.Last("BTC/USDT", 30*time.Second)
	require.True(t, ok)
	require.Equal(t, 65000.0, price)

	clock = clock.Add(31 * time.Second)
	_, ok = feed.Last("BTC/USDT", 30*time.Second)
	require.False(t, ok)

	_, ok = feed.Last("SOL/USDT", 30*time.Second)
	require.False(t, ok)
}
