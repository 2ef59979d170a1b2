package exchange

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signals_bot/internal/models"
	"signals_bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ErrDataFetch — биржа недоступна или вернула мусор.
var ErrDataFetch = errors.New("exchange data fetch failed")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.Exchange.RESTBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Symbol мапит пару вида "BTC/USDT" в биржевой тикер "BTCUSDT".
func Symbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
}

// Candles тянет закрытые свечи по REST. Биржа отдаёт kline массивом
// смешанных типов, числовые поля — строками.
func (c *Client) Candles(ctx context.Context, pair, timeframe string, limit int) (models.Window, error) {
	q := url.Values{}
	q.Set("symbol", Symbol(pair))
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(limit))

	rb, err := c.get(ctx, "/api/v3/klines", q)
	if err != nil {
		return nil, err
	}

	var rows [][]interface{}
	if err := sonic.Unmarshal(rb, &rows); err != nil {
		return nil, errors.Wrapf(ErrDataFetch, "decode klines %s %s: %v", pair, timeframe, err)
	}

	w := make(models.Window, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, errors.Wrapf(ErrDataFetch, "short kline row %s %s", pair, timeframe)
		}
		w = append(w, models.Candle{
			Timestamp: int64(asFloat(row[0])),
			Open:      asFloat(row[1]),
			High:      asFloat(row[2]),
			Low:       asFloat(row[3]),
			Close:     asFloat(row[4]),
			Volume:    asFloat(row[5]),
		})
	}
	return w, nil
}

// Price — спот-цена по REST, фолбэк на случай отставшего WS.
func (c *Client) Price(ctx context.Context, pair string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", Symbol(pair))

	rb, err := c.get(ctx, "/api/v3/ticker/price", q)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := sonic.Unmarshal(rb, &resp); err != nil {
		return 0, errors.Wrapf(ErrDataFetch, "decode ticker %s: %v", pair, err)
	}

	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || price <= 0 {
		return 0, errors.Wrapf(ErrDataFetch, "bad ticker price %s: %q", pair, resp.Price)
	}
	return price, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrDataFetch, "%s: %v", path, err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, errors.Wrapf(ErrDataFetch, "%s http %d: %s", path, resp.StatusCode, string(rb))
	}
	return rb, nil
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
