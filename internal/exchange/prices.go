package exchange

import (
	"context"
	"time"

	"signals_bot/internal/models"
)

// CandleSource — источник свечей для раннера.
type CandleSource interface {
	Candles(ctx context.Context, pair, timeframe string, limit int) (models.Window, error)
}

// PriceSource — источник текущей цены для монитора.
type PriceSource interface {
	Price(ctx context.Context, pair string) (float64, error)
}

// Prices отдаёт цену из WS-фида, при отставшем фиде падает на REST.
type Prices struct {
	feed   *PriceFeed
	rest   *Client
	maxAge time.Duration
}

func NewPrices(feed *PriceFeed, rest *Client, maxAge time.Duration) *Prices {
	return &Prices{feed: feed, rest: rest, maxAge: maxAge}
}

func (p *Prices) Price(ctx context.Context, pair string) (float64, error) {
	if price, ok := p.feed.Last(pair, p.maxAge); ok {
		return price, nil
	}
	return p.rest.Price(ctx, pair)
}
