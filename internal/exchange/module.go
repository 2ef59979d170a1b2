package exchange

import (
	"context"
	"time"

	bootstrap "signals_bot/internal/modules/bootstrap/service"
	"signals_bot/internal/modules/config"
	health "signals_bot/internal/modules/health/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			NewClient,
			func(cfg *config.Config, wl *bootstrap.Watchlist) *PriceFeed {
				return NewPriceFeed(cfg, wl.Pairs)
			},
			func(feed *PriceFeed, rest *Client, cfg *config.Config) *Prices {
				return NewPrices(feed, rest, cfg.Exchange.PriceMaxAge)
			},
			func(c *Client) CandleSource { return c },
			func(p *Prices) PriceSource { return p },
		),
		fx.Invoke(func(lc fx.Lifecycle, feed *PriceFeed, state *health.State) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go feed.Run(ctx)
					go func() {
						t := time.NewTicker(5 * time.Second)
						defer t.Stop()
						for {
							select {
							case <-ctx.Done():
								return
							case <-t.C:
								state.SetWSConnected(feed.Connected())
							}
						}
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
