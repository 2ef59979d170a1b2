package webhook

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"signals_bot/internal/modules/config"
	"signals_bot/internal/modules/webhook/service"
	"signals_bot/internal/ratelimit"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("webhook",
		fx.Provide(
			func(cfg *config.Config) ratelimit.Limiter {
				return ratelimit.NewPairLimiter(cfg.AlertCooldown)
			},
			service.NewHandler,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, h *service.Handler) {
			addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)
			srv := &http.Server{
				Addr:              addr,
				Handler:           h.Mux(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					ln, err := net.Listen("tcp", addr)
					if err != nil {
						return err
					}
					go func() { _ = srv.Serve(ln) }()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return srv.Shutdown(ctx)
				},
			})
		}),
	)
}
