package monitor

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("monitor",
		fx.Provide(NewMonitor),
		fx.Invoke(func(lc fx.Lifecycle, m *Monitor) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go m.Run(ctx)
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
