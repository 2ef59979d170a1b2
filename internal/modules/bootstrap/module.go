package bootstrap

import (
	bootstrap "signals_bot/internal/modules/bootstrap/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			bootstrap.NewWatchlist,
		),
	)
}
