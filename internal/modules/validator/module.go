package validator

import (
	"go.uber.org/fx"

	"signals_bot/internal/modules/validator/service"
)

func Module() fx.Option {
	return fx.Module("validator",
		fx.Provide(
			service.New, // *service.Validator
		),
	)
}
