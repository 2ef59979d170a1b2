package main

import (
	"context"
	"log"

	"signals_bot/internal/dispatch"
	"signals_bot/internal/exchange"
	"signals_bot/internal/modules/bootstrap"
	"signals_bot/internal/modules/config"
	"signals_bot/internal/modules/health"
	"signals_bot/internal/modules/strategy"
	"signals_bot/internal/modules/validator"
	"signals_bot/internal/modules/webhook"
	"signals_bot/internal/monitor"
	"signals_bot/internal/notify"
	"signals_bot/internal/runner"
	"signals_bot/internal/store"
	"signals_bot/pkg/logger"
	"signals_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "signals_bot"

func main() {
	logger.SetServiceName(serviceName)
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		bootstrap.Module(),
		store.Module(),
		strategy.Module(),
		validator.Module(),
		exchange.Module(),
		dispatch.Module(),
		notify.Module(),
		webhook.Module(),
		runner.Module(),
		monitor.Module(),
		health.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}
