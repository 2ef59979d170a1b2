package dispatch

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("dispatch",
		fx.Provide(
			NewWebhookDispatcher,
			func(d *WebhookDispatcher) Dispatcher { return d },
		),
	)
}
