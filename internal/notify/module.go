package notify

import (
	"signals_bot/internal/modules/config"
	"signals_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(func(cfg *config.Config) (Notifier, error) {
			if cfg.Telegram.Token == "" {
				logger.Info("[NOTIFY] telegram token is empty, falling back to stdout")
				return NewStdout(), nil
			}
			return NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		}),
	)
}
