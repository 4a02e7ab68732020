package telegram

import (
	"context"

	"go.uber.org/fx"

	scanner "signal_bot/internal/modules/scanner/service"
	"signal_bot/internal/modules/telegram_bot/service"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewBot,
			func(b *service.Bot) scanner.Notifier { return b },
		),
		fx.Invoke(func(lc fx.Lifecycle, b *service.Bot) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go b.Start(ctx)
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
