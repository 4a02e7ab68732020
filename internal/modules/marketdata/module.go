package marketdata

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/marketdata/service"
)

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			service.NewClient,
			func(c *service.Client) service.Provider { return c },
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go c.Start(ctx)
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
