package scanner

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/scanner/service"
)

func Module() fx.Option {
	return fx.Module("scanner",
		fx.Provide(
			service.NewPending,
			service.NewScanner,
		),
		fx.Invoke(func(lc fx.Lifecycle, s *service.Scanner) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go s.Run(ctx)
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
