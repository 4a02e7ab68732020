package sink

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/sink/service"
)

func Module() fx.Option {
	return fx.Module("sink",
		fx.Provide(
			service.NewSink,
			func(s *service.Sink) service.Auditor { return s },
		),
		fx.Invoke(func(lc fx.Lifecycle, s *service.Sink) {
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
