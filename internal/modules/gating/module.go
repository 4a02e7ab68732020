package gating

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/gating/service"
)

func Module() fx.Option {
	return fx.Module("gating",
		fx.Provide(
			service.NewState,
		),
	)
}
