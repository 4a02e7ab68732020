package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/gating"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/marketdata"
	"signal_bot/internal/modules/postgres"
	"signal_bot/internal/modules/scanner"
	"signal_bot/internal/modules/sink"
	"signal_bot/internal/modules/strategy"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("signal_bot")
	tracing.SetServiceName("signal_bot")

	app := fx.New(
		config.Module(),
		health.Module(),
		postgres.Module(),
		sink.Module(),
		marketdata.Module(),
		strategy.Module(),
		gating.Module(),
		scanner.Module(),
		telegram.Module(),

		fx.Invoke(func(lc fx.Lifecycle, store *config.Store) {
			cfg := store.Get()
			if cfg.Jaeger.Host == "" {
				return
			}
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				logger.Warn("tracing disabled: %v", err)
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
		}),
	)

	app.Run()
}
