package postgres

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/db"
)

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(store *config.Store) (*db.PgTxManager, error) {
				ctx := context.Background()
				pool, err := db.NewPool(ctx, db.PoolConfig{
					DSN: store.Get().DB,
				})
				if err != nil {
					return nil, errors.Wrap(err, "create pool")
				}

				if err := pool.Ping(ctx); err != nil {
					return nil, errors.Wrap(err, "ping")
				}

				return db.NewPgTxManager(pool), nil
			},
			func(m *db.PgTxManager) db.TxManager { return m },
		),
	)
}
