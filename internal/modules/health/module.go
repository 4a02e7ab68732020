package health

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/pkg/logger"
)

// Module serves /livez, /readyz and /healthz on the configured admin
// address. Liveness only proves the process is responsive; readiness
// additionally requires the market feed to be up and a scan cycle to
// have completed within the last three intervals.
func Module() fx.Option {
	return fx.Module(
		"health",
		fx.Provide(service.NewState),
		fx.Invoke(run),
	)
}

func run(lc fx.Lifecycle, store *config.Store, st *service.State) {
	addr := store.Get().HealthAddr
	if addr == "" {
		logger.Info("health: admin server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready(store, st) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body, err := sonic.Marshal(map[string]any{
			"ready":      ready(store, st),
			"feed_up":    st.FeedUp(),
			"last_cycle": st.LastCycle(),
			"uptime_sec": int64(st.Uptime().Seconds()),
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info("health: listening on %s", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("health: server stopped: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func ready(store *config.Store, st *service.State) bool {
	if !st.Ready() || !st.FeedUp() {
		return false
	}
	last := st.LastCycle()
	if last.IsZero() {
		return false
	}
	return time.Since(last) <= 3*store.Get().Scan.Interval
}
