package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/config"
	"github.com/polkiloo/petshop/internal/metrics"
	"github.com/polkiloo/petshop/internal/server/http/handlers"
	"github.com/polkiloo/petshop/internal/session"
	"github.com/polkiloo/petshop/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		func(f *StorefrontFacade) handlers.StorefrontFacade { return f },
		newHTTPServer,
		newReconciler,
	),
	fx.Invoke(registerLifecycle),
)

const minSweepInterval = time.Second

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type reconcilerParams struct {
	fx.In

	Facade  *StorefrontFacade
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Reconciler `optional:"true"`
}

func newReconciler(p reconcilerParams) *worker.OrderReconciler {
	return worker.NewOrderReconciler(
		p.Facade,
		p.Config.ReconcileInterval,
		p.Config.ReconcileGrace,
		p.Config.ReconcileBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
		worker.WithReconcilerMetrics(p.Metrics),
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Reconciler *worker.OrderReconciler
	Sessions   *session.Manager
	Facade     *StorefrontFacade
	Config     *config.Config
}

// sweepInterval checks idle sessions a few times per idle period.
func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	if interval := idle / 4; interval > minSweepInterval {
		return interval
	}
	return minSweepInterval
}

func registerLifecycle(p lifecycleParams) {
	var (
		cancel   context.CancelFunc
		sweeping = make(chan struct{})
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting petshop", slog.String("addr", p.Server.Addr))

			if p.Config.SeedCatalog {
				inserted, err := p.Facade.SeedCatalog(ctx)
				if err != nil {
					p.Logger.Error("seed catalog failed", slog.String("error", err.Error()))
				} else if inserted > 0 {
					p.Logger.Info("catalog seeded", slog.Int("products", inserted))
				}
			}

			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			p.Reconciler.Start(runCtx)
			go func() {
				defer close(sweeping)
				p.Sessions.Run(runCtx, sweepInterval(p.Config.SessionIdleTimeout))
			}()

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			stop := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, stop = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer stop()

			err := p.Server.Shutdown(shutdownCtx)

			if cancel != nil {
				cancel()
				<-sweeping
			}
			p.Reconciler.Stop()

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("petshop stopped")
			return nil
		},
	})
}
