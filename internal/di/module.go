package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/app"
	"github.com/polkiloo/petshop/internal/cart"
	"github.com/polkiloo/petshop/internal/checkout"
	"github.com/polkiloo/petshop/internal/config"
	"github.com/polkiloo/petshop/internal/feedback"
	"github.com/polkiloo/petshop/internal/logger"
	"github.com/polkiloo/petshop/internal/metrics"
	"github.com/polkiloo/petshop/internal/pkg/auth"
	"github.com/polkiloo/petshop/internal/server/http/router"
	"github.com/polkiloo/petshop/internal/session"
	"github.com/polkiloo/petshop/internal/storage/postgres"
	"github.com/polkiloo/petshop/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		cart.Module,
		feedback.Module,
		session.Module,
		checkout.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
