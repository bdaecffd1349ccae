package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/config"
	"github.com/polkiloo/petshop/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(newEngine)

type engineParams struct {
	fx.In

	Facade  handlers.StorefrontFacade
	Logger  *slog.Logger
	Config  *config.Config
	Metrics http.Handler `optional:"true"`
}

func newEngine(p engineParams) *gin.Engine {
	return Setup(p.Facade, p.Logger,
		WithMetricsHandler(p.Metrics),
		WithSessionTTL(p.Config.GuestCartTTL),
	)
}
