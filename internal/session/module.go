package session

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/cart"
	"github.com/polkiloo/petshop/internal/config"
	"github.com/polkiloo/petshop/internal/domain/repository"
	"github.com/polkiloo/petshop/internal/feedback"
	"github.com/polkiloo/petshop/internal/metrics"
)

// Module provides the session manager.
var Module = fx.Provide(newManager)

type managerParams struct {
	fx.In

	Carts       repository.CartRepository
	Persistence cart.Persistence
	Notifier    *feedback.Notifier
	Metrics     *metrics.Cart `optional:"true"`
	Logger      *slog.Logger
	Config      *config.Config
}

func newManager(p managerParams) *Manager {
	return NewManager(
		p.Carts,
		WithPersistence(p.Persistence),
		WithSignInPolicy(cart.PolicyByName(p.Config.CartSignInPolicy)),
		WithNotifier(p.Notifier),
		WithMetrics(p.Metrics),
		WithLogger(p.Logger),
		WithIdleTimeout(p.Config.SessionIdleTimeout),
	)
}
