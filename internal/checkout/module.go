package checkout

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/config"
	"github.com/polkiloo/petshop/internal/domain/repository"
	"github.com/polkiloo/petshop/internal/feedback"
	"github.com/polkiloo/petshop/internal/metrics"
)

// Module provides pricing and the order placer.
var Module = fx.Provide(newPricing, newPlacer)

func newPricing(cfg *config.Config) Pricing {
	return NewPricing(cfg.FreeShippingThreshold, cfg.ShippingFee, cfg.TaxRate)
}

type placerParams struct {
	fx.In

	Orders        repository.OrderRepository
	Notifications repository.NotificationRepository
	Addresses     repository.AddressRepository
	Notifier      *feedback.Notifier
	Metrics       *metrics.Checkout `optional:"true"`
	Logger        *slog.Logger
}

func newPlacer(p placerParams) *Placer {
	return NewPlacer(
		p.Orders,
		p.Notifications,
		WithAddressLookup(p.Addresses),
		WithPlacerNotifier(p.Notifier),
		WithPlacerMetrics(p.Metrics),
		WithPlacerLogger(p.Logger),
	)
}
