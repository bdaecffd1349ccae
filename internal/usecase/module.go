package usecase

import "go.uber.org/fx"

// Module provides storefront use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewCatalogUseCase,
	NewOrderUseCase,
	NewAddressUseCase,
	NewProfileUseCase,
	NewNotificationUseCase,
)
