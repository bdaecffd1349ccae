package handlers

import (
	"context"

	"github.com/polkiloo/petshop/internal/checkout"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/server/http/middleware"
	"github.com/polkiloo/petshop/internal/session"
	"github.com/polkiloo/petshop/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, s *session.Session, login, password string) (string, error)
	Login(ctx context.Context, s *session.Session, login, password string) (string, error)
	Logout(s *session.Session)
}

// CatalogFacade serves the product catalog.
type CatalogFacade interface {
	Products(ctx context.Context, category string) ([]model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	SeedCatalog(ctx context.Context) (int, error)
}

// CheckoutFacade prices the session cart and places orders from it.
type CheckoutFacade interface {
	Checkout(s *session.Session) checkout.Snapshot
	PlaceOrder(ctx context.Context, s *session.Session, addressID int64, notes string) (*checkout.Receipt, error)
}

// OrderFacade exposes order history.
type OrderFacade interface {
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	OrderDetail(ctx context.Context, userID int64, orderID string) (*model.OrderDetail, error)
}

// AccountFacade covers notifications, profile and saved addresses.
type AccountFacade interface {
	Notifications(ctx context.Context, userID int64) ([]model.Notification, error)
	UnreadNotifications(ctx context.Context, userID int64) int
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
	ClearNotifications(ctx context.Context, userID int64) error

	Profile(ctx context.Context, userID int64) (*model.Profile, error)
	SaveProfile(ctx context.Context, userID int64, in usecase.ProfileInput) (*model.Profile, error)

	Addresses(ctx context.Context, userID int64) ([]model.Address, error)
	CreateAddress(ctx context.Context, userID int64, in usecase.AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID, id int64, in usecase.AddressInput) (*model.Address, error)
}

// HealthFacade reports service health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	middleware.Identifier
	AuthFacade
	CatalogFacade
	CheckoutFacade
	OrderFacade
	AccountFacade
	HealthFacade
}
