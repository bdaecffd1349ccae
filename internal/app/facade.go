package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/checkout"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/session"
	"github.com/polkiloo/petshop/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FacadeParams lists the collaborators of StorefrontFacade.
type FacadeParams struct {
	fx.In

	Auth          *usecase.AuthUseCase
	Catalog       *usecase.CatalogUseCase
	Addresses     *usecase.AddressUseCase
	Profiles      *usecase.ProfileUseCase
	Notifications *usecase.NotificationUseCase
	Orders        *usecase.OrderUseCase
	Sessions      *session.Manager
	Placer        *checkout.Placer
	Pricing       checkout.Pricing
	Health        HealthChecker `optional:"true"`
	Logger        *slog.Logger  `optional:"true"`
}

// StorefrontFacade is the single entry point used by the HTTP layer and
// the background reconciler.
type StorefrontFacade struct {
	auth          *usecase.AuthUseCase
	catalog       *usecase.CatalogUseCase
	addresses     *usecase.AddressUseCase
	profiles      *usecase.ProfileUseCase
	notifications *usecase.NotificationUseCase
	orders        *usecase.OrderUseCase
	sessions      *session.Manager
	placer        *checkout.Placer
	pricing       checkout.Pricing
	health        HealthChecker
	logger        *slog.Logger
	clock         func() time.Time
}

// NewStorefrontFacade builds the facade.
func NewStorefrontFacade(p FacadeParams) *StorefrontFacade {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &StorefrontFacade{
		auth:          p.Auth,
		catalog:       p.Catalog,
		addresses:     p.Addresses,
		profiles:      p.Profiles,
		notifications: p.Notifications,
		orders:        p.Orders,
		sessions:      p.Sessions,
		placer:        p.Placer,
		pricing:       p.Pricing,
		health:        p.Health,
		logger:        logger,
		clock:         time.Now,
	}
}

// Session returns the visitor session for id, creating one if needed.
func (f *StorefrontFacade) Session(ctx context.Context, id string) *session.Session {
	return f.sessions.Resolve(ctx, id)
}

// Identify aligns the session identity with the authenticated user. Zero
// turns the session back into a guest.
func (f *StorefrontFacade) Identify(ctx context.Context, s *session.Session, userID int64) error {
	if userID == 0 {
		if s.UserID() != 0 {
			f.sessions.SignOut(s)
		}
		return nil
	}
	return f.sessions.SignIn(ctx, s, userID)
}

// Register creates an account and signs the session in.
func (f *StorefrontFacade) Register(ctx context.Context, s *session.Session, login, password string) (string, error) {
	user, token, err := f.auth.Register(ctx, login, password)
	if err != nil {
		return "", err
	}
	f.signIn(ctx, s, user.ID)
	return token, nil
}

// Login authenticates and signs the session in.
func (f *StorefrontFacade) Login(ctx context.Context, s *session.Session, login, password string) (string, error) {
	user, token, err := f.auth.Authenticate(ctx, login, password)
	if err != nil {
		return "", err
	}
	f.signIn(ctx, s, user.ID)
	return token, nil
}

// A failed cart sync does not fail the sign-in; the session stays a guest
// and the next request retries.
func (f *StorefrontFacade) signIn(ctx context.Context, s *session.Session, userID int64) {
	if err := f.sessions.SignIn(ctx, s, userID); err != nil {
		f.logger.Warn("cart sync at sign-in failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Logout turns the session into a guest. Cart lines stay.
func (f *StorefrontFacade) Logout(s *session.Session) {
	f.sessions.SignOut(s)
}

// ParseToken resolves the user behind an auth token.
func (f *StorefrontFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) Products(ctx context.Context, category string) ([]model.Product, error) {
	return f.catalog.List(ctx, category)
}

func (f *StorefrontFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.Get(ctx, id)
}

// SeedCatalog loads the built-in products into an empty catalog.
func (f *StorefrontFacade) SeedCatalog(ctx context.Context) (int, error) {
	return f.catalog.SeedIfEmpty(ctx)
}

// Checkout freezes the session cart and prices it.
func (f *StorefrontFacade) Checkout(s *session.Session) checkout.Snapshot {
	return checkout.Begin(s.Cart().Items(), f.pricing, f.clock())
}

// PlaceOrder runs the placement sequence for the session cart.
func (f *StorefrontFacade) PlaceOrder(ctx context.Context, s *session.Session, addressID int64, notes string) (*checkout.Receipt, error) {
	req := checkout.Request{
		UserID:    s.UserID(),
		AddressID: addressID,
		Notes:     notes,
		Snapshot:  f.Checkout(s),
	}
	return f.placer.Place(ctx, req, s.Cart())
}

func (f *StorefrontFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StorefrontFacade) OrderDetail(ctx context.Context, userID int64, orderID string) (*model.OrderDetail, error) {
	return f.orders.Detail(ctx, userID, orderID)
}

// IncompleteOrders lists orders whose placement stopped half way.
func (f *StorefrontFacade) IncompleteOrders(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error) {
	return f.orders.Incomplete(ctx, createdBefore, limit)
}

// RepairOrder completes or cancels an incomplete order.
func (f *StorefrontFacade) RepairOrder(ctx context.Context, order model.IncompleteOrder) (string, error) {
	return f.orders.Repair(ctx, order)
}

func (f *StorefrontFacade) Notifications(ctx context.Context, userID int64) ([]model.Notification, error) {
	return f.notifications.List(ctx, userID)
}

func (f *StorefrontFacade) UnreadNotifications(ctx context.Context, userID int64) int {
	return f.notifications.UnreadCount(ctx, userID)
}

func (f *StorefrontFacade) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	return f.notifications.MarkRead(ctx, userID, id)
}

func (f *StorefrontFacade) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	return f.notifications.MarkAllRead(ctx, userID)
}

func (f *StorefrontFacade) ClearNotifications(ctx context.Context, userID int64) error {
	return f.notifications.Clear(ctx, userID)
}

func (f *StorefrontFacade) Profile(ctx context.Context, userID int64) (*model.Profile, error) {
	return f.profiles.Get(ctx, userID)
}

func (f *StorefrontFacade) SaveProfile(ctx context.Context, userID int64, in usecase.ProfileInput) (*model.Profile, error) {
	return f.profiles.Save(ctx, userID, in)
}

func (f *StorefrontFacade) Addresses(ctx context.Context, userID int64) ([]model.Address, error) {
	return f.addresses.List(ctx, userID)
}

func (f *StorefrontFacade) CreateAddress(ctx context.Context, userID int64, in usecase.AddressInput) (*model.Address, error) {
	return f.addresses.Create(ctx, userID, in)
}

func (f *StorefrontFacade) UpdateAddress(ctx context.Context, userID, id int64, in usecase.AddressInput) (*model.Address, error) {
	return f.addresses.Update(ctx, userID, id, in)
}

// HealthCheck reports store connectivity. Without a checker it always
// succeeds.
func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
