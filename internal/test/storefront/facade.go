// Package storefront provides a controllable storefront facade for HTTP
// layer tests.
package storefront

import (
	"context"
	"time"

	"github.com/polkiloo/petshop/internal/checkout"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/session"
	testhelpers "github.com/polkiloo/petshop/internal/test"
	"github.com/polkiloo/petshop/internal/usecase"
)

// FacadeStub backs every facade method with an optional override. Sessions
// are real and live in Sessions; their remote cart is Carts.
type FacadeStub struct {
	Sessions *session.Manager
	Carts    *testhelpers.CartRepositoryStub
	Pricing  checkout.Pricing

	ParseFn    func(string) (int64, error)
	RegisterFn func(context.Context, *session.Session, string, string) (string, error)
	LoginFn    func(context.Context, *session.Session, string, string) (string, error)

	ProductsFn func(context.Context, string) ([]model.Product, error)
	ProductFn  func(context.Context, int64) (*model.Product, error)
	SeedFn     func(context.Context) (int, error)

	PlaceFn func(context.Context, *session.Session, int64, string) (*checkout.Receipt, error)

	OrdersFn      func(context.Context, int64) ([]model.Order, error)
	OrderDetailFn func(context.Context, int64, string) (*model.OrderDetail, error)

	Notices      []model.Notification
	NoticesErr   error
	Unread       int
	MarkReadFn   func(context.Context, int64, int64) error
	MarkAllErr   error
	ClearErr     error
	ProfileFn    func(context.Context, int64) (*model.Profile, error)
	SaveFn       func(context.Context, int64, usecase.ProfileInput) (*model.Profile, error)
	AddressList  []model.Address
	CreateAddrFn func(context.Context, int64, usecase.AddressInput) (*model.Address, error)
	UpdateAddrFn func(context.Context, int64, int64, usecase.AddressInput) (*model.Address, error)

	HealthErr error
}

// NewFacadeStub creates a stub with an in-memory session registry.
func NewFacadeStub() *FacadeStub {
	carts := testhelpers.NewCartRepositoryStub()
	return &FacadeStub{
		Sessions: session.NewManager(carts),
		Carts:    carts,
		Pricing:  checkout.DefaultPricing(),
	}
}

func (s *FacadeStub) Session(ctx context.Context, id string) *session.Session {
	return s.Sessions.Resolve(ctx, id)
}

func (s *FacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

func (s *FacadeStub) Identify(ctx context.Context, sess *session.Session, userID int64) error {
	if userID == 0 {
		s.Sessions.SignOut(sess)
		return nil
	}
	return s.Sessions.SignIn(ctx, sess, userID)
}

func (s *FacadeStub) Register(ctx context.Context, sess *session.Session, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, sess, login, password)
	}
	return "token", nil
}

func (s *FacadeStub) Login(ctx context.Context, sess *session.Session, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, sess, login, password)
	}
	return "token", nil
}

func (s *FacadeStub) Logout(sess *session.Session) {
	s.Sessions.SignOut(sess)
}

func (s *FacadeStub) Products(ctx context.Context, category string) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, category)
	}
	return []model.Product{{ID: 1, Name: "Goldfish", Price: 20, Category: "fish"}}, nil
}

func (s *FacadeStub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return &model.Product{ID: id, Name: "Goldfish", Price: 20, Category: "fish", Image: "/fish.svg"}, nil
}

func (s *FacadeStub) SeedCatalog(ctx context.Context) (int, error) {
	if s.SeedFn != nil {
		return s.SeedFn(ctx)
	}
	return 0, nil
}

func (s *FacadeStub) Checkout(sess *session.Session) checkout.Snapshot {
	return checkout.Begin(sess.Cart().Items(), s.Pricing, time.Now())
}

func (s *FacadeStub) PlaceOrder(ctx context.Context, sess *session.Session, addressID int64, notes string) (*checkout.Receipt, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, sess, addressID, notes)
	}
	return &checkout.Receipt{OrderID: "ORD-1", CartCleared: true}, nil
}

func (s *FacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return nil, nil
}

func (s *FacadeStub) OrderDetail(ctx context.Context, userID int64, orderID string) (*model.OrderDetail, error) {
	if s.OrderDetailFn != nil {
		return s.OrderDetailFn(ctx, userID, orderID)
	}
	return &model.OrderDetail{Order: model.Order{ID: orderID, UserID: userID}}, nil
}

func (s *FacadeStub) Notifications(context.Context, int64) ([]model.Notification, error) {
	return s.Notices, s.NoticesErr
}

func (s *FacadeStub) UnreadNotifications(context.Context, int64) int {
	return s.Unread
}

func (s *FacadeStub) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	if s.MarkReadFn != nil {
		return s.MarkReadFn(ctx, userID, id)
	}
	return nil
}

func (s *FacadeStub) MarkAllNotificationsRead(context.Context, int64) error {
	return s.MarkAllErr
}

func (s *FacadeStub) ClearNotifications(context.Context, int64) error {
	return s.ClearErr
}

func (s *FacadeStub) Profile(ctx context.Context, userID int64) (*model.Profile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, userID)
	}
	return &model.Profile{UserID: userID}, nil
}

func (s *FacadeStub) SaveProfile(ctx context.Context, userID int64, in usecase.ProfileInput) (*model.Profile, error) {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, userID, in)
	}
	return &model.Profile{UserID: userID, Name: in.Name, Phone: in.Phone, Address: in.Address}, nil
}

func (s *FacadeStub) Addresses(context.Context, int64) ([]model.Address, error) {
	return s.AddressList, nil
}

func (s *FacadeStub) CreateAddress(ctx context.Context, userID int64, in usecase.AddressInput) (*model.Address, error) {
	if s.CreateAddrFn != nil {
		return s.CreateAddrFn(ctx, userID, in)
	}
	return &model.Address{ID: 1, UserID: userID, Name: in.Name, IsDefault: true}, nil
}

func (s *FacadeStub) UpdateAddress(ctx context.Context, userID, id int64, in usecase.AddressInput) (*model.Address, error) {
	if s.UpdateAddrFn != nil {
		return s.UpdateAddrFn(ctx, userID, id, in)
	}
	return &model.Address{ID: id, UserID: userID, Name: in.Name}, nil
}

func (s *FacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
