package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/petshop/internal/checkout"
	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/server/http/dto"
	"github.com/polkiloo/petshop/internal/server/http/middleware"
	"github.com/polkiloo/petshop/internal/session"
	testhelpers "github.com/polkiloo/petshop/internal/test"
	"github.com/polkiloo/petshop/internal/test/storefront"
	"github.com/polkiloo/petshop/internal/usecase"
)

const visitorID = "6f1d3c1e-2b7a-4f0e-8d65-0d1c9f3a7b21"

func init() {
	gin.SetMode(gin.TestMode)
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func performRequest(t *testing.T, method, pattern, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// withVisitor attaches s and, when s is signed in, its user id.
func withVisitor(s *session.Session) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.SessionContextKey, s)
		if id := s.UserID(); id != 0 {
			c.Set(middleware.UserIDContextKey, id)
		}
	}
}

func withUser(id int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, id)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestCurrentSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if CurrentSession(c) != nil {
		t.Fatalf("expected nil session when not set")
	}

	s := storefront.NewFacadeStub().Session(context.Background(), visitorID)
	c.Set(middleware.SessionContextKey, s)
	if CurrentSession(c) != s {
		t.Fatalf("expected attached session")
	}
}

func TestHandlersWithoutSessionFail(t *testing.T) {
	facade := storefront.NewFacadeStub()
	resp := performRequest(t, http.MethodGet, "/cart", "/cart", NewCartHandler(facade).Get, nil, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without session, got %d", resp.Code)
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	login := testhelpers.RandomASCIIString(7, 14)
	password := testhelpers.RandomASCIIString(16, 32)
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	facade.RegisterFn = func(_ context.Context, got *session.Session, gotLogin, gotPassword string) (string, error) {
		if got != s {
			t.Fatalf("expected request session passed to facade")
		}
		if gotLogin != login || gotPassword != password {
			t.Fatalf("unexpected credentials passed to facade: %q %q", gotLogin, gotPassword)
		}
		return "registered-token", nil
	}

	body := mustJSON(t, dto.AuthRequest{Login: login, Password: password})
	resp := performRequest(t, http.MethodPost, "/register", "/register", NewAuthHandler(facade).Register, withVisitor(s), body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer registered-token" {
		t.Fatalf("expected auth header, got %q", got)
	}
	if resp.Header().Get("Set-Cookie") == "" {
		t.Fatalf("expected auth cookie")
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	cases := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{"bad json", []byte("{"), nil, http.StatusBadRequest},
		{"invalid credentials", nil, domainErrors.ErrInvalidCredentials, http.StatusBadRequest},
		{"conflict", nil, domainErrors.ErrAlreadyExists, http.StatusConflict},
		{"internal", nil, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := storefront.NewFacadeStub()
			facade.RegisterFn = func(context.Context, *session.Session, string, string) (string, error) {
				return "", tc.err
			}
			s := facade.Session(context.Background(), visitorID)
			body := tc.body
			if body == nil {
				body = mustJSON(t, dto.AuthRequest{Login: "user", Password: "pass"})
			}
			resp := performRequest(t, http.MethodPost, "/register", "/register", NewAuthHandler(facade).Register, withVisitor(s), body, jsonHeaders)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	body := mustJSON(t, dto.AuthRequest{Login: "user", Password: "pass"})

	resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(facade).Login, withVisitor(s), body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") != "Bearer token" {
		t.Fatalf("expected auth header")
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid credentials", domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := storefront.NewFacadeStub()
			facade.LoginFn = func(context.Context, *session.Session, string, string) (string, error) {
				return "", tc.err
			}
			s := facade.Session(context.Background(), visitorID)
			body := mustJSON(t, dto.AuthRequest{Login: "user", Password: "pass"})
			resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(facade).Login, withVisitor(s), body, jsonHeaders)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogoutKeepsCart(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.Carts.Rows[5] = []model.CartLine{{ID: 100, ProductID: 1, Price: 20, Quantity: 2}}
	s := facade.Session(context.Background(), visitorID)
	if err := facade.Identify(context.Background(), s, 5); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	resp := performRequest(t, http.MethodPost, "/logout", "/logout", NewAuthHandler(facade).Logout, withVisitor(s), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if s.UserID() != 0 {
		t.Fatalf("expected guest after logout")
	}
	if s.Cart().TotalItems() != 2 {
		t.Fatalf("expected cart lines kept, got %d", s.Cart().TotalItems())
	}
}

func TestCatalogHandlerList(t *testing.T) {
	facade := storefront.NewFacadeStub()
	var gotCategory string
	facade.ProductsFn = func(_ context.Context, category string) ([]model.Product, error) {
		gotCategory = category
		return []model.Product{{ID: 1, Name: "Goldfish", Price: 20, Category: "fish"}, {ID: 2, Name: "Guppy", Price: 5, Category: "fish"}}, nil
	}

	resp := performRequest(t, http.MethodGet, "/products", "/products?category=fish", NewCatalogHandler(facade).List, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotCategory != "fish" {
		t.Fatalf("expected category filter passed, got %q", gotCategory)
	}
	if products := decode[[]dto.ProductResponse](t, resp); len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	facade.ProductsFn = func(context.Context, string) ([]model.Product, error) { return nil, errors.New("boom") }
	resp = performRequest(t, http.MethodGet, "/products", "/products", NewCatalogHandler(facade).List, nil, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestCatalogHandlerGet(t *testing.T) {
	facade := storefront.NewFacadeStub()
	handler := NewCatalogHandler(facade).Get

	resp := performRequest(t, http.MethodGet, "/products/:id", "/products/3", handler, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if product := decode[dto.ProductResponse](t, resp); product.ID != 3 {
		t.Fatalf("expected product 3, got %d", product.ID)
	}

	resp = performRequest(t, http.MethodGet, "/products/:id", "/products/abc", handler, nil, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}

	facade.ProductFn = func(context.Context, int64) (*model.Product, error) { return nil, domainErrors.ErrNotFound }
	resp = performRequest(t, http.MethodGet, "/products/:id", "/products/9", handler, nil, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCatalogHandlerSeed(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.SeedFn = func(context.Context) (int, error) { return 12, nil }

	resp := performRequest(t, http.MethodGet, "/seed", "/seed", NewCatalogHandler(facade).Seed, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decode[dto.SeedResponse](t, resp); got.Inserted != 12 {
		t.Fatalf("expected 12 inserted, got %d", got.Inserted)
	}
}

func TestCartHandlerGuestFlow(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	h := NewCartHandler(facade)

	resp := performRequest(t, http.MethodPost, "/items", "/items", h.Add, withVisitor(s), mustJSON(t, dto.AddCartItemRequest{ProductID: 1}), jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	cart := decode[dto.CartResponse](t, resp)
	if cart.Mode != "guest" || cart.TotalItems != 1 || cart.TotalPrice != 20 {
		t.Fatalf("unexpected cart after add: %+v", cart)
	}
	if cart.Items[0].Name != "Goldfish" || cart.Items[0].Image != "/fish.svg" {
		t.Fatalf("expected catalog data on line, got %+v", cart.Items[0])
	}

	resp = performRequest(t, http.MethodPost, "/items", "/items", h.Add, withVisitor(s), mustJSON(t, dto.AddCartItemRequest{ProductID: 1, Quantity: 2}), jsonHeaders)
	if cart = decode[dto.CartResponse](t, resp); len(cart.Items) != 1 || cart.TotalItems != 3 {
		t.Fatalf("expected merged line with 3 units, got %+v", cart)
	}

	qty := 5
	resp = performRequest(t, http.MethodPatch, "/items/:productID", "/items/1", h.Update, withVisitor(s), mustJSON(t, dto.UpdateCartItemRequest{Quantity: &qty}), jsonHeaders)
	if cart = decode[dto.CartResponse](t, resp); cart.TotalItems != 5 || cart.Items[0].Subtotal != 100 {
		t.Fatalf("expected 5 units, got %+v", cart)
	}

	resp = performRequest(t, http.MethodDelete, "/items/:productID", "/items/1", h.Remove, withVisitor(s), nil, nil)
	if cart = decode[dto.CartResponse](t, resp); cart.TotalItems != 0 || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}

	if got := len(facade.Carts.Calls); got != 0 {
		t.Fatalf("guest cart must not touch remote storage, got %d calls", got)
	}
}

func TestCartHandlerSignedInWritesRemote(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	if err := facade.Identify(context.Background(), s, 7); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	h := NewCartHandler(facade)

	resp := performRequest(t, http.MethodPost, "/items", "/items", h.Add, withVisitor(s), mustJSON(t, dto.AddCartItemRequest{ProductID: 4, Quantity: 2}), jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	cart := decode[dto.CartResponse](t, resp)
	if cart.Mode != "authenticated" || cart.Items[0].ID < 100 {
		t.Fatalf("expected remote line id, got %+v", cart)
	}
	if len(facade.Carts.Rows[7]) != 1 {
		t.Fatalf("expected line stored remotely, got %+v", facade.Carts.Rows[7])
	}

	resp = performRequest(t, http.MethodDelete, "/", "/", h.Clear, withVisitor(s), nil, nil)
	if cart = decode[dto.CartResponse](t, resp); cart.TotalItems != 0 {
		t.Fatalf("expected cleared cart, got %+v", cart)
	}
	if len(facade.Carts.Rows[7]) != 0 {
		t.Fatalf("expected remote cart cleared")
	}
}

func TestCartHandlerFailures(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	h := NewCartHandler(facade)

	resp := performRequest(t, http.MethodPost, "/items", "/items", h.Add, withVisitor(s), []byte(`{"quantity":2}`), jsonHeaders)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without product id, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/items", "/items", h.Add, withVisitor(s), mustJSON(t, dto.AddCartItemRequest{ProductID: 1, Quantity: -2}), jsonHeaders)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity, got %d", resp.Code)
	}

	facade.ProductFn = func(context.Context, int64) (*model.Product, error) { return nil, domainErrors.ErrNotFound }
	resp = performRequest(t, http.MethodPost, "/items", "/items", h.Add, withVisitor(s), mustJSON(t, dto.AddCartItemRequest{ProductID: 1}), jsonHeaders)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPatch, "/items/:productID", "/items/1", h.Update, withVisitor(s), []byte(`{}`), jsonHeaders)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without quantity, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodDelete, "/items/:productID", "/items/x", h.Remove, withVisitor(s), nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad product id, got %d", resp.Code)
	}
}

func TestCartHandlerRemoteFailureKeepsCart(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	if err := facade.Identify(context.Background(), s, 7); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	facade.Carts.InsertFn = func(context.Context, int64, model.CartLine) (*model.CartLine, error) {
		return nil, errors.New("db down")
	}

	resp := performRequest(t, http.MethodPost, "/items", "/items", NewCartHandler(facade).Add, withVisitor(s), mustJSON(t, dto.AddCartItemRequest{ProductID: 1}), jsonHeaders)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if s.Cart().TotalItems() != 0 {
		t.Fatalf("expected cart unchanged after remote failure")
	}
}

func TestCheckoutHandlerQuote(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	_ = s.Cart().AddItem(context.Background(), model.CartLine{ProductID: 1, Name: "Goldfish", Price: 20, Quantity: 2})

	resp := performRequest(t, http.MethodGet, "/quote", "/quote", NewCheckoutHandler(facade).Quote, withVisitor(s), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	quote := decode[dto.QuoteResponse](t, resp)
	if quote.ItemCount != 2 || quote.Subtotal != 40 || quote.Shipping != 50 || quote.Tax != 7.2 || quote.Total != 97.2 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestCheckoutHandlerPlace(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), visitorID)
	placedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	facade.PlaceFn = func(_ context.Context, got *session.Session, addressID int64, notes string) (*checkout.Receipt, error) {
		if got != s || addressID != 3 || notes != "leave at door" {
			t.Fatalf("unexpected placement args %d %q", addressID, notes)
		}
		return &checkout.Receipt{
			OrderID:     "ORD-42",
			ItemCount:   2,
			Totals:      checkout.Totals{Subtotal: 40, Shipping: 50, Tax: 7.2, Total: 97.2},
			CartCleared: true,
			PlacedAt:    placedAt,
		}, nil
	}

	body := mustJSON(t, dto.PlaceOrderRequest{AddressID: 3, Notes: "leave at door"})
	resp := performRequest(t, http.MethodPost, "/checkout", "/checkout", NewCheckoutHandler(facade).Place, withVisitor(s), body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	placed := decode[dto.PlaceOrderResponse](t, resp)
	if placed.OrderID != "ORD-42" || !placed.CartCleared || placed.Total != 97.2 || !placed.PlacedAt.Equal(placedAt) {
		t.Fatalf("unexpected response %+v", placed)
	}
}

func TestCheckoutHandlerPlaceFailures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		step    string
		orderID string
	}{
		{"not authenticated", domainErrors.ErrNotAuthenticated, http.StatusUnauthorized, "", ""},
		{"no address", domainErrors.ErrAddressRequired, http.StatusUnprocessableEntity, "", ""},
		{"empty cart", domainErrors.ErrEmptyCart, http.StatusUnprocessableEntity, "", ""},
		{"items step", &domainErrors.StepError{Step: domainErrors.StepOrderItems, OrderID: "ORD-7", Err: errors.New("db down")}, http.StatusBadGateway, "order_items", "ORD-7"},
		{"duplicate header", &domainErrors.StepError{Step: domainErrors.StepOrderHeader, Err: domainErrors.ErrAlreadyExists}, http.StatusConflict, "order_header", ""},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := storefront.NewFacadeStub()
			facade.PlaceFn = func(context.Context, *session.Session, int64, string) (*checkout.Receipt, error) {
				return nil, tc.err
			}
			s := facade.Session(context.Background(), visitorID)
			resp := performRequest(t, http.MethodPost, "/checkout", "/checkout", NewCheckoutHandler(facade).Place, withVisitor(s), mustJSON(t, dto.PlaceOrderRequest{AddressID: 1}), jsonHeaders)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			got := decode[dto.ErrorResponse](t, resp)
			if got.Step != tc.step || got.OrderID != tc.orderID {
				t.Fatalf("unexpected error body %+v", got)
			}
		})
	}
}

func TestOrderHandlerList(t *testing.T) {
	facade := storefront.NewFacadeStub()
	handler := NewOrderHandler(facade).List

	resp := performRequest(t, http.MethodGet, "/orders", "/orders", handler, withUser(1), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for no orders, got %d", resp.Code)
	}

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	facade.OrdersFn = func(_ context.Context, userID int64) ([]model.Order, error) {
		return []model.Order{{ID: "ORD-1", UserID: userID, Status: model.OrderStatusProcessing, Total: 97.2, CreatedAt: created}}, nil
	}
	resp = performRequest(t, http.MethodGet, "/orders", "/orders", handler, withUser(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	orders := decode[[]dto.OrderResponse](t, resp)
	if len(orders) != 1 || orders[0].Status != "processing" || orders[0].Total != 97.2 {
		t.Fatalf("unexpected orders %+v", orders)
	}

	facade.OrdersFn = func(context.Context, int64) ([]model.Order, error) { return nil, errors.New("boom") }
	resp = performRequest(t, http.MethodGet, "/orders", "/orders", handler, withUser(1), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestOrderHandlerGet(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.OrderDetailFn = func(_ context.Context, userID int64, id string) (*model.OrderDetail, error) {
		if id == "missing" {
			return nil, domainErrors.ErrNotFound
		}
		return &model.OrderDetail{
			Order:    model.Order{ID: id, UserID: userID, Status: model.OrderStatusProcessing},
			Items:    []model.OrderItem{{ProductID: 1, ProductName: "Goldfish", Price: 20, Quantity: 2}},
			Timeline: []model.OrderTimelineEvent{{Status: model.OrderStatusProcessing, Message: "Order placed"}},
			Address:  &model.Address{ID: 3, Name: "Home", City: "Springfield"},
		}, nil
	}
	handler := NewOrderHandler(facade).Get

	resp := performRequest(t, http.MethodGet, "/orders/:id", "/orders/ORD-1", handler, withUser(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	detail := decode[dto.OrderDetailResponse](t, resp)
	if detail.ID != "ORD-1" || len(detail.Items) != 1 || len(detail.Timeline) != 1 || detail.Address == nil || detail.Address.City != "Springfield" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	resp = performRequest(t, http.MethodGet, "/orders/:id", "/orders/missing", handler, withUser(1), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAccountHandlerNotifications(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.Notices = []model.Notification{{ID: 1, Title: "Order placed", Type: model.NotificationTypeOrder}}
	facade.Unread = 3
	h := NewAccountHandler(facade)

	resp := performRequest(t, http.MethodGet, "/notifications", "/notifications", h.Notifications, withUser(1), nil, nil)
	if items := decode[[]dto.NotificationResponse](t, resp); len(items) != 1 || items[0].Type != "order" {
		t.Fatalf("unexpected notifications %+v", items)
	}

	resp = performRequest(t, http.MethodGet, "/unread", "/unread", h.Unread, withUser(1), nil, nil)
	if got := decode[dto.UnreadResponse](t, resp); got.Count != 3 {
		t.Fatalf("expected 3 unread, got %d", got.Count)
	}

	resp = performRequest(t, http.MethodPost, "/notifications/:id/read", "/notifications/1/read", h.MarkRead, withUser(1), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	facade.MarkReadFn = func(context.Context, int64, int64) error { return domainErrors.ErrNotFound }
	resp = performRequest(t, http.MethodPost, "/notifications/:id/read", "/notifications/9/read", h.MarkRead, withUser(1), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/read-all", "/read-all", h.MarkAllRead, withUser(1), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	facade.ClearErr = errors.New("boom")
	resp = performRequest(t, http.MethodDelete, "/notifications", "/notifications", h.ClearNotifications, withUser(1), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	facade.NoticesErr = errors.New("boom")
	resp = performRequest(t, http.MethodGet, "/notifications", "/notifications", h.Notifications, withUser(1), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestAccountHandlerProfile(t *testing.T) {
	facade := storefront.NewFacadeStub()
	h := NewAccountHandler(facade)

	body := mustJSON(t, dto.ProfileRequest{Name: "Ann", Phone: "555-0100", Address: "1 Main St"})
	resp := performRequest(t, http.MethodPut, "/profile", "/profile", h.SaveProfile, withUser(2), body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decode[dto.ProfileResponse](t, resp); got.Name != "Ann" || got.Phone != "555-0100" {
		t.Fatalf("unexpected profile %+v", got)
	}

	facade.SaveFn = func(context.Context, int64, usecase.ProfileInput) (*model.Profile, error) {
		return nil, domainErrors.ErrValidation
	}
	resp = performRequest(t, http.MethodPut, "/profile", "/profile", h.SaveProfile, withUser(2), body, jsonHeaders)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/profile", "/profile", h.Profile, withUser(2), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAccountHandlerAddresses(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.AddressList = []model.Address{{ID: 1, Name: "Home", IsDefault: true}}
	h := NewAccountHandler(facade)

	resp := performRequest(t, http.MethodGet, "/addresses", "/addresses", h.Addresses, withUser(2), nil, nil)
	if items := decode[[]dto.AddressResponse](t, resp); len(items) != 1 || !items[0].IsDefault {
		t.Fatalf("unexpected addresses %+v", items)
	}

	body := mustJSON(t, dto.AddressRequest{Name: "Work", AddressLine1: "2 Side St", City: "Springfield", PostalCode: "12345", Phone: "555"})
	resp = performRequest(t, http.MethodPost, "/addresses", "/addresses", h.CreateAddress, withUser(2), body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/addresses/:id", "/addresses/4", h.UpdateAddress, withUser(2), body, jsonHeaders)
	if got := decode[dto.AddressResponse](t, resp); got.ID != 4 || got.Name != "Work" {
		t.Fatalf("unexpected updated address %+v", got)
	}

	facade.UpdateAddrFn = func(context.Context, int64, int64, usecase.AddressInput) (*model.Address, error) {
		return nil, domainErrors.ErrNotFound
	}
	resp = performRequest(t, http.MethodPut, "/addresses/:id", "/addresses/4", h.UpdateAddress, withUser(2), body, jsonHeaders)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/addresses/:id", "/addresses/0", h.UpdateAddress, withUser(2), body, jsonHeaders)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive id, got %d", resp.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	facade := storefront.NewFacadeStub()
	resp := performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(facade).Check, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	facade.HealthErr = errors.New("db down")
	resp = performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(facade).Check, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
