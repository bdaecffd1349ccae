package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CartCall records one remote cart invocation.
type CartCall struct {
	Op        string
	UserID    int64
	ProductID int64
	Quantity  int
}

// CartRepositoryStub is an in-memory remote cart table with per-method overrides.
type CartRepositoryStub struct {
	InsertFn         func(context.Context, int64, model.CartLine) (*model.CartLine, error)
	UpdateQuantityFn func(context.Context, int64, int64, int) error
	DeleteFn         func(context.Context, int64, int64) error
	DeleteAllFn      func(context.Context, int64) error
	ListFn           func(context.Context, int64) ([]model.CartLine, error)

	mu     sync.Mutex
	Rows   map[int64][]model.CartLine
	NextID int64
	Calls  []CartCall
}

// NewCartRepositoryStub creates an empty remote cart table.
func NewCartRepositoryStub() *CartRepositoryStub {
	return &CartRepositoryStub{Rows: make(map[int64][]model.CartLine), NextID: 100}
}

func (s *CartRepositoryStub) record(call CartCall) {
	s.mu.Lock()
	s.Calls = append(s.Calls, call)
	s.mu.Unlock()
}

// CallsFor returns recorded calls with the given op name.
func (s *CartRepositoryStub) CallsFor(op string) []CartCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CartCall
	for _, c := range s.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ListByUser returns stored rows for user.
func (s *CartRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	s.record(CartCall{Op: "list", UserID: userID})
	if s.ListFn != nil {
		return s.ListFn(ctx, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CartLine, len(s.Rows[userID]))
	copy(out, s.Rows[userID])
	return out, nil
}

// Insert stores line under a fresh id.
func (s *CartRepositoryStub) Insert(ctx context.Context, userID int64, line model.CartLine) (*model.CartLine, error) {
	s.record(CartCall{Op: "insert", UserID: userID, ProductID: line.ProductID, Quantity: line.Quantity})
	if s.InsertFn != nil {
		return s.InsertFn(ctx, userID, line)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Rows == nil {
		s.Rows = make(map[int64][]model.CartLine)
	}
	s.NextID++
	line.ID = s.NextID
	s.Rows[userID] = append(s.Rows[userID], line)
	return &line, nil
}

// UpdateQuantity changes quantity of the (user, product) row.
func (s *CartRepositoryStub) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	s.record(CartCall{Op: "update", UserID: userID, ProductID: productID, Quantity: quantity})
	if s.UpdateQuantityFn != nil {
		return s.UpdateQuantityFn(ctx, userID, productID, quantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Rows[userID] {
		if s.Rows[userID][i].ProductID == productID {
			s.Rows[userID][i].Quantity = quantity
		}
	}
	return nil
}

// Delete removes the (user, product) row.
func (s *CartRepositoryStub) Delete(ctx context.Context, userID, productID int64) error {
	s.record(CartCall{Op: "delete", UserID: userID, ProductID: productID})
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, userID, productID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Rows[userID][:0]
	for _, l := range s.Rows[userID] {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.Rows[userID] = kept
	return nil
}

// DeleteAll removes every row of user.
func (s *CartRepositoryStub) DeleteAll(ctx context.Context, userID int64) error {
	s.record(CartCall{Op: "delete_all", UserID: userID})
	if s.DeleteAllFn != nil {
		return s.DeleteAllFn(ctx, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rows, userID)
	return nil
}

// OrderRepositoryStub keeps orders in memory and records writes in order.
// It does not implement repository.OrderTransactor; wrap it in
// TransactionalOrderRepositoryStub for atomic behaviour.
type OrderRepositoryStub struct {
	CreateHeaderFn   func(context.Context, model.Order) (*model.Order, error)
	AddItemsFn       func(context.Context, string, []model.OrderItem) error
	AppendTimelineFn func(context.Context, model.OrderTimelineEvent) error
	UpdateStatusFn   func(context.Context, string, model.OrderStatus) error
	ListIncompleteFn func(context.Context, time.Time, int) ([]model.IncompleteOrder, error)
	ListByUserFn     func(context.Context, int64) ([]model.Order, error)

	mu       sync.Mutex
	Orders   map[string]model.Order
	ItemRows map[string][]model.OrderItem
	Events   map[string][]model.OrderTimelineEvent
	Writes   []string
}

// NewOrderRepositoryStub creates an empty order store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:   make(map[string]model.Order),
		ItemRows: make(map[string][]model.OrderItem),
		Events:   make(map[string][]model.OrderTimelineEvent),
	}
}

func (s *OrderRepositoryStub) write(op string) {
	s.mu.Lock()
	s.Writes = append(s.Writes, op)
	s.mu.Unlock()
}

// WriteLog returns the sequence of write operations issued.
func (s *OrderRepositoryStub) WriteLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Writes))
	copy(out, s.Writes)
	return out
}

// CreateHeader stores the order header.
func (s *OrderRepositoryStub) CreateHeader(ctx context.Context, order model.Order) (*model.Order, error) {
	s.write("header")
	if s.CreateHeaderFn != nil {
		return s.CreateHeaderFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Orders[order.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	s.Orders[order.ID] = order
	return &order, nil
}

// AddItems stores order items.
func (s *OrderRepositoryStub) AddItems(ctx context.Context, orderID string, items []model.OrderItem) error {
	s.write("items")
	if s.AddItemsFn != nil {
		return s.AddItemsFn(ctx, orderID, items)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemRows[orderID] = append(s.ItemRows[orderID], items...)
	return nil
}

// AppendTimeline stores a timeline event.
func (s *OrderRepositoryStub) AppendTimeline(ctx context.Context, event model.OrderTimelineEvent) error {
	s.write("timeline")
	if s.AppendTimelineFn != nil {
		return s.AppendTimelineFn(ctx, event)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events[event.OrderID] = append(s.Events[event.OrderID], event)
	return nil
}

// UpdateStatus changes the status of an order.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	s.write("status")
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.Status = status
	s.Orders[orderID] = order
	return nil
}

// ListByUser returns orders of user newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetForUser returns order owned by user.
func (s *OrderRepositoryStub) GetForUser(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok || order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return &order, nil
}

// Items returns items of an order.
func (s *OrderRepositoryStub) Items(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderItem(nil), s.ItemRows[orderID]...), nil
}

// Timeline returns events of an order.
func (s *OrderRepositoryStub) Timeline(ctx context.Context, orderID string) ([]model.OrderTimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderTimelineEvent(nil), s.Events[orderID]...), nil
}

// ListIncomplete returns processing orders created before the cutoff that
// lack items or timeline events.
func (s *OrderRepositoryStub) ListIncomplete(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error) {
	if s.ListIncompleteFn != nil {
		return s.ListIncompleteFn(ctx, createdBefore, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.IncompleteOrder
	for id, o := range s.Orders {
		if o.Status != model.OrderStatusProcessing || !o.CreatedAt.Before(createdBefore) {
			continue
		}
		items := len(s.ItemRows[id])
		hasTimeline := len(s.Events[id]) > 0
		if items > 0 && hasTimeline {
			continue
		}
		out = append(out, model.IncompleteOrder{Order: o, ItemCount: items, HasTimeline: hasTimeline})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// TransactionalOrderRepositoryStub adds all-or-nothing grouping on top of
// OrderRepositoryStub: writes inside InTransaction are discarded when fn fails.
type TransactionalOrderRepositoryStub struct {
	*OrderRepositoryStub
	Transactions int
}

// InTransaction runs fn and restores the previous state when it fails.
func (s *TransactionalOrderRepositoryStub) InTransaction(ctx context.Context, fn func(repository.OrderWriter) error) error {
	s.Transactions++
	s.mu.Lock()
	orders := make(map[string]model.Order, len(s.Orders))
	for k, v := range s.Orders {
		orders[k] = v
	}
	items := make(map[string][]model.OrderItem, len(s.ItemRows))
	for k, v := range s.ItemRows {
		items[k] = append([]model.OrderItem(nil), v...)
	}
	events := make(map[string][]model.OrderTimelineEvent, len(s.Events))
	for k, v := range s.Events {
		events[k] = append([]model.OrderTimelineEvent(nil), v...)
	}
	s.mu.Unlock()

	if err := fn(s.OrderRepositoryStub); err != nil {
		s.mu.Lock()
		s.Orders, s.ItemRows, s.Events = orders, items, events
		s.mu.Unlock()
		return err
	}
	return nil
}

// NotificationRepositoryStub stores notifications in memory.
type NotificationRepositoryStub struct {
	CreateFn      func(context.Context, model.Notification) (*model.Notification, error)
	CountUnreadFn func(context.Context, int64) (int, error)

	mu    sync.Mutex
	Items []model.Notification
	next  int64
}

// Create stores n.
func (s *NotificationRepositoryStub) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	n.ID = s.next
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.Items = append(s.Items, n)
	return &n, nil
}

// ListByUser returns notifications of user newest first.
func (s *NotificationRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for i := len(s.Items) - 1; i >= 0; i-- {
		if s.Items[i].UserID == userID {
			out = append(out, s.Items[i])
		}
	}
	return out, nil
}

// CountUnread counts unread notifications of user.
func (s *NotificationRepositoryStub) CountUnread(ctx context.Context, userID int64) (int, error) {
	if s.CountUnreadFn != nil {
		return s.CountUnreadFn(ctx, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.Items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead flags one notification as read.
func (s *NotificationRepositoryStub) MarkRead(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Items {
		if s.Items[i].ID == id && s.Items[i].UserID == userID {
			s.Items[i].IsRead = true
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// MarkAllRead flags all notifications of user as read.
func (s *NotificationRepositoryStub) MarkAllRead(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Items {
		if s.Items[i].UserID == userID {
			s.Items[i].IsRead = true
		}
	}
	return nil
}

// DeleteAll drops every notification of user.
func (s *NotificationRepositoryStub) DeleteAll(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Items[:0]
	for _, n := range s.Items {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	s.Items = kept
	return nil
}

// AddressRepositoryStub stores addresses in memory and keeps one default per user.
type AddressRepositoryStub struct {
	Err   error
	mu    sync.Mutex
	Items []model.Address
	next  int64
}

// ListByUser returns addresses of user, default first.
func (s *AddressRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Address
	for _, a := range s.Items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsDefault && !out[j].IsDefault })
	return out, nil
}

// GetForUser returns one address owned by user.
func (s *AddressRepositoryStub) GetForUser(ctx context.Context, userID, id int64) (*model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Items {
		if a.ID == id && a.UserID == userID {
			addr := a
			return &addr, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Create stores address.
func (s *AddressRepositoryStub) Create(ctx context.Context, address model.Address) (*model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	address.ID = s.next
	if address.IsDefault {
		s.clearDefault(address.UserID)
	}
	s.Items = append(s.Items, address)
	return &address, nil
}

// Update replaces stored address.
func (s *AddressRepositoryStub) Update(ctx context.Context, address model.Address) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Items {
		if s.Items[i].ID == address.ID && s.Items[i].UserID == address.UserID {
			if address.IsDefault {
				s.clearDefault(address.UserID)
			}
			address.CreatedAt = s.Items[i].CreatedAt
			s.Items[i] = address
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func (s *AddressRepositoryStub) clearDefault(userID int64) {
	for i := range s.Items {
		if s.Items[i].UserID == userID {
			s.Items[i].IsDefault = false
		}
	}
}

// ProfileRepositoryStub stores profiles in memory.
type ProfileRepositoryStub struct {
	Err      error
	Profiles map[int64]model.Profile
}

// Get returns stored profile.
func (s *ProfileRepositoryStub) Get(ctx context.Context, userID int64) (*model.Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Profiles[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

// Upsert stores profile.
func (s *ProfileRepositoryStub) Upsert(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Profiles == nil {
		s.Profiles = make(map[int64]model.Profile)
	}
	profile.UpdatedAt = time.Now()
	s.Profiles[profile.UserID] = profile
	return &profile, nil
}

// ProductRepositoryStub keeps a catalog in memory.
type ProductRepositoryStub struct {
	Err      error
	Products []model.Product
	Batches  int
}

// List returns products filtered by category.
func (s *ProductRepositoryStub) List(ctx context.Context, category string) ([]model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Product
	for _, p := range s.Products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetByID returns a product.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, p := range s.Products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Count returns catalog size.
func (s *ProductRepositoryStub) Count(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.Products)), nil
}

// Create appends a product.
func (s *ProductRepositoryStub) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	product.ID = int64(len(s.Products) + 1)
	s.Products = append(s.Products, product)
	return &product, nil
}

// CreateBatch appends products.
func (s *ProductRepositoryStub) CreateBatch(ctx context.Context, products []model.Product) error {
	if s.Err != nil {
		return s.Err
	}
	s.Batches++
	for _, p := range products {
		p.ID = int64(len(s.Products) + 1)
		s.Products = append(s.Products, p)
	}
	return nil
}

var (
	_ repository.CartRepository         = (*CartRepositoryStub)(nil)
	_ repository.OrderRepository        = (*OrderRepositoryStub)(nil)
	_ repository.OrderTransactor        = (*TransactionalOrderRepositoryStub)(nil)
	_ repository.NotificationRepository = (*NotificationRepositoryStub)(nil)
	_ repository.AddressRepository      = (*AddressRepositoryStub)(nil)
	_ repository.ProfileRepository      = (*ProfileRepositoryStub)(nil)
	_ repository.ProductRepository      = (*ProductRepositoryStub)(nil)
	_ repository.UserRepository         = (*UserRepositoryStub)(nil)
)
