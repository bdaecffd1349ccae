// Package cart implements the per-visitor shopping cart: a local copy of the
// lines that is written through to the remote cart table whenever the
// visitor is signed in.
package cart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
	"github.com/polkiloo/petshop/internal/feedback"
	"github.com/polkiloo/petshop/internal/metrics"
)

const (
	modeRemote = "remote"
	modeLocal  = "local"
)

// Identity reports the signed-in user of the owning session; zero means guest.
type Identity interface {
	UserID() int64
}

// StaticIdentity is a fixed Identity.
type StaticIdentity int64

// UserID implements Identity.
func (s StaticIdentity) UserID() int64 { return int64(s) }

// Snapshot is an immutable view of the cart published to subscribers.
type Snapshot struct {
	Lines      []model.CartLine
	TotalItems int
	TotalPrice float64
	Loading    bool
}

// Store holds one visitor's cart. Mutations are serialized: a second
// mutation waits until the first, including its remote call, has finished.
type Store struct {
	identity Identity
	remote   repository.CartRepository

	persistence Persistence
	persistKey  string
	policy      SignInPolicy
	notifier    *feedback.Notifier
	metrics     *metrics.Cart
	logger      *slog.Logger
	clock       func() time.Time

	op sync.Mutex

	mu         sync.RWMutex
	lines      []model.CartLine
	loading    bool
	lastTempID int64

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// Option customizes a Store.
type Option func(*Store)

// WithPersistence stores the local lines under key after every change.
func WithPersistence(p Persistence, key string) Option {
	return func(s *Store) {
		s.persistence = p
		s.persistKey = key
	}
}

// WithSignInPolicy replaces the default overwrite-with-remote policy.
func WithSignInPolicy(p SignInPolicy) Option {
	return func(s *Store) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithNotifier sets the toast emitter.
func WithNotifier(n *feedback.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithMetrics sets the operation recorder.
func WithMetrics(m *metrics.Cart) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for guest line ids.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates an empty cart bound to identity and the remote cart table.
func New(identity Identity, remote repository.CartRepository, opts ...Option) *Store {
	s := &Store{
		identity: identity,
		remote:   remote,
		policy:   OverwriteWithRemote{},
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:    time.Now,
		subs:     make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads previously persisted lines, replacing the current ones.
// A missing snapshot leaves the cart empty.
func (s *Store) Restore(ctx context.Context) error {
	if s.persistence == nil || s.persistKey == "" {
		return nil
	}
	lines, err := s.persistence.Load(ctx, s.persistKey)
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}

	s.op.Lock()
	defer s.op.Unlock()
	s.mu.Lock()
	s.lines = cloneLines(lines)
	for _, l := range s.lines {
		if l.ID > s.lastTempID {
			s.lastTempID = l.ID
		}
	}
	s.mu.Unlock()
	s.publish()
	return nil
}

// Items returns a copy of the current lines.
func (s *Store) Items() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.lines)
}

// TotalItems is the sum of quantities, derived on every call.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CountItems(s.lines)
}

// TotalPrice is the sum of price * quantity, derived on every call.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.SumPrice(s.lines)
}

// Loading reports whether a mutation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot returns the current state with derived totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously on the mutating goroutine and must not call back
// into mutating methods.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// AddItem adds candidate to the cart. When a line for the same product
// already exists its quantity is increased instead.
func (s *Store) AddItem(ctx context.Context, candidate model.CartLine) error {
	if candidate.Quantity < 1 {
		return domainErrors.ErrInvalidQuantity
	}

	s.begin()
	defer s.end()

	if existing, ok := s.find(candidate.ProductID); ok {
		return s.updateQuantity(ctx, candidate.ProductID, existing.Quantity+candidate.Quantity)
	}

	userID := s.identity.UserID()
	if userID == 0 {
		line := candidate
		line.ID = s.nextTempID()
		s.mutate(ctx, func(lines []model.CartLine) []model.CartLine { return append(lines, line) })
		s.metrics.Observe("add", modeLocal, nil)
		return nil
	}

	stored, err := s.remote.Insert(ctx, userID, candidate)
	s.metrics.Observe("add", modeRemote, err)
	if err != nil {
		return s.fail(ctx, "Failed to add item to cart", "add cart item", err)
	}
	line := *stored
	line.OwnerID = userID
	s.mutate(ctx, func(lines []model.CartLine) []model.CartLine { return append(lines, line) })
	return nil
}

// RemoveItem drops the line for productID.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	s.begin()
	defer s.end()
	return s.removeItem(ctx, productID)
}

// UpdateQuantity sets the quantity of the line for productID. A quantity
// of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	s.begin()
	defer s.end()
	return s.updateQuantity(ctx, productID, quantity)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.begin()
	defer s.end()

	if userID := s.identity.UserID(); userID != 0 {
		err := s.remote.DeleteAll(ctx, userID)
		s.metrics.Observe("clear", modeRemote, err)
		if err != nil {
			return s.fail(ctx, "Failed to clear cart", "clear cart", err)
		}
	} else {
		s.metrics.Observe("clear", modeLocal, nil)
	}

	s.mutate(ctx, func([]model.CartLine) []model.CartLine { return nil })
	return nil
}

// Sync reconciles the local cart with the remote cart of userID using the
// sign-in policy. A zero userID is a no-op.
func (s *Store) Sync(ctx context.Context, userID int64) error {
	if userID == 0 {
		return nil
	}

	s.begin()
	defer s.end()

	remote, err := s.remote.ListByUser(ctx, userID)
	if err != nil {
		s.metrics.Observe("sync", modeRemote, err)
		return s.fail(ctx, "Failed to sync cart", "sync cart", err)
	}

	s.mu.RLock()
	local := cloneLines(s.lines)
	s.mu.RUnlock()

	resolution := s.policy.Resolve(local, remote)
	lines := ownedBy(resolution.Lines, userID)
	for _, pending := range resolution.Upload {
		stored, err := s.remote.Insert(ctx, userID, pending)
		if err != nil {
			s.metrics.Observe("sync", modeRemote, err)
			return s.fail(ctx, "Failed to sync cart", "sync cart", err)
		}
		uploaded := *stored
		uploaded.OwnerID = userID
		lines = append(lines, uploaded)
	}

	s.metrics.Observe("sync", modeRemote, nil)
	s.mutate(ctx, func([]model.CartLine) []model.CartLine { return lines })
	return nil
}

func (s *Store) removeItem(ctx context.Context, productID int64) error {
	if userID := s.identity.UserID(); userID != 0 {
		err := s.remote.Delete(ctx, userID, productID)
		s.metrics.Observe("remove", modeRemote, err)
		if err != nil {
			return s.fail(ctx, "Failed to remove item from cart", "remove cart item", err)
		}
	} else {
		s.metrics.Observe("remove", modeLocal, nil)
	}

	s.mutate(ctx, func(lines []model.CartLine) []model.CartLine {
		kept := lines[:0]
		for _, l := range lines {
			if l.ProductID != productID {
				kept = append(kept, l)
			}
		}
		return kept
	})
	return nil
}

func (s *Store) updateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return s.removeItem(ctx, productID)
	}

	if userID := s.identity.UserID(); userID != 0 {
		err := s.remote.UpdateQuantity(ctx, userID, productID, quantity)
		s.metrics.Observe("update", modeRemote, err)
		if err != nil {
			return s.fail(ctx, "Failed to update quantity", "update cart quantity", err)
		}
	} else {
		s.metrics.Observe("update", modeLocal, nil)
	}

	s.mutate(ctx, func(lines []model.CartLine) []model.CartLine {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity = quantity
			}
		}
		return lines
	})
	return nil
}

func (s *Store) begin() {
	s.op.Lock()
	s.setLoading(true)
}

func (s *Store) end() {
	s.setLoading(false)
	s.op.Unlock()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.publish()
}

func (s *Store) find(productID int64) (model.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return model.CartLine{}, false
}

// mutate applies fn to a private copy of the lines, installs the result,
// persists it and notifies subscribers.
func (s *Store) mutate(ctx context.Context, fn func([]model.CartLine) []model.CartLine) {
	s.mu.Lock()
	s.lines = fn(cloneLines(s.lines))
	persisted := cloneLines(s.lines)
	s.mu.Unlock()

	s.persist(ctx, persisted)
	s.publish()
}

func (s *Store) persist(ctx context.Context, lines []model.CartLine) {
	if s.persistence == nil || s.persistKey == "" {
		return
	}
	if err := s.persistence.Save(ctx, s.persistKey, lines); err != nil {
		s.logger.Warn("persist cart failed", slog.String("key", s.persistKey), slog.String("error", err.Error()))
	}
}

func (s *Store) publish() {
	snap := s.Snapshot()
	s.subsMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) fail(ctx context.Context, title, op string, err error) error {
	s.logger.Error(op+" failed", slog.Int64("user_id", s.identity.UserID()), slog.String("error", err.Error()))
	s.notifier.Error(ctx, title, err.Error())
	return fmt.Errorf("%s: %w", op, err)
}

// nextTempID derives a guest line id from the clock, bumped past the last
// issued id so that ids stay unique within the cart.
func (s *Store) nextTempID() int64 {
	id := s.clock().UnixMilli()
	s.mu.Lock()
	defer s.mu.Unlock()
	if id <= s.lastTempID {
		id = s.lastTempID + 1
	}
	s.lastTempID = id
	return id
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:      cloneLines(s.lines),
		TotalItems: model.CountItems(s.lines),
		TotalPrice: model.SumPrice(s.lines),
		Loading:    s.loading,
	}
}

func ownedBy(lines []model.CartLine, userID int64) []model.CartLine {
	out := cloneLines(lines)
	for i := range out {
		out[i].OwnerID = userID
	}
	return out
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	if len(lines) == 0 {
		return []model.CartLine{}
	}
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}
