// Package session keeps per-visitor state between requests: who the visitor
// is signed in as and the cart they are building.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/petshop/internal/cart"
	"github.com/polkiloo/petshop/internal/domain/repository"
	"github.com/polkiloo/petshop/internal/feedback"
	"github.com/polkiloo/petshop/internal/metrics"
)

const persistPrefix = "session:"

// Session is one visitor. It is the cart's identity source.
type Session struct {
	ID string

	// ready is closed once the persisted cart has been restored.
	ready chan struct{}

	mu       sync.RWMutex
	userID   int64
	lastSeen time.Time

	cart *cart.Store
}

// UserID returns the signed-in user or zero for a guest.
func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Cart returns the visitor's cart.
func (s *Session) Cart() *cart.Store {
	return s.cart
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

// Manager owns live sessions.
type Manager struct {
	carts       repository.CartRepository
	persistence cart.Persistence
	policy      cart.SignInPolicy
	notifier    *feedback.Notifier
	metrics     *metrics.Cart
	logger      *slog.Logger
	idleTimeout time.Duration
	clock       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPersistence keeps cart lines across restarts.
func WithPersistence(p cart.Persistence) Option {
	return func(m *Manager) { m.persistence = p }
}

// WithSignInPolicy selects how guest lines are treated at sign-in.
func WithSignInPolicy(p cart.SignInPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithNotifier sets the toast emitter handed to every cart.
func WithNotifier(n *feedback.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithMetrics sets the cart operation recorder.
func WithMetrics(c *metrics.Cart) Option {
	return func(m *Manager) { m.metrics = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIdleTimeout sets after how long an untouched session is dropped.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager creates a Manager writing signed-in carts to carts.
func NewManager(carts repository.CartRepository, opts ...Option) *Manager {
	m := &Manager{
		carts:    carts,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:    time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve returns the session for id, creating it when id is empty,
// malformed or unknown. A new session for a well-formed id restores the
// cart persisted under it; concurrent callers for the same id wait until
// the restore has finished.
func (m *Manager) Resolve(ctx context.Context, id string) *Session {
	now := m.clock()
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = m.newSession(id, now)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	if ok {
		<-s.ready
		s.touch(now)
		return s
	}

	if err := s.cart.Restore(ctx); err != nil {
		m.logger.Warn("restore session cart failed", slog.String("session", id), slog.String("error", err.Error()))
	}
	close(s.ready)
	return s
}

func (m *Manager) newSession(id string, now time.Time) *Session {
	s := &Session{ID: id, ready: make(chan struct{}), lastSeen: now}
	opts := []cart.Option{
		cart.WithSignInPolicy(m.policy),
		cart.WithNotifier(m.notifier),
		cart.WithMetrics(m.metrics),
		cart.WithLogger(m.logger),
		cart.WithClock(m.clock),
	}
	if m.persistence != nil {
		opts = append(opts, cart.WithPersistence(m.persistence, persistPrefix+id))
	}
	s.cart = cart.New(s, m.carts, opts...)
	return s
}

// SignIn binds s to userID and reconciles its cart with the remote cart.
// Signing in again as the same user does not sync twice. When the sync
// fails the previous identity is restored so the next request retries.
func (m *Manager) SignIn(ctx context.Context, s *Session, userID int64) error {
	s.mu.Lock()
	previous := s.userID
	s.userID = userID
	s.mu.Unlock()

	if previous == userID || userID == 0 {
		return nil
	}
	if err := s.cart.Sync(ctx, userID); err != nil {
		s.mu.Lock()
		s.userID = previous
		s.mu.Unlock()
		return err
	}
	return nil
}

// SignOut turns s back into a guest. The local lines stay in place.
func (m *Manager) SignOut(s *Session) {
	s.mu.Lock()
	s.userID = 0
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns
// how many were removed. Persisted carts are kept so a returning visitor
// gets their cart back.
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.idleTimeout {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("idle sessions dropped", slog.Int("count", n))
			}
		}
	}
}
