package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// Persistence keeps the local copy of a cart across process restarts.
// Load of an unknown key returns an empty slice.
type Persistence interface {
	Load(ctx context.Context, key string) ([]model.CartLine, error)
	Save(ctx context.Context, key string, lines []model.CartLine) error
	Delete(ctx context.Context, key string) error
}

// MemoryPersistence keeps carts in process memory.
type MemoryPersistence struct {
	mu    sync.RWMutex
	carts map[string][]model.CartLine
}

// NewMemoryPersistence creates an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{carts: make(map[string][]model.CartLine)}
}

// Load implements Persistence.
func (m *MemoryPersistence) Load(_ context.Context, key string) ([]model.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneLines(m.carts[key]), nil
}

// Save implements Persistence.
func (m *MemoryPersistence) Save(_ context.Context, key string, lines []model.CartLine) error {
	m.mu.Lock()
	m.carts[key] = cloneLines(lines)
	m.mu.Unlock()
	return nil
}

// Delete implements Persistence.
func (m *MemoryPersistence) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.carts, key)
	m.mu.Unlock()
	return nil
}

// RedisPersistence stores carts as JSON documents with a sliding TTL.
type RedisPersistence struct {
	client  redis.UniversalClient
	baseTTL time.Duration
	jitter  time.Duration
}

// NewRedisPersistence builds a Redis-backed persistence. A non-positive ttl
// keeps keys without expiry.
func NewRedisPersistence(client redis.UniversalClient, ttl time.Duration) *RedisPersistence {
	jitter := time.Duration(0)
	if ttl > 0 {
		jitter = ttl / 20
	}
	return &RedisPersistence{client: client, baseTTL: ttl, jitter: jitter}
}

type storedCart struct {
	Items     []model.CartLine `json:"items"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Load implements Persistence.
func (r *RedisPersistence) Load(ctx context.Context, key string) ([]model.CartLine, error) {
	data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var doc storedCart
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return cloneLines(doc.Items), nil
}

// Save implements Persistence.
func (r *RedisPersistence) Save(ctx context.Context, key string, lines []model.CartLine) error {
	data, err := json.Marshal(storedCart{Items: lines, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(key), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete implements Persistence.
func (r *RedisPersistence) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisPersistence) ttl() time.Duration {
	if r.baseTTL <= 0 {
		return 0
	}
	if r.jitter <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + time.Duration(rand.Int63n(int64(r.jitter)))
}

func cacheKey(key string) string {
	return "cart:" + key
}
