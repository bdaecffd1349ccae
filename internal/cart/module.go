package cart

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/config"
)

// Module provides guest cart persistence. Redis is used when an address is
// configured, otherwise lines live in process memory.
var Module = fx.Provide(newPersistence)

type persistenceParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPersistence(p persistenceParams) Persistence {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("guest carts kept in memory")
		return NewMemoryPersistence()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddress,
		Password: p.Config.RedisPassword,
		DB:       p.Config.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				p.Logger.Warn("redis unreachable, guest carts will not survive restarts",
					slog.String("addr", p.Config.RedisAddress),
					slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisPersistence(client, p.Config.GuestCartTTL)
}
