// Command petshop serves the pet shop storefront: catalog, carts, checkout
// and account pages backed by PostgreSQL and an optional Redis cart cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/polkiloo/petshop/internal/di"
)

func main() {
	// Interrupt and terminate shut the storefront down through its fx stop
	// hooks: HTTP server first, then workers and connections.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storefront := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(),
	)

	if err := run(ctx, storefront); err != nil {
		fmt.Fprintf(os.Stderr, "petshop: %v\n", err)
		os.Exit(1)
	}
}
