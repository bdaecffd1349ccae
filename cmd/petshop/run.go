package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// run starts the storefront, waits for a signal or an fx shutdown and then
// stops it. Stop hooks bound themselves with SHUTDOWN_TIMEOUT.
func run(ctx context.Context, storefront *fx.App) error {
	startCtx, cancel := context.WithTimeout(ctx, storefront.StartTimeout())
	defer cancel()
	if err := storefront.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start storefront: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-storefront.Done():
	}

	if err := storefront.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop storefront: %w", err)
	}
	return nil
}
