package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"scopehound/pkg/monitor"
)

// Coordinator fans scans out across tenants and collapses concurrent
// triggers for the same tenant into one scan.
type Coordinator struct {
	scanner     *Scanner
	store       Store
	multiTenant bool
	concurrency int
	inflight    singleflight.Group
	logger      *slog.Logger
}

// NewCoordinator creates a coordinator. Concurrency below 1 runs tenants sequentially.
func NewCoordinator(scanner *Scanner, store Store, multiTenant bool, concurrency int, logger *slog.Logger) *Coordinator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Coordinator{
		scanner:     scanner,
		store:       store,
		multiTenant: multiTenant,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Tick scans every active tenant once (a single scan in single-tenant mode)
// and returns the total number of alerts produced.
func (c *Coordinator) Tick(ctx context.Context) (int, error) {
	tenants := []string{""}
	if c.multiTenant {
		listed, err := c.store.ListTenants(ctx)
		if err != nil {
			return 0, fmt.Errorf("list tenants: %w", err)
		}
		tenants = listed
	}
	c.logger.Info("Scheduled scan starting", "tenants", len(tenants), "concurrency", c.concurrency)

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, tenant := range tenants {
		g.Go(func() error {
			n, err := c.Trigger(gctx, tenant, nil)
			if err != nil {
				return fmt.Errorf("tenant %q: %w", tenant, err)
			}
			total.Add(int64(n))
			return nil
		})
	}
	err := g.Wait()

	c.logger.Info("Scheduled scan completed", "tenants", len(tenants), "alerts", total.Load(), "error", err)
	return int(total.Load()), err
}

// Trigger runs one scan for a tenant and returns its alert count.
//
// Triggers without an override that arrive while the tenant's scan is in
// flight share that scan's result. The shared scan is detached from any one
// caller's cancellation; a cancelled caller stops waiting and gets ctx.Err().
// A trigger with an override always runs its own scan under ctx, since its
// configuration differs from the stored one.
func (c *Coordinator) Trigger(ctx context.Context, tenant string, override *monitor.Config) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if override != nil {
		res, err := c.scanner.Run(ctx, override, tenant)
		if err != nil {
			return 0, err
		}
		return res.AlertsSent(), nil
	}

	ch := c.inflight.DoChan(tenant, func() (any, error) {
		return c.scanner.Run(context.WithoutCancel(ctx), nil, tenant)
	})
	select {
	case <-ctx.Done():
		c.logger.Info("Stopped waiting for scan", "tenant", tenant, "error", ctx.Err())
		return 0, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return 0, r.Err
		}
		if r.Shared {
			c.logger.Debug("Joined in-flight scan", "tenant", tenant)
		}
		return r.Val.(*Result).AlertsSent(), nil
	}
}
