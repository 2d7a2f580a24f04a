package app

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/order"
	"github.com/xenking/shop-api/internal/domain/user"
	"github.com/xenking/shop-api/internal/storage/postgres"
	"github.com/xenking/shop-api/internal/storage/sqlite"
	"github.com/xenking/shop-api/pkg/health"
)

// Storage bundles the repositories of the configured driver.
type Storage struct {
	Users  user.Repository
	Items  item.Repository
	Carts  cart.Repository
	Orders order.Repository

	// Ping checks database connectivity.
	Ping  health.Func
	close func()
}

// Close releases the underlying connections.
func (s *Storage) Close() {
	s.close()
}

// OpenStorage connects to the configured database and applies migrations.
func OpenStorage(ctx context.Context, cfg StorageConfig) (*Storage, error) {
	switch cfg.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &Storage{
			Users:  postgres.NewUserRepository(pool),
			Items:  postgres.NewItemRepository(pool),
			Carts:  postgres.NewCartRepository(pool),
			Orders: postgres.NewOrderRepository(pool),
			Ping:   health.Ping(pool),
			close:  pool.Close,
		}, nil
	case DriverSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		if err := sqlite.RunMigrations(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &Storage{
			Users:  sqlite.NewUserRepository(conn),
			Items:  sqlite.NewItemRepository(conn),
			Carts:  sqlite.NewCartRepository(conn),
			Orders: sqlite.NewOrderRepository(conn),
			Ping:   conn.PingContext,
			close:  func() { _ = conn.Close() },
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// newHealth registers the storage readiness check and the liveness checks.
// The event broker is best-effort and never gates readiness.
func newHealth(driver string, store *Storage) *health.Service {
	s := health.New()
	s.Add(health.Check{Name: driver, Kind: health.Readiness, Timeout: 5 * time.Second, Func: store.Ping})
	s.Add(health.Check{Name: "goroutines", Kind: health.Liveness, Func: health.Goroutines(10000)})
	return s
}
