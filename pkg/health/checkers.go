package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// Goroutines fails when more than limit goroutines are running, which
// usually means a leak.
func Goroutines(limit int) Func {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds %d", n, limit)
		}
		return nil
	}
}

// Pinger is implemented by storage handles such as *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks a dependency that can be pinged.
func Ping(p Pinger) Func {
	return p.Ping
}
