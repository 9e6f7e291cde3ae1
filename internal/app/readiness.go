package app

import (
	"context"
	"fmt"
	"time"
)

// Pinger is satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// Readiness returns a probe that checks the database connection. The probe
// is called on every GET /readyz, so it carries its own short timeout.
func Readiness(db Pinger) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("op=app.Readiness: database ping: %w", err)
		}
		return nil
	}
}
