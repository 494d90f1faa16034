package health

import (
	"context"
	"errors"
)

// Pinger is implemented by the history store backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck reports the store unhealthy when it cannot be reached.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// RunningCheck reports a component unhealthy while running returns false.
func RunningCheck(running func() bool) CheckFunc {
	return func(ctx context.Context) error {
		if !running() {
			return errors.New("not running")
		}
		return nil
	}
}
