package chrono

import (
	"context"
	"time"
)

// TimeAPI is the interface anything that waits or reads the clock should depend on,
// so that poll loops and backoffs can be tested without actually sleeping.
type TimeAPI interface {
	Now() time.Time
	// Sleep blocks for the given duration or until the context is done, in which
	// case it returns the context's error.
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardImpl is the TimeAPI backed by the real clock.
type StandardImpl struct{}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

func (StandardImpl) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
