package booking

import (
	"context"

	"mentorbook/internal/domain"
	"mentorbook/internal/store"
)

// OverlapGuard answers whether a window collides with an ALLOCATED
// reservation of the same owner. It never writes.
type OverlapGuard struct {
	counter store.OverlapCounter
}

func NewOverlapGuard(counter store.OverlapCounter) OverlapGuard {
	return OverlapGuard{counter: counter}
}

func (g OverlapGuard) HasConflict(ctx context.Context, ownerID string, window domain.TimeWindow) (bool, error) {
	n, err := g.counter.CountOverlapping(ctx, ownerID, window.Truncate())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
