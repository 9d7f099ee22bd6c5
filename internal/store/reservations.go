package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mentorbook/internal/domain"
)

type OverlapCounter interface {
	// CountOverlapping counts ALLOCATED reservations of ownerID intersecting
	// window at minute granularity.
	CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error)
}

type ReservationStore interface {
	OverlapCounter

	// InOwnerTransaction runs fn serialized against every other transaction
	// for the same owner. Writes made through tx are committed only when fn
	// returns nil.
	InOwnerTransaction(ctx context.Context, ownerID string, fn func(ctx context.Context, tx ReservationTx) error) error
	ListReservations(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reservation, error)
}

type ReservationTx interface {
	OverlapCounter

	// InsertReservation returns ErrConflict when the window collides with a
	// committed ALLOCATED reservation of the same owner.
	InsertReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	EnqueueEvent(ctx context.Context, ev domain.ReservationEvent) error
}

type OutboxStore interface {
	PendingEvents(ctx context.Context, limit int) ([]domain.ReservationEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
