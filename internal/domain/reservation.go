package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationState string

const (
	ReservationDraft     ReservationState = "draft"
	ReservationAvailable ReservationState = "available"
	ReservationAllocated ReservationState = "allocated"
)

type Reservation struct {
	ID        uuid.UUID
	OwnerID   string
	Window    TimeWindow
	State     ReservationState
	CreatedAt time.Time
}

func NewAllocatedReservation(ownerID string, window TimeWindow) Reservation {
	return Reservation{
		OwnerID: ownerID,
		Window:  window.Truncate(),
		State:   ReservationAllocated,
	}
}

type ReservationEventType string

const ReservationAllocatedEvent ReservationEventType = "reservation.allocated"

// ReservationEvent is an outbox record written in the same transaction as
// the reservation it describes.
type ReservationEvent struct {
	ID            uuid.UUID            `json:"id"`
	Type          ReservationEventType `json:"type"`
	ReservationID uuid.UUID            `json:"reservation_id"`
	OwnerID       string               `json:"owner_id"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	OccurredAt    time.Time            `json:"occurred_at"`
	PublishedAt   *time.Time           `json:"-"`
}

func NewReservationAllocated(res Reservation, now time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          ReservationAllocatedEvent,
		ReservationID: res.ID,
		OwnerID:       res.OwnerID,
		StartTime:     res.Window.Start,
		EndTime:       res.Window.End,
		OccurredAt:    now.UTC(),
	}
}
