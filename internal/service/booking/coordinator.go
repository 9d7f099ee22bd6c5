package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"mentorbook/internal/domain"
	"mentorbook/internal/store"
)

// MaxQueryWindow bounds availability, listing and export ranges.
const MaxQueryWindow = 366 * 24 * time.Hour

// CalendarRenderer turns a rule and its reservations into a calendar
// document. now stamps the generated entries.
type CalendarRenderer func(rule domain.RecurrenceRule, reservations []domain.Reservation, now time.Time) []byte

type Coordinator struct {
	rules        store.RecurrenceRuleStore
	reservations store.ReservationStore
	render       CalendarRenderer
	now          func() time.Time
}

func NewCoordinator(rules store.RecurrenceRuleStore, reservations store.ReservationStore, render CalendarRenderer) *Coordinator {
	return &Coordinator{
		rules:        rules,
		reservations: reservations,
		render:       render,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Slot is one previewed occurrence and whether an ALLOCATED reservation
// already overlaps it.
type Slot struct {
	Window domain.TimeWindow
	Booked bool
}

// Book allocates the occurrence that contains requested.
func (c *Coordinator) Book(ctx context.Context, ownerID string, requested domain.TimeWindow) (domain.Reservation, error) {
	rule, err := c.resolveRule(ctx, ownerID)
	if err != nil {
		return domain.Reservation{}, err
	}

	occurrence, err := matchOccurrence(rule, requested)
	if err != nil {
		return domain.Reservation{}, err
	}

	var booked domain.Reservation
	err = c.reservations.InOwnerTransaction(ctx, rule.OwnerID, func(ctx context.Context, tx store.ReservationTx) error {
		conflict, err := NewOverlapGuard(tx).HasConflict(ctx, rule.OwnerID, occurrence)
		if err != nil {
			return err
		}
		if conflict {
			return ErrTimeslotBooked
		}

		res, err := tx.InsertReservation(ctx, domain.NewAllocatedReservation(rule.OwnerID, occurrence))
		if err != nil {
			return err
		}
		if err := tx.EnqueueEvent(ctx, domain.NewReservationAllocated(res, c.now())); err != nil {
			return err
		}
		booked = res
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTimeslotBooked), errors.Is(err, store.ErrConflict):
			return domain.Reservation{}, ErrTimeslotBooked
		default:
			return domain.Reservation{}, storeUnavailable(err)
		}
	}
	return booked, nil
}

func (c *Coordinator) RegisterRule(ctx context.Context, ownerID string, def domain.RuleDefinition) (domain.RecurrenceRule, error) {
	rule, err := domain.NewRecurrenceRule(ownerID, def)
	if err != nil {
		return domain.RecurrenceRule{}, &RuleDefinitionError{msg: err.Error()}
	}

	saved, err := c.rules.PutRule(ctx, rule)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.RecurrenceRule{}, ErrDuplicateRule
		}
		return domain.RecurrenceRule{}, storeUnavailable(err)
	}
	return saved, nil
}

// ReplaceRule swaps the owner's rule for a newly validated one. Reservations
// already allocated are left untouched.
func (c *Coordinator) ReplaceRule(ctx context.Context, ownerID string, def domain.RuleDefinition) (domain.RecurrenceRule, error) {
	rule, err := domain.NewRecurrenceRule(ownerID, def)
	if err != nil {
		return domain.RecurrenceRule{}, &RuleDefinitionError{msg: err.Error()}
	}

	saved, err := c.rules.ReplaceRule(ctx, rule)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RecurrenceRule{}, ErrOwnerNotFound
		}
		return domain.RecurrenceRule{}, storeUnavailable(err)
	}
	return saved, nil
}

func (c *Coordinator) Rule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
	return c.resolveRule(ctx, ownerID)
}

func (c *Coordinator) CheckMoment(ctx context.Context, ownerID string, instant time.Time) (bool, error) {
	rule, err := c.resolveRule(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return rule.MatchesMoment(instant), nil
}

func (c *Coordinator) Availability(ctx context.Context, ownerID string, from, to time.Time) ([]Slot, error) {
	window, err := queryWindow(from, to)
	if err != nil {
		return nil, err
	}
	rule, err := c.resolveRule(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	occurrences := rule.Occurrences(window.Start, window.End)
	if len(occurrences) == 0 {
		return []Slot{}, nil
	}

	span := domain.TimeWindow{Start: occurrences[0].Start, End: occurrences[len(occurrences)-1].End}
	reserved, err := c.reservations.ListReservations(ctx, rule.OwnerID, span)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	slots := make([]Slot, 0, len(occurrences))
	for _, occ := range occurrences {
		slot := Slot{Window: occ}
		for _, res := range reserved {
			if res.Window.Overlaps(occ) {
				slot.Booked = true
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (c *Coordinator) Reservations(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Reservation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, validationError("owner_id is required")
	}
	window, err := queryWindow(from, to)
	if err != nil {
		return nil, err
	}

	out, err := c.reservations.ListReservations(ctx, ownerID, window)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return out, nil
}

// ExportCalendar renders the owner's rule and the reservations in
// [from, to) as an iCalendar document.
func (c *Coordinator) ExportCalendar(ctx context.Context, ownerID string, from, to time.Time) ([]byte, error) {
	window, err := queryWindow(from, to)
	if err != nil {
		return nil, err
	}
	rule, err := c.resolveRule(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	reserved, err := c.reservations.ListReservations(ctx, rule.OwnerID, window)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return c.render(rule, reserved, c.now()), nil
}

func (c *Coordinator) resolveRule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
	if strings.TrimSpace(ownerID) == "" {
		return domain.RecurrenceRule{}, ErrOwnerNotFound
	}

	rule, err := c.rules.GetRule(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RecurrenceRule{}, ErrOwnerNotFound
		}
		return domain.RecurrenceRule{}, storeUnavailable(err)
	}
	return rule, nil
}

func matchOccurrence(rule domain.RecurrenceRule, requested domain.TimeWindow) (domain.TimeWindow, error) {
	occurrence, ok := rule.OccurrenceWindow(requested.Start, requested.End)
	if !ok {
		return domain.TimeWindow{}, ErrInvalidTimeslot
	}
	return occurrence, nil
}

func queryWindow(from, to time.Time) (domain.TimeWindow, error) {
	if from.IsZero() || to.IsZero() {
		return domain.TimeWindow{}, validationError("from and to are required")
	}
	if !to.After(from) {
		return domain.TimeWindow{}, validationError("to must be after from")
	}
	if to.Sub(from) > MaxQueryWindow {
		return domain.TimeWindow{}, validationError("window must not exceed 366 days")
	}
	return domain.TimeWindow{Start: from, End: to}, nil
}
