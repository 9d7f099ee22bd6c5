// Package memory is a process-local implementation of the store interfaces.
// It serializes every owner transaction behind a single mutex, which is only
// sound for a single process; production deployments use store/postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mentorbook/internal/domain"
	"mentorbook/internal/store"
)

type Store struct {
	mu           sync.Mutex
	rules        map[string]domain.RecurrenceRule
	reservations []domain.Reservation
	events       []domain.ReservationEvent
	now          func() time.Time
}

func New() *Store {
	return &Store{
		rules: make(map[string]domain.RecurrenceRule),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) GetRule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecurrenceRule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[ownerID]
	if !ok {
		return domain.RecurrenceRule{}, store.ErrNotFound
	}
	return rule, nil
}

func (s *Store) PutRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecurrenceRule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[rule.OwnerID]; ok {
		return domain.RecurrenceRule{}, store.ErrConflict
	}
	return s.saveRule(rule)
}

func (s *Store) ReplaceRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecurrenceRule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[rule.OwnerID]; !ok {
		return domain.RecurrenceRule{}, store.ErrNotFound
	}
	rule.ID = uuid.Nil
	rule.CreatedAt = time.Time{}
	return s.saveRule(rule)
}

func (s *Store) saveRule(rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	if rule.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.RecurrenceRule{}, err
		}
		rule.ID = id
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = s.now()
	}
	s.rules[rule.OwnerID] = rule
	return rule, nil
}

func (s *Store) CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return countOverlapping(s.reservations, ownerID, window), nil
}

func (s *Store) ListReservations(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for _, r := range s.reservations {
		if r.OwnerID == ownerID && r.State == domain.ReservationAllocated && r.Window.Overlaps(window) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Window.Start.Before(out[j].Window.Start)
	})
	return out, nil
}

func (s *Store) InOwnerTransaction(ctx context.Context, ownerID string, fn func(ctx context.Context, tx store.ReservationTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &ownerTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.reservations = append(s.reservations, tx.reservations...)
	s.events = append(s.events, tx.events...)
	return nil
}

func (s *Store) PendingEvents(ctx context.Context, limit int) ([]domain.ReservationEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ReservationEvent, 0)
	for _, ev := range s.events {
		if ev.PublishedAt != nil {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for i := range s.events {
		if _, ok := marked[s.events[i].ID]; ok && s.events[i].PublishedAt == nil {
			t := at.UTC()
			s.events[i].PublishedAt = &t
		}
	}
	return nil
}

// ownerTx stages writes until InOwnerTransaction commits them. It runs with
// the store mutex already held.
type ownerTx struct {
	store        *Store
	reservations []domain.Reservation
	events       []domain.ReservationEvent
}

func (t *ownerTx) CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return countOverlapping(t.store.reservations, ownerID, window) +
		countOverlapping(t.reservations, ownerID, window), nil
}

func (t *ownerTx) InsertReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, err
	}
	if res.State == domain.ReservationAllocated &&
		countOverlapping(t.store.reservations, res.OwnerID, res.Window)+countOverlapping(t.reservations, res.OwnerID, res.Window) > 0 {
		return domain.Reservation{}, store.ErrConflict
	}

	if res.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Reservation{}, err
		}
		res.ID = id
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = t.store.now()
	}
	t.reservations = append(t.reservations, res)
	return res, nil
}

func (t *ownerTx) EnqueueEvent(ctx context.Context, ev domain.ReservationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		ev.ID = id
	}
	t.events = append(t.events, ev)
	return nil
}

func countOverlapping(reservations []domain.Reservation, ownerID string, window domain.TimeWindow) int {
	n := 0
	for _, r := range reservations {
		if r.OwnerID == ownerID && r.State == domain.ReservationAllocated && r.Window.Overlaps(window) {
			n++
		}
	}
	return n
}
