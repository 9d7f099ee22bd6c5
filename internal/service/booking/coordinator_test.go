package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"mentorbook/internal/domain"
	"mentorbook/internal/store"
	"mentorbook/internal/store/memory"
)

type fakeRuleStore struct {
	getFn     func(ctx context.Context, ownerID string) (domain.RecurrenceRule, error)
	putFn     func(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error)
	replaceFn func(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error)
}

func (f *fakeRuleStore) GetRule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
	if f.getFn == nil {
		panic("GetRule not configured")
	}
	return f.getFn(ctx, ownerID)
}

func (f *fakeRuleStore) PutRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	if f.putFn == nil {
		panic("PutRule not configured")
	}
	return f.putFn(ctx, rule)
}

func (f *fakeRuleStore) ReplaceRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	if f.replaceFn == nil {
		panic("ReplaceRule not configured")
	}
	return f.replaceFn(ctx, rule)
}

type fakeReservationStore struct {
	tx     *fakeTx
	listFn func(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reservation, error)
}

func (f *fakeReservationStore) CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
	return f.tx.CountOverlapping(ctx, ownerID, window)
}

func (f *fakeReservationStore) InOwnerTransaction(ctx context.Context, ownerID string, fn func(ctx context.Context, tx store.ReservationTx) error) error {
	return fn(ctx, f.tx)
}

func (f *fakeReservationStore) ListReservations(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reservation, error) {
	if f.listFn == nil {
		panic("ListReservations not configured")
	}
	return f.listFn(ctx, ownerID, window)
}

type fakeTx struct {
	countFn   func(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error)
	insertFn  func(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	enqueueFn func(ctx context.Context, ev domain.ReservationEvent) error
}

func (f *fakeTx) CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn(ctx, ownerID, window)
}

func (f *fakeTx) InsertReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if f.insertFn == nil {
		res.ID = uuid.MustParse("00000000-0000-0000-0000-000000000301")
		return res, nil
	}
	return f.insertFn(ctx, res)
}

func (f *fakeTx) EnqueueEvent(ctx context.Context, ev domain.ReservationEvent) error {
	if f.enqueueFn == nil {
		return nil
	}
	return f.enqueueFn(ctx, ev)
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error: %v", s, err)
	}
	return v
}

func dailyDefinition(t *testing.T) domain.RuleDefinition {
	t.Helper()
	return domain.RuleDefinition{
		AnchorStart:     mustParse(t, "2024-08-28T12:30:00+03:00"),
		ValidUntil:      mustParse(t, "2024-12-30T13:30:00+03:00"),
		DurationMinutes: 60,
		Kind:            domain.RecurrenceDaily,
		Interval:        2,
	}
}

// renderStub lists the rule and reservation IDs one per line.
func renderStub(rule domain.RecurrenceRule, reservations []domain.Reservation, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("rule " + rule.ID.String() + "\n")
	for _, res := range reservations {
		b.WriteString("reservation " + res.ID.String() + "\n")
	}
	return []byte(b.String())
}

func newMemoryCoordinator(t *testing.T) (*Coordinator, *memory.Store) {
	t.Helper()
	s := memory.New()
	c := NewCoordinator(s, s, renderStub)
	if _, err := c.RegisterRule(context.Background(), "mentor-1", dailyDefinition(t)); err != nil {
		t.Fatalf("RegisterRule error: %v", err)
	}
	return c, s
}

func window(start time.Time, minutes int) domain.TimeWindow {
	return domain.TimeWindow{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

func TestBook_DailyRule(t *testing.T) {
	c, s := newMemoryCoordinator(t)
	ctx := context.Background()
	anchor := mustParse(t, "2024-08-28T12:30:00+03:00")

	start := anchor.AddDate(0, 0, 4)
	res, err := c.Book(ctx, "mentor-1", window(start, 60))
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if !res.Window.Equal(window(start, 60)) {
		t.Fatalf("window = %v..%v, want %v..%v", res.Window.Start, res.Window.End, start, start.Add(time.Hour))
	}
	if res.State != domain.ReservationAllocated || res.ID == uuid.Nil {
		t.Fatalf("reservation = %+v", res)
	}

	pending, err := s.PendingEvents(ctx, 0)
	if err != nil {
		t.Fatalf("PendingEvents error: %v", err)
	}
	if len(pending) != 1 || pending[0].ReservationID != res.ID || pending[0].Type != domain.ReservationAllocatedEvent {
		t.Fatalf("pending = %+v", pending)
	}

	_, err = c.Book(ctx, "mentor-1", window(anchor.AddDate(0, 0, 3), 60))
	if !errors.Is(err, ErrInvalidTimeslot) {
		t.Fatalf("off-interval err = %v, want %v", err, ErrInvalidTimeslot)
	}
}

func TestBook_ReservesOccurrenceForSubWindow(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	anchor := mustParse(t, "2024-08-28T12:30:00+03:00")

	sub := window(anchor.AddDate(0, 0, 2).Add(15*time.Minute), 30)
	res, err := c.Book(context.Background(), "mentor-1", sub)
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	want := window(anchor.AddDate(0, 0, 2), 60)
	if !res.Window.Equal(want) {
		t.Fatalf("window = %v..%v, want occurrence %v..%v", res.Window.Start, res.Window.End, want.Start, want.End)
	}

	_, err = c.Book(context.Background(), "mentor-1", window(want.Start, 60))
	if !errors.Is(err, ErrTimeslotBooked) {
		t.Fatalf("err = %v, want %v", err, ErrTimeslotBooked)
	}
}

func TestBook_RejectsOccurrenceEndingAfterValidUntil(t *testing.T) {
	s := memory.New()
	c := NewCoordinator(s, s, renderStub)
	ctx := context.Background()

	def := dailyDefinition(t)
	def.ValidUntil = mustParse(t, "2024-09-01T13:00:00+03:00")
	if _, err := c.RegisterRule(ctx, "mentor-1", def); err != nil {
		t.Fatalf("RegisterRule error: %v", err)
	}

	slots, err := c.Availability(ctx, "mentor-1", mustParse(t, "2024-09-01T00:00:00+03:00"), mustParse(t, "2024-09-02T00:00:00+03:00"))
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("slots = %+v, want none", slots)
	}

	res, err := c.Book(ctx, "mentor-1", window(mustParse(t, "2024-09-01T12:30:00+03:00"), 30))
	if !errors.Is(err, ErrInvalidTimeslot) {
		t.Fatalf("Book = %+v, %v; want %v", res, err, ErrInvalidTimeslot)
	}
	if n, _ := s.CountOverlapping(ctx, "mentor-1", window(mustParse(t, "2024-09-01T12:30:00+03:00"), 60)); n != 0 {
		t.Fatalf("CountOverlapping = %d, want 0", n)
	}
}

func TestBook_OwnerNotFound(t *testing.T) {
	c := NewCoordinator(memory.New(), memory.New(), renderStub)
	for _, owner := range []string{"", "  ", "nobody"} {
		_, err := c.Book(context.Background(), owner, window(time.Date(2024, 9, 1, 9, 30, 0, 0, time.UTC), 60))
		if !errors.Is(err, ErrOwnerNotFound) {
			t.Fatalf("owner %q err = %v, want %v", owner, err, ErrOwnerNotFound)
		}
	}
}

func TestBook_IdempotentRejection(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	w := window(mustParse(t, "2024-09-01T12:30:00+03:00"), 60)

	if _, err := c.Book(context.Background(), "mentor-1", w); err != nil {
		t.Fatalf("first Book error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Book(context.Background(), "mentor-1", w); !errors.Is(err, ErrTimeslotBooked) {
			t.Fatalf("repeat %d err = %v, want %v", i, err, ErrTimeslotBooked)
		}
	}
}

func TestBook_ConcurrentIdenticalRequestsAllocateOnce(t *testing.T) {
	c, s := newMemoryCoordinator(t)
	w := window(mustParse(t, "2024-09-01T12:30:00+03:00"), 60)

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		booked  int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.Book(context.Background(), "mentor-1", w)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrTimeslotBooked):
				booked++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if success != 1 || booked != callers-1 {
		t.Fatalf("success=%d booked=%d, want 1 and %d", success, booked, callers-1)
	}

	list, err := s.ListReservations(context.Background(), "mentor-1", w)
	if err != nil {
		t.Fatalf("ListReservations error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
}

func TestBook_NoOverlapInvariant(t *testing.T) {
	c, s := newMemoryCoordinator(t)
	anchor := mustParse(t, "2024-08-28T12:30:00+03:00")

	for day := 0; day < 30; day++ {
		for _, offset := range []int{0, 10, 30, 59} {
			start := anchor.AddDate(0, 0, day).Add(time.Duration(offset) * time.Minute)
			_, _ = c.Book(context.Background(), "mentor-1", window(start, 60-offset))
		}
	}

	all, err := s.ListReservations(context.Background(), "mentor-1", domain.TimeWindow{Start: anchor, End: anchor.AddDate(0, 0, 31)})
	if err != nil {
		t.Fatalf("ListReservations error: %v", err)
	}
	if len(all) != 15 {
		t.Fatalf("len(all) = %d, want 15", len(all))
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].Window.Overlaps(all[j].Window) {
				t.Fatalf("reservations %d and %d overlap: %+v %+v", i, j, all[i].Window, all[j].Window)
			}
		}
	}
}

func TestBook_CommitConflictMapsToTimeslotBooked(t *testing.T) {
	rule, err := domain.NewRecurrenceRule("mentor-1", dailyDefinition(t))
	if err != nil {
		t.Fatalf("NewRecurrenceRule error: %v", err)
	}
	rules := &fakeRuleStore{getFn: func(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
		return rule, nil
	}}
	reservations := &fakeReservationStore{tx: &fakeTx{
		insertFn: func(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
			return domain.Reservation{}, store.ErrConflict
		},
	}}

	c := NewCoordinator(rules, reservations, renderStub)
	_, err = c.Book(context.Background(), "mentor-1", window(rule.AnchorStart, 60))
	if !errors.Is(err, ErrTimeslotBooked) {
		t.Fatalf("err = %v, want %v", err, ErrTimeslotBooked)
	}
	if errors.Is(err, store.ErrConflict) {
		t.Fatalf("store sentinel leaked: %v", err)
	}
}

func TestBook_StoreFaultsAreStoreUnavailable(t *testing.T) {
	rule, err := domain.NewRecurrenceRule("mentor-1", dailyDefinition(t))
	if err != nil {
		t.Fatalf("NewRecurrenceRule error: %v", err)
	}
	connErr := errors.New("connection refused")
	okRules := &fakeRuleStore{getFn: func(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
		return rule, nil
	}}

	tests := []struct {
		name         string
		rules        *fakeRuleStore
		reservations *fakeReservationStore
	}{
		{
			name: "rule lookup",
			rules: &fakeRuleStore{getFn: func(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
				return domain.RecurrenceRule{}, connErr
			}},
			reservations: &fakeReservationStore{tx: &fakeTx{}},
		},
		{
			name:  "overlap count",
			rules: okRules,
			reservations: &fakeReservationStore{tx: &fakeTx{
				countFn: func(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
					return 0, connErr
				},
			}},
		},
		{
			name:  "insert",
			rules: okRules,
			reservations: &fakeReservationStore{tx: &fakeTx{
				insertFn: func(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
					return domain.Reservation{}, connErr
				},
			}},
		},
		{
			name:  "outbox",
			rules: okRules,
			reservations: &fakeReservationStore{tx: &fakeTx{
				enqueueFn: func(ctx context.Context, ev domain.ReservationEvent) error {
					return connErr
				},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCoordinator(tt.rules, tt.reservations, renderStub)
			_, err := c.Book(context.Background(), "mentor-1", window(rule.AnchorStart, 60))
			if !errors.Is(err, ErrStoreUnavailable) {
				t.Fatalf("err = %v, want %v", err, ErrStoreUnavailable)
			}
			if !errors.Is(err, connErr) {
				t.Fatalf("err = %v, want cause %v", err, connErr)
			}
			for _, domainErr := range []error{ErrOwnerNotFound, ErrInvalidTimeslot, ErrTimeslotBooked} {
				if errors.Is(err, domainErr) {
					t.Fatalf("err = %v matches domain error %v", err, domainErr)
				}
			}
		})
	}
}

func TestBook_CanceledContextLeavesNothingCommitted(t *testing.T) {
	c, s := newMemoryCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := window(mustParse(t, "2024-09-01T12:30:00+03:00"), 60)
	if _, err := c.Book(ctx, "mentor-1", w); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrStoreUnavailable)
	}

	n, err := s.CountOverlapping(context.Background(), "mentor-1", w)
	if err != nil {
		t.Fatalf("CountOverlapping error: %v", err)
	}
	if n != 0 {
		t.Fatalf("CountOverlapping = %d, want 0", n)
	}
}

func TestRegisterRule(t *testing.T) {
	t.Run("invalid definition", func(t *testing.T) {
		c := NewCoordinator(memory.New(), memory.New(), renderStub)
		def := dailyDefinition(t)
		def.Interval = 0

		_, err := c.RegisterRule(context.Background(), "mentor-1", def)
		if !errors.Is(err, ErrRuleDefinitionInvalid) {
			t.Fatalf("err = %v, want %v", err, ErrRuleDefinitionInvalid)
		}
		var defErr *RuleDefinitionError
		if !errors.As(err, &defErr) {
			t.Fatalf("error type = %T, want *RuleDefinitionError", err)
		}
		if defErr.Error() != "interval must be at least 1" {
			t.Fatalf("message = %q", defErr.Error())
		}
	})

	t.Run("weekly without days", func(t *testing.T) {
		c := NewCoordinator(memory.New(), memory.New(), renderStub)
		def := dailyDefinition(t)
		def.Kind = domain.RecurrenceWeekly

		if _, err := c.RegisterRule(context.Background(), "mentor-1", def); !errors.Is(err, ErrRuleDefinitionInvalid) {
			t.Fatalf("err = %v, want %v", err, ErrRuleDefinitionInvalid)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		c, _ := newMemoryCoordinator(t)
		if _, err := c.RegisterRule(context.Background(), "mentor-1", dailyDefinition(t)); !errors.Is(err, ErrDuplicateRule) {
			t.Fatalf("err = %v, want %v", err, ErrDuplicateRule)
		}
	})

	t.Run("store fault", func(t *testing.T) {
		rules := &fakeRuleStore{putFn: func(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
			return domain.RecurrenceRule{}, context.DeadlineExceeded
		}}
		c := NewCoordinator(rules, &fakeReservationStore{tx: &fakeTx{}}, renderStub)
		_, err := c.RegisterRule(context.Background(), "mentor-1", dailyDefinition(t))
		if !errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrDuplicateRule) {
			t.Fatalf("err = %v, want %v", err, ErrStoreUnavailable)
		}
	})
}

func TestReplaceRule(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	before, err := c.Rule(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("Rule error: %v", err)
	}

	def := dailyDefinition(t)
	def.Interval = 1
	after, err := c.ReplaceRule(ctx, "mentor-1", def)
	if err != nil {
		t.Fatalf("ReplaceRule error: %v", err)
	}
	if after.ID == before.ID || after.Interval != 1 {
		t.Fatalf("after = %+v", after)
	}

	anchor := mustParse(t, "2024-08-28T12:30:00+03:00")
	if _, err := c.Book(ctx, "mentor-1", window(anchor.AddDate(0, 0, 3), 60)); err != nil {
		t.Fatalf("Book on newly valid day error: %v", err)
	}

	if _, err := c.ReplaceRule(ctx, "nobody", def); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrOwnerNotFound)
	}
	def.Interval = -1
	if _, err := c.ReplaceRule(ctx, "mentor-1", def); !errors.Is(err, ErrRuleDefinitionInvalid) {
		t.Fatalf("err = %v, want %v", err, ErrRuleDefinitionInvalid)
	}
}

func TestCheckMoment(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	tests := []struct {
		instant string
		want    bool
	}{
		{instant: "2024-08-30T12:45:00+03:00", want: true},
		{instant: "2024-08-31T12:45:00+03:00", want: false},
		{instant: "2024-08-27T12:45:00+03:00", want: false},
	}
	for _, tt := range tests {
		got, err := c.CheckMoment(ctx, "mentor-1", mustParse(t, tt.instant))
		if err != nil {
			t.Fatalf("CheckMoment(%s) error: %v", tt.instant, err)
		}
		if got != tt.want {
			t.Fatalf("CheckMoment(%s) = %v, want %v", tt.instant, got, tt.want)
		}
	}

	if _, err := c.CheckMoment(ctx, "nobody", time.Now()); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrOwnerNotFound)
	}
}

func TestAvailability_MarksBookedSlots(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	booked := window(mustParse(t, "2024-08-30T12:30:00+03:00"), 60)
	if _, err := c.Book(ctx, "mentor-1", booked); err != nil {
		t.Fatalf("Book error: %v", err)
	}

	slots, err := c.Availability(ctx, "mentor-1", mustParse(t, "2024-08-28T00:00:00+03:00"), mustParse(t, "2024-09-03T00:00:00+03:00"))
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
	for i, want := range []bool{false, true, false} {
		if slots[i].Booked != want {
			t.Fatalf("slots[%d].Booked = %v, want %v", i, slots[i].Booked, want)
		}
	}
	if !slots[1].Window.Equal(booked) {
		t.Fatalf("slots[1] = %+v, want %+v", slots[1].Window, booked)
	}
}

func TestQueryValidation(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()
	from := mustParse(t, "2024-09-01T00:00:00Z")

	tests := []struct {
		name string
		from time.Time
		to   time.Time
	}{
		{name: "inverted", from: from, to: from.Add(-time.Hour)},
		{name: "empty", from: from, to: from},
		{name: "zero", from: time.Time{}, to: from},
		{name: "too long", from: from, to: from.Add(MaxQueryWindow + time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *ValidationError
			if _, err := c.Availability(ctx, "mentor-1", tt.from, tt.to); !errors.As(err, &vErr) {
				t.Fatalf("Availability err = %v, want *ValidationError", err)
			}
			if _, err := c.Reservations(ctx, "mentor-1", tt.from, tt.to); !errors.As(err, &vErr) {
				t.Fatalf("Reservations err = %v, want *ValidationError", err)
			}
			if _, err := c.ExportCalendar(ctx, "mentor-1", tt.from, tt.to); !errors.As(err, &vErr) {
				t.Fatalf("ExportCalendar err = %v, want *ValidationError", err)
			}
		})
	}
}

func TestReservationsAndExport(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	w := window(mustParse(t, "2024-09-01T12:30:00+03:00"), 60)
	res, err := c.Book(ctx, "mentor-1", w)
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	from := mustParse(t, "2024-09-01T00:00:00+03:00")
	to := mustParse(t, "2024-09-02T00:00:00+03:00")

	list, err := c.Reservations(ctx, "mentor-1", from, to)
	if err != nil {
		t.Fatalf("Reservations error: %v", err)
	}
	if len(list) != 1 || list[0].ID != res.ID {
		t.Fatalf("list = %+v", list)
	}

	ics, err := c.ExportCalendar(ctx, "mentor-1", from, to)
	if err != nil {
		t.Fatalf("ExportCalendar error: %v", err)
	}
	body := string(ics)
	if !strings.Contains(body, "rule ") || !strings.Contains(body, "reservation "+res.ID.String()) {
		t.Fatalf("unexpected export:\n%s", body)
	}

	if _, err := c.ExportCalendar(ctx, "nobody", from, to); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrOwnerNotFound)
	}
}

func TestOverlapGuard(t *testing.T) {
	var got domain.TimeWindow
	guard := NewOverlapGuard(&fakeTx{countFn: func(ctx context.Context, ownerID string, w domain.TimeWindow) (int, error) {
		got = w
		return 2, nil
	}})

	w := domain.TimeWindow{
		Start: time.Date(2024, 9, 1, 9, 30, 45, 0, time.UTC),
		End:   time.Date(2024, 9, 1, 10, 30, 15, 0, time.UTC),
	}
	conflict, err := guard.HasConflict(context.Background(), "mentor-1", w)
	if err != nil {
		t.Fatalf("HasConflict error: %v", err)
	}
	if !conflict {
		t.Fatalf("conflict = false, want true")
	}
	if got.Start.Second() != 0 || got.End.Second() != 0 {
		t.Fatalf("window not truncated: %+v", got)
	}
}
