package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"mentorbook/internal/domain"
)

type recurrenceRuleModel struct {
	bun.BaseModel `bun:"table:recurrence_rules"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID          string    `bun:"owner_id,notnull"`
	AnchorStart      time.Time `bun:"anchor_start,notnull"`
	TimeZone         string    `bun:"time_zone,notnull"`
	UTCOffsetSeconds int       `bun:"utc_offset_seconds,notnull"`
	DurationMinutes  int       `bun:"duration_minutes,notnull"`
	Kind             string    `bun:"kind,notnull"`
	Interval         int       `bun:"repeat_interval,notnull"`
	ValidUntil       time.Time `bun:"valid_until,notnull"`
	WeekDays         []int16   `bun:"week_days,array,notnull"`
	MonthDays        []int16   `bun:"month_days,array,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
	UpdatedAt        time.Time `bun:"updated_at,notnull"`
}

func (m *recurrenceRuleModel) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if m.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			m.ID = id
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		m.UpdatedAt = now
	}
	return nil
}

func toRuleModel(r domain.RecurrenceRule) recurrenceRuleModel {
	tz, offset := zoneOf(r.AnchorStart)

	weekDays := make([]int16, 0, r.WeekDays.Len())
	for _, d := range r.WeekDays.Weekdays() {
		weekDays = append(weekDays, isoWeekday(d))
	}
	monthDays := make([]int16, 0, r.MonthDays.Len())
	for _, d := range r.MonthDays.Days() {
		monthDays = append(monthDays, int16(d))
	}

	return recurrenceRuleModel{
		ID:               r.ID,
		OwnerID:          r.OwnerID,
		AnchorStart:      r.AnchorStart,
		TimeZone:         tz,
		UTCOffsetSeconds: offset,
		DurationMinutes:  r.DurationMinutes,
		Kind:             string(r.Kind),
		Interval:         r.Interval,
		ValidUntil:       r.ValidUntil,
		WeekDays:         weekDays,
		MonthDays:        monthDays,
		CreatedAt:        r.CreatedAt,
	}
}

// toDomainRule rebuilds the rule through the domain constructor so stored
// rows that violate rule invariants surface as errors.
func toDomainRule(m recurrenceRuleModel) (domain.RecurrenceRule, error) {
	loc, err := restoreLocation(m.TimeZone, m.UTCOffsetSeconds)
	if err != nil {
		return domain.RecurrenceRule{}, err
	}

	weekdays := make([]time.Weekday, 0, len(m.WeekDays))
	for _, d := range m.WeekDays {
		weekdays = append(weekdays, fromISOWeekday(d))
	}
	days := make([]int, 0, len(m.MonthDays))
	for _, d := range m.MonthDays {
		days = append(days, int(d))
	}
	monthDays, err := domain.NewMonthDaySet(days...)
	if err != nil {
		return domain.RecurrenceRule{}, err
	}

	rule, err := domain.NewRecurrenceRule(m.OwnerID, domain.RuleDefinition{
		AnchorStart:     m.AnchorStart.In(loc),
		DurationMinutes: m.DurationMinutes,
		Kind:            domain.RecurrenceKind(m.Kind),
		Interval:        m.Interval,
		ValidUntil:      m.ValidUntil.In(loc),
		WeekDays:        domain.NewWeekdaySet(weekdays...),
		MonthDays:       monthDays,
	})
	if err != nil {
		return domain.RecurrenceRule{}, err
	}
	rule.ID = m.ID
	rule.CreatedAt = m.CreatedAt.UTC()
	return rule, nil
}

type reservationModel struct {
	bun.BaseModel `bun:"table:reservations"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID   string    `bun:"owner_id,notnull"`
	StartTime time.Time `bun:"start_time,notnull"`
	EndTime   time.Time `bun:"end_time,notnull"`
	State     string    `bun:"state,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (m *reservationModel) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}

func toReservationModel(r domain.Reservation) reservationModel {
	w := r.Window.Truncate()
	return reservationModel{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		StartTime: w.Start,
		EndTime:   w.End,
		State:     string(r.State),
		CreatedAt: r.CreatedAt,
	}
}

func toDomainReservation(m reservationModel) domain.Reservation {
	return domain.Reservation{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Window:    domain.TimeWindow{Start: m.StartTime.UTC(), End: m.EndTime.UTC()},
		State:     domain.ReservationState(m.State),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type reservationEventModel struct {
	bun.BaseModel `bun:"table:reservation_events"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	Type          string     `bun:"type,notnull"`
	ReservationID uuid.UUID  `bun:"reservation_id,notnull,type:uuid"`
	OwnerID       string     `bun:"owner_id,notnull"`
	StartTime     time.Time  `bun:"start_time,notnull"`
	EndTime       time.Time  `bun:"end_time,notnull"`
	OccurredAt    time.Time  `bun:"occurred_at,notnull"`
	PublishedAt   *time.Time `bun:"published_at"`
}

func (m *reservationEventModel) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now().UTC()
	}
	return nil
}

func toEventModel(ev domain.ReservationEvent) reservationEventModel {
	return reservationEventModel{
		ID:            ev.ID,
		Type:          string(ev.Type),
		ReservationID: ev.ReservationID,
		OwnerID:       ev.OwnerID,
		StartTime:     ev.StartTime,
		EndTime:       ev.EndTime,
		OccurredAt:    ev.OccurredAt,
		PublishedAt:   ev.PublishedAt,
	}
}

func toDomainEvent(m reservationEventModel) domain.ReservationEvent {
	return domain.ReservationEvent{
		ID:            m.ID,
		Type:          domain.ReservationEventType(m.Type),
		ReservationID: m.ReservationID,
		OwnerID:       m.OwnerID,
		StartTime:     m.StartTime.UTC(),
		EndTime:       m.EndTime.UTC(),
		OccurredAt:    m.OccurredAt.UTC(),
		PublishedAt:   m.PublishedAt,
	}
}

// zoneOf returns an IANA name when the anchor's location can be reloaded by
// name, otherwise the fixed offset in effect at t.
func zoneOf(t time.Time) (string, int) {
	loc := t.Location()
	_, offset := t.Zone()
	if loc == time.UTC {
		return "UTC", 0
	}
	name := loc.String()
	if name == "" || name == "Local" {
		return "", offset
	}
	if _, err := time.LoadLocation(name); err != nil {
		return "", offset
	}
	return name, offset
}

func restoreLocation(name string, offsetSeconds int) (*time.Location, error) {
	if name == "" {
		return time.FixedZone("", offsetSeconds), nil
	}
	return time.LoadLocation(name)
}

func isoWeekday(d time.Weekday) int16 {
	if d == time.Sunday {
		return 7
	}
	return int16(d)
}

func fromISOWeekday(d int16) time.Weekday {
	if d == 7 {
		return time.Sunday
	}
	return time.Weekday(d)
}
