package domain

import (
	"errors"
	"math/bits"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RecurrenceKind string

const (
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
)

const MaxDurationMinutes = 24 * 60

func ParseRecurrenceKind(s string) (RecurrenceKind, error) {
	switch k := RecurrenceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return k, nil
	}
	return "", errors.New("invalid recurrence kind")
}

// WeekdaySet is a bitmask of time.Weekday values. It is a value type so a
// copied rule never shares day state with the original.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			continue
		}
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Weekdays lists the members Monday first.
func (s WeekdaySet) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, s.Len())
	for i := 0; i < 7; i++ {
		d := time.Weekday((i + 1) % 7)
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// MonthDaySet is a bitmask of days of the month, bit n for day n (1..31).
type MonthDaySet uint32

func NewMonthDaySet(days ...int) (MonthDaySet, error) {
	var s MonthDaySet
	for _, d := range days {
		if d < 1 || d > 31 {
			return 0, errors.New("invalid day of month")
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

func (s MonthDaySet) Has(day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	return s&(1<<uint(day)) != 0
}

func (s MonthDaySet) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s MonthDaySet) Days() []int {
	out := make([]int, 0, s.Len())
	for d := 1; d <= 31; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// RuleDefinition is the caller-supplied shape of a recurrence rule.
type RuleDefinition struct {
	AnchorStart     time.Time
	DurationMinutes int
	Kind            RecurrenceKind
	Interval        int
	ValidUntil      time.Time
	WeekDays        WeekdaySet
	MonthDays       MonthDaySet
}

func (d RuleDefinition) Validate() error {
	switch d.Kind {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
	default:
		return errors.New("invalid recurrence kind")
	}
	if d.Interval < 1 {
		return errors.New("interval must be at least 1")
	}
	if d.DurationMinutes < 1 || d.DurationMinutes > MaxDurationMinutes {
		return errors.New("duration must be between 1 and 1440 minutes")
	}
	if d.AnchorStart.IsZero() || d.ValidUntil.IsZero() {
		return errors.New("anchor_start and valid_until are required")
	}
	if !TruncateToMinute(d.AnchorStart).Before(TruncateToMinute(d.ValidUntil)) {
		return errors.New("anchor_start must be before valid_until")
	}

	weekly := d.Kind == RecurrenceWeekly
	monthly := d.Kind == RecurrenceMonthly
	if weekly && d.WeekDays.Len() == 0 {
		return errors.New("week_days is required for weekly rules")
	}
	if !weekly && d.WeekDays.Len() > 0 {
		return errors.New("week_days is only allowed for weekly rules")
	}
	if monthly && d.MonthDays.Len() == 0 {
		return errors.New("month_days is required for monthly rules")
	}
	if !monthly && d.MonthDays.Len() > 0 {
		return errors.New("month_days is only allowed for monthly rules")
	}
	return nil
}

// RecurrenceRule is an owner's recurring availability. Values are built by
// NewRecurrenceRule and replaced wholesale, never edited in place.
type RecurrenceRule struct {
	ID      uuid.UUID
	OwnerID string
	RuleDefinition
	CreatedAt time.Time
}

func NewRecurrenceRule(ownerID string, def RuleDefinition) (RecurrenceRule, error) {
	if strings.TrimSpace(ownerID) == "" {
		return RecurrenceRule{}, errors.New("owner_id is required")
	}
	if err := def.Validate(); err != nil {
		return RecurrenceRule{}, err
	}

	def.AnchorStart = TruncateToMinute(def.AnchorStart)
	def.ValidUntil = TruncateToMinute(def.ValidUntil.In(def.AnchorStart.Location()))

	return RecurrenceRule{OwnerID: ownerID, RuleDefinition: def}, nil
}

func (r RecurrenceRule) Location() *time.Location {
	return r.AnchorStart.Location()
}

func (r RecurrenceRule) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

// OccurrenceWindow returns the occurrence that fully contains
// [requestedStart, requestedEnd] and ends at or before ValidUntil, or false
// when there is none.
func (r RecurrenceRule) OccurrenceWindow(requestedStart, requestedEnd time.Time) (TimeWindow, bool) {
	if r.Interval < 1 {
		return TimeWindow{}, false
	}
	loc := r.Location()
	start := TruncateToMinute(requestedStart.In(loc))
	end := TruncateToMinute(requestedEnd.In(loc))
	if !start.Before(end) || end.After(r.ValidUntil) {
		return TimeWindow{}, false
	}

	days := daysBetween(r.AnchorStart, start)
	if days < 0 {
		return TimeWindow{}, false
	}
	if !r.dayMatches(start) || !r.dayMatches(end) || !r.intervalMatches(start, days) {
		return TimeWindow{}, false
	}

	occStart := r.AnchorStart.AddDate(0, 0, days)
	candidate := TimeWindow{Start: occStart, End: occStart.Add(r.Duration())}
	if candidate.End.After(r.ValidUntil) {
		return TimeWindow{}, false
	}
	if !candidate.Contains(TimeWindow{Start: start, End: end}) {
		return TimeWindow{}, false
	}
	return candidate, true
}

// MatchesMoment applies the per-kind day and interval test to a single
// instant within [anchor date, ValidUntil).
func (r RecurrenceRule) MatchesMoment(instant time.Time) bool {
	if r.Interval < 1 {
		return false
	}
	t := TruncateToMinute(instant.In(r.Location()))
	if !t.Before(r.ValidUntil) {
		return false
	}
	days := daysBetween(r.AnchorStart, t)
	if days < 0 {
		return false
	}
	return r.dayMatches(t) && r.intervalMatches(t, days)
}

func (r RecurrenceRule) dayMatches(t time.Time) bool {
	switch r.Kind {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return r.WeekDays.Has(t.Weekday())
	case RecurrenceMonthly:
		return r.MonthDays.Has(t.Day())
	}
	return false
}

func (r RecurrenceRule) intervalMatches(t time.Time, days int) bool {
	switch r.Kind {
	case RecurrenceDaily:
		return days%r.Interval == 0
	case RecurrenceWeekly:
		weeks := daysBetween(mondayDate(r.AnchorStart), mondayDate(t)) / 7
		return weeks >= 0 && weeks%r.Interval == 0
	case RecurrenceMonthly:
		months := monthIndex(t) - monthIndex(r.AnchorStart)
		return months >= 0 && months%r.Interval == 0
	}
	return false
}

// daysBetween counts calendar days from a's date to b's date, both read in
// a's location.
func daysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

// mondayDate returns the Monday on or before t, at t's wall-clock time.
func mondayDate(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return t.AddDate(0, 0, -offset)
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
