package domain

import (
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

func (r RecurrenceRule) rruleOption() rrule.ROption {
	opt := rrule.ROption{
		Interval: r.Interval,
		Wkst:     rrule.MO,
		Until:    r.ValidUntil,
	}
	switch r.Kind {
	case RecurrenceDaily:
		opt.Freq = rrule.DAILY
	case RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range r.WeekDays.Weekdays() {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	case RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = r.MonthDays.Days()
	}
	return opt
}

// RRule renders the rule as an RFC 5545 RRULE value (without DTSTART).
func (r RecurrenceRule) RRule() string {
	opt := r.rruleOption()
	return opt.String()
}

// Occurrences lists occurrence windows overlapping [from, to) that
// OccurrenceWindow would book, in the anchor's location. Expansions that
// cross into a day outside the rule's day set are left out.
func (r RecurrenceRule) Occurrences(from, to time.Time) []TimeWindow {
	if !from.Before(to) || r.Interval < 1 {
		return nil
	}

	opt := r.rruleOption()
	opt.Dtstart = r.AnchorStart
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}

	duration := r.Duration()
	starts := rr.Between(from.Add(-duration), to, true)

	out := make([]TimeWindow, 0, len(starts))
	for _, s := range starts {
		w, ok := r.OccurrenceWindow(s, s.Add(duration))
		if !ok {
			continue
		}
		if !w.Start.Before(to) || !w.End.After(from) {
			continue
		}
		out = append(out, w)
	}
	return out
}
