// Package calendar renders an owner's availability and reservations as an
// iCalendar feed.
package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"mentorbook/internal/domain"
)

const (
	productID  = "-//mentorbook//booking//EN"
	uidDomain  = "@mentorbook"
	localStamp = "20060102T150405"
)

// Export builds a VCALENDAR with one recurring "Available" event for the
// rule and one "Booked" event per reservation.
func Export(rule domain.RecurrenceRule, reservations []domain.Reservation, now time.Time) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := now.UTC()

	avail := cal.AddEvent("rule-" + rule.ID.String() + uidDomain)
	avail.SetDtStampTime(stamp)
	avail.SetSummary("Available")
	setZoned(avail, ical.ComponentPropertyDtStart, rule.AnchorStart)
	setZoned(avail, ical.ComponentPropertyDtEnd, rule.AnchorStart.Add(rule.Duration()))
	avail.AddRrule(rule.RRule())

	for _, res := range reservations {
		ev := cal.AddEvent(res.ID.String() + uidDomain)
		ev.SetDtStampTime(stamp)
		ev.SetSummary("Booked")
		ev.SetStartAt(res.Window.Start.UTC())
		ev.SetEndAt(res.Window.End.UTC())
	}

	return []byte(cal.Serialize())
}

// setZoned writes t with a TZID when its location is a loadable IANA zone so
// recurrence expansion follows the owner's wall clock across DST. Other
// locations are written in UTC.
func setZoned(ev *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	name := t.Location().String()
	if name == "" || name == "UTC" || name == "Local" {
		ev.SetProperty(prop, t.UTC().Format(localStamp)+"Z")
		return
	}
	if _, err := time.LoadLocation(name); err != nil {
		ev.SetProperty(prop, t.UTC().Format(localStamp)+"Z")
		return
	}
	ev.SetProperty(prop, t.Format(localStamp), &ical.KeyValues{
		Key:   string(ical.ParameterTzid),
		Value: []string{name},
	})
}
