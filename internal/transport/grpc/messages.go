package grpc

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"mentorbook/internal/domain"
	"mentorbook/internal/service/booking"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("rfc3339", validateRFC3339)
	validate.RegisterValidation("weekday", validateWeekday)
}

func validateRFC3339(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := weekdayNames[strings.ToUpper(fl.Field().String())]
	return ok
}

var weekdayNames = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

type RuleDefinition struct {
	AnchorStart     string   `json:"anchor_start" validate:"required,rfc3339"`
	DurationMinutes int      `json:"duration_minutes"`
	Kind            string   `json:"kind" validate:"required"`
	Interval        int      `json:"interval"`
	ValidUntil      string   `json:"valid_until" validate:"required,rfc3339"`
	TimeZone        string   `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	WeekDays        []string `json:"week_days,omitempty" validate:"dive,weekday"`
	MonthDays       []int    `json:"month_days,omitempty" validate:"dive,min=1,max=31"`
}

type RegisterRuleRequest struct {
	OwnerID string         `json:"owner_id" validate:"required"`
	Rule    RuleDefinition `json:"rule"`
}

type GetRuleRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

type Rule struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	RuleDefinition
	RRule     string `json:"rrule"`
	CreatedAt string `json:"created_at"`
}

type RuleResponse struct {
	Rule Rule `json:"rule"`
}

type BookRequest struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required,rfc3339"`
	EndTime   string `json:"end_time" validate:"required,rfc3339"`
}

type Reservation struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
}

type BookResponse struct {
	Reservation Reservation `json:"reservation"`
}

type CheckMomentRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Instant string `json:"instant" validate:"required,rfc3339"`
}

type CheckMomentResponse struct {
	Matches bool `json:"matches"`
}

type RangeRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	From    string `json:"from" validate:"required,rfc3339"`
	To      string `json:"to" validate:"required,rfc3339"`
}

type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Booked    bool   `json:"booked"`
}

type ListAvailabilityResponse struct {
	Slots []Slot `json:"slots"`
}

type ListReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
}

type ExportCalendarResponse struct {
	ContentType string `json:"content_type"`
	Calendar    string `json:"calendar"`
}

// parseTime assumes the value already passed the rfc3339 validation.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toDomainDefinition(in RuleDefinition) domain.RuleDefinition {
	weekdays := make([]time.Weekday, 0, len(in.WeekDays))
	for _, name := range in.WeekDays {
		weekdays = append(weekdays, weekdayNames[strings.ToUpper(name)])
	}

	kind, err := domain.ParseRecurrenceKind(in.Kind)
	if err != nil {
		kind = domain.RecurrenceKind(in.Kind)
	}

	// Day range is enforced by the month_days validation tag.
	monthDays, _ := domain.NewMonthDaySet(in.MonthDays...)

	anchor := parseTime(in.AnchorStart)
	until := parseTime(in.ValidUntil)
	if in.TimeZone != "" {
		if loc, err := time.LoadLocation(in.TimeZone); err == nil {
			anchor = anchor.In(loc)
			until = until.In(loc)
		}
	}

	return domain.RuleDefinition{
		AnchorStart:     anchor,
		DurationMinutes: in.DurationMinutes,
		Kind:            kind,
		Interval:        in.Interval,
		ValidUntil:      until,
		WeekDays:        domain.NewWeekdaySet(weekdays...),
		MonthDays:       monthDays,
	}
}

func fromDomainRule(r domain.RecurrenceRule) Rule {
	weekdays := make([]string, 0, r.WeekDays.Len())
	for _, d := range r.WeekDays.Weekdays() {
		weekdays = append(weekdays, strings.ToUpper(d.String()))
	}
	var tz string
	if name := r.Location().String(); name != "" && name != "Local" {
		tz = name
	}
	return Rule{
		ID:      r.ID.String(),
		OwnerID: r.OwnerID,
		RuleDefinition: RuleDefinition{
			AnchorStart:     formatTime(r.AnchorStart),
			DurationMinutes: r.DurationMinutes,
			Kind:            string(r.Kind),
			Interval:        r.Interval,
			ValidUntil:      formatTime(r.ValidUntil),
			TimeZone:        tz,
			WeekDays:        weekdays,
			MonthDays:       r.MonthDays.Days(),
		},
		RRule:     r.RRule(),
		CreatedAt: formatTime(r.CreatedAt.UTC()),
	}
}

func fromDomainReservation(r domain.Reservation) Reservation {
	return Reservation{
		ID:        r.ID.String(),
		OwnerID:   r.OwnerID,
		StartTime: formatTime(r.Window.Start),
		EndTime:   formatTime(r.Window.End),
		State:     string(r.State),
		CreatedAt: formatTime(r.CreatedAt.UTC()),
	}
}

func fromSlots(slots []booking.Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, Slot{
			StartTime: formatTime(s.Window.Start),
			EndTime:   formatTime(s.Window.End),
			Booked:    s.Booked,
		})
	}
	return out
}
