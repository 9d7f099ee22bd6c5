package domain

import (
	"errors"
	"time"
)

// TimeWindow is a zoned [Start, End] pair compared at minute granularity.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	w := TimeWindow{Start: TruncateToMinute(start), End: TruncateToMinute(end)}
	if !w.Start.Before(w.End) {
		return TimeWindow{}, errors.New("window end must be after start")
	}
	return w, nil
}

// TruncateToMinute drops seconds and below in t's own location.
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func (w TimeWindow) Truncate() TimeWindow {
	return TimeWindow{Start: TruncateToMinute(w.Start), End: TruncateToMinute(w.End)}
}

// Overlaps reports a.Start < b.End && b.Start < a.End after truncation.
// Windows that only touch at an endpoint do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	a := w.Truncate()
	b := other.Truncate()
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains reports whether other lies within w, endpoints included.
func (w TimeWindow) Contains(other TimeWindow) bool {
	a := w.Truncate()
	b := other.Truncate()
	return !b.Start.Before(a.Start) && !b.End.After(a.End)
}

func (w TimeWindow) Equal(other TimeWindow) bool {
	a := w.Truncate()
	b := other.Truncate()
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}
