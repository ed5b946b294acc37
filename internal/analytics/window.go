package analytics

import (
	"fmt"
	"time"
)

// Window is an inclusive range of whole days in a viewing timezone.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow spans from the start of start's calendar day to the last instant of
// end's calendar day, both read in loc. A nil loc means UTC.
func NewWindow(start, end time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	from := startOfDay(start.In(loc))
	to := startOfDay(end.In(loc)).AddDate(0, 0, 1).Add(-time.Nanosecond)
	if to.Before(from) {
		return Window{}, fmt.Errorf("window end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return Window{Start: from, End: to}, nil
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
