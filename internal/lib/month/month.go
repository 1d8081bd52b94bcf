// Package month provides calendar-month window arithmetic for the
// trailing statistics endpoints.
package month

import "time"

// Window is one calendar month, from its first to its last instant in
// the location of the anchor time.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Windows returns count trailing calendar-month windows anchored at now,
// oldest first; the last window is the month containing now. Boundaries
// are the first instant and the last instant of each month.
func Windows(now time.Time, count int) []Window {
	windows := make([]Window, 0, count)
	for i := count - 1; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)
		windows = append(windows, Window{
			Start: first,
			End:   last,
			Label: first.Format("Jan 2006"),
		})
	}
	return windows
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
