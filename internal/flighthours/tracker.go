// Package flighthours maintains the per-tail flight-hours time series: a
// rolling 90-day window of daily total-hours readings, with derived
// utilization statistics and projections.
package flighthours

import (
	"time"

	"github.com/rotorops/fleetmx/internal/duelist"
)

// DateKey is the calendar-date key format used throughout the history
// document. Lexicographic order on keys equals chronological order.
const DateKey = "2006-01-02"

// Reading is one recorded total-hours observation.
type Reading struct {
	Hours float64 `json:"hours"`
	Date  string  `json:"date"`
}

// History maps tail -> date key -> reading. At most one reading exists per
// date; re-runs on the same day only write when the hours value changed.
type History map[string]map[string]Reading

// Update appends today's readings for every aircraft that reported a
// current-hours figure. The date key comes from the export's report date,
// falling back to now. Returns the number of entries written.
func Update(h History, aircraft []duelist.Aircraft, reportDate *time.Time, now time.Time) int {
	day := now
	if reportDate != nil {
		day = *reportDate
	}
	key := day.Format(DateKey)

	written := 0
	for _, ac := range aircraft {
		if ac.AirframeHours == nil || ac.Tail == "" {
			continue
		}
		hours := *ac.AirframeHours

		if h[ac.Tail] == nil {
			h[ac.Tail] = make(map[string]Reading)
		}
		if existing, ok := h[ac.Tail][key]; ok && existing.Hours == hours {
			continue
		}
		h[ac.Tail][key] = Reading{Hours: hours, Date: key}
		written++
	}
	return written
}

// Prune drops readings older than retentionDays before now. The window is
// anchored on wall-clock time at run time, not on any report date.
func Prune(h History, now time.Time, retentionDays int) int {
	cutoff := now.AddDate(0, 0, -retentionDays).Format(DateKey)

	pruned := 0
	for tail, readings := range h {
		for key := range readings {
			if key < cutoff {
				delete(readings, key)
				pruned++
			}
		}
		if len(readings) == 0 {
			delete(h, tail)
		}
	}
	return pruned
}
