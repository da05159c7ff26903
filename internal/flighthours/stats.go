package flighthours

import (
	"sort"
	"time"

	"github.com/rotorops/fleetmx/internal/duelist"
	"gonum.org/v1/gonum/stat"
)

// Stats is the derived, non-persisted utilization view for one tail. All
// delta and rate fields are nil until at least two dated readings exist.
type Stats struct {
	CurrentHours      *float64  `json:"current_hours"`
	Daily             []Reading `json:"daily"`
	Weekly            *float64  `json:"weekly"`
	Monthly           *float64  `json:"monthly"`
	AvgDaily          *float64  `json:"avg_daily"`
	TrendDaily        *float64  `json:"trend_daily"`
	ProjectionWeekly  *float64  `json:"projection_weekly"`
	ProjectionMonthly *float64  `json:"projection_monthly"`
}

// Compute derives per-tail statistics from the history. Deltas use the
// closest prior reading at or before the 7/30-day mark, scanning from the
// most recent backward; sparse daily data is expected, so there is no
// exact-date lookup.
func Compute(h History, aircraft []duelist.Aircraft, now time.Time) map[string]Stats {
	stats := make(map[string]Stats, len(aircraft))

	sevenAgo := now.AddDate(0, 0, -7).Format(DateKey)
	thirtyAgo := now.AddDate(0, 0, -30).Format(DateKey)

	for _, ac := range aircraft {
		s := Stats{CurrentHours: ac.AirframeHours, Daily: []Reading{}}

		readings := h[ac.Tail]
		if len(readings) == 0 || ac.AirframeHours == nil {
			stats[ac.Tail] = s
			continue
		}

		// Newest first.
		dates := make([]string, 0, len(readings))
		for key := range readings {
			dates = append(dates, key)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))

		// Up to the last 7 readings, oldest first, for charting.
		n := len(dates)
		if n > 7 {
			n = 7
		}
		for i := n - 1; i >= 0; i-- {
			s.Daily = append(s.Daily, readings[dates[i]])
		}

		if len(dates) >= 2 {
			latest := readings[dates[0]].Hours

			if ref := firstAtOrBefore(dates, sevenAgo); ref != "" {
				delta := latest - readings[ref].Hours
				s.Weekly = &delta
			}
			if ref := firstAtOrBefore(dates, thirtyAgo); ref != "" {
				delta := latest - readings[ref].Hours
				s.Monthly = &delta
			}

			s.TrendDaily = trendSlope(readings, dates)
		}

		if s.Monthly != nil {
			// Elapsed days to the 30-day mark date itself, not to the
			// reading found there: a reading far inside the window must not
			// inflate the rate.
			markDate, err := time.Parse(DateKey, thirtyAgo)
			if err == nil {
				days := int(now.Sub(markDate).Hours() / 24)
				if days > 0 {
					avg := *s.Monthly / float64(days)
					weekly := avg * 7
					monthly := avg * 30
					s.AvgDaily = &avg
					s.ProjectionWeekly = &weekly
					s.ProjectionMonthly = &monthly
				}
			}
		}

		stats[ac.Tail] = s
	}

	return stats
}

// firstAtOrBefore returns the newest date key at or before the mark, or ""
// when every retained reading is newer than the mark.
func firstAtOrBefore(datesDesc []string, mark string) string {
	for _, key := range datesDesc {
		if key <= mark {
			return key
		}
	}
	return ""
}

// trendSlope fits an ordinary least-squares line through every retained
// reading and returns its slope in hours per day. Unlike the two-point
// deltas, the fit uses the whole window, so a single anomalous reading
// moves it less.
func trendSlope(readings map[string]Reading, datesDesc []string) *float64 {
	origin, err := time.Parse(DateKey, datesDesc[len(datesDesc)-1])
	if err != nil {
		return nil
	}

	xs := make([]float64, 0, len(datesDesc))
	ys := make([]float64, 0, len(datesDesc))
	for i := len(datesDesc) - 1; i >= 0; i-- {
		day, err := time.Parse(DateKey, datesDesc[i])
		if err != nil {
			continue
		}
		xs = append(xs, day.Sub(origin).Hours()/24)
		ys = append(ys, readings[datesDesc[i]].Hours)
	}
	if len(xs) < 2 {
		return nil
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return &slope
}
