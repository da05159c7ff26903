package duelist

import (
	"sort"
	"time"
)

// Merge combines a daily and a weekly parse. The daily export is the
// high-frequency source: its inspection buckets replace the weekly value
// bucket-by-bucket, its components are taken wholesale, and its metadata is
// preferred. weekly may be nil when the long-range export is unavailable;
// buckets it would have supplied simply stay absent.
//
// The effective report date is the daily export's, else the weekly's, else
// now.
func Merge(daily, weekly *ParseResult, buckets []float64, now time.Time) *Merged {
	if weekly == nil {
		weekly = &ParseResult{
			Meta:        map[string]AircraftMeta{},
			Inspections: map[string]map[string]IntervalFact{},
			Components:  map[string][]Component{},
		}
	}

	tails := make(map[string]bool)
	for tail := range daily.Meta {
		tails[tail] = true
	}
	for tail := range weekly.Meta {
		tails[tail] = true
	}

	sorted := make([]string, 0, len(tails))
	for tail := range tails {
		sorted = append(sorted, tail)
	}
	sort.Strings(sorted)

	merged := &Merged{
		Components: daily.Components,
	}

	for _, tail := range sorted {
		meta, ok := daily.Meta[tail]
		if !ok {
			meta = weekly.Meta[tail]
		}

		// Overlay: start from weekly, then daily replaces key-by-key.
		bucketFacts := make(map[string]IntervalFact)
		for key, fact := range weekly.Inspections[tail] {
			bucketFacts[key] = fact
		}
		for key, fact := range daily.Inspections[tail] {
			bucketFacts[key] = fact
		}

		intervals := make(map[float64]*IntervalFact, len(buckets))
		for _, bucket := range buckets {
			if fact, ok := bucketFacts[BucketKey(bucket)]; ok {
				f := fact
				intervals[bucket] = &f
			} else {
				intervals[bucket] = nil
			}
		}

		merged.Aircraft = append(merged.Aircraft, Aircraft{
			Tail:          tail,
			AirframeHours: meta.AirframeHours,
			ReportDate:    meta.ReportDate,
			Intervals:     intervals,
		})
	}

	switch {
	case daily.ReportDate != nil:
		merged.ReportDate = *daily.ReportDate
	case weekly.ReportDate != nil:
		merged.ReportDate = *weekly.ReportDate
	default:
		merged.ReportDate = now
	}

	return merged
}
