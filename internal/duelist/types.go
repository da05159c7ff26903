package duelist

import "time"

// IntervalFact is one recurring-inspection fact for a (tail, interval
// bucket) pair. Hours remaining is authoritative for classification when
// present; the status text is the fallback.
type IntervalFact struct {
	RemainingHours *float64 `json:"rem_hrs"`
	RemainingDays  *float64 `json:"rem_days"`
	Status         string   `json:"status"`
	Description    string   `json:"desc,omitempty"`
}

// Tier classifies the fact for presentation.
func (f *IntervalFact) Tier() Tier {
	if f == nil {
		return TierNA
	}
	if f.RemainingHours != nil {
		return Classify(f.RemainingHours)
	}
	return ClassifyFromStatus(f.Status)
}

// undatedSortKey sorts components with neither hours nor days remaining
// after everything that has a figure.
const undatedSortKey = 9999

// Component is one retirement/overhaul-tracked part or inspection item.
type Component struct {
	Name           string   `json:"name"`
	RemainingHours *float64 `json:"rem_hrs"`
	RemainingDays  *float64 `json:"rem_days"`
	Status         string   `json:"status"`
	RII            bool     `json:"rii"`
	SortKey        float64  `json:"sort_key"`
}

// Tier classifies the component: hours first, then days, then status text.
func (c *Component) Tier() Tier {
	if c.RemainingHours != nil {
		return Classify(c.RemainingHours)
	}
	if c.RemainingDays != nil {
		return ClassifyDays(c.RemainingDays)
	}
	return ClassifyFromStatus(c.Status)
}

// AircraftMeta holds the header-level facts the export repeats on every
// row for a tail.
type AircraftMeta struct {
	AirframeHours *float64
	ReportDate    *time.Time
}

// ParseResult holds the pieces of a single export parse, keyed by tail.
// Inspection buckets are keyed by the interval formatted to two decimals,
// matching the persisted snapshot key shape.
type ParseResult struct {
	Meta        map[string]AircraftMeta
	Inspections map[string]map[string]IntervalFact
	Components  map[string][]Component
	ReportDate  *time.Time

	RowsTotal   int
	RowsSkipped int
}

// Aircraft is one fleet aircraft after the daily/weekly merge. Intervals
// maps every configured bucket to its fact, nil when the bucket is not due
// this cycle.
type Aircraft struct {
	Tail          string
	AirframeHours *float64
	ReportDate    *time.Time
	Intervals     map[float64]*IntervalFact
}

// Merged is the combined view of the daily and weekly exports.
type Merged struct {
	ReportDate time.Time
	Aircraft   []Aircraft
	Components map[string][]Component
}
