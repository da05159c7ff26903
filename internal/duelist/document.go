package duelist

import "time"

// IntervalCell is one classified interval-bucket entry in the emitted
// due-list document.
type IntervalCell struct {
	RemainingHours *float64 `json:"rem_hrs"`
	RemainingDays  *float64 `json:"rem_days"`
	Status         string   `json:"status"`
	Tier           Tier     `json:"tier"`
}

// ComponentCell is one classified component entry.
type ComponentCell struct {
	Name           string   `json:"name"`
	RemainingHours *float64 `json:"rem_hrs"`
	RemainingDays  *float64 `json:"rem_days"`
	Status         string   `json:"status"`
	RII            bool     `json:"rii"`
	Tier           Tier     `json:"tier"`
}

// AircraftFacts carries everything a presentation layer needs for one tail.
type AircraftFacts struct {
	Tail          string                   `json:"tail"`
	AirframeHours *float64                 `json:"airframe_hrs"`
	ReportDate    string                   `json:"report_date,omitempty"`
	Intervals     map[string]*IntervalCell `json:"intervals"`
	Components    []ComponentCell          `json:"components"`
}

// Summary holds fleet-level tallies for the due-list document.
type Summary struct {
	TotalAircraft        int `json:"total_aircraft"`
	InspectionsCritical  int `json:"inspections_critical"`
	InspectionsComingDue int `json:"inspections_coming_due"`
	ComponentsOverdue    int `json:"components_overdue"`
}

// Document is the classified due-list emitted at the end of a run.
type Document struct {
	ReportDate  string          `json:"report_date"`
	GeneratedAt string          `json:"generated_at"`
	RunID       string          `json:"run_id,omitempty"`
	Summary     Summary         `json:"summary"`
	Aircraft    []AircraftFacts `json:"aircraft"`
}

// BuildDocument classifies a merged parse into the output document.
// Critical counts overdue and red inspections together, matching the
// operator-facing rollup.
func BuildDocument(m *Merged, buckets []float64, now time.Time) *Document {
	doc := &Document{
		ReportDate:  m.ReportDate.Format("2006-01-02"),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	doc.Summary.TotalAircraft = len(m.Aircraft)

	for _, ac := range m.Aircraft {
		facts := AircraftFacts{
			Tail:          ac.Tail,
			AirframeHours: ac.AirframeHours,
			Intervals:     make(map[string]*IntervalCell, len(buckets)),
			Components:    []ComponentCell{},
		}
		if ac.ReportDate != nil {
			facts.ReportDate = ac.ReportDate.Format("2006-01-02")
		}

		for _, bucket := range buckets {
			fact := ac.Intervals[bucket]
			if fact == nil {
				facts.Intervals[BucketKey(bucket)] = nil
				continue
			}
			tier := fact.Tier()
			facts.Intervals[BucketKey(bucket)] = &IntervalCell{
				RemainingHours: fact.RemainingHours,
				RemainingDays:  fact.RemainingDays,
				Status:         fact.Status,
				Tier:           tier,
			}
			switch tier {
			case TierOverdue, TierRed:
				doc.Summary.InspectionsCritical++
			case TierAmber:
				doc.Summary.InspectionsComingDue++
			}
		}

		for _, comp := range m.Components[ac.Tail] {
			cell := ComponentCell{
				Name:           comp.Name,
				RemainingHours: comp.RemainingHours,
				RemainingDays:  comp.RemainingDays,
				Status:         comp.Status,
				RII:            comp.RII,
				Tier:           comp.Tier(),
			}
			if (comp.RemainingHours != nil && *comp.RemainingHours < 0) ||
				(comp.RemainingHours == nil && comp.RemainingDays != nil && *comp.RemainingDays < 0) {
				doc.Summary.ComponentsOverdue++
			}
			facts.Components = append(facts.Components, cell)
		}

		doc.Aircraft = append(doc.Aircraft, facts)
	}

	return doc
}
