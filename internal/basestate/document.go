package basestate

import (
	"time"

	"github.com/rotorops/fleetmx/pkg/config"
)

// BaseBucket holds the aircraft currently assigned to one base.
type BaseBucket struct {
	Aircraft []Assignment `json:"aircraft"`
	Status   string       `json:"status"` // "available" or "occupied"
}

// Summary carries fleet-level tallies. NO_SIGNAL tails are counted here
// but contribute nothing to the base or airborne figures.
type Summary struct {
	TotalAircraft int `json:"total_aircraft"`
	AtBases       int `json:"at_bases"`
	AwayFromBase  int `json:"away_from_base"`
	Airborne      int `json:"airborne"`
	NoSignal      int `json:"no_signal"`
}

// Document is the persisted base-assignments snapshot. It is mutated in
// place across runs: a run with no usable telemetry rewrites the prior
// document with only LastChecked and LiveData touched.
type Document struct {
	LastUpdated string                 `json:"last_updated"`
	LastChecked string                 `json:"last_checked"`
	LiveData    bool                   `json:"live_data"`
	RunID       string                 `json:"run_id,omitempty"`
	Source      string                 `json:"source"`
	Bases       map[string]config.Base `json:"bases"`
	Assignments map[string]*BaseBucket `json:"assignments"`
	Unassigned  []Assignment           `json:"unassigned"`
	Summary     Summary                `json:"summary"`
}

// NewDocument builds a fresh, schema-valid document with every base bucket
// present and empty.
func NewDocument(bases []config.Base, runID, source string, now time.Time) *Document {
	doc := &Document{
		LastUpdated: now.UTC().Format(time.RFC3339),
		LastChecked: now.UTC().Format(time.RFC3339),
		LiveData:    true,
		RunID:       runID,
		Source:      source,
		Bases:       make(map[string]config.Base, len(bases)),
		Assignments: make(map[string]*BaseBucket, len(bases)),
		Unassigned:  []Assignment{},
	}
	for _, b := range bases {
		doc.Bases[b.ID] = b
		doc.Assignments[b.ID] = &BaseBucket{Aircraft: []Assignment{}, Status: "available"}
	}
	return doc
}

// BuildDocument distributes classified assignments into base buckets and
// the unassigned list, and computes the summary.
func BuildDocument(bases []config.Base, assignments []Assignment, runID, source string, now time.Time) *Document {
	doc := NewDocument(bases, runID, source, now)

	for _, a := range assignments {
		doc.Summary.TotalAircraft++

		switch a.State {
		case StateAtBase:
			bucket := doc.Assignments[a.BaseID]
			if bucket == nil {
				bucket = &BaseBucket{Aircraft: []Assignment{}}
				doc.Assignments[a.BaseID] = bucket
			}
			bucket.Aircraft = append(bucket.Aircraft, a)
			bucket.Status = "occupied"
			doc.Summary.AtBases++
		case StateAirborne:
			doc.Unassigned = append(doc.Unassigned, a)
			doc.Summary.Airborne++
		case StateAway:
			doc.Unassigned = append(doc.Unassigned, a)
			doc.Summary.AwayFromBase++
		case StateNoSignal:
			doc.Unassigned = append(doc.Unassigned, a)
			doc.Summary.NoSignal++
		}
	}

	return doc
}
