// Package basestate classifies aircraft positions against the configured
// base geofences and maintains the persisted assignments document,
// including the snapshot-preservation fallback for telemetry outages.
package basestate

import (
	"github.com/rotorops/fleetmx/internal/geo"
	"github.com/rotorops/fleetmx/internal/telemetry"
	"github.com/rotorops/fleetmx/pkg/config"
)

// State is the per-tail position classification.
type State string

const (
	StateAirborne State = "AIRBORNE"
	StateAtBase   State = "AT_BASE"
	StateAway     State = "AWAY"
	StateNoSignal State = "NO_SIGNAL"
)

// Assignment is the classified position of one aircraft.
type Assignment struct {
	Tail          string   `json:"tail"`
	State         State    `json:"state"`
	Airborne      bool     `json:"airborne"`
	BaseID        string   `json:"base,omitempty"`
	ClosestBase   string   `json:"closest_base,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	Hours         *float64 `json:"hours,omitempty"`
	AgeSeconds    *float64 `json:"seen_seconds_ago,omitempty"`
	AltitudeFt    *float64 `json:"altitude,omitempty"`
	GroundSpeedKt *float64 `json:"ground_speed,omitempty"`
	Track         *float64 `json:"track,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// Classifier turns raw telemetry records into base assignments. All
// thresholds are injected; there are no cross-tail invariants, so
// classification is a pure per-tail function.
type Classifier struct {
	bases        []config.Base
	airborneAlt  float64
	airborneGS   float64
	stalenessSec float64
}

// NewClassifier builds a classifier for the given base set and thresholds.
func NewClassifier(bases []config.Base, pos config.PositionData) *Classifier {
	return &Classifier{
		bases:        bases,
		airborneAlt:  pos.AirborneAltitudeFt,
		airborneGS:   pos.AirborneGroundSpeedKt,
		stalenessSec: pos.StalenessSeconds,
	}
}

// Classify computes the assignment for one tail from its latest record.
// rec may be nil when no telemetry was available for the tail this run.
func (c *Classifier) Classify(tail string, rec *telemetry.Record, hours *float64) Assignment {
	a := Assignment{Tail: tail, Hours: hours}

	if !rec.HasFix() {
		a.State = StateNoSignal
		return a
	}
	if rec.AgeSeconds != nil && *rec.AgeSeconds > c.stalenessSec {
		a.State = StateNoSignal
		a.AgeSeconds = rec.AgeSeconds
		return a
	}

	a.AgeSeconds = rec.AgeSeconds
	a.AltitudeFt = rec.AltitudeFt
	a.GroundSpeedKt = rec.GroundSpeed
	a.Track = rec.Track
	a.Status = rec.Status

	nearest, distance := c.nearestBase(*rec.Latitude, *rec.Longitude)
	if nearest != nil {
		a.ClosestBase = nearest.ID
		a.DistanceMiles = &distance
	}

	// The airborne test takes priority over geofence membership: an
	// aircraft climbing out inside a base radius is AIRBORNE, not AT_BASE.
	if c.isAirborne(rec) {
		a.State = StateAirborne
		a.Airborne = true
		return a
	}

	if nearest != nil && distance <= nearest.RadiusMiles {
		a.State = StateAtBase
		a.BaseID = nearest.ID
		return a
	}

	a.State = StateAway
	return a
}

// isAirborne applies the altitude test first, then the ground-speed test.
func (c *Classifier) isAirborne(rec *telemetry.Record) bool {
	if rec.AltitudeFt != nil && *rec.AltitudeFt > c.airborneAlt {
		return true
	}
	if rec.GroundSpeed != nil && *rec.GroundSpeed > c.airborneGS {
		return true
	}
	return false
}

// nearestBase returns the minimum-distance base for a fix, or nil when no
// bases are configured.
func (c *Classifier) nearestBase(lat, lon float64) (*config.Base, float64) {
	var nearest *config.Base
	best := 0.0

	for i := range c.bases {
		d := geo.DistanceMiles(lat, lon, c.bases[i].Latitude, c.bases[i].Longitude)
		if nearest == nil || d < best {
			nearest = &c.bases[i]
			best = d
		}
	}
	return nearest, best
}
