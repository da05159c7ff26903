// Package telemetry delivers per-aircraft position records from the
// supported upstream providers. Providers are best-effort: a tail with no
// usable fix is simply absent from the returned map, and the classifier
// treats that as NO_SIGNAL.
package telemetry

import (
	"context"
	"time"
)

// Record is the canonical per-aircraft telemetry record. Only latitude and
// longitude are required; everything else is optional and nil/zero when the
// provider did not report it.
type Record struct {
	Tail        string
	Latitude    *float64
	Longitude   *float64
	AltitudeFt  *float64
	GroundSpeed *float64 // knots
	Track       *float64
	AgeSeconds  *float64
	Status      string
	Timestamp   time.Time
}

// HasFix reports whether the record carries a usable position.
func (r *Record) HasFix() bool {
	return r != nil && r.Latitude != nil && r.Longitude != nil
}

// Provider fetches the latest position for every aircraft in the fleet
// mapping (tail -> ICAO hex). Fetch failures for individual tails are not
// errors; a provider only returns an error when it could not attempt the
// fleet at all.
type Provider interface {
	Positions(ctx context.Context, fleet map[string]string) (map[string]*Record, error)
}
