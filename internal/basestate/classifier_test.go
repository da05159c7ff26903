package basestate

import (
	"testing"

	"github.com/rotorops/fleetmx/internal/telemetry"
	"github.com/rotorops/fleetmx/pkg/config"
)

var testBases = []config.Base{
	{ID: "LOGAN", Name: "Logan", Latitude: 41.7912, Longitude: -111.8522, RadiusMiles: 5},
	{ID: "KSLC", Name: "Salt Lake City", Latitude: 40.7884, Longitude: -111.9778, RadiusMiles: 10},
}

var testPosition = config.PositionData{
	AirborneAltitudeFt:    400,
	AirborneGroundSpeedKt: 30,
	StalenessSeconds:      300,
}

func fp(v float64) *float64 { return &v }

func newTestClassifier() *Classifier {
	return NewClassifier(testBases, testPosition)
}

func TestClassifyNoSignal(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		rec  *telemetry.Record
	}{
		{name: "no record at all", rec: nil},
		{name: "record without position", rec: &telemetry.Record{AgeSeconds: fp(10)}},
		{name: "stale fix", rec: &telemetry.Record{
			Latitude: fp(41.7912), Longitude: fp(-111.8522), AgeSeconds: fp(301),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := c.Classify("N100AB", tt.rec, nil)
			if a.State != StateNoSignal {
				t.Errorf("state = %s, expected NO_SIGNAL", a.State)
			}
			if a.Airborne {
				t.Error("NO_SIGNAL must not be flagged airborne")
			}
		})
	}
}

func TestClassifyAtBase(t *testing.T) {
	c := newTestClassifier()

	// Sitting on the pad at Logan: on the ground, fresh fix.
	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:    fp(41.7912),
		Longitude:   fp(-111.8522),
		AltitudeFt:  fp(0),
		GroundSpeed: fp(0),
		AgeSeconds:  fp(10),
	}, fp(4812.3))

	if a.State != StateAtBase {
		t.Fatalf("state = %s, expected AT_BASE", a.State)
	}
	if a.BaseID != "LOGAN" {
		t.Errorf("base = %s, expected LOGAN", a.BaseID)
	}
	if a.ClosestBase != "LOGAN" {
		t.Errorf("closest = %s, expected LOGAN", a.ClosestBase)
	}
	if a.DistanceMiles == nil || *a.DistanceMiles > 0.01 {
		t.Errorf("distance = %v, expected ~0", a.DistanceMiles)
	}
	if a.Hours == nil || *a.Hours != 4812.3 {
		t.Errorf("hours = %v, expected carried through", a.Hours)
	}
}

func TestClassifyAtDefaultBase(t *testing.T) {
	cfg := config.Default()
	c := NewClassifier(cfg.Bases, cfg.Position)

	// On the pad at Provo's exact coordinates, fresh fix, on the ground.
	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:   fp(40.2192),
		Longitude:  fp(-111.7233),
		AltitudeFt: fp(0),
		AgeSeconds: fp(10),
	}, nil)

	if a.State != StateAtBase || a.BaseID != "PROVO" {
		t.Errorf("state = %s at %s, expected AT_BASE at PROVO", a.State, a.BaseID)
	}
}

func TestClassifyAirborneBeatsGeofence(t *testing.T) {
	c := newTestClassifier()

	// Climbing out directly over the base: altitude wins over the fence.
	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:   fp(41.7912),
		Longitude:  fp(-111.8522),
		AltitudeFt: fp(500),
		AgeSeconds: fp(5),
	}, nil)

	if a.State != StateAirborne {
		t.Fatalf("state = %s, expected AIRBORNE over the base", a.State)
	}
	if !a.Airborne {
		t.Error("airborne flag not set")
	}
	if a.BaseID != "" {
		t.Errorf("base = %s, expected unset while airborne", a.BaseID)
	}
	if a.ClosestBase != "LOGAN" {
		t.Errorf("closest base = %s, still expected LOGAN", a.ClosestBase)
	}
}

func TestClassifyAirborneByGroundSpeed(t *testing.T) {
	c := newTestClassifier()

	// Low but moving fast: the speed test catches helicopters in low-level
	// transit.
	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:    fp(41.5),
		Longitude:   fp(-111.9),
		AltitudeFt:  fp(100),
		GroundSpeed: fp(95),
		AgeSeconds:  fp(5),
	}, nil)

	if a.State != StateAirborne {
		t.Errorf("state = %s, expected AIRBORNE by ground speed", a.State)
	}
}

func TestClassifyAirborneBoundaries(t *testing.T) {
	c := newTestClassifier()

	// Exactly at both thresholds is not airborne; the tests are strict
	// greater-than.
	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:    fp(41.5),
		Longitude:   fp(-111.9),
		AltitudeFt:  fp(400),
		GroundSpeed: fp(30),
		AgeSeconds:  fp(5),
	}, nil)

	if a.State == StateAirborne {
		t.Error("threshold values must not classify as airborne")
	}
}

func TestClassifyAway(t *testing.T) {
	c := newTestClassifier()

	// On the ground well outside every fence (roughly Moab).
	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:    fp(38.5733),
		Longitude:   fp(-109.5498),
		AltitudeFt:  fp(0),
		GroundSpeed: fp(0),
		AgeSeconds:  fp(60),
	}, nil)

	if a.State != StateAway {
		t.Fatalf("state = %s, expected AWAY", a.State)
	}
	if a.BaseID != "" {
		t.Errorf("base = %s, expected unset", a.BaseID)
	}
	if a.ClosestBase == "" || a.DistanceMiles == nil || *a.DistanceMiles < 100 {
		t.Errorf("closest = %s at %v miles, expected a distant nearest base", a.ClosestBase, a.DistanceMiles)
	}
}

func TestClassifyNoBasesConfigured(t *testing.T) {
	c := NewClassifier(nil, testPosition)

	a := c.Classify("N100AB", &telemetry.Record{
		Latitude:   fp(41.7912),
		Longitude:  fp(-111.8522),
		AltitudeFt: fp(0),
		AgeSeconds: fp(5),
	}, nil)

	if a.State != StateAway {
		t.Errorf("state = %s, expected AWAY with no bases", a.State)
	}
	if a.ClosestBase != "" || a.DistanceMiles != nil {
		t.Errorf("expected no closest base, got %s / %v", a.ClosestBase, a.DistanceMiles)
	}
}

func TestBuildDocumentDistribution(t *testing.T) {
	c := newTestClassifier()
	now := testTime()

	assignments := []Assignment{
		c.Classify("N100AB", &telemetry.Record{
			Latitude: fp(41.7912), Longitude: fp(-111.8522), AltitudeFt: fp(0), AgeSeconds: fp(10),
		}, nil),
		c.Classify("N200CD", &telemetry.Record{
			Latitude: fp(40.5), Longitude: fp(-111.9), AltitudeFt: fp(4500), AgeSeconds: fp(10),
		}, nil),
		c.Classify("N300EF", nil, nil),
	}

	doc := BuildDocument(testBases, assignments, "run-1", "adsb", now)

	if !doc.LiveData {
		t.Error("fresh document should be live")
	}
	if doc.Summary.TotalAircraft != 3 || doc.Summary.AtBases != 1 ||
		doc.Summary.Airborne != 1 || doc.Summary.NoSignal != 1 {
		t.Errorf("summary = %+v", doc.Summary)
	}
	if len(doc.Assignments["LOGAN"].Aircraft) != 1 || doc.Assignments["LOGAN"].Status != "occupied" {
		t.Errorf("LOGAN bucket = %+v", doc.Assignments["LOGAN"])
	}
	if doc.Assignments["KSLC"].Status != "available" {
		t.Errorf("KSLC bucket = %+v, expected available and empty", doc.Assignments["KSLC"])
	}
	if len(doc.Unassigned) != 2 {
		t.Errorf("unassigned = %d, expected airborne + no-signal", len(doc.Unassigned))
	}
}
