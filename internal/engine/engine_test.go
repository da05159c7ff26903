package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotorops/fleetmx/internal/basestate"
	"github.com/rotorops/fleetmx/internal/duelist"
	"github.com/rotorops/fleetmx/internal/flighthours"
	"github.com/rotorops/fleetmx/internal/snapshot"
	"github.com/rotorops/fleetmx/internal/telemetry"
	"github.com/rotorops/fleetmx/pkg/config"
	"go.uber.org/zap"
)

// fakeProvider returns canned telemetry, or an error simulating a
// fleet-wide outage.
type fakeProvider struct {
	records map[string]*telemetry.Record
	err     error
}

func (f *fakeProvider) Positions(ctx context.Context, fleet map[string]string) (map[string]*telemetry.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]*telemetry.Record)
	for tail := range fleet {
		if rec, ok := f.records[tail]; ok {
			result[tail] = rec
		}
	}
	return result, nil
}

func fp(v float64) *float64 { return &v }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

// writeDailyExport drops a minimal but structurally complete export into
// the data dir: one 200-hour inspection row and one component row.
func writeDailyExport(t *testing.T, cfg *config.Config, tail string, airframeHrs, remHrs float64) {
	t.Helper()

	row := make([]string, 64)
	row[0] = tail
	row[2] = "2026-08-27"
	row[3] = fmt.Sprintf("%.1f", airframeHrs)
	row[5] = "05 1005"
	row[11] = "INSPECTION"
	row[15] = "200 HR Inspection"
	row[54] = fmt.Sprintf("%.1f", remHrs)
	row[63] = "COMING DUE"

	part := make([]string, 64)
	part[0] = tail
	part[2] = "2026-08-27"
	part[3] = fmt.Sprintf("%.1f", airframeHrs)
	part[11] = "PART"
	part[15] = "Starter generator"
	part[54] = "48"

	f, err := os.Create(filepath.Join(cfg.DataDir, cfg.DailyExport))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write(make([]string, 64)) // header
	w.Write(row)
	w.Write(part)
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatal(err)
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, provider telemetry.Provider) *Engine {
	t.Helper()
	eng, err := New(cfg, provider, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.now = func() time.Time {
		return time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	}
	return eng
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	writeDailyExport(t, cfg, "N251HC", 4812.3, 15)

	// N251HC parked on the pad at Logan.
	provider := &fakeProvider{records: map[string]*telemetry.Record{
		"N251HC": {
			Tail:       "N251HC",
			Latitude:   fp(41.7912),
			Longitude:  fp(-111.8522),
			AltitudeFt: fp(0),
			AgeSeconds: fp(10),
		},
	}}

	eng := newTestEngine(t, cfg, provider)

	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.AircraftParsed != 1 {
		t.Errorf("aircraft = %d, expected 1", result.AircraftParsed)
	}
	if result.HistoryWritten != 1 {
		t.Errorf("history written = %d, expected 1", result.HistoryWritten)
	}
	if result.TelemetryHits != 1 {
		t.Errorf("telemetry hits = %d, expected 1", result.TelemetryHits)
	}
	if !result.LiveData {
		t.Error("expected a live run")
	}
	if result.ReportDate.Format("2006-01-02") != "2026-08-27" {
		t.Errorf("report date = %v", result.ReportDate)
	}

	// Due-list document.
	var dueDoc duelist.Document
	if err := snapshot.Load(filepath.Join(cfg.DataDir, cfg.DueListFile), &dueDoc); err != nil {
		t.Fatalf("loading due list: %v", err)
	}
	if dueDoc.Summary.TotalAircraft != 1 || dueDoc.Summary.InspectionsCritical != 1 {
		t.Errorf("due-list summary = %+v", dueDoc.Summary)
	}
	cell := dueDoc.Aircraft[0].Intervals["200.00"]
	if cell == nil || cell.Tier != duelist.TierRed {
		t.Errorf("200-hour cell = %+v, expected red at 15 hours", cell)
	}
	if len(dueDoc.Aircraft[0].Components) != 1 {
		t.Errorf("components = %d, expected the starter generator", len(dueDoc.Aircraft[0].Components))
	}

	// Flight-hours history.
	history := flighthours.LoadHistory(filepath.Join(cfg.DataDir, cfg.HistoryFile))
	if r := history["N251HC"]["2026-08-27"]; r.Hours != 4812.3 {
		t.Errorf("history reading = %+v", r)
	}

	// Stats document exists and carries the current hours.
	var stats map[string]flighthours.Stats
	if err := snapshot.Load(filepath.Join(cfg.DataDir, cfg.StatsFile), &stats); err != nil {
		t.Fatalf("loading stats: %v", err)
	}
	if s := stats["N251HC"]; s.CurrentHours == nil || *s.CurrentHours != 4812.3 {
		t.Errorf("stats = %+v", stats["N251HC"])
	}

	// Assignments document: parked at Logan, hours carried over from the
	// maintenance export.
	assignments, err := basestate.LoadDocument(filepath.Join(cfg.DataDir, cfg.AssignmentsFile))
	if err != nil {
		t.Fatalf("loading assignments: %v", err)
	}
	if !assignments.LiveData {
		t.Error("assignments should be live")
	}
	logan := assignments.Assignments["LOGAN"]
	if logan == nil || len(logan.Aircraft) != 1 {
		t.Fatalf("LOGAN bucket = %+v", logan)
	}
	if ac := logan.Aircraft[0]; ac.Tail != "N251HC" || ac.Hours == nil || *ac.Hours != 4812.3 {
		t.Errorf("LOGAN aircraft = %+v", ac)
	}
	// Default fleet minus the one fix: everything else is NO_SIGNAL.
	if assignments.Summary.NoSignal != assignments.Summary.TotalAircraft-1 {
		t.Errorf("summary = %+v", assignments.Summary)
	}
}

func TestRunTelemetryOutagePreservesSnapshot(t *testing.T) {
	cfg := testConfig(t)
	writeDailyExport(t, cfg, "N251HC", 4812.3, 15)

	// First run succeeds and writes a live snapshot.
	live := &fakeProvider{records: map[string]*telemetry.Record{
		"N251HC": {
			Latitude: fp(41.7912), Longitude: fp(-111.8522), AltitudeFt: fp(0), AgeSeconds: fp(10),
		},
	}}
	eng := newTestEngine(t, cfg, live)
	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	prior, err := basestate.LoadDocument(filepath.Join(cfg.DataDir, cfg.AssignmentsFile))
	if err != nil {
		t.Fatal(err)
	}

	// Second run hits a fleet-wide outage.
	down := &fakeProvider{err: fmt.Errorf("upstream timed out")}
	eng = newTestEngine(t, cfg, down)
	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("outage run should not fail: %v", err)
	}
	if result.LiveData {
		t.Error("outage run must not claim live data")
	}

	preserved, err := basestate.LoadDocument(filepath.Join(cfg.DataDir, cfg.AssignmentsFile))
	if err != nil {
		t.Fatal(err)
	}
	if preserved.LiveData {
		t.Error("preserved snapshot must be flagged non-live")
	}
	if preserved.Summary != prior.Summary {
		t.Errorf("summary changed across outage: %+v vs %+v", preserved.Summary, prior.Summary)
	}
	if len(preserved.Assignments["LOGAN"].Aircraft) != 1 {
		t.Error("prior assignment lost during outage")
	}
}

func TestRunMissingDailyExportFails(t *testing.T) {
	cfg := testConfig(t)

	eng := newTestEngine(t, cfg, &fakeProvider{})
	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatal("expected error with no daily export")
	}

	// Nothing was written.
	for _, name := range []string{cfg.DueListFile, cfg.StatsFile, cfg.AssignmentsFile, cfg.HistoryFile} {
		if _, err := os.Stat(filepath.Join(cfg.DataDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s was written during a failed run", name)
		}
	}
}

func TestRunNilProviderPreserves(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Provider = "none"
	writeDailyExport(t, cfg, "N251HC", 4812.3, 15)

	eng := newTestEngine(t, cfg, nil)
	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.LiveData {
		t.Error("no provider means no live data")
	}

	doc, err := basestate.LoadDocument(filepath.Join(cfg.DataDir, cfg.AssignmentsFile))
	if err != nil {
		t.Fatalf("placeholder not written: %v", err)
	}
	if doc.LiveData {
		t.Error("placeholder must be non-live")
	}
}

func TestRunIdempotentSameDay(t *testing.T) {
	cfg := testConfig(t)
	writeDailyExport(t, cfg, "N251HC", 4812.3, 15)

	eng := newTestEngine(t, cfg, &fakeProvider{})

	first, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.HistoryWritten != 1 {
		t.Errorf("first run wrote %d history entries", first.HistoryWritten)
	}

	second, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.HistoryWritten != 0 {
		t.Errorf("unchanged same-day re-run wrote %d history entries, expected 0", second.HistoryWritten)
	}
}
