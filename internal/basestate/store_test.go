package basestate

import (
	"path/filepath"
	"testing"
	"time"
)

func testTime() time.Time {
	return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
}

func TestPreservePriorKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_assignments.json")
	now := testTime()

	c := newTestClassifier()
	assignments := []Assignment{
		c.Classify("N100AB", nil, nil),
	}
	prior := BuildDocument(testBases, assignments, "run-1", "adsb", now)
	if err := SaveDocument(path, prior); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	later := now.Add(5 * time.Minute)
	preserved, err := PreservePrior(path, testBases, "run-2", "adsb", later)
	if err != nil {
		t.Fatalf("PreservePrior: %v", err)
	}

	// Everything but the check stamp and the live flag survives unchanged.
	if preserved.LiveData {
		t.Error("preserved document must not claim live data")
	}
	if preserved.LastChecked != later.UTC().Format(time.RFC3339) {
		t.Errorf("last_checked = %s, expected the new run's time", preserved.LastChecked)
	}
	if preserved.LastUpdated != prior.LastUpdated {
		t.Errorf("last_updated = %s, expected the prior run's %s", preserved.LastUpdated, prior.LastUpdated)
	}
	if preserved.RunID != "run-1" {
		t.Errorf("run_id = %s, expected the prior run's", preserved.RunID)
	}
	if preserved.Summary != prior.Summary {
		t.Errorf("summary changed: %+v vs %+v", preserved.Summary, prior.Summary)
	}

	// The rewrite is persisted, not just in memory.
	reloaded, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if reloaded.LiveData || reloaded.LastChecked != preserved.LastChecked {
		t.Errorf("persisted document = live=%t checked=%s", reloaded.LiveData, reloaded.LastChecked)
	}
}

func TestPreservePriorNoSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_assignments.json")
	now := testTime()

	doc, err := PreservePrior(path, testBases, "run-1", "adsb", now)
	if err != nil {
		t.Fatalf("PreservePrior: %v", err)
	}

	if doc.LiveData {
		t.Error("placeholder must not claim live data")
	}
	if len(doc.Bases) != len(testBases) || len(doc.Assignments) != len(testBases) {
		t.Errorf("placeholder bases/buckets = %d/%d, expected %d each",
			len(doc.Bases), len(doc.Assignments), len(testBases))
	}
	for id, bucket := range doc.Assignments {
		if len(bucket.Aircraft) != 0 || bucket.Status != "available" {
			t.Errorf("bucket %s = %+v, expected empty and available", id, bucket)
		}
	}

	// The placeholder is written out so the next outage has a snapshot.
	if _, err := LoadDocument(path); err != nil {
		t.Errorf("placeholder was not persisted: %v", err)
	}
}
