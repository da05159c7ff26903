package basestate

import (
	"os"
	"time"

	"github.com/rotorops/fleetmx/internal/snapshot"
	"github.com/rotorops/fleetmx/pkg/config"
)

// LoadDocument reads the persisted assignments document. A missing file is
// reported via os.IsNotExist; any other failure is an error.
func LoadDocument(path string) (*Document, error) {
	var doc Document
	if err := snapshot.Load(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveDocument persists the assignments document.
func SaveDocument(path string, doc *Document) error {
	return snapshot.Save(path, doc)
}

// PreservePrior implements the outage fallback: the previously persisted
// document is reloaded in full, stamped with a new last-checked time, and
// flagged as non-live. Only when no prior snapshot exists at all does this
// produce an empty, schema-valid placeholder. Operational continuity beats
// freshness: blanking the assignments file on a transient provider outage
// is never acceptable.
func PreservePrior(path string, bases []config.Base, runID, source string, now time.Time) (*Document, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		doc = NewDocument(bases, runID, source, now)
		doc.LiveData = false
		return doc, SaveDocument(path, doc)
	}

	doc.LastChecked = now.UTC().Format(time.RFC3339)
	doc.LiveData = false
	return doc, SaveDocument(path, doc)
}
