package flighthours

import (
	"os"

	"github.com/rotorops/fleetmx/internal/snapshot"
)

// LoadHistory reads the persisted history document. A missing or unreadable
// file degrades to an empty history; tracking simply restarts.
func LoadHistory(path string) History {
	h := History{}
	if err := snapshot.Load(path, &h); err != nil {
		if !os.IsNotExist(err) {
			return History{}
		}
		return h
	}
	return h
}

// SaveHistory persists the history document.
func SaveHistory(path string, h History) error {
	return snapshot.Save(path, h)
}
