package telemetry

import (
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotorops/fleetmx/internal/normalize"
)

// DefaultFleet is the embedded tail -> ICAO hex mapping, used when no
// mapping file is present.
var DefaultFleet = map[string]string{
	"N251HC": "A25BE7",
	"N261HC": "A28366",
	"N271HC": "A2AAE5",
	"N281HC": "A2D264",
	"N291HC": "A2F9E3",
	"N431HC": "A52787",
	"N531HC": "A6B4D6",
	"N631HC": "A84225",
	"N731HC": "A9CF74",
}

// LoadFleetMapping reads the tail -> ICAO mapping file. Three document
// shapes are accepted:
//
//	1) {"N251HC": {"icao": "A25BE7"}, ...}
//	2) {"N251HC": "A25BE7", ...}
//	3) [{"tail": "N251HC", "icao": "A25BE7"}, ...]
//
// A missing or unusable file falls back to the embedded default fleet. The
// second return value names the mapping source for logging.
func LoadFleetMapping(path string) (map[string]string, string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return copyMapping(DefaultFleet), "embedded default fleet"
	}

	if m := NormalizeFleetMapping(raw); len(m) > 0 {
		return m, "file:" + path
	}
	return copyMapping(DefaultFleet), "embedded default fleet"
}

// NormalizeFleetMapping resolves any accepted mapping shape into a clean
// tail -> uppercase ICAO hex map. Entries with an empty tail or ICAO are
// dropped. Returns an empty map when the document matches no known shape.
func NormalizeFleetMapping(raw []byte) map[string]string {
	normalized := make(map[string]string)

	// Shapes 1 and 2: object keyed by tail.
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		for tail, value := range asObject {
			key := normalize.TailKey(tail)
			if key == "" {
				continue
			}

			var icaoStr string
			if err := json.Unmarshal(value, &icaoStr); err == nil {
				if hex := cleanICAO(icaoStr); hex != "" {
					normalized[key] = hex
				}
				continue
			}

			var entry struct {
				ICAO string `json:"icao"`
			}
			if err := json.Unmarshal(value, &entry); err == nil {
				if hex := cleanICAO(entry.ICAO); hex != "" {
					normalized[key] = hex
				}
			}
		}
		return normalized
	}

	// Shape 3: list of {tail, icao} objects.
	var asList []struct {
		Tail string `json:"tail"`
		ICAO string `json:"icao"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, entry := range asList {
			key := normalize.TailKey(entry.Tail)
			hex := cleanICAO(entry.ICAO)
			if key != "" && hex != "" {
				normalized[key] = hex
			}
		}
	}

	return normalized
}

func cleanICAO(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func copyMapping(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
