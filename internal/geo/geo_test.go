package geo

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lon1     float64
		lat2     float64
		lon2     float64
		expected float64
		epsilon  float64
	}{
		{
			name: "identical points",
			lat1: 40.2186, lon1: -111.7233,
			lat2: 40.2186, lon2: -111.7233,
			expected: 0.0,
			epsilon:  1e-9,
		},
		{
			name: "slc to provo",
			lat1: 40.7884, lon1: -111.9778,
			lat2: 40.2186, lon2: -111.7233,
			expected: 41.9,
			epsilon:  1.0,
		},
		{
			name: "one degree of latitude",
			lat1: 40.0, lon1: -111.0,
			lat2: 41.0, lon2: -111.0,
			expected: 69.1,
			epsilon:  0.2,
		},
		{
			name: "antipodal-ish long haul",
			lat1: 0.0, lon1: 0.0,
			lat2: 0.0, lon2: 180.0,
			expected: math.Pi * EarthRadiusMiles,
			epsilon:  0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("DistanceMiles = %v, expected %v ± %v", got, tt.expected, tt.epsilon)
			}
		})
	}
}

func TestDistanceMilesSymmetry(t *testing.T) {
	ab := DistanceMiles(41.7912, -111.8522, 37.0965, -113.5684)
	ba := DistanceMiles(37.0965, -113.5684, 41.7912, -111.8522)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}
