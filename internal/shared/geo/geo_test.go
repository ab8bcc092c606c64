package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineMetersKnownPairs(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantM                  float64
	}{
		// Published great-circle distances, checked to 0.5%.
		{"paris-london", 48.8566, 2.3522, 51.5074, -0.1278, 343500},
		{"nyc-la", 40.7128, -74.0060, 34.0522, -118.2437, 3936000},
		{"delhi-mumbai", 28.6139, 77.2090, 19.0760, 72.8777, 1153000},
	}

	for _, tc := range cases {
		got := HaversineMeters(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
		if math.Abs(got-tc.wantM)/tc.wantM > 0.005 {
			t.Fatalf("%s: got %.0f m, want %.0f m (within 0.5%%)", tc.name, got, tc.wantM)
		}
	}
}

func TestHaversineIdenticalPointsZero(t *testing.T) {
	pts := [][2]float64{{0, 0}, {-6.2, 106.816}, {89.9, 179.9}}
	for _, p := range pts {
		if d := HaversineMeters(p[0], p[1], p[0], p[1]); d != 0 {
			t.Fatalf("expected exact zero for identical points, got %v", d)
		}
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineMeters(-6.2, 106.816, 48.8566, 2.3522)
	b := HaversineMeters(48.8566, 2.3522, -6.2, 106.816)
	if a != b {
		t.Fatalf("expected symmetric distance, got %v vs %v", a, b)
	}
}

func TestAccumulate(t *testing.T) {
	total := 0.0
	total = Accumulate(total, 0, 0, 0, 0.001)
	seg := HaversineMeters(0, 0, 0, 0.001)
	if total != seg {
		t.Fatalf("expected %v, got %v", seg, total)
	}

	total = Accumulate(total, 0, 0.001, 0, 0.002)
	if total < seg || math.Abs(total-2*seg)/(2*seg) > 0.01 {
		t.Fatalf("expected ~2 segments (%v), got %v", 2*seg, total)
	}

	if got := Accumulate(5, 1, 1, 1, 1); got != 5 {
		t.Fatalf("degenerate segment must add exactly 0, got %v", got)
	}
}
