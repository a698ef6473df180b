package geo

import "testing"

func TestHaversineKm(t *testing.T) {
	// Connaught Place (28.6315, 77.2167) to Gurgaon (28.4595, 77.0266) ~ 25-30 km
	d := HaversineKm(28.6315, 77.2167, 28.4595, 77.0266)
	if d < 20 || d > 35 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineKmZero(t *testing.T) {
	if d := HaversineKm(28.6, 77.2, 28.6, 77.2); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}
