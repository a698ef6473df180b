package trip

import (
	"math"
	"testing"
)

func TestPointsForWalk(t *testing.T) {
	if got := PointsFor(ModeWalk, 0.8, 1000, 1); got != 50 {
		t.Fatalf("1000 steps should earn 50 points, got %d", got)
	}
	if got := PointsFor(ModeWalk, 0.1, 19, 1); got != 0 {
		t.Fatalf("19 steps should earn 0 points, got %d", got)
	}
}

func TestPointsForCycle(t *testing.T) {
	if got := PointsFor(ModeCycle, 10.0, 0, 1); got != 50 {
		t.Fatalf("10km cycle should earn 50 points, got %d", got)
	}
	// floor, not round
	if got := PointsFor(ModeCycle, 1.99, 0, 1); got != 9 {
		t.Fatalf("1.99km cycle should earn 9 points, got %d", got)
	}
}

func TestPointsForMetroRounds(t *testing.T) {
	if got := PointsFor(ModeMetroBus, 1.99, 0, 1); got != 10 {
		t.Fatalf("1.99km metro should round to 10 points, got %d", got)
	}
}

func TestPointsForCarpool(t *testing.T) {
	if got := PointsFor(ModeCarpool, 6.0, 0, 3); got != 54 {
		t.Fatalf("6km with 3 riders should earn 54 points, got %d", got)
	}
}

func TestPointsForUnknownMode(t *testing.T) {
	if got := PointsFor(Mode("TELEPORT"), 100, 100, 100); got != 0 {
		t.Fatalf("unknown mode should earn nothing, got %d", got)
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("WALK"); err != nil {
		t.Fatalf("parse walk: %v", err)
	}
	if _, err := ParseMode("JETPACK"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestCO2Factor(t *testing.T) {
	dist := 12.5
	if co2 := dist * CO2FactorKgPerKm; math.Abs(co2-2.5) > 1e-9 {
		t.Fatalf("unexpected co2: %v", co2)
	}
}
