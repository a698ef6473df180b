package trip

import "math"

const (
	// CO2FactorKgPerKm converts distance into avoided emissions. CO2 is
	// always recomputed from total distance, never incremented separately.
	CO2FactorKgPerKm = 0.2

	StepsPerKm      = 1312.0
	CaloriesPerStep = 0.04

	// WalkSpeedLimitKmh flags implausible walking speed. Display-only.
	WalkSpeedLimitKmh = 8.0
)

// PointsFor implements the per-mode point table. It serves both the live
// estimate during tracking and the final total at completion.
func PointsFor(mode Mode, distanceKm, steps float64, riders int) int {
	switch mode {
	case ModeWalk:
		return int(math.Floor(steps / 20))
	case ModeCycle:
		return int(math.Floor(distanceKm * 5))
	case ModeMetroBus:
		return int(math.Round(distanceKm * 5))
	case ModeCarpool:
		return int(math.Round(distanceKm * 3 * float64(riders)))
	}
	return 0
}
