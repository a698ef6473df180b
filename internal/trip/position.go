package trip

import (
	"context"
	"math/rand"
	"time"
)

// Sample is one position/speed reading. HasFix is false when the reading
// carries no coordinates (speed-only devices).
type Sample struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	SpeedKmh float64 `json:"speed_kmh"`
	HasFix   bool    `json:"has_fix"`
}

// PositionSource feeds samples into a tracking session. Client-pushed
// geolocation and the synthetic generator both go through this interface so
// metric computation stays single-sourced.
type PositionSource interface {
	Run(ctx context.Context, emit func(Sample))
}

// SyntheticSource is a random walk used when no real positioning is
// available. It starts near Connaught Place and drifts one sample per tick.
type SyntheticSource struct {
	Mode     Mode
	Interval time.Duration

	lat, lng float64
}

func NewSyntheticSource(mode Mode) *SyntheticSource {
	return &SyntheticSource{
		Mode:     mode,
		Interval: time.Second,
		lat:      28.6315,
		lng:      77.2167,
	}
}

func (s *SyntheticSource) Run(ctx context.Context, emit func(Sample)) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			speed := syntheticSpeedKmh(s.Mode)
			// ~1e-5 deg per km-ish drift; exact geometry is irrelevant here
			s.lat += (rand.Float64() - 0.5) * 0.0002
			s.lng += (rand.Float64() - 0.5) * 0.0002
			emit(Sample{Lat: s.lat, Lng: s.lng, SpeedKmh: speed, HasFix: true})
		}
	}
}

// syntheticSpeedKmh is the per-mode base speed with +-2 km/h jitter. The same
// values back fill client samples that arrive without a speed reading.
func syntheticSpeedKmh(mode Mode) float64 {
	base := 22.0
	if mode == ModeWalk {
		base = 5.0
	}
	return base + rand.Float64()*4 - 2
}
