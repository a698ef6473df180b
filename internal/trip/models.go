package trip

import (
	"fmt"
	"time"

	"github.com/yathin7639/Eco-Move/internal/oracle"
)

type Mode string

const (
	ModeWalk     Mode = "WALK"
	ModeCycle    Mode = "CYCLE"
	ModeMetroBus Mode = "METRO_BUS"
	ModeCarpool  Mode = "CARPOOL"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWalk, ModeCycle, ModeMetroBus, ModeCarpool:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown transport mode %q", s)
}

// State is the per-session tracking flow state. Transitions are owned by
// Session; handlers never mutate state directly.
type State string

const (
	StateSelectMode   State = "SELECT_MODE"
	StateStartCamera  State = "START_CAMERA"
	StateCarpoolLobby State = "CARPOOL_LOBBY"
	StateTracking     State = "TRACKING"
	StatePaused       State = "PAUSED"
	StateSummary      State = "SUMMARY"
)

type Integrity string

const (
	IntegrityGood       Integrity = "GOOD"
	IntegritySuspicious Integrity = "SUSPICIOUS"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Record is the immutable result of a completed trip.
type Record struct {
	ID           string    `json:"id"`
	Mode         Mode      `json:"mode"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	DistanceKm   float64   `json:"distance_km"`
	CO2SavedKg   float64   `json:"co2_saved_kg"`
	PointsEarned int       `json:"points_earned"`
	Verified     bool      `json:"verified"`
	Path         []Point   `json:"path"`
	Steps        int       `json:"steps,omitempty"`
	Calories     int       `json:"calories,omitempty"`
}

// Snapshot is the wire view of a session returned by every flow endpoint.
type Snapshot struct {
	ID            string       `json:"id"`
	State         State        `json:"state"`
	Mode          Mode         `json:"mode"`
	Phase         oracle.Phase `json:"capture_phase,omitempty"`
	StartVerified bool         `json:"start_verified"`
	CameraActive  bool         `json:"camera_active"`
	CarpoolCode   string       `json:"carpool_code,omitempty"`
	Riders        []string     `json:"riders,omitempty"`
	ElapsedSec    int          `json:"elapsed_sec"`
	DistanceKm    float64      `json:"distance_km"`
	SpeedKmh      float64      `json:"speed_kmh"`
	CO2SavedKg    float64      `json:"co2_saved_kg"`
	Steps         int          `json:"steps"`
	Calories      int          `json:"calories"`
	Integrity     Integrity    `json:"integrity"`
	LivePoints    int          `json:"live_points"`
	Tip           string       `json:"tip,omitempty"`
	Record        *Record      `json:"record,omitempty"`
}
