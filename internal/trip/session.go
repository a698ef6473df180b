package trip

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/yathin7639/Eco-Move/internal/oracle"
	"github.com/yathin7639/Eco-Move/internal/shared/geo"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransition   = errors.New("trip: action not allowed in current state")
	ErrVerificationPending = errors.New("trip: a verification is already in flight")
	ErrLobbyNotReady       = errors.New("trip: carpool needs at least 2 riders to launch")
	ErrLobbyFull           = errors.New("trip: carpool lobby is full")
	ErrRiderExists         = errors.New("trip: rider already in lobby")
)

const (
	hostRiderName = "You (Host)"
	maxRiders     = 4
	tickInterval  = time.Second
	codeCharset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength    = 5
)

// Session is one user's trip flow. All state lives behind mu; the ticker and
// the position source are the only background writers and both are cancelled
// through the same context, so Stop tears them down together.
type Session struct {
	ID     string
	UserID string

	verifier Verifier
	recorder Recorder
	hub      Broadcaster

	mu            sync.Mutex
	state         State
	mode          Mode
	phase         oracle.Phase
	verifying     bool
	startVerified bool
	cameraActive  bool

	carpoolCode string
	riders      []string

	simulate   bool
	startedAt  time.Time
	elapsedSec int
	distanceKm float64
	speedKmh   float64
	steps      float64
	calories   float64
	integrity  Integrity
	path       []Point

	cancel context.CancelFunc

	tip    string
	record *Record
}

func newSession(userID string, verifier Verifier, recorder Recorder, hub Broadcaster) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		verifier:  verifier,
		recorder:  recorder,
		hub:       hub,
		state:     StateSelectMode,
		integrity: IntegrityGood,
	}
}

// SelectMode leaves SELECT_MODE. Walk and cycle trips start tracking at
// once, metro/bus goes through camera verification, carpool opens a lobby.
func (s *Session) SelectMode(mode Mode, simulate bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelectMode {
		return s.snapshotLocked(), ErrInvalidTransition
	}

	s.mode = mode
	s.simulate = simulate
	s.startVerified = false
	s.tip = ""
	s.record = nil

	switch mode {
	case ModeMetroBus:
		s.state = StateStartCamera
		s.phase = oracle.PhaseTicket
		s.cameraActive = true
	case ModeCarpool:
		s.state = StateCarpoolLobby
		s.carpoolCode = newJoinCode()
		s.riders = []string{hostRiderName}
	default:
		s.beginTrackingLocked()
	}
	return s.snapshotLocked(), nil
}

// Capture submits a camera frame for the current verification phase. A
// TICKET success advances to STATION; a STATION success marks the start
// verified and enters TRACKING. Only one verification may be in flight.
func (s *Session) Capture(ctx context.Context, imageB64 string) (oracle.Verdict, Snapshot, error) {
	s.mu.Lock()
	if s.state != StateStartCamera {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return oracle.Verdict{}, snap, ErrInvalidTransition
	}
	if s.verifying {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return oracle.Verdict{}, snap, ErrVerificationPending
	}
	s.verifying = true
	phase := s.phase
	s.mu.Unlock()

	// Oracle call happens outside the lock; it is bounded by the client
	// timeout plus ctx.
	verdict := s.verifier.VerifyImage(ctx, imageB64, phase)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifying = false

	// The flow may have been reset while the verdict was pending.
	if s.state != StateStartCamera {
		return verdict, s.snapshotLocked(), nil
	}

	if verdict.IsValid {
		if phase == oracle.PhaseTicket {
			s.phase = oracle.PhaseStation
			verdict.Reasoning = "Ticket verified! Now capture the station/bus."
		} else {
			s.startVerified = true
			verdict.Reasoning = "Station verified! Let's go."
			s.beginTrackingLocked()
		}
	}
	return verdict, s.snapshotLocked(), nil
}

// JoinRider adds a rider to the carpool lobby. Joins are simulated: a blank
// name gets a generated one.
func (s *Session) JoinRider(name string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCarpoolLobby {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	if len(s.riders) >= maxRiders {
		return s.snapshotLocked(), ErrLobbyFull
	}

	if name == "" {
		for i := 0; i < 5; i++ {
			name = gofakeit.FirstName()
			if !s.hasRider(name) {
				break
			}
		}
	}
	if s.hasRider(name) {
		return s.snapshotLocked(), ErrRiderExists
	}
	s.riders = append(s.riders, name)
	return s.snapshotLocked(), nil
}

func (s *Session) RegenerateCode() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCarpoolLobby {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	s.carpoolCode = newJoinCode()
	return s.snapshotLocked(), nil
}

// Launch starts tracking from the lobby. The host alone cannot launch;
// exactly two riders is enough.
func (s *Session) Launch() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCarpoolLobby {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	if len(s.riders) < 2 {
		return s.snapshotLocked(), ErrLobbyNotReady
	}
	s.beginTrackingLocked()
	return s.snapshotLocked(), nil
}

// PushSample feeds a client-reported position into the session.
func (s *Session) PushSample(sample Sample) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking && s.state != StatePaused {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	s.applySampleLocked(sample)
	return s.snapshotLocked(), nil
}

func (s *Session) Pause() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	s.state = StatePaused
	return s.snapshotLocked(), nil
}

func (s *Session) Resume() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	s.state = StateTracking
	return s.snapshotLocked(), nil
}

// Stop halts the ticker and position source together, freezes the metrics
// into a Record, fetches a best-effort tip and hands the record to the
// aggregator. Calling Stop on an already-stopped session is a no-op.
func (s *Session) Stop(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.state == StateSummary {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if s.state != StateTracking && s.state != StatePaused {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrInvalidTransition
	}
	s.cancelTrackingLocked()

	now := time.Now()
	rec := &Record{
		ID:           uuid.NewString(),
		Mode:         s.mode,
		StartTime:    s.startedAt,
		EndTime:      now,
		DistanceKm:   s.distanceKm,
		CO2SavedKg:   s.distanceKm * CO2FactorKgPerKm,
		PointsEarned: PointsFor(s.mode, s.distanceKm, s.steps, len(s.riders)),
		Verified:     s.mode != ModeMetroBus || s.startVerified,
		Path:         append([]Point(nil), s.path...),
		Steps:        int(s.steps),
		Calories:     int(s.calories),
	}
	s.record = rec
	s.state = StateSummary
	mode, dist := s.mode, s.distanceKm
	s.mu.Unlock()

	tip := s.verifier.TripTip(ctx, string(mode), dist)

	var recordErr error
	if s.recorder != nil {
		recordErr = s.recorder.RecordTrip(ctx, s.UserID, *rec)
	}

	s.mu.Lock()
	s.tip = tip
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return snap, recordErr
}

// Reset returns to SELECT_MODE, discarding all session-local tracking state.
// It doubles as back-navigation out of the camera and lobby screens, which
// is why it also releases the camera. A live trip must be stopped first.
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTracking || s.state == StatePaused {
		return s.snapshotLocked(), ErrInvalidTransition
	}

	s.cancelTrackingLocked()
	s.state = StateSelectMode
	s.phase = ""
	s.startVerified = false
	s.cameraActive = false
	s.carpoolCode = ""
	s.riders = nil
	s.elapsedSec = 0
	s.distanceKm = 0
	s.speedKmh = 0
	s.steps = 0
	s.calories = 0
	s.integrity = IntegrityGood
	s.path = nil
	s.tip = ""
	s.record = nil
	return s.snapshotLocked(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// teardown releases background work and the camera when the session is
// evicted mid-flow.
func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTrackingLocked()
	s.cameraActive = false
}

func (s *Session) beginTrackingLocked() {
	s.cameraActive = false
	s.state = StateTracking
	s.startedAt = time.Now()
	s.elapsedSec = 0
	s.distanceKm = 0
	s.speedKmh = 0
	s.steps = 0
	s.calories = 0
	s.integrity = IntegrityGood
	s.path = nil

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.runTicker(ctx)
	if s.simulate {
		go NewSyntheticSource(s.mode).Run(ctx, func(sample Sample) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.applySampleLocked(sample)
		})
	}
}

// cancelTrackingLocked is idempotent; double cancellation is safe.
func (s *Session) cancelTrackingLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) runTicker(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state == StateTracking {
				s.elapsedSec++
			}
			s.mu.Unlock()
		}
	}
}

// applySampleLocked folds one sample into the session metrics. Paused
// sessions ignore samples. CO2 is derived from total distance every time so
// the two can never drift apart.
func (s *Session) applySampleLocked(sample Sample) {
	if s.state != StateTracking {
		return
	}

	speed := sample.SpeedKmh
	if speed <= 0 {
		if sample.HasFix && len(s.path) > 0 {
			last := s.path[len(s.path)-1]
			speed = geo.HaversineKm(last.Lat, last.Lng, sample.Lat, sample.Lng) / tickInterval.Hours()
		} else {
			speed = syntheticSpeedKmh(s.mode)
		}
	}

	inc := speed * tickInterval.Hours()
	s.distanceKm += inc
	s.speedKmh = speed

	if s.mode == ModeWalk {
		stepInc := inc * StepsPerKm
		s.steps += stepInc
		s.calories += stepInc * CaloriesPerStep
	}

	if s.mode == ModeWalk && speed > WalkSpeedLimitKmh {
		s.integrity = IntegritySuspicious
	} else {
		s.integrity = IntegrityGood
	}

	if sample.HasFix {
		s.path = append(s.path, Point{Lat: sample.Lat, Lng: sample.Lng})
	}

	s.broadcastLocked(sample)
}

type liveUpdate struct {
	SessionID  string    `json:"session_id"`
	ElapsedSec int       `json:"elapsed_sec"`
	DistanceKm float64   `json:"distance_km"`
	SpeedKmh   float64   `json:"speed_kmh"`
	CO2SavedKg float64   `json:"co2_saved_kg"`
	Steps      int       `json:"steps"`
	Integrity  Integrity `json:"integrity"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
}

func (s *Session) broadcastLocked(sample Sample) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(liveUpdate{
		SessionID:  s.ID,
		ElapsedSec: s.elapsedSec,
		DistanceKm: s.distanceKm,
		SpeedKmh:   s.speedKmh,
		CO2SavedKg: s.distanceKm * CO2FactorKgPerKm,
		Steps:      int(s.steps),
		Integrity:  s.integrity,
		Lat:        sample.Lat,
		Lng:        sample.Lng,
	})
	s.hub.Broadcast(s.ID, payload)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:            s.ID,
		State:         s.state,
		Mode:          s.mode,
		StartVerified: s.startVerified,
		CameraActive:  s.cameraActive,
		CarpoolCode:   s.carpoolCode,
		Riders:        append([]string(nil), s.riders...),
		ElapsedSec:    s.elapsedSec,
		DistanceKm:    s.distanceKm,
		SpeedKmh:      s.speedKmh,
		CO2SavedKg:    s.distanceKm * CO2FactorKgPerKm,
		Steps:         int(s.steps),
		Calories:      int(s.calories),
		Integrity:     s.integrity,
		LivePoints:    PointsFor(s.mode, s.distanceKm, s.steps, len(s.riders)),
		Tip:           s.tip,
		Record:        s.record,
	}
	if s.state == StateStartCamera {
		snap.Phase = s.phase
	}
	return snap
}

func (s *Session) hasRider(name string) bool {
	for _, r := range s.riders {
		if r == name {
			return true
		}
	}
	return false
}

func newJoinCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(code)
}
