package trip

import (
	"context"
	"sync"

	"github.com/yathin7639/Eco-Move/internal/oracle"
)

// Verifier is the slice of the oracle the flow depends on. All methods are
// fail-open: they return usable defaults instead of errors.
type Verifier interface {
	VerifyImage(ctx context.Context, imageB64 string, phase oracle.Phase) oracle.Verdict
	TripTip(ctx context.Context, mode string, distanceKm float64) string
	CheckPlausibility(ctx context.Context, mode string, distanceKm float64, durationSec int64) bool
}

// Recorder receives completed trips. Implemented by the stats aggregator.
type Recorder interface {
	RecordTrip(ctx context.Context, userID string, rec Record) error
}

// Broadcaster fans live tracking updates out to stream subscribers.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

// Manager owns all active sessions, at most one per user.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[string]string

	verifier Verifier
	recorder Recorder
	hub      Broadcaster
}

func NewManager(verifier Verifier, recorder Recorder, hub Broadcaster) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		byUser:   map[string]string{},
		verifier: verifier,
		recorder: recorder,
		hub:      hub,
	}
}

// Start creates a session for the user and applies the mode selection.
// A previous session for the same user is torn down first.
func (m *Manager) Start(userID string, mode Mode, simulate bool) (Snapshot, error) {
	s := newSession(userID, m.verifier, m.recorder, m.hub)

	m.mu.Lock()
	if oldID, ok := m.byUser[userID]; ok {
		if old := m.sessions[oldID]; old != nil {
			old.teardown()
		}
		delete(m.sessions, oldID)
	}
	m.sessions[s.ID] = s
	m.byUser[userID] = s.ID
	m.mu.Unlock()

	return s.SelectMode(mode, simulate)
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove evicts a session, cancelling any background work it still owns.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.teardown()
		delete(m.sessions, id)
		delete(m.byUser, s.UserID)
	}
}

// CheckPlausibility proxies the speed-plausibility oracle call. It is not
// wired into the live integrity flag, which stays a plain threshold.
func (m *Manager) CheckPlausibility(ctx context.Context, mode Mode, distanceKm float64, durationSec int64) bool {
	return m.verifier.CheckPlausibility(ctx, string(mode), distanceKm, durationSec)
}
