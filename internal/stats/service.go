package stats

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/yathin7639/Eco-Move/internal/blob"
	"github.com/yathin7639/Eco-Move/internal/trip"
)

var ErrInsufficientPoints = errors.New("stats: not enough points")

// historyCap bounds the trip-history blob; localStorage had no limit but a
// whole-value store needs one to stay writable.
const historyCap = 200

type UserStats struct {
	Name          string     `json:"name"`
	TotalPoints   int        `json:"total_points"`
	TotalDistance float64    `json:"total_distance"`
	TotalCo2Saved float64    `json:"total_co2_saved"`
	StreakDays    int        `json:"streak_days"`
	Level         int        `json:"level"`
	LastTripDate  *time.Time `json:"last_trip_date,omitempty"`
}

// PointsSink receives the user's new point total after every fold. The
// leaderboard implements it.
type PointsSink interface {
	SetPoints(ctx context.Context, userID, name string, points int) error
}

// Service folds completed trips into cumulative stats and trip history and
// persists both. It is the only writer of those two blobs.
type Service struct {
	blobs *blob.Store
	board PointsSink

	now func() time.Time
}

func NewService(blobs *blob.Store, board PointsSink) *Service {
	return &Service{blobs: blobs, board: board, now: time.Now}
}

func defaultStats() UserStats {
	return UserStats{
		Name:          "Aryan Gupta",
		TotalPoints:   1250,
		TotalDistance: 45.2,
		TotalCo2Saved: 8.4,
		StreakDays:    5,
		Level:         3,
	}
}

// Stats returns the user's cumulative stats, seeding defaults on first read.
func (s *Service) Stats(ctx context.Context, userID string) (UserStats, error) {
	var st UserStats
	found, err := s.blobs.Get(ctx, blob.StatsKey(userID), &st)
	if err != nil {
		return UserStats{}, err
	}
	if !found {
		return defaultStats(), nil
	}
	return st, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]trip.Record, error) {
	var history []trip.Record
	if _, err := s.blobs.Get(ctx, blob.TripsKey(userID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// RecordTrip folds one completed trip into stats and history. Both blobs are
// written before the call returns; the caller may treat the pair as one
// durable mutation.
func (s *Service) RecordTrip(ctx context.Context, userID string, rec trip.Record) error {
	st, err := s.Stats(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	st.StreakDays = nextStreak(st.StreakDays, st.LastTripDate, now)
	st.TotalPoints += rec.PointsEarned
	st.TotalDistance += rec.DistanceKm
	st.TotalCo2Saved += rec.CO2SavedKg
	st.Level = levelFor(st.TotalPoints)
	st.LastTripDate = &now

	history, err := s.History(ctx, userID)
	if err != nil {
		return err
	}
	history = append([]trip.Record{rec}, history...)
	if len(history) > historyCap {
		history = history[:historyCap]
	}

	if err := s.blobs.Set(ctx, blob.TripsKey(userID), history); err != nil {
		return err
	}
	if err := s.blobs.Set(ctx, blob.StatsKey(userID), st); err != nil {
		return err
	}

	if s.board != nil {
		if err := s.board.SetPoints(ctx, userID, st.Name, st.TotalPoints); err != nil {
			log.Printf("stats: leaderboard update failed: %v", err)
		}
	}
	return nil
}

// SpendPoints debits a redemption from the user's balance.
func (s *Service) SpendPoints(ctx context.Context, userID string, points int) (UserStats, error) {
	st, err := s.Stats(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	if st.TotalPoints < points {
		return UserStats{}, ErrInsufficientPoints
	}
	st.TotalPoints -= points
	st.Level = levelFor(st.TotalPoints)

	if err := s.blobs.Set(ctx, blob.StatsKey(userID), st); err != nil {
		return UserStats{}, err
	}
	return st, nil
}

// SetName stores the display name picked at sign-up.
func (s *Service) SetName(ctx context.Context, userID, name string) (UserStats, error) {
	st, err := s.Stats(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	st.Name = name
	if err := s.blobs.Set(ctx, blob.StatsKey(userID), st); err != nil {
		return UserStats{}, err
	}
	return st, nil
}

func levelFor(points int) int {
	return 1 + points/500
}

// nextStreak applies the consecutive-day rule: next calendar day extends the
// streak, a gap resets it to 1, another trip the same day leaves it alone.
// The very first trip also extends it, matching the seeded profile.
func nextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return current + 1
	}
	switch daysBetween(*last, now) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, b.Location())
	end := time.Date(by, bm, bd, 0, 0, 0, 0, b.Location())
	return int(end.Sub(start).Hours() / 24)
}
