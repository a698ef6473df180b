package leaderboard

import (
	"context"
	"time"

	"github.com/yathin7639/Eco-Move/internal/db"
)

type Entry struct {
	Rank      int       `json:"rank"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

const defaultLimit = 20

// Service maintains one row per rider holding their latest point total.
type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// SetPoints records the rider's new total, replacing any previous row.
func (s *Service) SetPoints(ctx context.Context, userID, name string, points int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO leaderboard (user_id, name, points, updated_at)
		VALUES ($1,$2,$3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET name = EXCLUDED.name, points = EXCLUDED.points, updated_at = now()
	`, userID, name, points)
	return err
}

// Top returns the highest-scoring riders, ranked from 1.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.Query(ctx, `
		SELECT user_id, name, points, updated_at
		FROM leaderboard
		ORDER BY points DESC, updated_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Points, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
