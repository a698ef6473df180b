package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/yathin7639/Eco-Move/internal/stats"
)

const (
	// MinRedeemPoints is the smallest redeemable amount.
	MinRedeemPoints = 25
	// Every 25 points convert to ₹15.
	pointsPerUnit = 25
	rupeesPerUnit = 15.0
)

var ErrBelowMinimum = fmt.Errorf("rewards: minimum %d points required for redemption", MinRedeemPoints)

type Redemption struct {
	PointsSpent     int     `json:"points_spent"`
	CashValueINR    float64 `json:"cash_value_inr"`
	RemainingPoints int     `json:"remaining_points"`
}

// CashValueINR converts a point amount into rupees.
func CashValueINR(points int) float64 {
	return float64(points) / pointsPerUnit * rupeesPerUnit
}

type Service struct {
	stats *stats.Service
}

func NewService(statsSvc *stats.Service) *Service {
	return &Service{stats: statsSvc}
}

// Redeem validates and debits a redemption. Rejections mutate nothing.
func (s *Service) Redeem(ctx context.Context, userID string, points int) (Redemption, error) {
	if points < MinRedeemPoints {
		return Redemption{}, ErrBelowMinimum
	}
	st, err := s.stats.SpendPoints(ctx, userID, points)
	if err != nil {
		return Redemption{}, err
	}
	return Redemption{
		PointsSpent:     points,
		CashValueINR:    CashValueINR(points),
		RemainingPoints: st.TotalPoints,
	}, nil
}

func IsRejection(err error) bool {
	return errors.Is(err, ErrBelowMinimum) || errors.Is(err, stats.ErrInsufficientPoints)
}
