package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yathin7639/Eco-Move/internal/blob"

	"github.com/google/uuid"
)

type Type string

const (
	TypeWalk    Type = "WALK"
	TypeCycle   Type = "CYCLE"
	TypeMetro   Type = "METRO"
	TypeCarpool Type = "CARPOOL"
	TypeStreak  Type = "STREAK"
)

var (
	ErrNotFound   = errors.New("challenge: not found")
	ErrValidation = errors.New("challenge: invalid challenge")
)

type Challenge struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         Type   `json:"type"`
	Target       int    `json:"target"`
	RewardAmount int    `json:"reward_amount"`
	Active       bool   `json:"active"`
}

// Service keeps the challenge catalogue as one blob. Admin traffic is rare
// enough that read-modify-write of the whole list is fine.
type Service struct {
	blobs *blob.Store
}

func NewService(blobs *blob.Store) *Service {
	return &Service{blobs: blobs}
}

// seedChallenges is the catalogue a fresh deployment starts with.
func seedChallenges() []Challenge {
	return []Challenge{
		{
			ID:           "seed-morning-walker",
			Title:        "Morning Walker",
			Description:  "Walk 3 km before 9 AM",
			Type:         TypeWalk,
			Target:       3,
			RewardAmount: 50,
			Active:       true,
		},
		{
			ID:           "seed-metro-master",
			Title:        "Metro Master",
			Description:  "Complete 5 metro trips this week",
			Type:         TypeMetro,
			Target:       5,
			RewardAmount: 100,
			Active:       true,
		},
	}
}

func (s *Service) load(ctx context.Context) ([]Challenge, error) {
	var list []Challenge
	found, err := s.blobs.Get(ctx, blob.ChallengesKey(), &list)
	if err != nil {
		return nil, err
	}
	if !found {
		return seedChallenges(), nil
	}
	return list, nil
}

func (s *Service) save(ctx context.Context, list []Challenge) error {
	return s.blobs.Set(ctx, blob.ChallengesKey(), list)
}

func validate(c Challenge) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	switch c.Type {
	case TypeWalk, TypeCycle, TypeMetro, TypeCarpool, TypeStreak:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrValidation, c.Type)
	}
	if c.RewardAmount <= 0 {
		return fmt.Errorf("%w: reward must be positive", ErrValidation)
	}
	if c.Target <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrValidation)
	}
	return nil
}

// List returns every challenge, seeds included.
func (s *Service) List(ctx context.Context) ([]Challenge, error) {
	return s.load(ctx)
}

// Active returns only challenges riders can currently work toward.
func (s *Service) Active(ctx context.Context) ([]Challenge, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Challenge, 0, len(list))
	for _, c := range list {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Service) Create(ctx context.Context, input Challenge) (Challenge, error) {
	if err := validate(input); err != nil {
		return Challenge{}, err
	}
	input.ID = uuid.NewString()
	list, err := s.load(ctx)
	if err != nil {
		return Challenge{}, err
	}
	list = append(list, input)
	if err := s.save(ctx, list); err != nil {
		return Challenge{}, err
	}
	return input, nil
}

func (s *Service) Update(ctx context.Context, id string, input Challenge) (Challenge, error) {
	input.ID = id
	if err := validate(input); err != nil {
		return Challenge{}, err
	}
	list, err := s.load(ctx)
	if err != nil {
		return Challenge{}, err
	}
	for i := range list {
		if list[i].ID == id {
			list[i] = input
			if err := s.save(ctx, list); err != nil {
				return Challenge{}, err
			}
			return input, nil
		}
	}
	return Challenge{}, ErrNotFound
}

func (s *Service) Delete(ctx context.Context, id string) error {
	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list = append(list[:i], list[i+1:]...)
			return s.save(ctx, list)
		}
	}
	return ErrNotFound
}
