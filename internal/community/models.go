package community

import (
	"fmt"
	"time"
)

type PostType string

const (
	PostStreak  PostType = "STREAK"
	PostProblem PostType = "PROBLEM"
	PostAd      PostType = "AD"
)

func ParsePostType(s string) (PostType, error) {
	switch PostType(s) {
	case PostStreak, PostProblem, PostAd:
		return PostType(s), nil
	}
	return "", fmt.Errorf("unknown post type %q", s)
}

type Post struct {
	ID       string   `json:"id"`
	Type     PostType `json:"type"`
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Caption  string   `json:"caption,omitempty"`

	// STREAK payload
	StreakDay  int     `json:"streak_day,omitempty"`
	Steps      int     `json:"steps,omitempty"`
	DistanceKm float64 `json:"distance_km,omitempty"`
	Points     int     `json:"points,omitempty"`

	// PROBLEM payload
	ProblemCategory string `json:"problem_category,omitempty"`
	Location        string `json:"location,omitempty"`

	Likes    int       `json:"likes"`
	Liked    bool      `json:"liked"`
	Comments []Comment `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
