package community

import (
	"context"
	"errors"
	"strings"

	"github.com/yathin7639/Eco-Move/internal/db"

	"github.com/google/uuid"
)

var (
	ErrUnknownType   = errors.New("community: unknown post type")
	ErrEmptyPost     = errors.New("community: post needs an author and a caption")
	ErrEmptyComment  = errors.New("community: comment text required")
	ErrMissingReport = errors.New("community: problem posts need a category and location")
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// CreatePost validates and stores a post. Posts are never deleted; the
// feed is the permanent record of the neighbourhood.
func (s *Service) CreatePost(ctx context.Context, input Post) (Post, error) {
	switch input.Type {
	case PostStreak, PostProblem, PostAd:
	default:
		return Post{}, ErrUnknownType
	}
	if input.UserName == "" || strings.TrimSpace(input.Caption) == "" {
		return Post{}, ErrEmptyPost
	}
	if input.Type == PostProblem && (input.ProblemCategory == "" || input.Location == "") {
		return Post{}, ErrMissingReport
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, type, user_id, user_name, caption, streak_day, steps, distance_km, points, problem_category, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, input.ID, input.Type, input.UserID, input.UserName, input.Caption,
		input.StreakDay, input.Steps, input.DistanceKm, input.Points,
		input.ProblemCategory, input.Location)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Post{}, err
	}
	return input, nil
}

// Feed returns posts newest-first, with like counts, the viewer's own
// like state, and comments attached. An empty filter returns everything.
func (s *Service) Feed(ctx context.Context, viewerID string, filter PostType) ([]Post, error) {
	query := `
		SELECT p.id, p.type, p.user_id, p.user_name, p.caption,
		       p.streak_day, p.steps, p.distance_km, p.points,
		       p.problem_category, p.location,
		       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
		       EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1),
		       p.created_at
		FROM posts p`
	args := []any{viewerID}
	if filter != "" {
		query += `
		WHERE p.type = $2`
		args = append(args, filter)
	}
	query += `
		ORDER BY p.created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	var ids []string
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Type, &p.UserID, &p.UserName, &p.Caption,
			&p.StreakDay, &p.Steps, &p.DistanceKm, &p.Points,
			&p.ProblemCategory, &p.Location,
			&p.Likes, &p.Liked, &p.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	comments, err := s.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Comments = comments[posts[i].ID]
	}
	return posts, nil
}

// ToggleLike adds the viewer's like, or removes it if already present.
// Returns the resulting like count and whether the viewer now likes the post.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (int, bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, postID, userID)
	if err != nil {
		return 0, false, err
	}
	liked := tag.RowsAffected() > 0
	if !liked {
		if _, err := s.db.Exec(ctx, `
			DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2
		`, postID, userID); err != nil {
			return 0, false, err
		}
	}

	var likes int
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id=$1
	`, postID)
	if err := row.Scan(&likes); err != nil {
		return 0, false, err
	}
	return likes, liked, nil
}

// AddComment appends a comment to a post. Comments cannot be edited or removed.
func (s *Service) AddComment(ctx context.Context, postID, userName, text string) (Comment, error) {
	if strings.TrimSpace(text) == "" {
		return Comment{}, ErrEmptyComment
	}
	comment := Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		UserName: userName,
		Text:     text,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO post_comments (id, post_id, user_name, body)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, comment.ID, comment.PostID, comment.UserName, comment.Text)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *Service) loadComments(ctx context.Context, postIDs []string) (map[string][]Comment, error) {
	if len(postIDs) == 0 {
		return map[string][]Comment{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, user_name, body, created_at
		FROM post_comments WHERE post_id = ANY($1)
		ORDER BY created_at
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := map[string][]Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserName, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments[c.PostID] = append(comments[c.PostID], c)
	}
	return comments, rows.Err()
}
