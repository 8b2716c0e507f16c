package repositories

import (
	"context"
	"fmt"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// TweetRepository exposes data access for tweets. Update and Delete filter on
// the owner, so a miss covers both a missing tweet and a foreign one.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	UpdateOwned(ctx context.Context, id, ownerID, content string) error
	DeleteOwned(ctx context.Context, id, ownerID string) error
	ListForUser(ctx context.Context, userID, actorID string, p pagination.Params) ([]models.TweetView, int64, error)
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// Create persists a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		return writeError("insert tweet", err)
	}

	return nil
}

// UpdateOwned replaces the tweet content when the actor owns it.
func (r *PostgresTweetRepository) UpdateOwned(ctx context.Context, id, ownerID, content string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE tweets
        SET content = $3, updated_at = now()
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID, content)
	if err != nil {
		return fmt.Errorf("update tweet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteOwned removes the tweet when the actor owns it. The owner filter
// makes the existence and authorization checks one operation.
func (r *PostgresTweetRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM tweets WHERE id = $1 AND owner_id = $2
    `, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForUser composes a user's tweets, newest first, annotated with like
// counts and the actor's like state.
func (r *PostgresTweetRepository) ListForUser(ctx context.Context, userID, actorID string, p pagination.Params) ([]models.TweetView, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT t.id, t.content, t.created_at, t.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM likes l WHERE l.kind = 'tweet' AND l.target_id = t.id),
               EXISTS (SELECT 1 FROM likes l WHERE l.kind = 'tweet' AND l.target_id = t.id AND l.liked_by = $2),
               count(*) OVER ()
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC
        LIMIT $3 OFFSET $4
    `, userID, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query user tweets: %w", err)
	}
	defer rows.Close()

	var (
		tweets []models.TweetView
		total  int64
	)
	for rows.Next() {
		var view models.TweetView
		err := rows.Scan(
			&view.ID, &view.Content, &view.CreatedAt, &view.UpdatedAt,
			&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
			&view.LikesCount, &view.IsLiked, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, view)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user tweets: %w", err)
	}

	return tweets, total, nil
}

var _ TweetRepository = (*PostgresTweetRepository)(nil)
