package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// LikeRepository exposes the toggle mutation, the liked-video composition and
// the cleanup paths used by cascades and the background reaper.
type LikeRepository interface {
	Toggle(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (bool, error)
	ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int64, error)
	DeleteForVideo(ctx context.Context, videoID string) error
	DeleteForTweet(ctx context.Context, tweetID string) error
	MarkTweetDeleted(ctx context.Context, tweetID string, deletedAt time.Time) error
	PurgeTweetDeleted(ctx context.Context, olderThan time.Time) (int64, error)
}

var likeTargetTables = map[models.LikeKind]string{
	models.LikeVideo:   "videos",
	models.LikeComment: "comments",
	models.LikeTweet:   "tweets",
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the actor's like on the target and reports the resulting
// state. Deletion is attempted first: on the common already-liked path this
// saves an existence check. The store's uniqueness constraint guarantees at
// most one surviving like per (actor, target) under concurrent toggles.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (bool, error) {
	table, ok := likeTargetTables[kind]
	if !ok {
		return false, ErrInvalid
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes WHERE liked_by = $1 AND kind = $2 AND target_id = $3
    `, actorID, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, targetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like target: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, now())
    `, uuid.NewString(), actorID, kind, targetID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost a race against a concurrent toggle; the like exists.
			return true, nil
		}
		return false, writeError("insert like", err)
	}

	return true, nil
}

// ListLikedVideos composes the videos the actor has liked, newest like first,
// each joined with its owner projection.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT l.created_at, `+videoSummaryColumns+`, count(*) OVER ()
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.kind = 'video'
        ORDER BY l.created_at DESC
        LIMIT $2 OFFSET $3
    `, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var (
		liked []models.LikedVideo
		total int64
	)
	for rows.Next() {
		var entry models.LikedVideo
		err := rows.Scan(
			&entry.LikedAt,
			&entry.Video.ID, &entry.Video.ThumbnailURL, &entry.Video.Title, &entry.Video.Description,
			&entry.Video.Category, &entry.Video.Duration, &entry.Video.Views, &entry.Video.CreatedAt, &entry.Video.UpdatedAt,
			&entry.Video.Owner.ID, &entry.Video.Owner.Username, &entry.Video.Owner.FullName, &entry.Video.Owner.AvatarURL,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan liked video: %w", err)
		}
		liked = append(liked, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate liked videos: %w", err)
	}

	return liked, total, nil
}

// DeleteForVideo removes every like on the video. Zero removed rows means
// nothing to clean up.
func (r *PostgresLikeRepository) DeleteForVideo(ctx context.Context, videoID string) error {
	return r.deleteForTarget(ctx, models.LikeVideo, videoID)
}

// DeleteForTweet removes every like on the tweet.
func (r *PostgresLikeRepository) DeleteForTweet(ctx context.Context, tweetID string) error {
	return r.deleteForTarget(ctx, models.LikeTweet, tweetID)
}

func (r *PostgresLikeRepository) deleteForTarget(ctx context.Context, kind models.LikeKind, targetID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM likes WHERE kind = $1 AND target_id = $2
    `, kind, targetID); err != nil {
		return fmt.Errorf("delete %s likes: %w", kind, err)
	}

	return nil
}

// MarkTweetDeleted stamps the tweet's remaining likes for deferred removal.
// This is the fallback when immediate cleanup after a tweet deletion fails.
func (r *PostgresLikeRepository) MarkTweetDeleted(ctx context.Context, tweetID string, deletedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        UPDATE likes SET tweet_deleted = $2
        WHERE kind = 'tweet' AND target_id = $1 AND tweet_deleted IS NULL
    `, tweetID, deletedAt.UTC()); err != nil {
		return fmt.Errorf("mark tweet likes deleted: %w", err)
	}

	return nil
}

// PurgeTweetDeleted removes likes whose soft-expiry marker is older than the
// cutoff. The background reaper calls this periodically.
func (r *PostgresLikeRepository) PurgeTweetDeleted(ctx context.Context, olderThan time.Time) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes WHERE tweet_deleted IS NOT NULL AND tweet_deleted < $1
    `, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired likes: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
