package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// SubscriptionRepository exposes the subscribe toggle and the subscription
// list compositions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribedChannels(ctx context.Context, subscriberID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error)
	ListSubscribers(ctx context.Context, channelID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error)
	SubscribedFeed(ctx context.Context, subscriberID string, p pagination.Params) ([]models.VideoSummary, int64, error)
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the actor's subscription to the channel and reports the
// resulting state. Self-subscription is rejected before any write; deletion
// runs first so the common unsubscribe path needs no existence check.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, ErrInvalid
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, channelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check channel: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, now())
    `, uuid.NewString(), subscriberID, channelID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost a race against a concurrent toggle; the subscription exists.
			return true, nil
		}
		return false, writeError("insert subscription", err)
	}

	return true, nil
}

const subscribedChannelQuery = `
        SELECT s.created_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM subscriptions s2 WHERE s2.channel_id = u.id),
               EXISTS (SELECT 1 FROM subscriptions s2 WHERE s2.channel_id = u.id AND s2.subscriber_id = $2),
               count(*) OVER ()
        FROM subscriptions s
        JOIN users u ON u.id = %s
        WHERE %s = $1
        ORDER BY s.created_at DESC
        LIMIT $3 OFFSET $4`

// ListSubscribedChannels composes the channels a user subscribes to, newest
// subscription first.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	query := fmt.Sprintf(subscribedChannelQuery, "s.channel_id", "s.subscriber_id")
	return r.listChannels(ctx, query, subscriberID, actorID, p)
}

// ListSubscribers composes the users subscribed to a channel, newest first.
// Each subscriber carries its own channel projection.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	query := fmt.Sprintf(subscribedChannelQuery, "s.subscriber_id", "s.channel_id")
	return r.listChannels(ctx, query, channelID, actorID, p)
}

func (r *PostgresSubscriptionRepository) listChannels(ctx context.Context, query, userID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, userID, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var (
		channels []models.SubscribedChannel
		total    int64
	)
	for rows.Next() {
		var entry models.SubscribedChannel
		err := rows.Scan(
			&entry.SubscribedAt,
			&entry.Channel.ID, &entry.Channel.Username, &entry.Channel.FullName, &entry.Channel.AvatarURL,
			&entry.Channel.SubscribersCount, &entry.Channel.IsSubscribed, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan subscription: %w", err)
		}
		channels = append(channels, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return channels, total, nil
}

// SubscribedFeed flattens the published videos of every channel the user
// subscribes to into one recency-ordered feed.
func (r *PostgresSubscriptionRepository) SubscribedFeed(ctx context.Context, subscriberID string, p pagination.Params) ([]models.VideoSummary, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoSummaryColumns+`, count(*) OVER ()
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.is_published
          AND v.owner_id IN (SELECT channel_id FROM subscriptions WHERE subscriber_id = $1)
        ORDER BY v.created_at DESC
        LIMIT $2 OFFSET $3
    `, subscriberID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query subscribed feed: %w", err)
	}
	defer rows.Close()

	var (
		videos []models.VideoSummary
		total  int64
	)
	for rows.Next() {
		video, err := scanVideoSummary(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscribed feed: %w", err)
	}

	return videos, total, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
