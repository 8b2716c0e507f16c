package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// VideoFilter narrows the published-video feed. Zero values apply no filter.
// Category may be the trending pseudo-category, which drops the category
// filter and ranks by view count.
type VideoFilter struct {
	OwnerID  string
	Category string
	Tag      string
	Query    string
}

// VideoRepository exposes data access for videos, the feed compositions and
// the channel dashboard aggregates.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Detail(ctx context.Context, videoID, actorID string) (models.VideoDetail, error)
	IncrementViews(ctx context.Context, videoID string) error
	Feed(ctx context.Context, filter VideoFilter, p pagination.Params) ([]models.VideoSummary, int64, error)
	Related(ctx context.Context, ref models.Video, limit int) ([]models.VideoSummary, error)
	Update(ctx context.Context, video models.Video) error
	TogglePublish(ctx context.Context, videoID string) (bool, error)
	Delete(ctx context.Context, videoID string) error
	PurgeComments(ctx context.Context, videoID string) error
	ChannelStats(ctx context.Context, channelID string, publishedOnly bool) (models.ChannelStats, error)
	DashboardVideos(ctx context.Context, ownerID string, p pagination.Params) ([]models.DashboardVideo, int64, error)
}

// VideoSortColumns whitelists the sort vocabulary for video listings.
var VideoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"title":     "v.title",
	"duration":  "v.duration",
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoSummaryColumns = `v.id, v.thumbnail_url, v.title, v.description, v.category, v.duration, v.views, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url`

func scanVideoSummary(rows pgx.Rows, extra ...any) (models.VideoSummary, error) {
	var video models.VideoSummary
	targets := []any{
		&video.ID, &video.ThumbnailURL, &video.Title, &video.Description,
		&video.Category, &video.Duration, &video.Views, &video.CreatedAt, &video.UpdatedAt,
		&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName, &video.Owner.AvatarURL,
	}
	targets = append(targets, extra...)
	if err := rows.Scan(targets...); err != nil {
		return models.VideoSummary{}, fmt.Errorf("scan video: %w", err)
	}
	return video, nil
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, video_key, thumbnail_url, thumbnail_key, title, description, category, tags, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `, video.ID, video.OwnerID, video.VideoURL, video.VideoKey, video.ThumbnailURL, video.ThumbnailKey,
		video.Title, video.Description, video.Category, video.Tags, video.Duration,
		video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return writeError("insert video", err)
	}

	return nil
}

// FindByID fetches the raw video record regardless of publish state. Used
// for ownership checks before mutations.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, video_url, video_key, thumbnail_url, thumbnail_key, title, description, category, tags, duration, views, is_published, created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	var video models.Video
	err = row.Scan(
		&video.ID, &video.OwnerID, &video.VideoURL, &video.VideoKey,
		&video.ThumbnailURL, &video.ThumbnailKey, &video.Title, &video.Description,
		&video.Category, &video.Tags, &video.Duration, &video.Views,
		&video.IsPublished, &video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Detail composes the single-video view for a published video: joined channel
// owner plus like annotations for the actor. Unpublished videos are invisible
// here and map to ErrNotFound.
func (r *PostgresVideoRepository) Detail(ctx context.Context, videoID, actorID string) (models.VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.video_url, v.thumbnail_url, v.title, v.description, v.category, v.tags, v.duration, v.views, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id),
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2),
               (SELECT count(*) FROM likes l WHERE l.kind = 'video' AND l.target_id = v.id),
               EXISTS (SELECT 1 FROM likes l WHERE l.kind = 'video' AND l.target_id = v.id AND l.liked_by = $2)
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1 AND v.is_published
    `, videoID, actorID)

	var detail models.VideoDetail
	err = row.Scan(
		&detail.ID, &detail.VideoURL, &detail.ThumbnailURL, &detail.Title, &detail.Description,
		&detail.Category, &detail.Tags, &detail.Duration, &detail.Views, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName, &detail.Owner.AvatarURL,
		&detail.Owner.SubscribersCount, &detail.Owner.IsSubscribed,
		&detail.LikesCount, &detail.IsLiked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoDetail{}, ErrNotFound
		}
		return models.VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return detail, nil
}

// IncrementViews bumps the view counter by exactly one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Feed lists published videos matching the filter, joined with their owner
// projection. The trending pseudo-category overrides the sort with view count.
func (r *PostgresVideoRepository) Feed(ctx context.Context, filter VideoFilter, p pagination.Params) ([]models.VideoSummary, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := []string{"v.is_published"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.OwnerID != "" {
		where = append(where, "v.owner_id = "+arg(filter.OwnerID))
	}
	if filter.Category != "" && filter.Category != models.CategoryTrending {
		where = append(where, "v.category = "+arg(filter.Category))
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM unnest(v.tags) t WHERE lower(t) = lower("+arg(filter.Tag)+"))")
	}
	if filter.Query != "" {
		match := arg("%" + filter.Query + "%")
		where = append(where, "(v.title ILIKE "+match+" OR v.description ILIKE "+match+")")
	}

	orderBy := p.OrderBy(VideoSortColumns)
	if filter.Category == models.CategoryTrending {
		orderBy = "v.views DESC"
	}

	query := `
        SELECT ` + videoSummaryColumns + `, count(*) OVER ()
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE ` + strings.Join(where, " AND ") + `
        ORDER BY ` + orderBy + `
        LIMIT ` + arg(p.Limit) + ` OFFSET ` + arg(p.Offset())

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query video feed: %w", err)
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
		return nil, 0, fmt.Errorf("iterate video feed: %w", err)
	}

	return videos, total, nil
}

// Related lists published videos sharing a tag (case-insensitive) or the
// category of the reference video, excluding it, ranked by views.
func (r *PostgresVideoRepository) Related(ctx context.Context, ref models.Video, limit int) ([]models.VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tags := make([]string, 0, len(ref.Tags))
	for _, t := range ref.Tags {
		tags = append(tags, strings.ToLower(t))
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoSummaryColumns+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id <> $1
          AND v.is_published
          AND (v.category = $2 OR EXISTS (SELECT 1 FROM unnest(v.tags) t WHERE lower(t) = ANY($3)))
        ORDER BY v.views DESC
        LIMIT $4
    `, ref.ID, ref.Category, tags, limit)
	if err != nil {
		return nil, fmt.Errorf("query related videos: %w", err)
	}
	defer rows.Close()

	var videos []models.VideoSummary
	for rows.Next() {
		video, err := scanVideoSummary(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate related videos: %w", err)
	}

	return videos, nil
}

// Update modifies the mutable fields of a video. Owner and file handle are
// immutable; thumbnail may be replaced.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, category = $4, tags = $5,
            thumbnail_url = $6, thumbnail_key = $7, updated_at = now()
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.Category, video.Tags,
		video.ThumbnailURL, video.ThumbnailKey)
	if err != nil {
		return writeError("update video", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// TogglePublish flips the publish flag and returns the new state.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, videoID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var published bool
	err = conn.QueryRow(ctx, `
        UPDATE videos
        SET is_published = NOT is_published, updated_at = now()
        WHERE id = $1
        RETURNING is_published
    `, videoID).Scan(&published)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle publish: %w", err)
	}

	return published, nil
}

// Delete removes the video record itself. Comment and like cleanup run as
// separate steps so the caller can execute them concurrently and judge each
// outcome independently.
func (r *PostgresVideoRepository) Delete(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, videoID)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PurgeComments removes every comment on the video along with the likes on
// those comments. Zero rows removed means nothing to clean up, not failure.
func (r *PostgresVideoRepository) PurgeComments(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purge comments: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        DELETE FROM likes
        WHERE kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1)
    `, videoID)
	if err != nil {
		return fmt.Errorf("delete comment likes: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit purge comments: %w", err)
	}

	return nil
}

// ChannelStats aggregates the dashboard numbers for a channel, optionally
// counting only published videos.
func (r *PostgresVideoRepository) ChannelStats(ctx context.Context, channelID string, publishedOnly bool) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT (SELECT count(*) FROM videos v WHERE v.owner_id = $1 AND (NOT $2 OR v.is_published)),
               COALESCE((SELECT sum(v.views) FROM videos v WHERE v.owner_id = $1 AND (NOT $2 OR v.is_published)), 0),
               (SELECT count(*)
                FROM likes l
                JOIN videos v ON v.id = l.target_id
                WHERE l.kind = 'video' AND v.owner_id = $1 AND (NOT $2 OR v.is_published)),
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = $1)
    `, channelID, publishedOnly)

	var stats models.ChannelStats
	if err := row.Scan(&stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes, &stats.TotalSubscribers); err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// DashboardVideos lists a channel's own videos in every publish state, each
// with its like count.
func (r *PostgresVideoRepository) DashboardVideos(ctx context.Context, ownerID string, p pagination.Params) ([]models.DashboardVideo, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoSummaryColumns+`, v.is_published,
               (SELECT count(*) FROM likes l WHERE l.kind = 'video' AND l.target_id = v.id),
               count(*) OVER ()
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.owner_id = $1
        ORDER BY `+p.OrderBy(VideoSortColumns)+`
        LIMIT $2 OFFSET $3
    `, ownerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query dashboard videos: %w", err)
	}
	defer rows.Close()

	var (
		videos []models.DashboardVideo
		total  int64
	)
	for rows.Next() {
		var entry models.DashboardVideo
		summary, err := scanVideoSummary(rows, &entry.IsPublished, &entry.LikesCount, &total)
		if err != nil {
			return nil, 0, err
		}
		entry.VideoSummary = summary
		videos = append(videos, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate dashboard videos: %w", err)
	}

	return videos, total, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
