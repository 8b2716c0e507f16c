package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// UserRepository defines the data access contract for accounts, channel
// profiles and watch history.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	FindByRefreshToken(ctx context.Context, token string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	UpdateAvatar(ctx context.Context, id, url, key string) (string, error)
	UpdateCoverImage(ctx context.Context, id, url, key string) (string, error)
	ChannelProfile(ctx context.Context, channelID, actorID string) (models.ChannelProfile, error)
	SearchChannels(ctx context.Context, term, actorID string, p pagination.Params) ([]models.Channel, int64, error)
	AddWatchEntry(ctx context.Context, userID, videoID string, watchedAt time.Time) error
	WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryDay, int64, error)
	ClearWatchHistory(ctx context.Context, userID string) error
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, full_name, avatar_url, avatar_key, cover_image_url, cover_image_key, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user         models.User
		refreshToken sql.NullString
	)
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.FullName,
		&user.AvatarURL, &user.AvatarKey, &user.CoverImageURL, &user.CoverImageKey,
		&refreshToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.RefreshToken = refreshToken.String
	return user, nil
}

// Create persists a new account. A taken username or email maps to ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, password_hash, full_name, avatar_url, avatar_key, cover_image_url, cover_image_key, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, user.ID, user.Username, user.Email, user.Password, user.FullName,
		user.AvatarURL, user.AvatarKey, user.CoverImageURL, user.CoverImageKey,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return writeError("insert user", err)
	}

	return nil
}

// FindByID fetches a full account record.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = $1
    `, id))
}

// FindByLogin fetches a user by username or email, case-insensitively.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE lower(username) = lower($1) OR lower(email) = lower($1)
    `, login))
}

// FindByRefreshToken resolves the account holding the presented refresh token.
func (r *PostgresUserRepository) FindByRefreshToken(ctx context.Context, token string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE refresh_token = $1
    `, token))
}

// UpdateDetails modifies the mutable profile fields of an account.
func (r *PostgresUserRepository) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET full_name = $2, email = $3, updated_at = now()
        WHERE id = $1
    `, id, fullName, email)
	if err != nil {
		return writeError("update user details", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET password_hash = $2, updated_at = now()
        WHERE id = $1
    `, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetRefreshToken overwrites the single active refresh token for the account.
// An empty token clears it, which is how logout revokes the session.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	stored := sql.NullString{String: token, Valid: token != ""}

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = $2
        WHERE id = $1
    `, id, stored)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateAvatar stores the new avatar location and returns the previous blob
// key so the caller can release it.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id, url, key string) (string, error) {
	return r.swapImage(ctx, "avatar", id, url, key)
}

// UpdateCoverImage stores the new cover image location and returns the
// previous blob key so the caller can release it.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id, url, key string) (string, error) {
	return r.swapImage(ctx, "cover_image", id, url, key)
}

func (r *PostgresUserRepository) swapImage(ctx context.Context, field, id, url, key string) (string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var previous string
	err = conn.QueryRow(ctx, fmt.Sprintf(`
        UPDATE users new
        SET %[1]s_url = $2, %[1]s_key = $3, updated_at = now()
        FROM (SELECT id, %[1]s_key FROM users WHERE id = $1) old
        WHERE new.id = old.id
        RETURNING old.%[1]s_key
    `, field), id, url, key).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("update user %s: %w", field, err)
	}

	return previous, nil
}

// ChannelProfile composes the public channel page for a user, annotated with
// subscription counts and the actor's own subscription state.
func (r *PostgresUserRepository) ChannelProfile(ctx context.Context, channelID, actorID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.email, u.avatar_url, u.cover_image_url, u.created_at,
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id),
               (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
        FROM users u
        WHERE u.id = $1
    `, channelID, actorID)

	var profile models.ChannelProfile
	err = row.Scan(
		&profile.ID, &profile.Username, &profile.FullName, &profile.Email,
		&profile.AvatarURL, &profile.CoverImageURL, &profile.CreatedAt,
		&profile.SubscribersCount, &profile.ChannelsSubscribedToCount, &profile.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// SearchChannels matches usernames and full names against the term and
// returns channel projections for one page.
func (r *PostgresUserRepository) SearchChannels(ctx context.Context, term, actorID string, p pagination.Params) ([]models.Channel, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id),
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2),
               count(*) OVER ()
        FROM users u
        WHERE u.username ILIKE '%' || $1 || '%' OR u.full_name ILIKE '%' || $1 || '%'
        ORDER BY `+p.OrderBy(ChannelSortColumns)+`
        LIMIT $3 OFFSET $4
    `, term, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query channel search: %w", err)
	}
	defer rows.Close()

	var (
		channels []models.Channel
		total    int64
	)
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.Username, &ch.FullName, &ch.AvatarURL, &ch.SubscribersCount, &ch.IsSubscribed, &total); err != nil {
			return nil, 0, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate channel search: %w", err)
	}

	return channels, total, nil
}

// ChannelSortColumns whitelists the sort vocabulary for channel search.
var ChannelSortColumns = map[string]string{
	"username":  "u.username",
	"createdAt": "u.created_at",
}

// AddWatchEntry records that the user watched the video on the given day.
// Re-watching the same video on the same day is a no-op.
func (r *PostgresUserRepository) AddWatchEntry(ctx context.Context, userID, videoID string, watchedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, watched_on, video_id)
        VALUES ($1, $2::date, $3)
        ON CONFLICT (user_id, watched_on, video_id) DO NOTHING
    `, userID, watchedAt.UTC(), videoID)
	if err != nil {
		return writeError("insert watch entry", err)
	}

	return nil
}

// WatchHistory returns the user's watched videos grouped by calendar day,
// newest day first. Pagination applies to days, not individual videos.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryDay, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	dayRows, err := conn.Query(ctx, `
        SELECT watched_on, count(*) OVER ()
        FROM watch_history
        WHERE user_id = $1
        GROUP BY watched_on
        ORDER BY watched_on DESC
        LIMIT $2 OFFSET $3
    `, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query watch days: %w", err)
	}
	defer dayRows.Close()

	var (
		days  []string
		total int64
	)
	for dayRows.Next() {
		var day time.Time
		if err := dayRows.Scan(&day, &total); err != nil {
			return nil, 0, fmt.Errorf("scan watch day: %w", err)
		}
		days = append(days, day.Format("2006-01-02"))
	}
	if err := dayRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate watch days: %w", err)
	}
	dayRows.Close()

	if len(days) == 0 {
		return nil, total, nil
	}

	rows, err := conn.Query(ctx, `
        SELECT wh.watched_on,
               v.id, v.thumbnail_url, v.title, v.description, v.category, v.duration, v.views, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1 AND wh.watched_on = ANY($2::date[])
        ORDER BY wh.watched_on DESC, wh.created_at DESC
    `, userID, days)
	if err != nil {
		return nil, 0, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]models.VideoSummary, len(days))
	for rows.Next() {
		var (
			day   time.Time
			video models.VideoSummary
		)
		err := rows.Scan(
			&day,
			&video.ID, &video.ThumbnailURL, &video.Title, &video.Description,
			&video.Category, &video.Duration, &video.Views, &video.CreatedAt, &video.UpdatedAt,
			&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName, &video.Owner.AvatarURL,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan watch entry: %w", err)
		}
		key := day.Format("2006-01-02")
		grouped[key] = append(grouped[key], video)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate watch history: %w", err)
	}

	history := make([]models.WatchHistoryDay, 0, len(days))
	for _, day := range days {
		history = append(history, models.WatchHistoryDay{Date: day, Videos: grouped[day]})
	}

	return history, total, nil
}

// ClearWatchHistory removes every watch entry for the user.
func (r *PostgresUserRepository) ClearWatchHistory(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM watch_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear watch history: %w", err)
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
