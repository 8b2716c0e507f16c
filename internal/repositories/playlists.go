package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// PlaylistRepository exposes data access for playlists and their video
// membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListForUser(ctx context.Context, userID string, p pagination.Params) ([]models.PlaylistSummary, int64, error)
	Detail(ctx context.Context, playlistID string) (models.PlaylistDetail, error)
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new, empty playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description,
		playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		return writeError("insert playlist", err)
	}

	return nil
}

// FindByID fetches the raw playlist record, used for ownership checks.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id)

	var playlist models.Playlist
	err = row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description,
		&playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return playlist, nil
}

// Update renames the playlist and replaces its description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = now()
        WHERE id = $1
    `, id, name, description)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the playlist; its entries go with it.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddVideo appends the video to the playlist. A video already in the list
// maps to ErrInvalid, a missing playlist or video to ErrNotFound.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// Entries carry no video foreign key, so check the video by hand.
	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
		return fmt.Errorf("check playlist video: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, position)
        SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
        FROM playlist_videos
        WHERE playlist_id = $1
    `, playlistID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrInvalid
		}
		return writeError("insert playlist entry", err)
	}

	if _, err := conn.Exec(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, playlistID); err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}

	return nil
}

// RemoveVideo drops the video from the playlist. The entry must exist.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("delete playlist entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := conn.Exec(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, playlistID); err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}

	return nil
}

// ListForUser composes a user's playlists with their entry ids, counts and a
// cover thumbnail taken from the first entry that still resolves to a video.
func (r *PostgresPlaylistRepository) ListForUser(ctx context.Context, userID string, p pagination.Params) ([]models.PlaylistSummary, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
               COALESCE((SELECT array_agg(pv.video_id ORDER BY pv.position) FROM playlist_videos pv WHERE pv.playlist_id = p.id), '{}'),
               (SELECT count(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id),
               COALESCE((SELECT v.thumbnail_url
                         FROM playlist_videos pv
                         JOIN videos v ON v.id = pv.video_id
                         WHERE pv.playlist_id = p.id
                         ORDER BY pv.position
                         LIMIT 1), ''),
               count(*) OVER ()
        FROM playlists p
        WHERE p.owner_id = $1
        ORDER BY p.updated_at DESC
        LIMIT $2 OFFSET $3
    `, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query user playlists: %w", err)
	}
	defer rows.Close()

	var (
		playlists []models.PlaylistSummary
		total     int64
	)
	for rows.Next() {
		var summary models.PlaylistSummary
		err := rows.Scan(
			&summary.ID, &summary.Name, &summary.Description, &summary.OwnerID,
			&summary.CreatedAt, &summary.UpdatedAt,
			&summary.VideoIDs, &summary.TotalVideos, &summary.ThumbnailURL, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user playlists: %w", err)
	}

	return playlists, total, nil
}

// Detail composes the playlist with every entry that still resolves to a
// video. Entries pointing at deleted videos simply resolve to nothing.
func (r *PostgresPlaylistRepository) Detail(ctx context.Context, playlistID string) (models.PlaylistDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, playlistID)

	var detail models.PlaylistDetail
	err = row.Scan(
		&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName, &detail.Owner.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PlaylistDetail{}, ErrNotFound
		}
		return models.PlaylistDetail{}, fmt.Errorf("select playlist detail: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoSummaryColumns+`
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, playlistID)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		video, err := scanVideoSummary(rows)
		if err != nil {
			return models.PlaylistDetail{}, err
		}
		detail.Videos = append(detail.Videos, video)
	}

	if err := rows.Err(); err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	detail.TotalVideos = int64(len(detail.Videos))

	return detail, nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
