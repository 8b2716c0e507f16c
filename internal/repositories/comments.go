package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// CommentRepository exposes data access for comments, their annotated list
// compositions and the pin/cascade mutations.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID, actorID string, p pagination.Params) ([]models.CommentView, int64, error)
	ListReplies(ctx context.Context, parentID, actorID string, p pagination.Params) ([]models.CommentView, int64, error)
	Pin(ctx context.Context, videoID, commentID string) error
	Unpin(ctx context.Context, videoID, commentID string) error
}

// CommentSortColumns whitelists the sort vocabulary for comment listings.
var CommentSortColumns = map[string]string{
	"createdAt": "c.created_at",
	"likes":     "(SELECT count(*) FROM likes l WHERE l.kind = 'comment' AND l.target_id = c.id)",
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a comment. For replies it verifies the parent is a
// top-level comment on the same video; replies never nest further.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if comment.ParentID != "" {
		var (
			parentVideo  string
			parentParent sql.NullString
		)
		err := conn.QueryRow(ctx, `
            SELECT video_id, parent_id FROM comments WHERE id = $1
        `, comment.ParentID).Scan(&parentVideo, &parentParent)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("select parent comment: %w", err)
		}
		if parentParent.Valid || parentVideo != comment.VideoID {
			return ErrInvalid
		}
	}

	parentID := sql.NullString{String: comment.ParentID, Valid: comment.ParentID != ""}

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, parent_id, content, is_pinned, is_edited, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, false, false, $6, $7)
    `, comment.ID, comment.VideoID, comment.OwnerID, parentID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return writeError("insert comment", err)
	}

	return nil
}

// FindByID fetches the raw comment record, used for ownership and pin
// precondition checks.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, video_id, owner_id, parent_id, content, is_pinned, is_edited, created_at, updated_at
        FROM comments
        WHERE id = $1
    `, id)

	var (
		comment  models.Comment
		parentID sql.NullString
	)
	err = row.Scan(
		&comment.ID, &comment.VideoID, &comment.OwnerID, &parentID, &comment.Content,
		&comment.IsPinned, &comment.IsEdited, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}
	comment.ParentID = parentID.String

	return comment, nil
}

// Update replaces the comment content and marks it edited.
func (r *PostgresCommentRepository) Update(ctx context.Context, id, content string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE comments
        SET content = $2, is_edited = true, updated_at = now()
        WHERE id = $1
    `, id, content)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a comment and cascades to its replies and all affected
// likes. When two independent existence checks find neither likes nor
// replies, the comment is deleted directly without transaction overhead;
// otherwise the whole cascade commits or rolls back as one unit.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	var (
		wg                   sync.WaitGroup
		hasLikes, hasReplies bool
		likesErr, repliesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		hasLikes, likesErr = r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM likes WHERE kind = 'comment' AND target_id = $1)`, id)
	}()
	go func() {
		defer wg.Done()
		hasReplies, repliesErr = r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM comments WHERE parent_id = $1)`, id)
	}()
	wg.Wait()

	if likesErr != nil {
		return likesErr
	}
	if repliesErr != nil {
		return repliesErr
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if !hasLikes && !hasReplies {
		tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return writeError("delete comment", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin comment cascade: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        DELETE FROM likes
        WHERE kind = 'comment'
          AND (target_id = $1 OR target_id IN (SELECT id FROM comments WHERE parent_id = $1))
    `, id)
	if err != nil {
		return fmt.Errorf("delete cascade likes: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE parent_id = $1`, id); err != nil {
		return fmt.Errorf("delete replies: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit comment cascade: %w", err)
	}

	return nil
}

func (r *PostgresCommentRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var found bool
	if err := conn.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}

	return found, nil
}

const commentViewColumns = `c.id, c.content, c.is_pinned, c.is_edited, c.created_at, c.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT count(*) FROM likes l WHERE l.kind = 'comment' AND l.target_id = c.id),
               EXISTS (SELECT 1 FROM likes l WHERE l.kind = 'comment' AND l.target_id = c.id AND l.liked_by = $2)`

// ListForVideo composes the annotated top-level comments of a video. The
// pinned comment always sorts first, then the requested order applies.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID, actorID string, p pagination.Params) ([]models.CommentView, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+commentViewColumns+`,
               (SELECT count(*) FROM comments rc WHERE rc.parent_id = c.id),
               count(*) OVER ()
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1 AND c.parent_id IS NULL
        ORDER BY c.is_pinned DESC, `+p.OrderBy(CommentSortColumns)+`
        LIMIT $3 OFFSET $4
    `, videoID, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query video comments: %w", err)
	}
	defer rows.Close()

	var (
		comments []models.CommentView
		total    int64
	)
	for rows.Next() {
		var view models.CommentView
		err := rows.Scan(
			&view.ID, &view.Content, &view.IsPinned, &view.IsEdited, &view.CreatedAt, &view.UpdatedAt,
			&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
			&view.LikesCount, &view.IsLiked, &view.RepliesCount, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, view)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate video comments: %w", err)
	}

	return comments, total, nil
}

// ListReplies composes the annotated replies of a top-level comment,
// oldest first.
func (r *PostgresCommentRepository) ListReplies(ctx context.Context, parentID, actorID string, p pagination.Params) ([]models.CommentView, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+commentViewColumns+`,
               count(*) OVER ()
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.parent_id = $1
        ORDER BY c.created_at ASC
        LIMIT $3 OFFSET $4
    `, parentID, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	var (
		replies []models.CommentView
		total   int64
	)
	for rows.Next() {
		var view models.CommentView
		err := rows.Scan(
			&view.ID, &view.Content, &view.IsPinned, &view.IsEdited, &view.CreatedAt, &view.UpdatedAt,
			&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
			&view.LikesCount, &view.IsLiked, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, view)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate replies: %w", err)
	}

	return replies, total, nil
}

// Pin marks a top-level comment as the video's pinned comment. When no
// comment is currently pinned a direct update suffices; when another one is,
// the swap runs in a transaction so readers never observe two pinned
// comments or zero.
func (r *PostgresCommentRepository) Pin(ctx context.Context, videoID, commentID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var current string
	err = conn.QueryRow(ctx, `
        SELECT id FROM comments WHERE video_id = $1 AND is_pinned
    `, videoID).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		tag, err := conn.Exec(ctx, `
            UPDATE comments
            SET is_pinned = true, updated_at = now()
            WHERE id = $2 AND video_id = $1 AND parent_id IS NULL AND NOT is_pinned
        `, videoID, commentID)
		if err != nil {
			return writeError("pin comment", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	case err != nil:
		return fmt.Errorf("select pinned comment: %w", err)
	case current == commentID:
		return ErrInvalid
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin pin swap: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE comments SET is_pinned = false, updated_at = now()
        WHERE id = $1 AND is_pinned
    `, current)
	if err != nil {
		return fmt.Errorf("unpin previous comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	tag, err = tx.Exec(ctx, `
        UPDATE comments SET is_pinned = true, updated_at = now()
        WHERE id = $2 AND video_id = $1 AND parent_id IS NULL AND NOT is_pinned
    `, videoID, commentID)
	if err != nil {
		return writeError("pin comment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit pin swap: %w", err)
	}

	return nil
}

// Unpin clears the pinned flag. The comment must currently be pinned on the
// stated video.
func (r *PostgresCommentRepository) Unpin(ctx context.Context, videoID, commentID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE comments
        SET is_pinned = false, updated_at = now()
        WHERE id = $2 AND video_id = $1 AND is_pinned
    `, videoID, commentID)
	if err != nil {
		return fmt.Errorf("unpin comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)
