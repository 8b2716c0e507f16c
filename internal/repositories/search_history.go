package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// SearchHistoryRepository keeps one capped, deduplicated term list per user.
type SearchHistoryRepository interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Record(ctx context.Context, userID, term string) ([]string, error)
	RemoveTerm(ctx context.Context, userID, term string) ([]string, error)
	Clear(ctx context.Context, userID string) error
}

// PostgresSearchHistoryRepository provides PostgreSQL-backed persistence for search history.
type PostgresSearchHistoryRepository struct {
	pool db.Pool
}

// NewPostgresSearchHistoryRepository constructs a search history repository backed by PostgreSQL.
func NewPostgresSearchHistoryRepository(pool db.Pool) *PostgresSearchHistoryRepository {
	return &PostgresSearchHistoryRepository{pool: pool}
}

// pushTerm prepends the normalized term to the list, dropping any earlier
// occurrence and truncating to the cap. Blank terms leave the list unchanged.
func pushTerm(terms []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return terms
	}

	out := make([]string, 0, len(terms)+1)
	out = append(out, term)
	for _, t := range terms {
		if t == term {
			continue
		}
		out = append(out, t)
		if len(out) == models.MaxSearchTerms {
			break
		}
	}

	return out
}

// Get returns the user's recent search terms, most recent first. A user who
// never searched gets an empty list.
func (r *PostgresSearchHistoryRepository) Get(ctx context.Context, userID string) ([]string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var terms []string
	err = conn.QueryRow(ctx, `
        SELECT searches FROM search_histories WHERE user_id = $1
    `, userID).Scan(&terms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select search history: %w", err)
	}

	return terms, nil
}

// Record pushes the term onto the user's history and returns the new list.
func (r *PostgresSearchHistoryRepository) Record(ctx context.Context, userID, term string) ([]string, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := pushTerm(current, term)
	if err := r.store(ctx, userID, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveTerm drops one term from the history and returns the new list. The
// term must currently be present.
func (r *PostgresSearchHistoryRepository) RemoveTerm(ctx context.Context, userID, term string) ([]string, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	updated := make([]string, 0, len(current))
	for _, t := range current {
		if t != term {
			updated = append(updated, t)
		}
	}
	if len(updated) == len(current) {
		return nil, ErrNotFound
	}

	if err := r.store(ctx, userID, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// Clear removes the user's entire search history.
func (r *PostgresSearchHistoryRepository) Clear(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM search_histories WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}

	return nil
}

func (r *PostgresSearchHistoryRepository) store(ctx context.Context, userID string, terms []string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if terms == nil {
		terms = []string{}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO search_histories (user_id, searches, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id) DO UPDATE SET searches = $2, updated_at = now()
    `, userID, terms)
	if err != nil {
		return writeError("store search history", err)
	}

	return nil
}

var _ SearchHistoryRepository = (*PostgresSearchHistoryRepository)(nil)
