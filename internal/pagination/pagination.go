// Package pagination wraps ordered, filtered compositions with page/limit
// windows and a whitelisted sort vocabulary.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSort indicates a sort key or direction outside the whitelist.
	ErrInvalidSort = errors.New("invalid sort parameter")
	// ErrInvalidPage indicates a non-positive or non-numeric page/limit value.
	ErrInvalidPage = errors.New("invalid page parameter")
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Params captures a validated pagination request. SortKey is one of the
// whitelist keys handed to Parse, never raw caller input.
type Params struct {
	Page    int
	Limit   int
	SortKey string
	Desc    bool
}

// Parse reads page, limit, sortBy and sortDir from the query. The sort
// whitelist maps accepted sortBy values to store column expressions;
// anything outside it is rejected before any query runs.
func Parse(q url.Values, sortable map[string]string, defaultSort string, defaultDesc bool) (Params, error) {
	p := Params{Page: 1, Limit: defaultLimit, SortKey: defaultSort, Desc: defaultDesc}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Params{}, fmt.Errorf("%w: page %q", ErrInvalidPage, raw)
		}
		p.Page = n
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Params{}, fmt.Errorf("%w: limit %q", ErrInvalidPage, raw)
		}
		if n > maxLimit {
			n = maxLimit
		}
		p.Limit = n
	}

	if raw := q.Get("sortBy"); raw != "" {
		if _, ok := sortable[raw]; !ok {
			return Params{}, fmt.Errorf("%w: sortBy %q", ErrInvalidSort, raw)
		}
		p.SortKey = raw
	}

	switch dir := strings.ToLower(q.Get("sortDir")); dir {
	case "":
	case "asc":
		p.Desc = false
	case "desc":
		p.Desc = true
	default:
		return Params{}, fmt.Errorf("%w: sortDir %q", ErrInvalidSort, dir)
	}

	return p, nil
}

// Offset returns the row offset for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy renders the ORDER BY expression for the params using the same
// whitelist that validated them.
func (p Params) OrderBy(sortable map[string]string) string {
	column, ok := sortable[p.SortKey]
	if !ok {
		column = p.SortKey
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return column + " " + dir
}

// Page is one window of a composed result set plus its metadata.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPage assembles page metadata for the supplied window. A zero-result
// composition yields an empty (never nil) item slice.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := int(total / int64(p.Limit))
	if total%int64(p.Limit) != 0 {
		totalPages++
	}

	return Page[T]{
		Items:      items,
		TotalItems: total,
		TotalPages: totalPages,
		Page:       p.Page,
		Limit:      p.Limit,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1 && total > 0,
	}
}
