package handlers

import (
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/middleware"
)

// SearchHistoryHandler manages the actor's recent search terms.
type SearchHistoryHandler struct {
	History SearchHistoryStore
}

type searchTermRequest struct {
	Term string `json:"term"`
}

// Get handles GET /api/v1/search-history: most recent first. A user who has
// never searched gets an empty list.
func (h SearchHistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	terms, err := h.History.Get(ctx, actor)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if terms == nil {
		terms = []string{}
	}

	respondData(ctx, w, http.StatusOK, "search history", terms)
}

// Record handles POST /api/v1/search-history: push a term to the front of
// the history. Blank terms are accepted and ignored.
func (h SearchHistoryHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	var req searchTermRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	terms, err := h.History.Record(ctx, actor, req.Term)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if terms == nil {
		terms = []string{}
	}

	respondData(ctx, w, http.StatusOK, "search term recorded", terms)
}

// RemoveTerm handles PATCH /api/v1/search-history: delete one term.
func (h SearchHistoryHandler) RemoveTerm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	var req searchTermRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Term = strings.TrimSpace(req.Term)
	if req.Term == "" {
		respondError(ctx, w, http.StatusBadRequest, "term is required")
		return
	}

	terms, err := h.History.RemoveTerm(ctx, actor, req.Term)
	if err != nil {
		respondStoreError(ctx, w, err, "term not found in history")
		return
	}
	if terms == nil {
		terms = []string{}
	}

	respondData(ctx, w, http.StatusOK, "search term removed", terms)
}

// Clear handles DELETE /api/v1/search-history.
func (h SearchHistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	if err := h.History.Clear(ctx, actor); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "search history cleared", nil)
}
