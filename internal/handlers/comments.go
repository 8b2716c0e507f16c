package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// CommentHandler implements the comment endpoints including the pin
// mutations, which only the video owner may perform.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type commentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}: top-level comments with the
// pinned one first.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := chi.URLParam(r, "videoId")
	if !requireID(ctx, w, videoID, "video id") {
		return
	}

	p, err := pagination.Parse(r.URL.Query(), repositories.CommentSortColumns, "createdAt", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	comments, total, err := h.Comments.ListForVideo(ctx, videoID, middleware.ActorFromContext(ctx), p)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "comments", pagination.NewPage(comments, total, p))
}

// Replies handles GET /api/v1/comments/replies/{commentId}, oldest first.
func (h CommentHandler) Replies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commentID := chi.URLParam(r, "commentId")
	if !requireID(ctx, w, commentID, "comment id") {
		return
	}

	p, err := pagination.Parse(r.URL.Query(), nil, "", false)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	replies, total, err := h.Comments.ListReplies(ctx, commentID, middleware.ActorFromContext(ctx), p)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "replies", pagination.NewPage(replies, total, p))
}

// Create handles POST /api/v1/comments/{videoId} and, with a parent route
// parameter, POST /api/v1/comments/{videoId}/{parentId} for replies.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	videoID := chi.URLParam(r, "videoId")
	if !requireID(ctx, w, videoID, "video id") {
		return
	}

	parentID := chi.URLParam(r, "parentId")
	if parentID != "" && !requireID(ctx, w, parentID, "parent comment id") {
		return
	}

	var req commentRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   actor,
		ParentID:  parentID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video or parent comment not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, "comment added", comment.ID)
}

// Update handles PATCH /api/v1/comments/c/{commentId}. Only the comment
// owner may edit; edits mark the comment as edited.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.Comments.Update(ctx, comment.ID, req.Content); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "comment updated", comment.ID)
}

// Delete handles DELETE /api/v1/comments/c/{commentId}. The cascade to
// replies and likes is all-or-nothing; a failed cleanup leaves the comment
// in place and surfaces an internal error.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "comment deleted", nil)
}

// Pin handles PATCH /api/v1/comments/pin/{commentId}/{videoId}.
func (h CommentHandler) Pin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.pinTarget(w, r)
	if !ok {
		return
	}

	switch {
	case comment.ParentID != "":
		respondError(ctx, w, http.StatusBadRequest, "replies cannot be pinned")
		return
	case comment.IsPinned:
		respondError(ctx, w, http.StatusBadRequest, "comment is already pinned")
		return
	}

	if err := h.Comments.Pin(ctx, comment.VideoID, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "comment pinned", comment.ID)
}

// Unpin handles PATCH /api/v1/comments/unpin/{commentId}/{videoId}.
func (h CommentHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.pinTarget(w, r)
	if !ok {
		return
	}

	if !comment.IsPinned {
		respondError(ctx, w, http.StatusBadRequest, "comment is not pinned")
		return
	}

	if err := h.Comments.Unpin(ctx, comment.VideoID, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "comment unpinned", comment.ID)
}

// pinTarget resolves the comment and video of a pin route and verifies the
// actor owns the video. Pinning is the video owner's privilege, not the
// comment owner's.
func (h CommentHandler) pinTarget(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	commentID := chi.URLParam(r, "commentId")
	videoID := chi.URLParam(r, "videoId")
	if !requireID(ctx, w, commentID, "comment id") || !requireID(ctx, w, videoID, "video id") {
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, false
	}
	if comment.VideoID != videoID {
		respondError(ctx, w, http.StatusBadRequest, "comment does not belong to this video")
		return models.Comment{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Comment{}, false
	}
	if video.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the video owner may pin comments")
		return models.Comment{}, false
	}

	return comment, true
}

// ownedComment resolves the route comment and enforces comment ownership.
func (h CommentHandler) ownedComment(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	commentID := chi.URLParam(r, "commentId")
	if !requireID(ctx, w, commentID, "comment id") {
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, false
	}
	if comment.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this comment")
		return models.Comment{}, false
	}

	return comment, true
}
