package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// LikeHandler implements the like toggle endpoints and the liked-video list.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeVideo, "videoId", "video")
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeComment, "commentId", "comment")
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTweet, "tweetId", "tweet")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeKind, param, noun string) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	targetID := chi.URLParam(r, param)
	if !requireID(ctx, w, targetID, noun+" id") {
		return
	}

	liked, err := h.Likes.Toggle(ctx, actor, kind, targetID)
	if err != nil {
		respondStoreError(ctx, w, err, noun+" not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "like toggled", map[string]bool{"isLiked": liked})
}

// LikedVideos handles GET /api/v1/likes/videos: the actor's liked videos,
// newest like first. An actor with no likes gets an empty page, not an error.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	p, err := pagination.Parse(r.URL.Query(), nil, "", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	videos, total, err := h.Likes.ListLikedVideos(ctx, actor, p)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "liked videos", pagination.NewPage(videos, total, p))
}
