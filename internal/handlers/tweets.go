package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Likes   LikeStore
	NowFunc func() time.Time
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	var req tweetRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   actor,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, "tweet posted", tweet.ID)
}

// Update handles PATCH /api/v1/tweets/{tweetId}. The owner filter folds the
// existence and authorization checks into one store operation.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	tweetID := chi.URLParam(r, "tweetId")
	if !requireID(ctx, w, tweetID, "tweet id") {
		return
	}

	var req tweetRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.Tweets.UpdateOwned(ctx, tweetID, actor, req.Content); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "tweet updated", tweetID)
}

// Delete handles DELETE /api/v1/tweets/{tweetId}. Once the tweet itself is
// gone the request succeeds no matter what happens to its likes: cleanup
// falls back to a soft-expiry marker, and if even that write fails the
// orphans are logged and left for the reaper.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := middleware.ActorFromContext(ctx)

	tweetID := chi.URLParam(r, "tweetId")
	if !requireID(ctx, w, tweetID, "tweet id") {
		return
	}

	if err := h.Tweets.DeleteOwned(ctx, tweetID, actor); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	if err := h.Likes.DeleteForTweet(ctx, tweetID); err != nil {
		logger.Warn("delete tweet likes", "tweetId", tweetID, "error", err)
		if err := h.Likes.MarkTweetDeleted(ctx, tweetID, h.now()); err != nil {
			logger.Error("mark tweet likes for expiry", "tweetId", tweetID, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, "tweet deleted", nil)
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := chi.URLParam(r, "userId")
	if !requireID(ctx, w, userID, "user id") {
		return
	}

	p, err := pagination.Parse(r.URL.Query(), nil, "", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	tweets, total, err := h.Tweets.ListForUser(ctx, userID, middleware.ActorFromContext(ctx), p)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "tweets", pagination.NewPage(tweets, total, p))
}
