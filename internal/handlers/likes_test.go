package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

func TestLikeHandlerToggleVideo(t *testing.T) {
	videoID := uuid.NewString()
	likes := &likeStoreStub{toggleResult: true}
	handler := LikeHandler{Likes: likes}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/"+videoID, nil)
	req = withRouteParams(req, map[string]string{"videoId": videoID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if likes.lastKind != models.LikeVideo || likes.lastTarget != videoID {
		t.Fatalf("unexpected toggle call: kind=%s target=%s", likes.lastKind, likes.lastTarget)
	}

	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok || data["isLiked"] != true {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}

func TestLikeHandlerToggleMissingTarget(t *testing.T) {
	commentID := uuid.NewString()
	handler := LikeHandler{Likes: &likeStoreStub{toggleErr: repositories.ErrNotFound}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/c/"+commentID, nil)
	req = withRouteParams(req, map[string]string{"commentId": commentID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ToggleComment(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestLikeHandlerToggleMalformedID(t *testing.T) {
	likes := &likeStoreStub{}
	handler := LikeHandler{Likes: likes}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/t/oops", nil)
	req = withRouteParams(req, map[string]string{"tweetId": "oops"})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ToggleTweet(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if likes.lastTarget != "" {
		t.Fatal("toggle should not reach the store for a malformed id")
	}
}

func TestLikeHandlerLikedVideosEmpty(t *testing.T) {
	handler := LikeHandler{Likes: &likeStoreStub{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil)
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.LikedVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	page, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
	items, ok := page["items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty items list, got %+v", page["items"])
	}
}
