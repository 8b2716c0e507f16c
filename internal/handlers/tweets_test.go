package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/repositories"
)

func TestTweetHandlerDeleteCleansLikes(t *testing.T) {
	tweetID := uuid.NewString()
	likes := &likeStoreStub{}
	handler := TweetHandler{Tweets: &tweetStoreStub{}, Likes: likes}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweetID, nil)
	req = withRouteParams(req, map[string]string{"tweetId": tweetID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(likes.deletedTweets) != 1 || likes.deletedTweets[0] != tweetID {
		t.Fatalf("expected like cleanup for %s, got %v", tweetID, likes.deletedTweets)
	}
	if len(likes.markedTweets) != 0 {
		t.Fatalf("soft-expiry marker should not run when cleanup succeeds, got %v", likes.markedTweets)
	}
}

func TestTweetHandlerDeleteSurvivesCleanupFailure(t *testing.T) {
	tweetID := uuid.NewString()
	likes := &likeStoreStub{deleteTweetErr: errors.New("likes table unavailable")}
	handler := TweetHandler{Tweets: &tweetStoreStub{}, Likes: likes}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweetID, nil)
	req = withRouteParams(req, map[string]string{"tweetId": tweetID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("tweet delete must not fail on like cleanup, got %d", rec.Code)
	}
	if len(likes.markedTweets) != 1 || likes.markedTweets[0] != tweetID {
		t.Fatalf("expected soft-expiry marker for %s, got %v", tweetID, likes.markedTweets)
	}
}

func TestTweetHandlerDeleteSurvivesMarkerFailure(t *testing.T) {
	tweetID := uuid.NewString()
	likes := &likeStoreStub{
		deleteTweetErr: errors.New("likes table unavailable"),
		markErr:        errors.New("still unavailable"),
	}
	handler := TweetHandler{Tweets: &tweetStoreStub{}, Likes: likes}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweetID, nil)
	req = withRouteParams(req, map[string]string{"tweetId": tweetID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("tweet delete must not fail even when the marker write fails, got %d", rec.Code)
	}
}

func TestTweetHandlerDeleteNotOwner(t *testing.T) {
	tweetID := uuid.NewString()
	likes := &likeStoreStub{}
	handler := TweetHandler{Tweets: &tweetStoreStub{deleteErr: repositories.ErrNotFound}, Likes: likes}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweetID, nil)
	req = withRouteParams(req, map[string]string{"tweetId": tweetID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if len(likes.deletedTweets) != 0 {
		t.Fatal("like cleanup should not run when the tweet delete fails")
	}
}

func TestTweetHandlerCreate(t *testing.T) {
	actor := uuid.NewString()
	tweets := &tweetStoreStub{}
	handler := TweetHandler{Tweets: tweets, Likes: &likeStoreStub{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewBufferString(`{"content":"  hello world  "}`))
	req = asActor(req, actor)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if tweets.created.Content != "hello world" {
		t.Fatalf("expected trimmed content, got %q", tweets.created.Content)
	}
	if tweets.created.OwnerID != actor {
		t.Fatalf("expected owner %s got %s", actor, tweets.created.OwnerID)
	}
}

func TestTweetHandlerCreateBlankContent(t *testing.T) {
	handler := TweetHandler{Tweets: &tweetStoreStub{}, Likes: &likeStoreStub{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewBufferString(`{"content":"   "}`))
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
