package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

func TestCommentHandlerPinSuccess(t *testing.T) {
	videoID := uuid.NewString()
	commentID := uuid.NewString()
	owner := uuid.NewString()

	comments := &commentStoreStub{comment: models.Comment{ID: commentID, VideoID: videoID, OwnerID: uuid.NewString()}}
	videos := &videoStoreStub{video: models.Video{ID: videoID, OwnerID: owner}}
	handler := CommentHandler{Comments: comments, Videos: videos}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/pin/"+commentID+"/"+videoID, nil)
	req = withRouteParams(req, map[string]string{"commentId": commentID, "videoId": videoID})
	req = asActor(req, owner)
	rec := httptest.NewRecorder()

	handler.Pin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(comments.pinned) != 1 || comments.pinned[0] != commentID {
		t.Fatalf("expected pin of %s, got %v", commentID, comments.pinned)
	}
}

func TestCommentHandlerPinRequiresVideoOwner(t *testing.T) {
	videoID := uuid.NewString()
	commentID := uuid.NewString()

	comments := &commentStoreStub{comment: models.Comment{ID: commentID, VideoID: videoID}}
	videos := &videoStoreStub{video: models.Video{ID: videoID, OwnerID: uuid.NewString()}}
	handler := CommentHandler{Comments: comments, Videos: videos}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/pin/x/y", nil)
	req = withRouteParams(req, map[string]string{"commentId": commentID, "videoId": videoID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Pin(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if len(comments.pinned) != 0 {
		t.Fatalf("pin should not reach the store, got %v", comments.pinned)
	}
}

func TestCommentHandlerPinPreconditions(t *testing.T) {
	videoID := uuid.NewString()
	otherVideo := uuid.NewString()
	commentID := uuid.NewString()
	owner := uuid.NewString()

	cases := []struct {
		name       string
		comment    models.Comment
		findErr    error
		params     map[string]string
		wantStatus int
	}{
		{
			name:       "replyCannotBePinned",
			comment:    models.Comment{ID: commentID, VideoID: videoID, ParentID: uuid.NewString()},
			params:     map[string]string{"commentId": commentID, "videoId": videoID},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "alreadyPinned",
			comment:    models.Comment{ID: commentID, VideoID: videoID, IsPinned: true},
			params:     map[string]string{"commentId": commentID, "videoId": videoID},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrongVideo",
			comment:    models.Comment{ID: commentID, VideoID: otherVideo},
			params:     map[string]string{"commentId": commentID, "videoId": videoID},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformedCommentID",
			params:     map[string]string{"commentId": "not-an-id", "videoId": videoID},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missingComment",
			findErr:    repositories.ErrNotFound,
			params:     map[string]string{"commentId": commentID, "videoId": videoID},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			comments := &commentStoreStub{comment: tc.comment, findErr: tc.findErr}
			videos := &videoStoreStub{video: models.Video{ID: videoID, OwnerID: owner}}
			handler := CommentHandler{Comments: comments, Videos: videos}

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/pin/x/y", nil)
			req = withRouteParams(req, tc.params)
			req = asActor(req, owner)
			rec := httptest.NewRecorder()

			handler.Pin(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCommentHandlerUnpinNotPinned(t *testing.T) {
	videoID := uuid.NewString()
	commentID := uuid.NewString()
	owner := uuid.NewString()

	comments := &commentStoreStub{comment: models.Comment{ID: commentID, VideoID: videoID}}
	videos := &videoStoreStub{video: models.Video{ID: videoID, OwnerID: owner}}
	handler := CommentHandler{Comments: comments, Videos: videos}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/unpin/x/y", nil)
	req = withRouteParams(req, map[string]string{"commentId": commentID, "videoId": videoID})
	req = asActor(req, owner)
	rec := httptest.NewRecorder()

	handler.Unpin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCommentHandlerDeleteOwnerOnly(t *testing.T) {
	commentID := uuid.NewString()
	owner := uuid.NewString()

	comments := &commentStoreStub{comment: models.Comment{ID: commentID, OwnerID: owner}}
	handler := CommentHandler{Comments: comments}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c/"+commentID, nil)
	req = withRouteParams(req, map[string]string{"commentId": commentID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c/"+commentID, nil)
	req = withRouteParams(req, map[string]string{"commentId": commentID})
	req = asActor(req, owner)
	rec = httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(comments.deleted) != 1 || comments.deleted[0] != commentID {
		t.Fatalf("expected delete of %s, got %v", commentID, comments.deleted)
	}
}

func TestCommentHandlerCreateValidation(t *testing.T) {
	videoID := uuid.NewString()
	handler := CommentHandler{Comments: &commentStoreStub{}}

	cases := []struct {
		name   string
		params map[string]string
		body   string
	}{
		{"blankContent", map[string]string{"videoId": videoID}, `{"content":"   "}`},
		{"badJSON", map[string]string{"videoId": videoID}, `{`},
		{"malformedVideoID", map[string]string{"videoId": "nope"}, `{"content":"hi"}`},
		{"malformedParentID", map[string]string{"videoId": videoID, "parentId": "nope"}, `{"content":"hi"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/x", bytes.NewBufferString(tc.body))
			req = withRouteParams(req, tc.params)
			req = asActor(req, uuid.NewString())
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
		})
	}
}

func TestCommentHandlerCreateReply(t *testing.T) {
	videoID := uuid.NewString()
	parentID := uuid.NewString()
	actor := uuid.NewString()

	comments := &commentStoreStub{}
	handler := CommentHandler{Comments: comments}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/x/y", bytes.NewBufferString(`{"content":"nice video"}`))
	req = withRouteParams(req, map[string]string{"videoId": videoID, "parentId": parentID})
	req = asActor(req, actor)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if comments.created.ParentID != parentID || comments.created.VideoID != videoID {
		t.Fatalf("unexpected created comment: %+v", comments.created)
	}
	if comments.created.OwnerID != actor {
		t.Fatalf("expected owner %s got %s", actor, comments.created.OwnerID)
	}
}
