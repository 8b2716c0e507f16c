package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

func TestPlaylistHandlerAddVideoAnyAuthenticatedUser(t *testing.T) {
	playlistID := uuid.NewString()
	videoID := uuid.NewString()

	playlists := &playlistStoreStub{playlist: models.Playlist{ID: playlistID, OwnerID: uuid.NewString()}}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/add/x/y", nil)
	req = withRouteParams(req, map[string]string{"videoId": videoID, "playlistId": playlistID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(playlists.added) != 1 || playlists.added[0] != [2]string{playlistID, videoID} {
		t.Fatalf("unexpected add calls: %v", playlists.added)
	}
}

func TestPlaylistHandlerAddVideoDuplicate(t *testing.T) {
	playlistID := uuid.NewString()
	videoID := uuid.NewString()
	handler := PlaylistHandler{Playlists: &playlistStoreStub{addErr: repositories.ErrInvalid}}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/add/x/y", nil)
	req = withRouteParams(req, map[string]string{"videoId": videoID, "playlistId": playlistID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPlaylistHandlerRemoveVideoOwnerOnly(t *testing.T) {
	playlistID := uuid.NewString()
	videoID := uuid.NewString()
	owner := uuid.NewString()

	playlists := &playlistStoreStub{playlist: models.Playlist{ID: playlistID, OwnerID: owner}}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/remove/x/y", nil)
	req = withRouteParams(req, map[string]string{"videoId": videoID, "playlistId": playlistID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if len(playlists.removed) != 0 {
		t.Fatalf("remove should not reach the store, got %v", playlists.removed)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/remove/x/y", nil)
	req = withRouteParams(req, map[string]string{"videoId": videoID, "playlistId": playlistID})
	req = asActor(req, owner)
	rec = httptest.NewRecorder()

	handler.RemoveVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(playlists.removed) != 1 || playlists.removed[0] != [2]string{playlistID, videoID} {
		t.Fatalf("unexpected remove calls: %v", playlists.removed)
	}
}

func TestPlaylistHandlerRemoveVideoNotInPlaylist(t *testing.T) {
	playlistID := uuid.NewString()
	videoID := uuid.NewString()
	owner := uuid.NewString()

	playlists := &playlistStoreStub{
		playlist:  models.Playlist{ID: playlistID, OwnerID: owner},
		removeErr: repositories.ErrNotFound,
	}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/remove/x/y", nil)
	req = withRouteParams(req, map[string]string{"videoId": videoID, "playlistId": playlistID})
	req = asActor(req, owner)
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestPlaylistHandlerCreate(t *testing.T) {
	actor := uuid.NewString()
	playlists := &playlistStoreStub{}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlist", newJSONBody(`{"name":"  Watch later  ","description":"queue"}`))
	req = asActor(req, actor)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if playlists.playlist.Name != "Watch later" || playlists.playlist.OwnerID != actor {
		t.Fatalf("unexpected playlist: %+v", playlists.playlist)
	}
}

func TestPlaylistHandlerCreateBlankName(t *testing.T) {
	handler := PlaylistHandler{Playlists: &playlistStoreStub{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlist", newJSONBody(`{"name":"  "}`))
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
