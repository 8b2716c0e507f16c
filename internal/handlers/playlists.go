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
)

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	var req playlistRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     actor,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, "playlist created", playlist.ID)
}

// Get handles GET /api/v1/playlist/{playlistId}: the playlist with its
// resolved videos. Entries whose video has since been deleted are dropped
// from the view.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID := chi.URLParam(r, "playlistId")
	if !requireID(ctx, w, playlistID, "playlist id") {
		return
	}

	detail, err := h.Playlists.Detail(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "playlist", detail)
}

// Update handles PATCH /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req playlistRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = playlist.Name
	}
	req.Description = strings.TrimSpace(req.Description)

	if err := h.Playlists.Update(ctx, playlist.ID, req.Name, req.Description); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "playlist updated", playlist.ID)
}

// Delete handles DELETE /api/v1/playlist/{playlistId}. Membership rows go
// with the playlist; the videos themselves are untouched.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "playlist deleted", nil)
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
//
// TODO: any authenticated user can add to any playlist; removal is
// owner-only. Decide whether adding should require ownership too before
// opening playlists up in the UI.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := chi.URLParam(r, "videoId")
	playlistID := chi.URLParam(r, "playlistId")
	if !requireID(ctx, w, videoID, "video id") || !requireID(ctx, w, playlistID, "playlist id") {
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		respondStoreError(ctx, w, err, "playlist or video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "video added to playlist", nil)
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
// Unlike AddVideo this is restricted to the playlist owner.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	videoID := chi.URLParam(r, "videoId")
	playlistID := chi.URLParam(r, "playlistId")
	if !requireID(ctx, w, videoID, "video id") || !requireID(ctx, w, playlistID, "playlist id") {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if playlist.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		respondStoreError(ctx, w, err, "video is not in this playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, "video removed from playlist", nil)
}

// ListForUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
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

	playlists, total, err := h.Playlists.ListForUser(ctx, userID, p)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "playlists", pagination.NewPage(playlists, total, p))
}

func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	playlistID := chi.URLParam(r, "playlistId")
	if !requireID(ctx, w, playlistID, "playlist id") {
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return models.Playlist{}, false
	}
	if playlist.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
		return models.Playlist{}, false
	}

	return playlist, true
}
