package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// DashboardHandler serves the channel owner's management views.
type DashboardHandler struct {
	Videos VideoStore
}

// Videos handles GET /api/v1/dashboard/videos: the actor's own videos
// regardless of publish state, with engagement counts.
func (h DashboardHandler) VideoList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	p, err := pagination.Parse(r.URL.Query(), repositories.VideoSortColumns, "createdAt", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	videos, total, err := h.Videos.DashboardVideos(ctx, actor, p)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "channel videos", pagination.NewPage(videos, total, p))
}

// Stats handles GET /api/v1/dashboard/stats/{channelId}. The channel owner
// sees totals across every video; everyone else sees published videos only.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	channelID := chi.URLParam(r, "channelId")
	if !requireID(ctx, w, channelID, "channel id") {
		return
	}

	stats, err := h.Videos.ChannelStats(ctx, channelID, actor != channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "channel stats", stats)
}
