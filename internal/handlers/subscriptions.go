package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// SubscriptionHandler implements the subscription toggle and list endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	channelID := chi.URLParam(r, "channelId")
	if !requireID(ctx, w, channelID, "channel id") {
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, actor, channelID)
	if errors.Is(err, repositories.ErrInvalid) {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "subscription toggled", map[string]bool{"isSubscribed": subscribed})
}

// Subscribed handles GET /api/v1/subscriptions/u/{subscriberId}: the channels
// a user subscribes to.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := chi.URLParam(r, "subscriberId")
	if !requireID(ctx, w, subscriberID, "subscriber id") {
		return
	}

	p, err := pagination.Parse(r.URL.Query(), nil, "", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	channels, total, err := h.Subscriptions.ListSubscribedChannels(ctx, subscriberID, middleware.ActorFromContext(ctx), p)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "subscribed channels", pagination.NewPage(channels, total, p))
}

// Subscribers handles GET /api/v1/subscriptions: the actor's own subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	p, err := pagination.Parse(r.URL.Query(), nil, "", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	subscribers, total, err := h.Subscriptions.ListSubscribers(ctx, actor, actor, p)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "subscribers", pagination.NewPage(subscribers, total, p))
}

// Feed handles GET /api/v1/subscriptions/videos: latest published videos from
// the actor's subscribed channels.
func (h SubscriptionHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	p, err := pagination.Parse(r.URL.Query(), nil, "", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	videos, total, err := h.Subscriptions.SubscribedFeed(ctx, actor, p)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "subscription feed", pagination.NewPage(videos, total, p))
}
