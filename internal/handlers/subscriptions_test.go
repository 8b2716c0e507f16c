package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/repositories"
)

func TestSubscriptionHandlerToggle(t *testing.T) {
	channelID := uuid.NewString()
	subs := &subscriptionStoreStub{toggleResult: true}
	handler := SubscriptionHandler{Subscriptions: subs}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+channelID, nil)
	req = withRouteParams(req, map[string]string{"channelId": channelID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if subs.lastChannel != channelID {
		t.Fatalf("expected toggle on %s got %s", channelID, subs.lastChannel)
	}

	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok || data["isSubscribed"] != true {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}

func TestSubscriptionHandlerToggleSelf(t *testing.T) {
	channelID := uuid.NewString()
	handler := SubscriptionHandler{Subscriptions: &subscriptionStoreStub{toggleErr: repositories.ErrInvalid}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+channelID, nil)
	req = withRouteParams(req, map[string]string{"channelId": channelID})
	req = asActor(req, channelID)
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp.Message != "cannot subscribe to your own channel" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestSubscriptionHandlerToggleMissingChannel(t *testing.T) {
	channelID := uuid.NewString()
	handler := SubscriptionHandler{Subscriptions: &subscriptionStoreStub{toggleErr: repositories.ErrNotFound}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+channelID, nil)
	req = withRouteParams(req, map[string]string{"channelId": channelID})
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestSubscriptionHandlerFeedEmpty(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: &subscriptionStoreStub{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/videos", nil)
	req = asActor(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler.Feed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("a user with no subscriptions still gets 200, got %d", rec.Code)
	}
}
