package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// envelope is the uniform response shape for every endpoint, success or not.
type envelope struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "message", payload.Message)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "message", payload.Message)
	}
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	respondJSON(ctx, w, status, envelope{Success: true, StatusCode: status, Message: message, Data: data})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, errs ...string) {
	respondJSON(ctx, w, status, envelope{Success: false, StatusCode: status, Message: message, Errors: errs})
}

// respondStoreError maps repository and pagination sentinels onto the error
// taxonomy. Anything unrecognized is an internal error whose detail stays in
// the server log.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repositories.ErrConflict):
		respondError(ctx, w, http.StatusConflict, "resource already exists")
	case errors.Is(err, repositories.ErrInvalid):
		respondError(ctx, w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, pagination.ErrInvalidSort), errors.Is(err, pagination.ErrInvalidPage):
		respondError(ctx, w, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(ctx).Error("store operation failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}

// validID reports whether raw parses as an entity id. A malformed id is a
// BadRequest, distinct from a well-formed id that matches nothing.
func validID(raw string) bool {
	return uuid.Validate(raw) == nil
}

func requireID(ctx context.Context, w http.ResponseWriter, raw, name string) bool {
	if !validID(raw) {
		respondError(ctx, w, http.StatusBadRequest, "invalid "+name)
		return false
	}
	return true
}

func decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logging.FromContext(ctx).Warn("invalid request payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
