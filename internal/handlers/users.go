package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// UserHandler implements the account, session, channel and watch history
// endpoints.
type UserHandler struct {
	Users     UserStore
	Tokens    TokenService
	Blobs     BlobStore
	History   SearchHistoryStore
	UploadDir string
	NowFunc   func() time.Time
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User   models.CurrentUser `json:"user"`
	Tokens auth.TokenPair     `json:"tokens"`
}

// Register handles POST /api/v1/users/register. The multipart form carries
// the profile fields plus an avatar file and an optional cover image.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	fullName := strings.TrimSpace(r.FormValue("fullName"))

	if username == "" || email == "" || password == "" || fullName == "" {
		respondError(ctx, w, http.StatusBadRequest, "username, email, password and fullName are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  string(hash),
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	avatarPath, err := saveUpload(r, "avatar", h.UploadDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
			return
		}
		logger.Error("spool avatar upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	avatar, err := h.Blobs.Upload(ctx, avatarPath, "avatars")
	if err != nil {
		logger.Error("upload avatar", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "avatar upload failed")
		return
	}
	user.AvatarURL, user.AvatarKey = avatar.URL, avatar.Key

	if coverPath, err := saveUpload(r, "coverImage", h.UploadDir); err == nil {
		cover, err := h.Blobs.Upload(ctx, coverPath, "covers")
		if err != nil {
			logger.Error("upload cover image", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "cover image upload failed")
			return
		}
		user.CoverImageURL, user.CoverImageKey = cover.URL, cover.Key
	} else if !errors.Is(err, errMissingFile) {
		logger.Error("spool cover upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Users.Create(ctx, user); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, "user registered", models.PublicUser(user))
}

// Login handles POST /api/v1/users/login. The login value matches either
// username or email.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req credentialsRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "login and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, req.Login)
	if err != nil {
		logger.Warn("login lookup failed", "login", req.Login, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueSession(w, r, user)
}

// RefreshToken handles POST /api/v1/users/refresh-token. The refresh token is
// read from the session cookie or the body and must match the single token on
// record; a newer login elsewhere invalidates it by overwrite.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if decodeBody(ctx, w, r, &req) {
			token = req.RefreshToken
		} else {
			return
		}
	}
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	userID, err := h.Tokens.VerifyRefresh(token)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.Users.FindByRefreshToken(ctx, token)
	if err != nil || user.ID != userID {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is no longer valid")
		return
	}

	h.issueSession(w, r, user)
}

func (h UserHandler) issueSession(w http.ResponseWriter, r *http.Request, user models.User) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	pair, err := h.Tokens.Issue(user.ID)
	if err != nil {
		logger.Error("issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		logger.Error("store refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setAuthCookies(w, pair)
	respondData(ctx, w, http.StatusOK, "session created", sessionResponse{User: models.PublicUser(user), Tokens: pair})
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	if err := h.Users.SetRefreshToken(ctx, actor, ""); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	h.clearAuthCookies(w)
	respondData(ctx, w, http.StatusOK, "logged out", nil)
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "old password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(ctx).Error("hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Users.UpdatePassword(ctx, actor, string(hash)); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "password changed", nil)
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "current user", models.PublicUser(user))
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullName and email are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	if err := h.Users.UpdateDetails(ctx, actor, req.FullName, req.Email); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "account updated", models.PublicUser(user))
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.swapImage(w, r, "avatar", "avatars", h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.swapImage(w, r, "coverImage", "covers", h.Users.UpdateCoverImage)
}

func (h UserHandler) swapImage(w http.ResponseWriter, r *http.Request, field, prefix string, update func(ctx context.Context, id, url, key string) (string, error)) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := middleware.ActorFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	path, err := saveUpload(r, field, h.UploadDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, field+" file is required")
			return
		}
		logger.Error("spool image upload", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	asset, err := h.Blobs.Upload(ctx, path, prefix)
	if err != nil {
		logger.Error("upload image", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "image upload failed")
		return
	}

	previous, err := update(ctx, actor, asset.URL, asset.Key)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if previous != "" {
		if err := h.Blobs.Delete(ctx, previous); err != nil {
			logger.Warn("release previous image", "key", previous, "error", err)
		}
	}

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, field+" updated", models.PublicUser(user))
}

// Channel handles GET /api/v1/users/channel/{userId}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID := chi.URLParam(r, "userId")
	if !requireID(ctx, w, channelID, "user id") {
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, channelID, middleware.ActorFromContext(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "channel profile", profile)
}

// Search handles GET /api/v1/users/search?query=. Authenticated searches are
// recorded in the actor's search history.
func (h UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	term := strings.TrimSpace(r.URL.Query().Get("query"))
	if term == "" {
		respondError(ctx, w, http.StatusBadRequest, "query is required")
		return
	}

	p, err := pagination.Parse(r.URL.Query(), repositories.ChannelSortColumns, "username", false)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	channels, total, err := h.Users.SearchChannels(ctx, term, actor, p)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	if actor != "" && h.History != nil {
		if _, err := h.History.Record(ctx, actor, term); err != nil {
			logging.FromContext(ctx).Warn("record search term", "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, "channels found", pagination.NewPage(channels, total, p))
}

// WatchHistory handles GET /api/v1/users/watch-history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	p, err := pagination.Parse(r.URL.Query(), nil, "", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	days, total, err := h.Users.WatchHistory(ctx, actor, p)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "watch history", pagination.NewPage(days, total, p))
}

// ClearWatchHistory handles DELETE /api/v1/users/watch-history.
func (h UserHandler) ClearWatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	if err := h.Users.ClearWatchHistory(ctx, actor); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "watch history cleared", nil)
}

func (h UserHandler) setAuthCookies(w http.ResponseWriter, pair auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.Tokens.AccessTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.Tokens.RefreshTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
}
