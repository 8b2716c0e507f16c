package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

type tokenServiceStub struct {
	pair       auth.TokenPair
	issueErr   error
	refreshID  string
	refreshErr error
}

func (s tokenServiceStub) Issue(userID string) (auth.TokenPair, error) {
	return s.pair, s.issueErr
}

func (s tokenServiceStub) VerifyRefresh(token string) (string, error) {
	return s.refreshID, s.refreshErr
}

func (s tokenServiceStub) AccessTTL() time.Duration  { return 15 * time.Minute }
func (s tokenServiceStub) RefreshTTL() time.Duration { return 7 * 24 * time.Hour }

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func TestUserHandlerLoginSuccess(t *testing.T) {
	userID := uuid.NewString()
	users := &userStoreStub{user: models.User{
		ID:       userID,
		Username: "creator",
		Email:    "creator@example.com",
		Password: hashPassword(t, "hunter2hunter2"),
	}}
	tokens := tokenServiceStub{pair: auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"}}
	handler := UserHandler{Users: users, Tokens: tokens}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", newJSONBody(`{"login":"creator","password":"hunter2hunter2"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if users.refreshToken != "refresh" {
		t.Fatalf("expected refresh token persisted, got %q", users.refreshToken)
	}

	var sawAccess, sawRefresh bool
	for _, cookie := range rec.Result().Cookies() {
		switch cookie.Name {
		case "accessToken":
			sawAccess = cookie.Value == "access" && cookie.HttpOnly
		case "refreshToken":
			sawRefresh = cookie.Value == "refresh" && cookie.HttpOnly
		}
	}
	if !sawAccess || !sawRefresh {
		t.Fatalf("expected both session cookies, got %v", rec.Result().Cookies())
	}
}

func TestUserHandlerLoginWrongPassword(t *testing.T) {
	users := &userStoreStub{user: models.User{
		ID:       uuid.NewString(),
		Password: hashPassword(t, "correct-horse"),
	}}
	handler := UserHandler{Users: users, Tokens: tokenServiceStub{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", newJSONBody(`{"login":"creator","password":"wrong"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUserHandlerLoginUnknownUser(t *testing.T) {
	handler := UserHandler{
		Users:  &userStoreStub{findErr: repositories.ErrNotFound},
		Tokens: tokenServiceStub{},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", newJSONBody(`{"login":"ghost","password":"whatever"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown users get the same 401 as bad passwords, got %d", rec.Code)
	}
}

func TestUserHandlerLoginValidation(t *testing.T) {
	handler := UserHandler{Users: &userStoreStub{}, Tokens: tokenServiceStub{}}

	cases := []struct {
		name string
		body string
	}{
		{"badJSON", `{`},
		{"missingPassword", `{"login":"creator"}`},
		{"missingLogin", `{"password":"secret"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", newJSONBody(tc.body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
		})
	}
}

func TestUserHandlerRefreshTokenRotation(t *testing.T) {
	userID := uuid.NewString()
	users := &userStoreStub{user: models.User{ID: userID, RefreshToken: "old-refresh"}}
	tokens := tokenServiceStub{
		pair:      auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"},
		refreshID: userID,
	}
	handler := UserHandler{Users: users, Tokens: tokens}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if users.refreshToken != "new-refresh" {
		t.Fatalf("expected rotated refresh token, got %q", users.refreshToken)
	}
}

func TestUserHandlerRefreshTokenMismatchedUser(t *testing.T) {
	users := &userStoreStub{user: models.User{ID: uuid.NewString()}}
	tokens := tokenServiceStub{refreshID: uuid.NewString()}
	handler := UserHandler{Users: users, Tokens: tokens}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "stolen"})
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUserHandlerRefreshTokenInvalid(t *testing.T) {
	handler := UserHandler{
		Users:  &userStoreStub{},
		Tokens: tokenServiceStub{refreshErr: errors.New("expired")},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "expired"})
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUserHandlerChangePasswordWrongOld(t *testing.T) {
	actor := uuid.NewString()
	users := &userStoreStub{user: models.User{ID: actor, Password: hashPassword(t, "original-pass")}}
	handler := UserHandler{Users: users, Tokens: tokenServiceStub{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", newJSONBody(`{"oldPassword":"guess","newPassword":"brand-new-pass"}`))
	req = asActor(req, actor)
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUserHandlerChannelMalformedID(t *testing.T) {
	handler := UserHandler{Users: &userStoreStub{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/not-an-id", nil)
	req = withRouteParams(req, map[string]string{"userId": "not-an-id"})
	rec := httptest.NewRecorder()

	handler.Channel(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("a malformed id is 400, not 404, got %d", rec.Code)
	}
}

func TestUserHandlerChannelMissing(t *testing.T) {
	channelID := uuid.NewString()
	handler := UserHandler{Users: &userStoreStub{profileErr: repositories.ErrNotFound}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/"+channelID, nil)
	req = withRouteParams(req, map[string]string{"userId": channelID})
	rec := httptest.NewRecorder()

	handler.Channel(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
