package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates a token that failed signature or shape checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a structurally valid but expired token.
	ErrTokenExpired = errors.New("token expired")
)

// TokenPair groups the credentials issued to an authenticated user. The
// refresh token is also persisted on the user record; a later login
// overwrites it, implicitly revoking the previous session.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access and refresh tokens.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc lets tests pin the clock.
	NowFunc func() time.Time
}

// NewManager constructs a token manager with the provided secrets and TTLs.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	if accessSecret == "" || refreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue creates a fresh access+refresh pair for the provided user identifier.
func (m *Manager) Issue(userID string) (TokenPair, error) {
	if userID == "" {
		return TokenPair{}, errors.New("user id must be provided")
	}

	now := m.now()

	access, accessExp, err := m.sign(userID, m.accessSecret, now, m.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, refreshExp, err := m.sign(userID, m.refreshSecret, now, m.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token and returns the user id it carries.
func (m *Manager) VerifyAccess(token string) (string, error) {
	return m.verify(token, m.accessSecret)
}

// VerifyRefresh validates a refresh token and returns the user id it carries.
// Callers must additionally compare the token against the value stored on the
// user record; only the stored token is accepted.
func (m *Manager) VerifyRefresh(token string) (string, error) {
	return m.verify(token, m.refreshSecret)
}

// AccessTTL exposes the access token lifetime for cookie expiry.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL exposes the refresh token lifetime for cookie expiry.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) sign(userID string, secret []byte, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "cliptube-backend",
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *Manager) verify(tokenString string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	parsed, ok := token.Claims.(*claims)
	if !ok || !token.Valid || parsed.UID == "" {
		return "", ErrInvalidToken
	}

	return parsed.UID, nil
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now().UTC()
}
