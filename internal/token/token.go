// Package token issues and verifies the signed bearer credentials used by
// the API. Access tokens authenticate requests; refresh tokens mint new
// access tokens and can be revoked on logout.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blogpress/internal/apperr"
)

// Kind distinguishes access from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"

	issuer = "blogpress"
)

var (
	// ErrInvalid covers malformed, expired or wrongly signed tokens.
	ErrInvalid = apperr.Unauthenticated("Token is invalid or expired.")

	// ErrRevoked is returned for a refresh token that was logged out.
	ErrRevoked = apperr.Unauthenticated("Token has been revoked.")
)

// Claims is the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"typ"`
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Pair is the result of a successful login.
type Pair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Revoker remembers revoked token IDs until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Manager signs and verifies tokens with an HMAC secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoker    Revoker
	now        func() time.Time
}

// NewManager creates a token manager. revoker may be nil, in which case
// logout cannot revoke refresh tokens.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, revoker Revoker) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoker:    revoker,
		now:        time.Now,
	}
}

// IssuePair signs a fresh access/refresh pair for userID.
func (m *Manager) IssuePair(userID uuid.UUID) (Pair, error) {
	access, accessExp, err := m.sign(userID, KindAccess, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := m.sign(userID, KindRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(userID uuid.UUID, kind Kind, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Kind: kind,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, exp, nil
}

// parse verifies the signature, expiry, issuer and kind of raw.
func (m *Manager) parse(raw string, kind Kind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.Kind != kind {
		return nil, ErrInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ParseAccess verifies an access token and returns its subject.
func (m *Manager) ParseAccess(raw string) (uuid.UUID, error) {
	claims, err := m.parse(raw, KindAccess)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

// ParseRefresh verifies a refresh token and checks it was not revoked.
func (m *Manager) ParseRefresh(ctx context.Context, raw string) (*Claims, error) {
	claims, err := m.parse(raw, KindRefresh)
	if err != nil {
		return nil, err
	}
	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Refresh mints a new access token from a valid refresh token.
func (m *Manager) Refresh(ctx context.Context, raw string) (string, time.Time, error) {
	claims, err := m.ParseRefresh(ctx, raw)
	if err != nil {
		return "", time.Time{}, err
	}
	userID, _ := claims.UserID()
	return m.sign(userID, KindAccess, m.accessTTL)
}

// Revoke invalidates a refresh token for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, raw string) error {
	claims, err := m.ParseRefresh(ctx, raw)
	if err != nil {
		return err
	}
	if m.revoker == nil {
		return errors.New("token revocation is not configured")
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.ID, ttl)
}
