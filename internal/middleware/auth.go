// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// UserKey is the context key for the authenticated user.
const UserKey contextKey = "user"

// AccessTokenParser verifies an access token and returns its subject.
type AccessTokenParser interface {
	ParseAccess(raw string) (uuid.UUID, error)
}

// UserLoader resolves a token subject to an active user.
type UserLoader interface {
	Active(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate resolves an "Authorization: Bearer" header to a user and
// stores it in the request context. Requests without the header continue
// anonymously; a header carrying a bad token is rejected with 401 even on
// public routes.
func Authenticate(tokens AccessTokenParser, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				WriteError(w, http.StatusUnauthorized, "not_authenticated", "Authorization header must be \"Bearer <token>\".", nil)
				return
			}

			id, err := tokens.ParseAccess(strings.TrimSpace(raw))
			if err != nil {
				writeAuthError(w, r, err)
				return
			}
			user, err := users.Active(r.Context(), id)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrAuthentication) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		WriteError(w, http.StatusUnauthorized, "not_authenticated", err.Error(), nil)
		return
	}
	slog.Error("authenticate request", "path", r.URL.Path, "error", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
}

// RequireAuth answers 401 unless Authenticate stored a user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			WriteError(w, http.StatusUnauthorized, "not_authenticated", "Authentication credentials were not provided.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff answers 403 for authenticated non-staff users. Must be
// applied after RequireAuth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromCtx(r.Context())
		if u == nil || !u.IsStaff {
			WriteError(w, http.StatusForbidden, "permission_denied", "You do not have permission to perform this action.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil for anonymous requests.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserKey).(*models.User)
	return u
}
