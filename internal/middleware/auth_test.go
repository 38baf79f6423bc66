package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

// fakeTokens accepts exactly one token string.
type fakeTokens struct {
	valid string
	id    uuid.UUID
}

func (f fakeTokens) ParseAccess(raw string) (uuid.UUID, error) {
	if raw != f.valid {
		return uuid.Nil, apperr.Unauthenticated("Token is invalid or expired.")
	}
	return f.id, nil
}

// fakeUsers returns user for its ID, or err when set.
type fakeUsers struct {
	user *models.User
	err  error
}

func (f fakeUsers) Active(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.ID != id {
		return nil, apperr.Unauthenticated("User not found or inactive.")
	}
	return f.user, nil
}

// okHandler records the user it saw.
func okHandler() (http.Handler, **models.User, *bool) {
	var seen *models.User
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = UserFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &seen, &called
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body APIError
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestAuthenticate(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	tokens := fakeTokens{valid: "good-token", id: user.ID}

	tests := []struct {
		name       string
		header     string
		users      fakeUsers
		wantStatus int
		wantUser   bool
		wantCode   string
	}{
		{name: "no header is anonymous", users: fakeUsers{user: user}, wantStatus: http.StatusOK},
		{name: "valid bearer", header: "Bearer good-token", users: fakeUsers{user: user}, wantStatus: http.StatusOK, wantUser: true},
		{name: "scheme is case-insensitive", header: "bearer good-token", users: fakeUsers{user: user}, wantStatus: http.StatusOK, wantUser: true},
		{name: "wrong scheme", header: "Basic Zm9vOmJhcg==", users: fakeUsers{user: user}, wantStatus: http.StatusUnauthorized, wantCode: "not_authenticated"},
		{name: "empty token", header: "Bearer ", users: fakeUsers{user: user}, wantStatus: http.StatusUnauthorized, wantCode: "not_authenticated"},
		{name: "bad token", header: "Bearer forged", users: fakeUsers{user: user}, wantStatus: http.StatusUnauthorized, wantCode: "not_authenticated"},
		{name: "inactive user", header: "Bearer good-token", users: fakeUsers{}, wantStatus: http.StatusUnauthorized, wantCode: "not_authenticated"},
		{name: "store failure", header: "Bearer good-token", users: fakeUsers{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, seen, called := okHandler()
			handler := Authenticate(tokens, tt.users)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if *called {
					t.Error("next handler should not run")
				}
				if got := decodeError(t, rr).Error.Code; got != tt.wantCode {
					t.Errorf("code: got %q, want %q", got, tt.wantCode)
				}
				return
			}
			if tt.wantUser && (*seen == nil || (*seen).ID != user.ID) {
				t.Errorf("user in context: got %v, want %v", *seen, user.ID)
			}
			if !tt.wantUser && *seen != nil {
				t.Errorf("expected anonymous request, got user %v", (*seen).ID)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects anonymous", func(t *testing.T) {
		next, _, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/posts", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if *called {
			t.Error("next handler should not run")
		}
		if rr.Header().Get("WWW-Authenticate") == "" {
			t.Error("missing WWW-Authenticate header")
		}
	})

	t.Run("passes authenticated", func(t *testing.T) {
		next, _, called := okHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: uuid.New()}))
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK || !*called {
			t.Errorf("status: got %d, called %v; want 200 and called", rr.Code, *called)
		}
	})
}

func TestRequireStaff(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{name: "anonymous", user: nil, want: http.StatusForbidden},
		{name: "regular user", user: &models.User{ID: uuid.New()}, want: http.StatusForbidden},
		{name: "staff", user: &models.User{ID: uuid.New(), IsStaff: true}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, _ := okHandler()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			RequireStaff(next).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestUserFromCtx(t *testing.T) {
	if u := UserFromCtx(context.Background()); u != nil {
		t.Errorf("empty context: got %v, want nil", u)
	}
	user := &models.User{ID: uuid.New()}
	if got := UserFromCtx(WithUser(context.Background(), user)); got != user {
		t.Errorf("got %v, want %v", got, user)
	}
}
