package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/account"
	"blogpress/internal/apperr"
	"blogpress/internal/metrics"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/token"
)

// Auth groups the account and token endpoints.
type Auth struct {
	accounts *account.Service
	tokens   *token.Manager
	metrics  *metrics.Metrics
}

// NewAuth creates the auth handler group.
func NewAuth(accounts *account.Service, tokens *token.Manager, m *metrics.Metrics) *Auth {
	return &Auth{accounts: accounts, tokens: tokens, metrics: m}
}

// session is returned by register and login.
type session struct {
	User   profileView `json:"user"`
	Tokens token.Pair  `json:"tokens"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs the user in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	u, err := a.accounts.Register(r.Context(), account.RegisterInput{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	slog.Info("user registered", "user_id", u.ID)
	a.issue(w, r, http.StatusCreated, u, "User registered successfully")
}

// Login exchanges credentials for a token pair.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	u, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if account.IsInvalidCredentials(err) {
			a.metrics.LoginFailed()
			slog.Warn("failed login", "remote", r.RemoteAddr)
		}
		respondError(w, r, err)
		return
	}
	a.issue(w, r, http.StatusOK, u, "Login successful")
}

func (a *Auth) issue(w http.ResponseWriter, r *http.Request, status int, u *models.User, msg string) {
	pair, err := a.tokens.IssuePair(u.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMeta(w, status, session{User: newProfile(u), Tokens: pair}, message{Message: msg})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the supplied refresh token. It answers success even when
// the token is unknown or already revoked.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.RefreshToken != "" {
		if err := a.tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
			slog.Debug("logout revoke skipped", "error", err)
		}
	}
	respond(w, http.StatusOK, message{Message: "Logout successful"})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type accessToken struct {
	Access          string    `json:"access"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// Refresh mints a new access token from a refresh token.
func (a *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Refresh == "" {
		respondError(w, r, apperr.Invalid("refresh", "This field is required."))
		return
	}
	access, exp, err := a.tokens.Refresh(r.Context(), req.Refresh)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, accessToken{Access: access, AccessExpiresAt: exp})
}

// Profile returns the caller's full profile.
func (a *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, newProfile(middleware.UserFromCtx(r.Context())))
}

type profileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
	Twitter  *string `json:"twitter"`
	LinkedIn *string `json:"linkedin"`
	GitHub   *string `json:"github"`
	Avatar   *string `json:"avatar"`
}

// UpdateProfile patches the caller's profile.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	u, err := a.accounts.UpdateProfile(r.Context(), middleware.UserFromCtx(r.Context()), account.ProfilePatch{
		Name:     req.Name,
		Bio:      req.Bio,
		Website:  req.Website,
		Twitter:  req.Twitter,
		LinkedIn: req.LinkedIn,
		GitHub:   req.GitHub,
		Avatar:   req.Avatar,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, newProfile(u), message{Message: "Profile updated successfully"})
}

type me struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	IsStaff bool      `json:"is_staff"`
}

// Me returns the caller's identity.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	respond(w, http.StatusOK, me{ID: u.ID, Email: u.Email, Name: u.Name, IsStaff: u.IsStaff})
}

type passwordRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

// ChangePassword replaces the caller's password after checking the old one.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	err := a.accounts.ChangePassword(r.Context(), middleware.UserFromCtx(r.Context()), account.PasswordChange{
		OldPassword:  req.OldPassword,
		NewPassword:  req.NewPassword,
		NewPassword2: req.NewPassword2,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, message{Message: "Password changed successfully"})
}
