// Package account implements registration, credential checks and profile
// management for users.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blogpress/internal/apperr"
	"blogpress/internal/authz"
	"blogpress/internal/models"
)

// Field limits for user data.
const (
	MinPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
	minNameLen     = 2
	maxNameLen     = 150
	maxBioLen      = 500
	maxURLLen      = 200
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = apperr.Unauthenticated("Invalid email or password.")

	// ErrAccountDisabled is returned when an inactive user tries to log in.
	ErrAccountDisabled = apperr.Unauthenticated("User account is disabled.")
)

// UserRepository persists users. Find methods return (nil, nil) when the
// user does not exist.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Email     string
	Name      string
	Password  string
	Password2 string
}

// ProfilePatch updates profile fields. Nil fields are left unchanged; an
// empty Avatar clears it.
type ProfilePatch struct {
	Name     *string
	Bio      *string
	Website  *string
	Twitter  *string
	LinkedIn *string
	GitHub   *string
	Avatar   *string
}

// PasswordChange is a change-password request.
type PasswordChange struct {
	OldPassword  string
	NewPassword  string
	NewPassword2 string
}

// Service implements the account operations.
type Service struct {
	users UserRepository
	cost  int
	now   func() time.Time

	// dummyHash is compared against when the email is unknown so that
	// failed logins cost one bcrypt comparison either way.
	dummyHash []byte
	compare   func(hash, password []byte) error
}

// New creates an account service hashing with bcrypt.DefaultCost.
func New(users UserRepository) *Service {
	return &Service{
		users:     users,
		cost:      bcrypt.DefaultCost,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: newDummyHash(bcrypt.DefaultCost),
		compare:   bcrypt.CompareHashAndPassword,
	}
}

// WithCost returns a copy of s hashing with the given bcrypt cost.
// Tests use bcrypt.MinCost to stay fast.
func (s *Service) WithCost(cost int) *Service {
	cp := *s
	cp.cost = cost
	cp.dummyHash = newDummyHash(cost)
	return &cp
}

func newDummyHash(cost int) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("blogpress-unknown-account"), cost)
	if err != nil {
		return nil
	}
	return hash
}

// Register creates an active, non-staff user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := checkName(name); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, apperr.Invalid("password", "Password fields didn't match.")
	}
	if err := checkPassword("password", in.Password); err != nil {
		return nil, err
	}
	return s.create(ctx, email, name, in.Password, false)
}

// CreateSuperuser creates an active staff superuser. Used by the CLI.
func (s *Service) CreateSuperuser(ctx context.Context, email, name, password string) (*models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := checkPassword("password", password); err != nil {
		return nil, err
	}
	return s.create(ctx, email, name, password, true)
}

func (s *Service) create(ctx context.Context, email, name, password string, admin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		IsActive:     true,
		IsStaff:      admin,
		IsSuperuser:  admin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials, rejects inactive accounts and stamps
// last_login.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Invalid("email", `Must include "email" and "password".`)
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if u == nil {
		_ = s.compare(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if s.compare([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.SetLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now
	return u, nil
}

// Active loads an active user by ID. Unknown or inactive users yield an
// authentication error.
func (s *Service) Active(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, apperr.Unauthenticated("User not found or inactive.")
	}
	return u, nil
}

// UpdateProfile applies patch to caller's profile.
func (s *Service) UpdateProfile(ctx context.Context, caller *models.User, patch ProfilePatch) (*models.User, error) {
	if err := authz.RequireUser(caller); err != nil {
		return nil, err
	}
	u := *caller

	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
		if err := checkName(u.Name); err != nil {
			return nil, err
		}
	}
	if patch.Bio != nil {
		u.Bio = strings.TrimSpace(*patch.Bio)
		if utf8.RuneCountInString(u.Bio) > maxBioLen {
			return nil, apperr.Invalid("bio", "Bio cannot exceed 500 characters.")
		}
	}
	links := []struct {
		field string
		src   *string
		dst   *string
	}{
		{"website", patch.Website, &u.Website},
		{"twitter", patch.Twitter, &u.Twitter},
		{"linkedin", patch.LinkedIn, &u.LinkedIn},
		{"github", patch.GitHub, &u.GitHub},
	}
	for _, l := range links {
		if l.src == nil {
			continue
		}
		v := strings.TrimSpace(*l.src)
		if err := checkURL(l.field, v); err != nil {
			return nil, err
		}
		*l.dst = v
	}
	if patch.Avatar != nil {
		if v := strings.TrimSpace(*patch.Avatar); v != "" {
			u.Avatar = &v
		} else {
			u.Avatar = nil
		}
	}

	if err := s.users.UpdateProfile(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword verifies the old password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, caller *models.User, in PasswordChange) error {
	if err := authz.RequireUser(caller); err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(caller.PasswordHash), []byte(in.OldPassword)) != nil {
		return apperr.Invalid("old_password", "Old password is not correct.")
	}
	if in.NewPassword != in.NewPassword2 {
		return apperr.Invalid("new_password", "Password fields didn't match.")
	}
	if err := checkPassword("new_password", in.NewPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, caller.ID, string(hash))
}

// NormalizeEmail validates a bare address and lower-cases its domain.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", apperr.Invalid("email", "Enter a valid email address.")
	}
	at := strings.LastIndexByte(raw, '@')
	return raw[:at] + "@" + strings.ToLower(raw[at+1:]), nil
}

func checkName(name string) error {
	switch n := utf8.RuneCountInString(name); {
	case n < minNameLen:
		return apperr.Invalid("name", "Name must be at least 2 characters long.")
	case n > maxNameLen:
		return apperr.Invalid("name", "Name cannot exceed 150 characters.")
	}
	return nil
}

func checkPassword(field, pw string) error {
	switch {
	case len(pw) < MinPasswordLen:
		return apperr.Invalid(field, fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLen))
	case len(pw) > maxPasswordLen:
		return apperr.Invalid(field, fmt.Sprintf("Password cannot exceed %d bytes.", maxPasswordLen))
	}
	return nil
}

func checkURL(field, v string) error {
	if v == "" {
		return nil
	}
	if utf8.RuneCountInString(v) > maxURLLen {
		return apperr.Invalid(field, "URL is too long.")
	}
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		return apperr.Invalid(field, "Enter a valid URL.")
	}
	return nil
}

// IsInvalidCredentials reports whether err is a failed login.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountDisabled)
}
