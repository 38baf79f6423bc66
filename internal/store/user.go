package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, name, avatar, bio, website, twitter, linkedin, github,
	is_active, is_staff, is_superuser, last_login, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Avatar, &u.Bio,
		&u.Website, &u.Twitter, &u.LinkedIn, &u.GitHub,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts u. The password must already be hashed. A duplicate
// email yields a ConflictError on "email".
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name, avatar, bio, website, twitter, linkedin, github,
		                   is_active, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.Name, u.Avatar, u.Bio, u.Website, u.Twitter, u.LinkedIn, u.GitHub,
		u.IsActive, u.IsStaff, u.IsSuperuser,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", asConflict(err))
	}
	return nil
}

// UpdateProfile saves the editable profile fields of u.
func (s *UserStore) UpdateProfile(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = $1, avatar = $2, bio = $3, website = $4, twitter = $5, linkedin = $6, github = $7,
		    updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, u.Name, u.Avatar, u.Bio, u.Website, u.Twitter, u.LinkedIn, u.GitHub, u.ID).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SetPassword replaces the stored bcrypt hash.
func (s *UserStore) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, hash, id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// SetLastLogin stamps the user's most recent successful login.
func (s *UserStore) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

// Delete removes a user by ID. Their posts and comments cascade.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
