// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can author posts and comments.
// Email is the identity key.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize the hash
	Name         string     `json:"name"`
	Avatar       *string    `json:"avatar"`
	Bio          string     `json:"bio"`
	Website      string     `json:"website"`
	Twitter      string     `json:"twitter"`
	LinkedIn     string     `json:"linkedin"`
	GitHub       string     `json:"github"`
	IsActive     bool       `json:"-"`
	IsStaff      bool       `json:"-"`
	IsSuperuser  bool       `json:"-"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Author is the public projection of a user embedded in posts and comments.
type Author struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Avatar  *string   `json:"avatar"`
	Bio     string    `json:"bio"`
	Website string    `json:"website"`
}

// Summary returns the public author projection of the user.
func (u *User) Summary() *Author {
	return &Author{
		ID:      u.ID,
		Name:    u.Name,
		Avatar:  u.Avatar,
		Bio:     u.Bio,
		Website: u.Website,
	}
}
