// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

func TestUserStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	u := newTestUser(t, db)
	if u.ID == uuid.Nil {
		t.Fatal("expected generated UUID")
	}

	byEmail, err := s.FindByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("FindByEmail returned %+v", byEmail)
	}
	if !byEmail.IsActive || byEmail.IsStaff {
		t.Errorf("flags: active=%v staff=%v", byEmail.IsActive, byEmail.IsStaff)
	}

	byID, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Email != u.Email {
		t.Fatalf("FindByID returned %+v", byID)
	}
}

func TestUserStoreFindMissing(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u, err := s.FindByEmail(context.Background(), "nobody-"+uuid.NewString()+"@store-test.local")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u != nil {
		t.Error("expected nil for non-existent user")
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u := newTestUser(t, db)
	dup := &models.User{Email: u.Email, PasswordHash: "x", Name: "Dup", IsActive: true}
	err := s.Create(context.Background(), dup)

	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.Field != "email" {
		t.Errorf("conflict field = %q, want email", ce.Field)
	}
}

func TestUserStoreProfileAndPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	u := newTestUser(t, db)
	u.Name = "Renamed"
	u.Bio = "Writes about Go."
	u.GitHub = "https://github.com/example"
	if err := s.UpdateProfile(ctx, u); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := s.SetPassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	at := time.Now().UTC().Truncate(time.Second)
	if err := s.SetLastLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("SetLastLogin: %v", err)
	}

	got, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != "Renamed" || got.Bio != "Writes about Go." || got.GitHub != "https://github.com/example" {
		t.Errorf("profile not saved: %+v", got)
	}
	if got.PasswordHash != "new-hash" {
		t.Errorf("password hash = %q", got.PasswordHash)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(at) {
		t.Errorf("last login = %v, want %v", got.LastLogin, at)
	}
}
