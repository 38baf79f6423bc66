// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the domain error taxonomy shared by the services
// and the HTTP layer. Handlers map these errors to status codes; anything
// that is not one of them is treated as an internal failure.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrAuthentication means the caller presented no valid credential.
	ErrAuthentication = errors.New("authentication credentials were not provided")

	// ErrAuthorization means the caller is known but lacks the rights.
	ErrAuthorization = errors.New("you do not have permission to perform this action")

	// ErrNotFound covers both absent resources and resources hidden by
	// visibility rules (another user's draft).
	ErrNotFound = errors.New("not found")

	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries field-keyed, client-fixable messages.
type ValidationError struct {
	Fields map[string]string
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports a uniqueness violation on a specific field.
type ConflictError struct {
	Field   string
	Message string
}

// Conflict builds a ConflictError for the given field.
func Conflict(field, message string) *ConflictError {
	return &ConflictError{Field: field, Message: message}
}

func (e *ConflictError) Error() string {
	return "conflict on " + e.Field + ": " + e.Message
}

// Is makes errors.Is(err, ErrConflict) true for any ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Denial is an authentication or authorization failure carrying a
// client-facing message. Kind is ErrAuthentication or ErrAuthorization.
type Denial struct {
	Kind    error
	Message string
}

// Unauthenticated builds a Denial that matches ErrAuthentication.
func Unauthenticated(message string) *Denial {
	return &Denial{Kind: ErrAuthentication, Message: message}
}

func (e *Denial) Error() string { return e.Message }

func (e *Denial) Unwrap() error { return e.Kind }
