// Package authz holds the ownership and role rules as plain predicates.
// Every function takes the caller as a possibly-nil *models.User; nil
// means an anonymous request.
package authz

import (
	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

// RequireUser fails with ErrAuthentication for anonymous callers.
func RequireUser(caller *models.User) error {
	if caller == nil {
		return apperr.ErrAuthentication
	}
	return nil
}

// RequireStaff fails with ErrAuthentication for anonymous callers and
// ErrAuthorization for non-staff users.
func RequireStaff(caller *models.User) error {
	if caller == nil {
		return apperr.ErrAuthentication
	}
	if !caller.IsStaff {
		return apperr.ErrAuthorization
	}
	return nil
}

// CanReadPost reports whether caller may see post. Drafts are visible to
// their author only.
func CanReadPost(caller *models.User, post *models.Post) bool {
	if post.IsPublished() {
		return true
	}
	return caller != nil && post.IsAuthoredBy(caller.ID)
}

// CanWritePost checks that caller may modify or delete post. Another
// user's draft answers ErrNotFound so its existence is not revealed.
func CanWritePost(caller *models.User, post *models.Post) error {
	if caller == nil {
		return apperr.ErrAuthentication
	}
	if post.IsAuthoredBy(caller.ID) {
		return nil
	}
	if !post.IsPublished() {
		return apperr.ErrNotFound
	}
	return apperr.ErrAuthorization
}

// CanWriteComment checks that caller authored comment.
func CanWriteComment(caller *models.User, comment *models.Comment) error {
	if caller == nil {
		return apperr.ErrAuthentication
	}
	if !comment.IsAuthoredBy(caller.ID) {
		return apperr.ErrAuthorization
	}
	return nil
}
