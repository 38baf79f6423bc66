package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

func TestRequireUserAndStaff(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	staff := &models.User{ID: uuid.New(), IsStaff: true}

	assert.ErrorIs(t, RequireUser(nil), apperr.ErrAuthentication)
	assert.NoError(t, RequireUser(user))

	assert.ErrorIs(t, RequireStaff(nil), apperr.ErrAuthentication)
	assert.ErrorIs(t, RequireStaff(user), apperr.ErrAuthorization)
	assert.NoError(t, RequireStaff(staff))
}

func TestPostRules(t *testing.T) {
	owner := &models.User{ID: uuid.New()}
	other := &models.User{ID: uuid.New()}

	published := &models.Post{AuthorID: owner.ID, Status: models.PostStatusPublished}
	draft := &models.Post{AuthorID: owner.ID, Status: models.PostStatusDraft}

	tests := []struct {
		name     string
		caller   *models.User
		post     *models.Post
		canRead  bool
		writeErr error
	}{
		{name: "anonymous on published", caller: nil, post: published, canRead: true, writeErr: apperr.ErrAuthentication},
		{name: "anonymous on draft", caller: nil, post: draft, canRead: false, writeErr: apperr.ErrAuthentication},
		{name: "owner on published", caller: owner, post: published, canRead: true},
		{name: "owner on draft", caller: owner, post: draft, canRead: true},
		{name: "other on published", caller: other, post: published, canRead: true, writeErr: apperr.ErrAuthorization},
		{name: "other on draft is hidden", caller: other, post: draft, canRead: false, writeErr: apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canRead, CanReadPost(tt.caller, tt.post))

			err := CanWritePost(tt.caller, tt.post)
			if tt.writeErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.writeErr)
			}
		})
	}
}

func TestCanWriteComment(t *testing.T) {
	owner := &models.User{ID: uuid.New()}
	c := &models.Comment{AuthorID: owner.ID}

	assert.ErrorIs(t, CanWriteComment(nil, c), apperr.ErrAuthentication)
	assert.ErrorIs(t, CanWriteComment(&models.User{ID: uuid.New()}, c), apperr.ErrAuthorization)
	assert.NoError(t, CanWriteComment(owner, c))
}
