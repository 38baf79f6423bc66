package blog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"blogpress/internal/blog"
	"blogpress/internal/mocks"
	"blogpress/internal/models"
)

type fixture struct {
	db       *mocks.DB
	posts    *blog.Posts
	comments *blog.Comments
	taxonomy *blog.Taxonomy
}

func newFixture() *fixture {
	db := mocks.NewDB()
	return &fixture{
		db:       db,
		posts:    blog.NewPosts(db.Posts(), db.Categories(), db.Tags()),
		comments: blog.NewComments(db.Posts(), db.Comments()),
		taxonomy: blog.NewTaxonomy(db.Categories(), db.Tags()),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Name: name, IsActive: true}
	require.NoError(t, f.db.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) staff(t *testing.T) *models.User {
	t.Helper()
	u := &models.User{Email: "staff@example.com", Name: "Staff", IsActive: true, IsStaff: true}
	require.NoError(t, f.db.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, title string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), author, blog.PostInput{
		Title:   title,
		Content: "This is the body of " + title + ".",
		Status:  status,
	})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
