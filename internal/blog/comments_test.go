package blog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
	"blogpress/internal/models"
)

func TestCommentCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	post := f.post(t, author, "Discussed", models.PostStatusPublished)
	draft := f.post(t, author, "Quiet draft", models.PostStatusDraft)

	c, err := f.comments.Create(ctx, reader, post.Slug, blog.CommentInput{Content: "  Great read!  "})
	require.NoError(t, err)
	assert.Equal(t, "Great read!", c.Content)
	assert.True(t, c.IsApproved)
	assert.Equal(t, reader.ID, c.AuthorID)
	require.NotNil(t, c.Author)
	assert.Equal(t, "reader", c.Author.Name)

	_, err = f.comments.Create(ctx, nil, post.Slug, blog.CommentInput{Content: "anonymous"})
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	_, err = f.comments.Create(ctx, reader, draft.Slug, blog.CommentInput{Content: "too early"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.comments.Create(ctx, reader, "missing", blog.CommentInput{Content: "nowhere"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.comments.Create(ctx, reader, post.Slug, blog.CommentInput{Content: " x "})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Comment must be at least 2 characters long.", verr.Fields["content"])
}

func TestCommentReplyMustShareThePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.user(t, "author")
	first := f.post(t, author, "First post", models.PostStatusPublished)
	second := f.post(t, author, "Second post", models.PostStatusPublished)

	root, err := f.comments.Create(ctx, author, first.Slug, blog.CommentInput{Content: "Root comment"})
	require.NoError(t, err)

	reply, err := f.comments.Create(ctx, author, first.Slug, blog.CommentInput{Content: "A reply", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.True(t, reply.IsReply())

	tests := map[string]*uuid.UUID{
		"parent on another post": &root.ID,
		"unknown parent":         ptr(uuid.New()),
	}
	for name, parent := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.comments.Create(ctx, author, second.Slug, blog.CommentInput{Content: "Misplaced", ParentID: parent})
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "parent")
		})
	}
}

func TestListThreadsHidesUnapprovedReplies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.user(t, "author")
	staff := f.staff(t)
	post := f.post(t, author, "Threaded", models.PostStatusPublished)

	older, err := f.comments.Create(ctx, author, post.Slug, blog.CommentInput{Content: "Older root"})
	require.NoError(t, err)
	newer, err := f.comments.Create(ctx, author, post.Slug, blog.CommentInput{Content: "Newer root"})
	require.NoError(t, err)
	kept, err := f.comments.Create(ctx, author, post.Slug, blog.CommentInput{Content: "Kept reply", ParentID: &older.ID})
	require.NoError(t, err)
	hidden, err := f.comments.Create(ctx, author, post.Slug, blog.CommentInput{Content: "Hidden reply", ParentID: &older.ID})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, author, post.Slug, blog.CommentInput{Content: "Under hidden", ParentID: &hidden.ID})
	require.NoError(t, err)

	n, err := f.comments.Moderate(ctx, staff, []uuid.UUID{hidden.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	threads, err := f.comments.ListForPost(ctx, post.Slug)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, newer.ID, threads[0].ID, "newest root first")
	assert.Empty(t, threads[0].Replies)
	assert.Equal(t, older.ID, threads[1].ID)
	require.Len(t, threads[1].Replies, 1)
	assert.Equal(t, kept.ID, threads[1].Replies[0].ID)
}

func TestCommentUpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	post := f.post(t, owner, "Commented", models.PostStatusPublished)

	c, err := f.comments.Create(ctx, owner, post.Slug, blog.CommentInput{Content: "Original words"})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, other, post.Slug, blog.CommentInput{Content: "A reply", ParentID: &c.ID})
	require.NoError(t, err)

	_, err = f.comments.Update(ctx, other, c.ID, "Rewritten by someone else")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	_, err = f.comments.Update(ctx, nil, c.ID, "Anonymous edit")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	_, err = f.comments.Update(ctx, owner, uuid.New(), "Missing comment")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, f.comments.Delete(ctx, other, c.ID), apperr.ErrAuthorization)

	updated, err := f.comments.Update(ctx, owner, c.ID, "  Edited words ")
	require.NoError(t, err)
	assert.Equal(t, "Edited words", updated.Content)

	require.NoError(t, f.comments.Delete(ctx, owner, c.ID))
	threads, err := f.comments.ListForPost(ctx, post.Slug)
	require.NoError(t, err)
	assert.Empty(t, threads, "replies go with their parent")
}

func TestModerateRequiresStaff(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.user(t, "user")

	_, err := f.comments.Moderate(ctx, nil, []uuid.UUID{uuid.New()}, true)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	_, err = f.comments.Moderate(ctx, user, []uuid.UUID{uuid.New()}, true)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.comments.Moderate(ctx, f.staff(t), nil, true)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ids")
}

func TestBuildThreads(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	root := models.Comment{ID: uuid.New(), CreatedAt: at}
	child := models.Comment{ID: uuid.New(), ParentID: &root.ID, CreatedAt: at.Add(time.Minute)}
	grandchild := models.Comment{ID: uuid.New(), ParentID: &child.ID, CreatedAt: at.Add(2 * time.Minute)}
	orphan := models.Comment{ID: uuid.New(), ParentID: ptr(uuid.New())}

	threads := blog.BuildThreads([]models.Comment{grandchild, orphan, child, root})

	require.Len(t, threads, 1)
	assert.Equal(t, root.ID, threads[0].ID)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, child.ID, threads[0].Replies[0].ID)
	require.Len(t, threads[0].Replies[0].Replies, 1)
	assert.Equal(t, grandchild.ID, threads[0].Replies[0].Replies[0].ID)
	assert.Empty(t, threads[0].Replies[0].Replies[0].Replies)

	assert.Empty(t, blog.BuildThreads(nil))
}
