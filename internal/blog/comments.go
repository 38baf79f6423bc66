package blog

import (
	"context"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/authz"
	"blogpress/internal/models"
)

// CommentInput carries a new comment.
type CommentInput struct {
	Content  string
	ParentID *uuid.UUID
}

// Comments is the comment service.
type Comments struct {
	posts    PostRepository
	comments CommentRepository
}

// NewComments wires the comment service to its repositories.
func NewComments(posts PostRepository, comments CommentRepository) *Comments {
	return &Comments{posts: posts, comments: comments}
}

// Create adds a comment by caller to the published post postSlug.
func (s *Comments) Create(ctx context.Context, caller *models.User, postSlug string, in CommentInput) (*models.Comment, error) {
	if err := authz.RequireUser(caller); err != nil {
		return nil, err
	}
	post, err := s.publishedPost(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	content, err := cleanComment(in.Content)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != post.ID {
			return nil, apperr.Invalid("parent", "Parent comment must belong to the same post.")
		}
	}

	c := &models.Comment{
		PostID:     post.ID,
		AuthorID:   caller.ID,
		ParentID:   in.ParentID,
		Content:    content,
		IsApproved: true,
		Author:     caller.Summary(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListForPost returns the approved comment threads of a published post.
func (s *Comments) ListForPost(ctx context.Context, postSlug string) ([]models.CommentThread, error) {
	post, err := s.publishedPost(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	return s.Threads(ctx, post.ID)
}

// Threads returns the approved comment threads of a post by ID.
func (s *Comments) Threads(ctx context.Context, postID uuid.UUID) ([]models.CommentThread, error) {
	comments, err := s.comments.ListByPost(ctx, postID, true)
	if err != nil {
		return nil, err
	}
	return BuildThreads(comments), nil
}

// Update replaces the content of a comment owned by caller.
func (s *Comments) Update(ctx context.Context, caller *models.User, id uuid.UUID, content string) (*models.Comment, error) {
	c, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	content, err = cleanComment(content)
	if err != nil {
		return nil, err
	}
	c.Content = content
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a comment owned by caller together with its replies.
func (s *Comments) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	c, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.comments.Delete(ctx, c.ID)
}

// Moderate sets the approval flag on the given comments. Staff only.
func (s *Comments) Moderate(ctx context.Context, caller *models.User, ids []uuid.UUID, approved bool) (int64, error) {
	if err := authz.RequireStaff(caller); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperr.Invalid("ids", "At least one comment ID is required.")
	}
	return s.comments.SetApproval(ctx, uniqueIDs(ids), approved)
}

func (s *Comments) owned(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Comment, error) {
	if err := authz.RequireUser(caller); err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	if err := authz.CanWriteComment(caller, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Comments) publishedPost(ctx context.Context, postSlug string) (*models.Post, error) {
	post, err := s.posts.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsPublished() {
		return nil, apperr.ErrNotFound
	}
	return post, nil
}

// BuildThreads arranges a flat comment list into reply trees. Top-level
// comments and replies keep the order of the input. A reply whose parent
// is absent from the input is dropped along with its own replies.
func BuildThreads(comments []models.Comment) []models.CommentThread {
	children := make(map[uuid.UUID][]int, len(comments))
	var roots []int
	for i, c := range comments {
		if !c.IsReply() {
			roots = append(roots, i)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], i)
	}

	var build func(i int) models.CommentThread
	build = func(i int) models.CommentThread {
		t := models.CommentThread{Comment: comments[i], Replies: []models.CommentThread{}}
		for _, j := range children[comments[i].ID] {
			t.Replies = append(t.Replies, build(j))
		}
		return t
	}

	threads := make([]models.CommentThread, 0, len(roots))
	for _, i := range roots {
		threads = append(threads, build(i))
	}
	return threads
}
