package blog

import (
	"context"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Search       string             // title, content, excerpt or author name, case-insensitive
	Tag          string             // tag name contains, case-insensitive
	CategorySlug string             // exact category slug
	AuthorID     *uuid.UUID         // posts by this author
	Featured     *bool              // is_featured equals
	Status       *models.PostStatus // nil means any status
	Ordering     Ordering
	Limit        int
	Offset       int
}

// PostRepository persists posts. Find methods return (nil, nil) when the
// post does not exist. Returned posts carry their author summary, category
// and tags.
type PostRepository interface {
	// Create inserts p together with its tag links and fills in the
	// generated ID and timestamps.
	Create(ctx context.Context, p *models.Post) error
	// Update saves the mutable fields of p and replaces its tag links.
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	// List returns one page of posts plus the total number of matches.
	List(ctx context.Context, f PostFilter) ([]models.Post, int, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (int64, error)
}

// CategoryRepository persists categories. List fills PostCount.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagRepository persists tags. List fills PostCount.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	// FindByIDs returns the tags that exist among ids, in name order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	Create(ctx context.Context, t *models.Tag) error
	Update(ctx context.Context, t *models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentRepository persists comments. Returned comments carry their
// author summary.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListByPost returns every comment of the post, newest first. With
	// approvedOnly set, unapproved comments are left out.
	ListByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error)
	// SetApproval updates is_approved on the given comments and reports
	// how many rows changed.
	SetApproval(ctx context.Context, ids []uuid.UUID, approved bool) (int64, error)
}
