// Package blog implements the publishing rules: post lifecycle, comment
// threads and taxonomy management. Services depend on the repository
// interfaces in this package and never on a concrete database.
package blog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/authz"
	"blogpress/internal/markdown"
	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// Listing sizes for the curated feeds.
const (
	FeaturedLimit = 6
	PopularLimit  = 6
)

// reservedSlugs name the fixed routes under /api/posts.
var reservedSlugs = map[string]bool{
	"featured": true,
	"popular":  true,
	"mine":     true,
}

// PostInput carries the client-settable fields of a new post.
type PostInput struct {
	Title           string
	Slug            string // optional; derived from Title when empty
	Content         string
	Excerpt         string
	FeaturedImage   *string
	CategoryID      *uuid.UUID
	TagIDs          []uuid.UUID
	Status          models.PostStatus // empty means published
	IsFeatured      bool
	MetaTitle       string
	MetaDescription string
}

// PostPatch is a partial update. Nil fields are left unchanged. The slug
// and the author cannot be patched.
type PostPatch struct {
	Title           *string
	Content         *string
	Excerpt         *string
	FeaturedImage   *string // empty string clears the reference
	CategoryID      *uuid.UUID
	ClearCategory   bool
	TagIDs          *[]uuid.UUID
	Status          *models.PostStatus
	IsFeatured      *bool
	MetaTitle       *string
	MetaDescription *string
}

// Posts is the content lifecycle service.
type Posts struct {
	posts      PostRepository
	categories CategoryRepository
	tags       TagRepository
	now        func() time.Time
}

// NewPosts wires the post service to its repositories.
func NewPosts(posts PostRepository, categories CategoryRepository, tags TagRepository) *Posts {
	return &Posts{
		posts:      posts,
		categories: categories,
		tags:       tags,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in and stores a new post authored by caller.
func (s *Posts) Create(ctx context.Context, caller *models.User, in PostInput) (*models.Post, error) {
	if err := authz.RequireUser(caller); err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:           strings.TrimSpace(in.Title),
		Content:         strings.TrimSpace(in.Content),
		Excerpt:         strings.TrimSpace(in.Excerpt),
		FeaturedImage:   optionalString(in.FeaturedImage),
		AuthorID:        caller.ID,
		CategoryID:      in.CategoryID,
		Status:          in.Status,
		IsFeatured:      in.IsFeatured,
		MetaTitle:       strings.TrimSpace(in.MetaTitle),
		MetaDescription: strings.TrimSpace(in.MetaDescription),
	}
	if p.Status == "" {
		p.Status = models.PostStatusPublished
	}

	errs := fieldErrors{}
	validatePost(p, errs)

	if requested := strings.TrimSpace(in.Slug); requested != "" {
		if !slug.Valid(requested) {
			errs.add("slug", "Slug may contain only lowercase letters, digits and single hyphens.")
		}
		p.Slug = requested
	} else {
		p.Slug = slug.Generate(p.Title)
		if p.Slug == "" {
			errs.add("title", "Title must contain at least one letter or digit.")
		}
	}
	if reservedSlugs[p.Slug] {
		errs.add("slug", fmt.Sprintf("%q is reserved; choose another slug.", p.Slug))
	}

	tags, err := s.resolveRefs(ctx, p.CategoryID, in.TagIDs, errs)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	p.Tags = tags

	s.derive(p)

	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.reload(ctx, p.Slug)
}

// Update applies patch to the post identified by postSlug.
func (s *Posts) Update(ctx context.Context, caller *models.User, postSlug string, patch PostPatch) (*models.Post, error) {
	if err := authz.RequireUser(caller); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if err := authz.CanWritePost(caller, p); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		p.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.FeaturedImage != nil {
		p.FeaturedImage = optionalString(patch.FeaturedImage)
	}
	switch {
	case patch.ClearCategory:
		p.CategoryID = nil
	case patch.CategoryID != nil:
		p.CategoryID = patch.CategoryID
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.MetaTitle != nil {
		p.MetaTitle = strings.TrimSpace(*patch.MetaTitle)
	}
	if patch.MetaDescription != nil {
		p.MetaDescription = strings.TrimSpace(*patch.MetaDescription)
	}

	errs := fieldErrors{}
	validatePost(p, errs)

	tagIDs := p.TagIDs()
	if patch.TagIDs != nil {
		tagIDs = *patch.TagIDs
	}
	var categoryID *uuid.UUID
	if patch.CategoryID != nil && !patch.ClearCategory {
		categoryID = p.CategoryID
	}
	tags, err := s.resolveRefs(ctx, categoryID, tagIDs, errs)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	p.Tags = tags

	s.derive(p)

	if err := s.posts.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.reload(ctx, p.Slug)
}

// Delete removes a post owned by caller.
func (s *Posts) Delete(ctx context.Context, caller *models.User, postSlug string) error {
	if err := authz.RequireUser(caller); err != nil {
		return err
	}
	p, err := s.find(ctx, postSlug)
	if err != nil {
		return err
	}
	if err := authz.CanWritePost(caller, p); err != nil {
		return err
	}
	return s.posts.Delete(ctx, p.ID)
}

// Get returns the post for a detail view. Published posts gain one view;
// drafts are only visible to their author and are not counted.
func (s *Posts) Get(ctx context.Context, caller *models.User, postSlug string) (*models.Post, error) {
	p, err := s.find(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadPost(caller, p) {
		return nil, apperr.ErrNotFound
	}
	if p.IsPublished() {
		views, err := s.posts.IncrementViews(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Views = views
	}
	return p, nil
}

// Like adds one like to a published post and returns the new total.
func (s *Posts) Like(ctx context.Context, caller *models.User, postSlug string) (int64, error) {
	if err := authz.RequireUser(caller); err != nil {
		return 0, err
	}
	p, err := s.find(ctx, postSlug)
	if err != nil {
		return 0, err
	}
	if !p.IsPublished() {
		return 0, apperr.ErrNotFound
	}
	return s.posts.IncrementLikes(ctx, p.ID)
}

// List returns one page of published posts.
func (s *Posts) List(ctx context.Context, q ListQuery) (*Page, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	published := models.PostStatusPublished
	f.Status = &published
	return s.page(ctx, f, q)
}

// Mine lists caller's posts in any status.
func (s *Posts) Mine(ctx context.Context, caller *models.User, q ListQuery) (*Page, error) {
	if err := authz.RequireUser(caller); err != nil {
		return nil, err
	}
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	f.AuthorID = &caller.ID
	return s.page(ctx, f, q)
}

// ByAuthor lists the published posts of one user.
func (s *Posts) ByAuthor(ctx context.Context, authorID uuid.UUID, q ListQuery) (*Page, error) {
	q.AuthorID = &authorID
	return s.List(ctx, q)
}

// Featured returns the newest featured published posts.
func (s *Posts) Featured(ctx context.Context) ([]models.Post, error) {
	featured := true
	published := models.PostStatusPublished
	posts, _, err := s.posts.List(ctx, PostFilter{
		Featured: &featured,
		Status:   &published,
		Ordering: DefaultOrdering,
		Limit:    FeaturedLimit,
	})
	return posts, err
}

// Popular returns the most viewed published posts.
func (s *Posts) Popular(ctx context.Context) ([]models.Post, error) {
	published := models.PostStatusPublished
	posts, _, err := s.posts.List(ctx, PostFilter{
		Status:   &published,
		Ordering: Ordering{Field: "views", Desc: true},
		Limit:    PopularLimit,
	})
	return posts, err
}

func (s *Posts) page(ctx context.Context, f PostFilter, q ListQuery) (*Page, error) {
	page, size := q.normalized()
	f.Limit = size
	f.Offset = math.MaxInt
	if page-1 <= math.MaxInt/size {
		f.Offset = (page - 1) * size
	}

	posts, total, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return &Page{Items: posts, Total: total, Page: page, PageSize: size}, nil
}

// find loads a post or fails with ErrNotFound.
func (s *Posts) find(ctx context.Context, postSlug string) (*models.Post, error) {
	p, err := s.posts.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (s *Posts) reload(ctx context.Context, postSlug string) (*models.Post, error) {
	p, err := s.find(ctx, postSlug)
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}
	return p, nil
}

// derive fills the excerpt and the first publication time.
func (s *Posts) derive(p *models.Post) {
	if p.Excerpt == "" {
		p.Excerpt = markdown.Excerpt(p.Content, ExcerptLength)
	}
	if p.IsPublished() && p.PublishedAt == nil {
		now := s.now()
		p.PublishedAt = &now
	}
}

// resolveRefs checks that categoryID (when set) and every tag exist and
// returns the tags. Missing references are recorded in errs.
func (s *Posts) resolveRefs(ctx context.Context, categoryID *uuid.UUID, tagIDs []uuid.UUID, errs fieldErrors) ([]models.Tag, error) {
	if categoryID != nil {
		c, err := s.categories.FindByID(ctx, *categoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			errs.add("category_id", "Category does not exist.")
		}
	}

	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	tags, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		errs.add("tag_ids", "One or more tags do not exist.")
	}
	return tags, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
