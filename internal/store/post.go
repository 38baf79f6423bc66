// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// PostStore handles CRUD, listing and counters for posts.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect joins the author summary and the optional category.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image, p.author_id, p.category_id,
	       p.status, p.is_featured, p.meta_title, p.meta_description, p.views, p.likes,
	       p.created_at, p.updated_at, p.published_at,
	       u.name, u.avatar, u.bio, u.website,
	       c.name, c.slug, c.description, c.created_at, c.updated_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p       models.Post
		a       models.Author
		catName sql.NullString
		catSlug sql.NullString
		catDesc sql.NullString
		catCA   sql.NullTime
		catUA   sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage, &p.AuthorID, &p.CategoryID,
		&p.Status, &p.IsFeatured, &p.MetaTitle, &p.MetaDescription, &p.Views, &p.Likes,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
		&a.Name, &a.Avatar, &a.Bio, &a.Website,
		&catName, &catSlug, &catDesc, &catCA, &catUA,
	)
	if err != nil {
		return nil, err
	}
	a.ID = p.AuthorID
	p.Author = &a
	if p.CategoryID != nil && catName.Valid {
		p.Category = &models.Category{
			ID:          *p.CategoryID,
			Name:        catName.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
			CreatedAt:   catCA.Time,
			UpdatedAt:   catUA.Time,
		}
	}
	p.Tags = []models.Tag{}
	return &p, nil
}

// FindBySlug retrieves a post with its relations. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE p.slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	if err := s.attachTags(ctx, []*models.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page of posts matching f and the total match count.
func (s *PostStore) List(ctx context.Context, f blog.PostFilter) ([]models.Post, int, error) {
	var w whereBuilder
	if f.Status != nil {
		w.add("p.status = ?", string(*f.Status))
	}
	if f.AuthorID != nil {
		w.add("p.author_id = ?", *f.AuthorID)
	}
	if f.Featured != nil {
		w.add("p.is_featured = ?", *f.Featured)
	}
	if f.CategorySlug != "" {
		w.add("c.slug = ?", f.CategorySlug)
	}
	if f.Tag != "" {
		w.add(`EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.name ILIKE ?)`, likePattern(f.Tag))
	}
	if f.Search != "" {
		ph := w.arg(likePattern(f.Search))
		w.conds = append(w.conds, "(p.title ILIKE "+ph+" OR p.content ILIKE "+ph+
			" OR p.excerpt ILIKE "+ph+" OR u.name ILIKE "+ph+")")
	}
	where := w.sql()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+postFrom+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	ordering := f.Ordering
	if ordering.IsZero() {
		ordering = blog.DefaultOrdering
	}
	dir := "ASC"
	if ordering.Desc {
		dir = "DESC"
	}
	// Ordering.Field is one of a fixed set of column names.
	query := postSelect + where + ` ORDER BY p.` + ordering.Field + ` ` + dir + ` NULLS LAST, p.id`
	args := w.args
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, max(0, f.Offset))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		ptrs = append(ptrs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	if err := s.attachTags(ctx, ptrs); err != nil {
		return nil, 0, err
	}

	posts := make([]models.Post, 0, len(ptrs))
	for _, p := range ptrs {
		posts = append(posts, *p)
	}
	return posts, total, nil
}

// attachTags loads the tags of every post in one query.
func (s *PostStore) attachTags(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Post, len(posts))
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name
	`, uuidArray(ids))
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID uuid.UUID
			t      models.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return rows.Err()
}

// Create inserts a post and its tag links in one transaction. A duplicate
// slug yields a ConflictError on "slug".
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create post begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, featured_image, author_id, category_id,
		                   status, is_featured, meta_title, meta_description, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, views, likes, created_at, updated_at
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage, p.AuthorID, p.CategoryID,
		string(p.Status), p.IsFeatured, p.MetaTitle, p.MetaDescription, p.PublishedAt,
	).Scan(&p.ID, &p.Views, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", asConflict(err))
	}

	if err := replaceTags(ctx, tx, p.ID, p.TagIDs()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create post commit: %w", err)
	}
	return nil
}

// Update saves the mutable fields of p and replaces its tag links in one
// transaction. published_at is only written while still NULL.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update post begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $1, content = $2, excerpt = $3, featured_image = $4, category_id = $5,
		    status = $6, is_featured = $7, meta_title = $8, meta_description = $9,
		    published_at = COALESCE(published_at, $10), updated_at = NOW()
		WHERE id = $11
		RETURNING published_at, updated_at
	`, p.Title, p.Content, p.Excerpt, p.FeaturedImage, p.CategoryID,
		string(p.Status), p.IsFeatured, p.MetaTitle, p.MetaDescription, p.PublishedAt, p.ID,
	).Scan(&p.PublishedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if err := replaceTags(ctx, tx, p.ID, p.TagIDs()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update post commit: %w", err)
	}
	return nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO post_tags (post_id, tag_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, postID, uuidArray(tagIDs))
	if err != nil {
		return fmt.Errorf("insert post tags: %w", err)
	}
	return nil
}

// Delete removes a post. Comments and tag links cascade.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete post: %w", apperr.ErrNotFound)
	}
	return nil
}

// IncrementViews adds one view and returns the new total.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.increment(ctx, "views", id)
}

// IncrementLikes adds one like and returns the new total.
func (s *PostStore) IncrementLikes(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.increment(ctx, "likes", id)
}

// increment is a single UPDATE so concurrent callers never lose counts.
func (s *PostStore) increment(ctx context.Context, column string, id uuid.UUID) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE posts SET `+column+` = `+column+` + 1 WHERE id = $1 RETURNING `+column, id,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment %s: %w", column, apperr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", column, err)
	}
	return n, nil
}

