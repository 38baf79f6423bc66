package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

// CommentStore handles comment persistence and moderation flags.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.post_id, cm.author_id, cm.parent_id, cm.content, cm.is_approved,
	       cm.created_at, cm.updated_at,
	       u.name, u.avatar, u.bio, u.website
	FROM comments cm
	JOIN users u ON u.id = cm.author_id`

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c models.Comment
		a models.Author
	)
	err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Content, &c.IsApproved,
		&c.CreatedAt, &c.UpdatedAt,
		&a.Name, &a.Avatar, &a.Bio, &a.Website,
	)
	if err != nil {
		return nil, err
	}
	a.ID = c.AuthorID
	c.Author = &a
	return &c, nil
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// ListByPost returns the comments of a post, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error) {
	query := commentSelect + ` WHERE cm.post_id = $1`
	if approvedOnly {
		query += ` AND cm.is_approved`
	}
	query += ` ORDER BY cm.created_at DESC, cm.id`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a new comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, parent_id, content, is_approved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.PostID, c.AuthorID, c.ParentID, c.Content, c.IsApproved).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Update saves new content for a comment.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2
		RETURNING updated_at
	`, c.Content, c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update comment: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment and, by cascade, its replies.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete comment: %w", apperr.ErrNotFound)
	}
	return nil
}

// SetApproval flips is_approved on the given comments.
func (s *CommentStore) SetApproval(ctx context.Context, ids []uuid.UUID, approved bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE comments SET is_approved = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[])
	`, approved, uuidArray(ids))
	if err != nil {
		return 0, fmt.Errorf("set comment approval: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set comment approval: %w", err)
	}
	return n, nil
}
