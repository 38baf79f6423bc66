package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's message on a post. ParentID makes it a reply to
// another comment of the same post.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	PostID     uuid.UUID  `json:"-"`
	AuthorID   uuid.UUID  `json:"-"`
	ParentID   *uuid.UUID `json:"parent"`
	Content    string     `json:"content"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Author *Author `json:"author"`
}

// IsReply returns true when the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// IsAuthoredBy reports whether the given user wrote the comment.
func (c *Comment) IsAuthoredBy(userID uuid.UUID) bool {
	return c.AuthorID == userID
}

// CommentThread is a comment together with its materialized replies.
type CommentThread struct {
	Comment
	Replies []CommentThread `json:"replies"`
}
