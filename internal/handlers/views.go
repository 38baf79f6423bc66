package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// postListItem is the compact post representation used in listings.
type postListItem struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Excerpt       string            `json:"excerpt"`
	FeaturedImage *string           `json:"featured_image"`
	Author        *models.Author    `json:"author"`
	Category      *models.Category  `json:"category"`
	Tags          []models.Tag      `json:"tags"`
	Status        models.PostStatus `json:"status"`
	IsFeatured    bool              `json:"is_featured"`
	Views         int64             `json:"views"`
	Likes         int64             `json:"likes"`
	ReadingTime   int               `json:"reading_time"`
	CreatedAt     time.Time         `json:"created_at"`
	PublishedAt   *time.Time        `json:"published_at"`
}

func newPostListItem(p *models.Post) postListItem {
	return postListItem{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		Author:        p.Author,
		Category:      p.Category,
		Tags:          p.Tags,
		Status:        p.Status,
		IsFeatured:    p.IsFeatured,
		Views:         p.Views,
		Likes:         p.Likes,
		ReadingTime:   p.ReadingTime(),
		CreatedAt:     p.CreatedAt,
		PublishedAt:   p.PublishedAt,
	}
}

func newPostList(posts []models.Post) []postListItem {
	items := make([]postListItem, 0, len(posts))
	for i := range posts {
		items = append(items, newPostListItem(&posts[i]))
	}
	return items
}

// postDetail is the full post with derived read-only fields. The meta
// fields shadow the stored ones with their effective values.
type postDetail struct {
	*models.Post
	ContentHTML     string                 `json:"content_html"`
	ReadingTime     int                    `json:"reading_time"`
	WordCount       int                    `json:"word_count"`
	MetaTitle       string                 `json:"meta_title"`
	MetaDescription string                 `json:"meta_description"`
	Comments        []models.CommentThread `json:"comments"`
}

// profileView is a user as shown to themselves.
type profileView struct {
	*models.User
	IsStaff bool `json:"is_staff"`
}

func newProfile(u *models.User) profileView {
	return profileView{User: u, IsStaff: u.IsStaff}
}

// nullableUUID distinguishes an absent field from an explicit null.
type nullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (n *nullableUUID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}
