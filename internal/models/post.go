// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 200

// Post is a blog article. Views and Likes only ever grow; PublishedAt is
// stamped the first time the post is saved as published and never cleared.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	Excerpt         string     `json:"excerpt"`
	FeaturedImage   *string    `json:"featured_image"`
	AuthorID        uuid.UUID  `json:"-"`
	CategoryID      *uuid.UUID `json:"-"`
	Status          PostStatus `json:"status"`
	IsFeatured      bool       `json:"is_featured"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	Views           int64      `json:"views"`
	Likes           int64      `json:"likes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at"`

	// Relations populated by store methods.
	Author   *Author   `json:"author"`
	Category *Category `json:"category"`
	Tags     []Tag     `json:"tags"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsAuthoredBy reports whether the given user wrote the post.
func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// WordCount counts whitespace-separated words of the current content.
func (p *Post) WordCount() int {
	return len(strings.Fields(p.Content))
}

// ReadingTime estimates minutes to read the post: words / 200, rounded
// half-to-even, never below one minute.
func (p *Post) ReadingTime() int {
	minutes := int(math.RoundToEven(float64(p.WordCount()) / WordsPerMinute))
	return max(1, minutes)
}

// EffectiveMetaTitle falls back to the title when no SEO title is set.
func (p *Post) EffectiveMetaTitle() string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	return p.Title
}

// EffectiveMetaDescription falls back to the excerpt when no SEO
// description is set.
func (p *Post) EffectiveMetaDescription() string {
	if p.MetaDescription != "" {
		return p.MetaDescription
	}
	return p.Excerpt
}

// TagIDs returns the IDs of the attached tags.
func (p *Post) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
