package blog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"blogpress/internal/apperr"
	"blogpress/internal/models"
)

// Validation limits for posts, comments and taxonomy.
const (
	minTitleLen       = 3
	maxTitleLen       = 200
	minContentLen     = 10
	maxExcerptLen     = 500
	maxMetaTitleLen   = 60
	maxMetaDescLen    = 160
	minCommentLen     = 2
	maxCommentLen     = 5000
	maxCategoryName   = 100
	maxTagName        = 50
	maxImageRefLen    = 500
	maxDescriptionLen = 2000

	// ExcerptLength is how many characters a derived excerpt keeps.
	ExcerptLength = 150
)

// fieldErrors collects per-field messages, keeping the first one per field.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &apperr.ValidationError{Fields: f}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// validatePost checks the stored fields of p. Title and content must
// already be trimmed.
func validatePost(p *models.Post, errs fieldErrors) {
	switch n := runeLen(p.Title); {
	case n < minTitleLen:
		errs.add("title", "Title must be at least 3 characters long.")
	case n > maxTitleLen:
		errs.add("title", fmt.Sprintf("Title cannot exceed %d characters.", maxTitleLen))
	}
	if runeLen(p.Content) < minContentLen {
		errs.add("content", "Content must be at least 10 characters long.")
	}
	if runeLen(p.Excerpt) > maxExcerptLen {
		errs.add("excerpt", "Excerpt cannot exceed 500 characters.")
	}
	if runeLen(p.MetaTitle) > maxMetaTitleLen {
		errs.add("meta_title", fmt.Sprintf("Meta title cannot exceed %d characters.", maxMetaTitleLen))
	}
	if runeLen(p.MetaDescription) > maxMetaDescLen {
		errs.add("meta_description", fmt.Sprintf("Meta description cannot exceed %d characters.", maxMetaDescLen))
	}
	if !p.Status.Valid() {
		errs.add("status", fmt.Sprintf("%q is not a valid status.", string(p.Status)))
	}
	if p.FeaturedImage != nil && runeLen(*p.FeaturedImage) > maxImageRefLen {
		errs.add("featured_image", "Featured image reference is too long.")
	}
}

// cleanComment trims content and checks its length.
func cleanComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	switch n := runeLen(content); {
	case n < minCommentLen:
		return "", apperr.Invalid("content", "Comment must be at least 2 characters long.")
	case n > maxCommentLen:
		return "", apperr.Invalid("content", fmt.Sprintf("Comment cannot exceed %d characters.", maxCommentLen))
	}
	return content, nil
}

// optionalString trims s and maps the empty result to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
