package blog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
)

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		in   string
		want blog.Ordering
	}{
		{in: "", want: blog.DefaultOrdering},
		{in: "  ", want: blog.DefaultOrdering},
		{in: "title", want: blog.Ordering{Field: "title"}},
		{in: "-views", want: blog.Ordering{Field: "views", Desc: true}},
		{in: "published_at", want: blog.Ordering{Field: "published_at"}},
		{in: "-likes", want: blog.Ordering{Field: "likes", Desc: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := blog.ParseOrdering(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderingRejectsUnknownFields(t *testing.T) {
	for _, in := range []string{"author", "-password_hash", "--title", "title; drop table posts"} {
		_, err := blog.ParseOrdering(in)
		var verr *apperr.ValidationError
		assert.ErrorAs(t, err, &verr, in)
	}
}

func TestOrderingString(t *testing.T) {
	assert.Equal(t, "-created_at", blog.DefaultOrdering.String())
	assert.Equal(t, "title", blog.Ordering{Field: "title"}.String())
	assert.True(t, blog.Ordering{}.IsZero())
}

func TestPageMath(t *testing.T) {
	tests := []struct {
		page       blog.Page
		totalPages int
		hasNext    bool
	}{
		{page: blog.Page{Total: 0, Page: 1, PageSize: 10}, totalPages: 0, hasNext: false},
		{page: blog.Page{Total: 10, Page: 1, PageSize: 10}, totalPages: 1, hasNext: false},
		{page: blog.Page{Total: 11, Page: 1, PageSize: 10}, totalPages: 2, hasNext: true},
		{page: blog.Page{Total: 11, Page: 2, PageSize: 10}, totalPages: 2, hasNext: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.totalPages, tt.page.TotalPages())
		assert.Equal(t, tt.hasNext, tt.page.HasNext())
	}
}
