package blog

import (
	"strings"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// Paging defaults for post listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery is the client-facing form of a post listing request.
type ListQuery struct {
	Search   string
	Tag      string
	Category string // category slug
	AuthorID *uuid.UUID
	Featured *bool
	Ordering string
	Page     int // 1-based; 0 means the first page
	PageSize int // 0 means DefaultPageSize
}

// Page is one slice of a listing.
type Page struct {
	Items    []models.Post
	Total    int
	Page     int
	PageSize int
}

// TotalPages is the number of pages needed for Total items.
func (p *Page) TotalPages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a later page exists.
func (p *Page) HasNext() bool {
	return p.Page < p.TotalPages()
}

func (q ListQuery) normalized() (page, size int) {
	page, size = q.Page, q.PageSize
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	return page, size
}

// filter validates q and converts it into a repository filter.
func (q ListQuery) filter() (PostFilter, error) {
	errs := fieldErrors{}
	if q.Page < 0 {
		errs.add("page", "Page must be a positive integer.")
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		errs.add("page_size", "Page size must be between 1 and 100.")
	}
	ordering, err := ParseOrdering(q.Ordering)
	if err != nil {
		errs.add("ordering", "Unsupported ordering field.")
	}
	if err := errs.err(); err != nil {
		return PostFilter{}, err
	}

	return PostFilter{
		Search:       strings.TrimSpace(q.Search),
		Tag:          strings.TrimSpace(q.Tag),
		CategorySlug: strings.TrimSpace(q.Category),
		AuthorID:     q.AuthorID,
		Featured:     q.Featured,
		Ordering:     ordering,
	}, nil
}
