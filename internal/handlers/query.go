package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
)

// listQuery reads the post listing parameters.
func listQuery(values url.Values) (blog.ListQuery, error) {
	q := blog.ListQuery{
		Search:   values.Get("search"),
		Tag:      values.Get("tag"),
		Category: values.Get("category"),
		Ordering: values.Get("ordering"),
	}

	errs := map[string]string{}
	intParam := func(name string, dst *int) {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs[name] = "Must be a positive integer."
			return
		}
		*dst = n
	}
	intParam("page", &q.Page)
	intParam("page_size", &q.PageSize)

	if raw := strings.TrimSpace(values.Get("author")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs["author"] = "Must be a valid user ID."
		} else {
			q.AuthorID = &id
		}
	}
	if raw := strings.TrimSpace(values.Get("featured")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["featured"] = "Must be true or false."
		} else {
			q.Featured = &b
		}
	}

	if len(errs) > 0 {
		return q, &apperr.ValidationError{Fields: errs}
	}
	return q, nil
}

// pageMeta is the pagination block of list responses.
type pageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func newPageMeta(p *blog.Page) pageMeta {
	return pageMeta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages(),
		HasNext:    p.HasNext(),
	}
}

// idParam parses a UUID path parameter. A malformed ID cannot match any
// row, so it is reported as not found.
func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return id, nil
}
