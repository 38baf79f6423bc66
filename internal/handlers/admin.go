package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
	"blogpress/internal/cache"
	"blogpress/internal/middleware"
)

// Admin groups the staff-only endpoints: taxonomy management and comment
// moderation. Mutations drop the cached taxonomy listings.
type Admin struct {
	taxonomy *blog.Taxonomy
	comments *blog.Comments
	cache    *cache.ResponseCache
}

// NewAdmin creates the admin handler group. responses may be nil.
func NewAdmin(taxonomy *blog.Taxonomy, comments *blog.Comments, responses *cache.ResponseCache) *Admin {
	return &Admin{taxonomy: taxonomy, comments: comments, cache: responses}
}

type taxonomyRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

func (req taxonomyRequest) input() blog.TaxonomyInput {
	return blog.TaxonomyInput{Name: req.Name, Slug: req.Slug, Description: req.Description}
}

// CategoryCreate adds a category.
func (h *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	c, err := h.taxonomy.CreateCategory(r.Context(), middleware.UserFromCtx(r.Context()), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.CategoriesKey)
	respond(w, http.StatusCreated, c)
}

// CategoryUpdate patches a category.
func (h *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	c, err := h.taxonomy.UpdateCategory(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug"), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.CategoriesKey)
	respond(w, http.StatusOK, c)
}

// CategoryDelete removes a category; its posts become uncategorized.
func (h *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.taxonomy.DeleteCategory(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug")); err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.CategoriesKey)
	w.WriteHeader(http.StatusNoContent)
}

// TagCreate adds a tag.
func (h *Admin) TagCreate(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := h.taxonomy.CreateTag(r.Context(), middleware.UserFromCtx(r.Context()), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.TagsKey)
	respond(w, http.StatusCreated, t)
}

// TagUpdate patches a tag.
func (h *Admin) TagUpdate(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := h.taxonomy.UpdateTag(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug"), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.TagsKey)
	respond(w, http.StatusOK, t)
}

// TagDelete removes a tag and detaches it from its posts.
func (h *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.taxonomy.DeleteTag(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug")); err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.TagsKey)
	w.WriteHeader(http.StatusNoContent)
}

type moderateRequest struct {
	IDs      []uuid.UUID `json:"ids"`
	Approved *bool       `json:"approved"`
}

// ModerateComments approves or hides comments in bulk.
func (h *Admin) ModerateComments(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Approved == nil {
		respondError(w, r, apperr.Invalid("approved", "This field is required."))
		return
	}
	n, err := h.comments.Moderate(r.Context(), middleware.UserFromCtx(r.Context()), req.IDs, *req.Approved)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int64{"updated": n})
}
