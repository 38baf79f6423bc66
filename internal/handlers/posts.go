package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/cache"
	"blogpress/internal/markdown"
	"blogpress/internal/metrics"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
)

// Posts groups the post endpoints.
type Posts struct {
	posts    *blog.Posts
	comments *blog.Comments
	cache    *cache.ResponseCache
	metrics  *metrics.Metrics
}

// NewPosts creates the post handler group. responses and m may be nil.
func NewPosts(posts *blog.Posts, comments *blog.Comments, responses *cache.ResponseCache, m *metrics.Metrics) *Posts {
	return &Posts{posts: posts, comments: comments, cache: responses, metrics: m}
}

// postRequest is the JSON body of create and update. Pointer fields tell
// an omitted value from an empty one on PATCH.
type postRequest struct {
	Title           *string            `json:"title"`
	Slug            *string            `json:"slug"`
	Content         *string            `json:"content"`
	Excerpt         *string            `json:"excerpt"`
	FeaturedImage   *string            `json:"featured_image"`
	CategoryID      nullableUUID       `json:"category_id"`
	TagIDs          *[]uuid.UUID       `json:"tag_ids"`
	Status          *models.PostStatus `json:"status"`
	IsFeatured      *bool              `json:"is_featured"`
	MetaTitle       *string            `json:"meta_title"`
	MetaDescription *string            `json:"meta_description"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (req postRequest) input() blog.PostInput {
	return blog.PostInput{
		Title:           deref(req.Title),
		Slug:            deref(req.Slug),
		Content:         deref(req.Content),
		Excerpt:         deref(req.Excerpt),
		FeaturedImage:   req.FeaturedImage,
		CategoryID:      req.CategoryID.Value,
		TagIDs:          deref(req.TagIDs),
		Status:          deref(req.Status),
		IsFeatured:      deref(req.IsFeatured),
		MetaTitle:       deref(req.MetaTitle),
		MetaDescription: deref(req.MetaDescription),
	}
}

func (req postRequest) patch() blog.PostPatch {
	p := blog.PostPatch{
		Title:           req.Title,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		FeaturedImage:   req.FeaturedImage,
		TagIDs:          req.TagIDs,
		Status:          req.Status,
		IsFeatured:      req.IsFeatured,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if req.CategoryID.Set {
		p.CategoryID = req.CategoryID.Value
		p.ClearCategory = req.CategoryID.Value == nil
	}
	return p
}

// List serves the published post listing.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := h.posts.List(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, newPostList(page.Items), newPageMeta(page))
}

// Mine lists the caller's own posts, drafts included.
func (h *Posts) Mine(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := h.posts.Mine(r.Context(), middleware.UserFromCtx(r.Context()), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, newPostList(page.Items), newPageMeta(page))
}

// ByAuthor lists one user's published posts.
func (h *Posts) ByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	q, err := listQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := h.posts.ByAuthor(r.Context(), authorID, q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, newPostList(page.Items), newPageMeta(page))
}

// Featured serves the newest featured posts.
func (h *Posts) Featured(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Featured(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, newPostList(posts))
}

// Popular serves the most viewed posts.
func (h *Posts) Popular(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Popular(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, newPostList(posts))
}

// Get serves one post with its rendered content and comment threads.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p.IsPublished() {
		h.metrics.PostViewed()
	}

	detail, err := h.detail(r, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, detail)
}

func (h *Posts) detail(r *http.Request, p *models.Post) (*postDetail, error) {
	html, err := markdown.ToHTML(p.Content)
	if err != nil {
		return nil, err
	}
	threads, err := h.comments.Threads(r.Context(), p.ID)
	if err != nil {
		return nil, err
	}
	return &postDetail{
		Post:            p,
		ContentHTML:     html,
		ReadingTime:     p.ReadingTime(),
		WordCount:       p.WordCount(),
		MetaTitle:       p.EffectiveMetaTitle(),
		MetaDescription: p.EffectiveMetaDescription(),
		Comments:        threads,
	}, nil
}

// Create stores a new post authored by the caller.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.posts.Create(r.Context(), middleware.UserFromCtx(r.Context()), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.metrics.PostCreated()
	h.cache.Invalidate(r.Context(), cache.CategoriesKey, cache.TagsKey)

	detail, err := h.detail(r, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, detail)
}

// Update applies a partial update to a post owned by the caller.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.posts.Update(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug"), req.patch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.CategoriesKey, cache.TagsKey)

	detail, err := h.detail(r, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, detail)
}

// Delete removes a post owned by the caller.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug")); err != nil {
		respondError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.CategoriesKey, cache.TagsKey)
	w.WriteHeader(http.StatusNoContent)
}

// Like adds a like to a published post.
func (h *Posts) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.posts.Like(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.metrics.PostLiked()
	respondMeta(w, http.StatusOK, map[string]int64{"likes": likes}, message{Message: "Blog post liked successfully"})
}
