package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"blogpress/internal/blog"
	"blogpress/internal/cache"
)

// Taxonomy serves the public category and tag listings. Encoded responses
// are cached in Valkey when a cache is configured.
type Taxonomy struct {
	taxonomy *blog.Taxonomy
	cache    *cache.ResponseCache
}

// NewTaxonomy creates the taxonomy handler group. responses may be nil.
func NewTaxonomy(taxonomy *blog.Taxonomy, responses *cache.ResponseCache) *Taxonomy {
	return &Taxonomy{taxonomy: taxonomy, cache: responses}
}

// Categories lists every category with its post count.
func (h *Taxonomy) Categories(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, cache.CategoriesKey, func(ctx context.Context) (any, error) {
		return h.taxonomy.Categories(ctx)
	})
}

// Tags lists every tag with its post count.
func (h *Taxonomy) Tags(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, cache.TagsKey, func(ctx context.Context) (any, error) {
		return h.taxonomy.Tags(ctx)
	})
}

func (h *Taxonomy) cached(w http.ResponseWriter, r *http.Request, key string, load func(context.Context) (any, error)) {
	if body, ok := h.cache.Get(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		respondRaw(w, http.StatusOK, body)
		return
	}

	data, err := load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := json.Marshal(envelope{Data: data})
	if err != nil {
		respondError(w, r, err)
		return
	}
	body = append(body, '\n')
	h.cache.Set(r.Context(), key, body)
	slog.Debug("taxonomy cache fill", "key", key)

	w.Header().Set("X-Cache", "MISS")
	respondRaw(w, http.StatusOK, body)
}
