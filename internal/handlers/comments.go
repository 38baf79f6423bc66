package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/metrics"
	"blogpress/internal/middleware"
)

// Comments groups the comment endpoints.
type Comments struct {
	comments *blog.Comments
	metrics  *metrics.Metrics
}

// NewComments creates the comment handler group.
func NewComments(comments *blog.Comments, m *metrics.Metrics) *Comments {
	return &Comments{comments: comments, metrics: m}
}

type commentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent"`
}

// List serves the approved comment threads of a published post.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	threads, err := h.comments.ListForPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, threads)
}

// Create adds a comment or reply to a published post.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	c, err := h.comments.Create(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "slug"), blog.CommentInput{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.metrics.CommentCreated()
	respond(w, http.StatusCreated, c)
}

// Update edits a comment owned by the caller.
func (h *Comments) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	c, err := h.comments.Update(r.Context(), middleware.UserFromCtx(r.Context()), id, req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

// Delete removes a comment owned by the caller, with its replies.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.comments.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
