// Package handlers implements the JSON API of BlogPress. Handlers decode
// requests, call the services in internal/blog and internal/account, and
// translate their errors into the shared error envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"blogpress/internal/apperr"
	"blogpress/internal/middleware"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// envelope is the success body: the payload plus optional metadata.
type envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	middleware.WriteJSON(w, status, envelope{Data: data})
}

func respondMeta(w http.ResponseWriter, status int, data, meta any) {
	middleware.WriteJSON(w, status, envelope{Data: data, Meta: meta})
}

// respondRaw writes an already encoded JSON body.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError maps domain errors onto HTTP statuses. Anything that is not
// a domain error is logged and answered with a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError
	var cerr *apperr.ConflictError
	var denial *apperr.Denial

	switch {
	case errors.As(err, &verr):
		middleware.WriteError(w, http.StatusBadRequest, "validation_error", "Invalid input.", verr.Fields)
	case errors.As(err, &cerr):
		middleware.WriteError(w, http.StatusConflict, "conflict", cerr.Field+" "+cerr.Message+".",
			map[string]string{cerr.Field: "A record with this " + cerr.Field + " already exists."})
	case errors.Is(err, apperr.ErrAuthentication):
		msg := "Authentication credentials were not provided."
		if errors.As(err, &denial) {
			msg = denial.Message
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		middleware.WriteError(w, http.StatusUnauthorized, "not_authenticated", msg, nil)
	case errors.Is(err, apperr.ErrAuthorization):
		msg := "You do not have permission to perform this action."
		if errors.As(err, &denial) {
			msg = denial.Message
		}
		middleware.WriteError(w, http.StatusForbidden, "permission_denied", msg, nil)
	case errors.Is(err, apperr.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "not_found", "Not found.", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
	}
}

// decodeJSON reads a JSON object from the request body into dst.
// Malformed bodies become a validation error on "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Invalid("body", "Request body must not be empty.")
		case errors.As(err, &maxErr):
			return apperr.Invalid("body", "Request body is too large.")
		default:
			return apperr.Invalid("body", "Malformed JSON: "+err.Error())
		}
	}
	return nil
}

// message is the body of responses that only confirm an action.
type message struct {
	Message string `json:"message"`
}
