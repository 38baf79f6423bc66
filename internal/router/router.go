// Package router sets up all HTTP routes and middleware chains for the
// BlogPress API. Public reads, authenticated writes and the staff area are
// organized as route groups with their own middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogpress/internal/handlers"
	"blogpress/internal/metrics"
	"blogpress/internal/middleware"
)

// Deps carries everything the router wires together. AuthLimiter and
// Metrics may be nil.
type Deps struct {
	Tokens      middleware.AccessTokenParser
	Users       middleware.UserLoader
	AuthLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics

	Auth     *handlers.Auth
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Taxonomy *handlers.Taxonomy
	Admin    *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens, d.Users))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Middleware)
				}
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
				r.Post("/token/refresh", d.Auth.Refresh)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/logout", d.Auth.Logout)
				r.Get("/profile", d.Auth.Profile)
				r.Patch("/profile", d.Auth.UpdateProfile)
				r.Get("/me", d.Auth.Me)
				r.Post("/change-password", d.Auth.ChangePassword)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/featured", d.Posts.Featured)
			r.Get("/popular", d.Posts.Popular)
			r.Get("/{slug}", d.Posts.Get)
			r.Get("/{slug}/comments", d.Comments.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/mine", d.Posts.Mine)
				r.Post("/", d.Posts.Create)
				r.Patch("/{slug}", d.Posts.Update)
				r.Delete("/{slug}", d.Posts.Delete)
				r.Post("/{slug}/like", d.Posts.Like)
				r.Post("/{slug}/comments", d.Comments.Create)
			})
		})

		r.Get("/users/{id}/posts", d.Posts.ByAuthor)
		r.Get("/categories", d.Taxonomy.Categories)
		r.Get("/tags", d.Taxonomy.Tags)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Patch("/comments/{id}", d.Comments.Update)
			r.Delete("/comments/{id}", d.Comments.Delete)
		})

		// Staff area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireStaff)

			r.Post("/categories", d.Admin.CategoryCreate)
			r.Patch("/categories/{slug}", d.Admin.CategoryUpdate)
			r.Delete("/categories/{slug}", d.Admin.CategoryDelete)

			r.Post("/tags", d.Admin.TagCreate)
			r.Patch("/tags/{slug}", d.Admin.TagUpdate)
			r.Delete("/tags/{slug}", d.Admin.TagDelete)

			r.Post("/comments/moderate", d.Admin.ModerateComments)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not_found", "Not found.", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.", nil)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
