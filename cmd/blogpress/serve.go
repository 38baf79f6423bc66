package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogpress/internal/account"
	"blogpress/internal/blog"
	"blogpress/internal/cache"
	"blogpress/internal/database"
	"blogpress/internal/handlers"
	"blogpress/internal/metrics"
	"blogpress/internal/middleware"
	"blogpress/internal/router"
	"blogpress/internal/store"
	"blogpress/internal/token"
)

func serve(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN(), cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Seed development data (no-op if users already exist).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	// Valkey backs the refresh-token denylist and the taxonomy cache. The
	// API still runs without it, but logout cannot revoke tokens.
	var revoker token.Revoker
	var responses *cache.ResponseCache
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, token revocation and response caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		revoker = token.NewDenylist(valkeyClient)
		responses = cache.NewResponseCache(valkeyClient, cfg.TaxonomyCacheTTL)
		// Counts may have changed while the server was down.
		responses.InvalidateAll(ctx)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)

	accounts := account.New(userStore)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, revoker)
	posts := blog.NewPosts(postStore, categoryStore, tagStore)
	comments := blog.NewComments(postStore, commentStore)
	taxonomy := blog.NewTaxonomy(categoryStore, tagStore)
	m := metrics.New()

	r := router.New(router.Deps{
		Tokens:      tokens,
		Users:       accounts,
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst),
		Metrics:     m,
		Auth:        handlers.NewAuth(accounts, tokens, m),
		Posts:       handlers.NewPosts(posts, comments, responses, m),
		Comments:    handlers.NewComments(comments, m),
		Taxonomy:    handlers.NewTaxonomy(taxonomy, responses),
		Admin:       handlers.NewAdmin(taxonomy, comments, responses),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
