package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"blogposts/app/config"
	"blogposts/app/controllers"
	"blogposts/app/routes"
	"blogposts/app/services"
)

// App is the blog post service wired to its store and HTTP server. The
// store is opened once and shared by every request.
type App struct {
	cfg     *config.Config
	server  *http.Server
	closeDB func() error
}

// NewApp opens the configured store and builds the HTTP server around it.
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, closeDB, err := openRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}

	postService := services.NewPostService(repo)
	postController := controllers.NewPostController(postService, controllers.FeedOptions{
		Title:   cfg.FeedTitle,
		BaseURL: cfg.BaseURL,
	})
	router := routes.SetupRoutes(postController)

	return &App{
		cfg:     cfg,
		server:  routes.NewServer(cfg.Addr, router, cfg.ReadTimeout, cfg.WriteTimeout),
		closeDB: closeDB,
	}, nil
}

// Handler exposes the routed handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down gracefully and closes the store.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Serve(ln)
	}()
	log.Printf("Blog post service listening on %s (store: %s)", ln.Addr(), a.cfg.Store)

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Println("Shutting down blog post service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	if err := a.closeDB(); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("failed to close store: %w", err)
	}
	return serveErr
}

// RunAppServer listens on the configured address and serves until ctx is done.
func RunAppServer(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		app.closeDB()
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return app.Serve(ctx, ln)
}
