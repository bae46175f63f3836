// ABOUTME: Development backend HTTP server for the story collaboration client.
// ABOUTME: Serves the story catalog, chat, expansion, and upload API behind a chi router.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Config holds the configuration for the development server.
type Config struct {
	Addr   string // listen address (default: "127.0.0.1:8000")
	DBPath string // SQLite database path (default: "fable.db")
	Seed   bool   // insert the sample story into an empty database
}

// Server is the development backend. It owns the story store and a responder
// that generates bot replies for the chat loop.
type Server struct {
	store     *Store
	responder Responder
	router    chi.Router
	addr      string
}

// Option configures a Server.
type Option func(*Server)

// WithResponder replaces the bot responder.
func WithResponder(r Responder) Option {
	return func(s *Server) {
		s.responder = r
	}
}

// NewServer creates a Server with the given configuration. It opens the
// store, optionally seeds it, and sets up routing.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "fable.db"
	}

	store, err := OpenStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if cfg.Seed {
		if err := store.Seed(); err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding store: %w", err)
		}
	}

	s := &Server{
		store:     store,
		responder: DetectResponder(),
		addr:      cfg.Addr,
	}
	s.router = s.buildRouter()
	return s, nil
}

// NewServerWithStore creates a Server over an existing store. Used by tests
// and callers that manage the store lifecycle themselves.
func NewServerWithStore(store *Store, opts ...Option) *Server {
	s := &Server{
		store:     store,
		responder: NewKeywordResponder(),
		addr:      "127.0.0.1:8000",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// Close releases the server's store.
func (s *Server) Close() error {
	return s.store.Close()
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured address with
// timeouts to prevent resource exhaustion from slow clients. The listener
// closes when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/stories/{storyID}", s.handleStoryPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/stories", func(r chi.Router) {
			r.Get("/", s.handleListStories)
			r.Post("/", s.handleCreateStory)

			r.Route("/{storyID}", func(r chi.Router) {
				r.Get("/", s.handleGetStory)
				r.Get("/messages", s.handleListMessages)
				r.Post("/messages", s.handleCreateMessage)
				r.Post("/elements", s.handleCreateElement)
				r.Get("/expansions", s.handleListExpansions)
			})
		})

		r.Post("/propose-expansion", s.handleProposeExpansion)
		r.Post("/upload-pdf/", s.handleUploadPDF)
	})

	return r
}
