// Package web serves the browser UI for karte: case listings and forms,
// the resource and idea boards, search, CSV export and reset.
//
// Every mutation is a form POST answered with a redirect, so the browser
// always re-renders the full view from the store.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// maxUploadMemory is the multipart memory budget; larger parts spill to
// temporary files.
const maxUploadMemory = 32 << 20

// Server renders the UI over a record store.
type Server struct {
	store   types.Store
	uploads *uploads.Dir
	log     zerolog.Logger
}

// NewServer returns a Server over an attached store. Uploaded files are
// written through dir.
func NewServer(store types.Store, dir *uploads.Dir, log zerolog.Logger) *Server {
	return &Server{store: store, uploads: dir, log: log}
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)

	router.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	router.HandleFunc("/projects/{id:[0-9]+}", s.handleProject).Methods(http.MethodGet)
	router.HandleFunc("/projects/{id:[0-9]+}", s.handleUpdateProject).Methods(http.MethodPost)
	router.HandleFunc("/projects/{id:[0-9]+}/notes", s.handleCreateNote).Methods(http.MethodPost)
	router.HandleFunc("/notes/{id:[0-9]+}", s.handleUpdateNote).Methods(http.MethodPost)

	router.HandleFunc("/resources", s.handleResources).Methods(http.MethodGet)
	router.HandleFunc("/resources", s.handleCreateResource).Methods(http.MethodPost)
	router.HandleFunc("/resources/{id:[0-9]+}", s.handleUpdateResource).Methods(http.MethodPost)

	router.HandleFunc("/ideas", s.handleIdeas).Methods(http.MethodGet)
	router.HandleFunc("/ideas", s.handleCreateIdea).Methods(http.MethodPost)
	router.HandleFunc("/ideas/{id:[0-9]+}", s.handleUpdateIdea).Methods(http.MethodPost)

	router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/export/{table}.csv", s.handleExport).Methods(http.MethodGet)
	router.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleAPISearch).Methods(http.MethodGet)

	// Stored upload paths are relative to the data directory and start with
	// the uploads directory name, so they double as URLs.
	prefix := "/" + s.uploads.Name + "/"
	router.PathPrefix(prefix).Handler(
		http.StripPrefix(prefix, http.FileServer(http.Dir(s.uploads.Root())))).Methods(http.MethodGet)

	return requestLogger(s.log)(router)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
