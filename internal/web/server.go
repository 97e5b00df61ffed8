// Package web exposes the spell corrector over HTTP.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/contextspell/internal/corrector"
	"github.com/contextspell/internal/web/handlers"
	"github.com/contextspell/internal/web/middleware"
)

// Config holds the server settings.
type Config struct {
	Host string
	Port int
}

// Server wires the corrector into an HTTP API.
type Server struct {
	config     Config
	corrector  *corrector.SpellCorrector
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
}

// NewServer creates a server around an already configured corrector.
func NewServer(config Config, sc *corrector.SpellCorrector) *Server {
	server := &Server{
		config:    config,
		corrector: sc,
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	spellHandler := &handlers.SpellHandler{Corrector: s.corrector}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", spellHandler.Health).Methods("GET")
	api.HandleFunc("/fix", spellHandler.Fix).Methods("POST")
	api.HandleFunc("/fix/normalized", spellHandler.FixNormalized).Methods("POST")
	api.HandleFunc("/candidates", spellHandler.Candidates).Methods("POST")
	api.HandleFunc("/candidates/all", spellHandler.AllCandidates).Methods("POST")
	api.HandleFunc("/model/stats", spellHandler.Stats).Methods("GET")
	api.HandleFunc("/dictionary/words/{word}", spellHandler.AddWord).Methods("POST")
	api.HandleFunc("/dictionary/words/{word}", spellHandler.RemoveWord).Methods("DELETE")

	// Wrap the whole router so CORS preflights are answered even for
	// routes whose registered methods do not include OPTIONS.
	s.handler = middleware.CORS()(middleware.RequestLogging()(s.router))
}

// Handler returns the configured handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}
