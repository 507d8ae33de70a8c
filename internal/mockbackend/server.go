package mockbackend

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps the HTTP server setup around a router and store.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a Server on a freshly seeded store.
func NewServer(addr string, logger *slog.Logger) *Server {
	router := NewRouter(NewStore(), logger)
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
