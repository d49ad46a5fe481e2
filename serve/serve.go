// Package serve exposes a rendered document directory over a loopback HTTP
// listener so the capture browser can load it via http:// when file://
// navigation is restricted.
package serve

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves one directory on 127.0.0.1 with an ephemeral port.
type Server struct {
	dir    string
	logger *slog.Logger

	srv  *http.Server
	addr string
}

// New creates a Server for dir. Call Start before URL.
func New(dir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{dir: dir, logger: logger}
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/*", http.FileServer(http.Dir(s.dir)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("serve: listen: %w", err)
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("serve: server error", "error", err)
		}
	}()

	s.logger.Debug("serve: started", "addr", s.addr, "dir", s.dir)
	return nil
}

// URL returns the address of a document inside the served directory.
func (s *Server) URL(name string) string {
	return (&url.URL{Scheme: "http", Host: s.addr, Path: "/" + name}).String()
}

// Close stops the listener.
func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}
