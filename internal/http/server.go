package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "financas/internal/log"
	"financas/internal/middleware/trace"
	"financas/internal/services"
)

type Server struct {
	http.Server
	svc             *services.LedgerService
	traceMiddleware *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.LedgerService) *Server {
	mux := http.NewServeMux()
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      applog.Middleware(logger)(mux),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		svc:     svc,
		started: time.Now(),
	}

	s.traceMiddleware = trace.NewMiddleware(clientIP)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/balance", s.traced(s.handleBalance))
	mux.HandleFunc("/expenses", s.traced(s.handleExpenses))
	mux.HandleFunc("/expenses/", s.traced(s.handleExpenseByID))
	mux.HandleFunc("/stats", s.traced(s.handleStats))
	mux.HandleFunc("/report", s.traced(s.handleReport))
	mux.HandleFunc("/members", s.traced(s.handleMembers))
	mux.HandleFunc("/members/", s.traced(s.handleMemberByID))
	mux.HandleFunc("/projects", s.traced(s.handleProjects))
	mux.HandleFunc("/projects/", s.traced(s.handleProjectByID))
	mux.HandleFunc("/categories", s.traced(s.handleCategories))
	mux.HandleFunc("/categories/", s.traced(s.handleCategoryByLabel))

	return s
}

// traced wraps a handler with request tracing and baseline security headers
func (s *Server) traced(next http.HandlerFunc) http.HandlerFunc {
	wrapped := s.traceMiddleware.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next(w, r)
	}))
	return wrapped.ServeHTTP
}

// clientIP extracts the client address, honoring proxy headers
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		slog.InfoContext(ctx, "HTTP server shutting down", "addr", s.Addr)
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
