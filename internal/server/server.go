// Package server serves the resume upload flow and the portfolio preview over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume2portfolio/internal/portfolio"
	"github.com/jonathan/resume2portfolio/internal/server/ratelimit"
	"github.com/jonathan/resume2portfolio/internal/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// DefaultSessionTTL is how long an idle session keeps its shell.
const DefaultSessionTTL = 2 * time.Hour

const shutdownTimeout = 30 * time.Second

// Backend submits resumes and builds export links for a file identifier.
type Backend interface {
	upload.Submitter
	portfolio.URLBuilder
}

// Config holds server configuration
type Config struct {
	Port        int
	Backend     Backend
	MaxUploadMB int
	RateLimit   *ratelimit.Config
	SessionTTL  time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	view        *portfolio.View
	pages       *template.Template
	sessions    *sessionStore
	rateLimiter *ratelimit.Limiter
	maxUploadMB int
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = upload.MaxSizeHint >> 20
	}

	view, err := portfolio.New(cfg.Backend, &portfolio.Options{ResetPath: "/reset"})
	if err != nil {
		return nil, fmt.Errorf("failed to create portfolio view: %w", err)
	}

	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	s := &Server{
		view:        view,
		pages:       pages,
		sessions:    newSessionStore(cfg.Backend, cfg.SessionTTL),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		maxUploadMB: cfg.MaxUploadMB,
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("POST /upload", s.withRateLimit(http.HandlerFunc(s.handleUpload)))
	mux.Handle("POST /upload/drop", s.withRateLimit(http.HandlerFunc(s.handleUpload)))
	mux.Handle("POST /upload/stream", s.withRateLimit(http.HandlerFunc(s.handleUploadStream)))
	mux.HandleFunc("POST /intake/drag", s.handleDrag)
	mux.HandleFunc("POST /reset", s.handleReset)

	s.handler = s.withLogging(mux)
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Backend extraction can take minutes on large scans
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.sessions.sweepEvery(gctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.rateLimiter.Stop()
	log.Println("Server stopped")
	return err
}

// withRateLimit throttles uploads per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// extractClientID extracts the client identifier from the request.
// Proxy headers are not trusted; this is the connection's IP.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimitResponse writes a 429 with the generic upload failure message.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] upload throttled for %s (burst=%d retry_after=%v)", clientID, info.Limit, info.RetryAfter)

	s.jsonResponse(w, http.StatusTooManyRequests, map[string]string{
		"error":   "rate_limit_exceeded",
		"message": upload.FailureMessage,
	})
}
