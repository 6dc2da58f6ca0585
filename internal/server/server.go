// Package server exposes the article service over HTTP: the JSON API, the
// uploaded images, health and metrics endpoints, and two HTML pages.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"newsdesk/internal/news"
	"newsdesk/internal/upload"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// CORSOrigins lists allowed origins. Empty means any origin.
	CORSOrigins []string
}

type Server struct {
	articles *news.Service
	uploads  *upload.Storage
	logger   *zap.Logger
	opts     Options
	router   *mux.Router
	handler  http.Handler
	pages    map[string]*template.Template
	server   *http.Server
	now      func() time.Time
}

func NewServer(articles *news.Service, uploads *upload.Storage, logger *zap.Logger, opts Options) *Server {
	s := &Server{
		articles: articles,
		uploads:  uploads,
		logger:   logger,
		opts:     opts,
		router:   mux.NewRouter(),
		pages:    parsePages(),
		now:      time.Now,
	}
	s.routes()
	s.handler = s.middleware(s.router)
	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

func (s *Server) routes() {
	// Router middleware only wraps matched routes.
	s.router.NotFoundHandler = s.instrument(s.accessLog(http.HandlerFunc(s.handleNotFound)))
	s.router.MethodNotAllowedHandler = s.instrument(s.accessLog(http.HandlerFunc(s.handleMethodNotAllowed)))
	s.router.Use(s.instrument, s.accessLog)

	// API
	s.router.HandleFunc("/news", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/news", s.handleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/news/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/news/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPut)
	s.router.HandleFunc("/news/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)
	s.router.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	// Uploaded images
	s.router.PathPrefix(upload.URLPrefix + "/").Handler(s.uploads.Handler()).Methods(http.MethodGet, http.MethodHead)

	// Operations
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Pages
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/view/{id:[0-9]+}", s.handleView).Methods(http.MethodGet)
}

// middleware wraps the router, outermost first: panic recovery, CORS and
// request ids. Metrics and access logging run inside the router so they
// see the matched route.
func (s *Server) middleware(next http.Handler) http.Handler {
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := requestID(next)
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(h)
	return h
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start launches the HTTP server. It blocks until the server stops and
// returns http.ErrServerClosed after Stop.
func (s *Server) Start(port string) error {
	s.server.Addr = ":" + port
	s.logger.Info("Web server listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.articles.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
