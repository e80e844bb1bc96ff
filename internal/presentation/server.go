// Package presentation implements L5: thin HTTP read adapters over the
// relational repositories. It holds no business logic of its own; every
// handler is a direct read against one repository interface, shaped into
// JSON.
package presentation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/newsintel/internal/repository"
)

// Config wires the repositories one HTTP server needs.
type Config struct {
	Port        int
	Log         zerolog.Logger
	Insights    repository.BusinessInsightRepo
	Values      repository.IndicatorValueRepo
	Events      repository.IndicatorEventRepo
	Definitions repository.IndicatorDefinitionRepo
	Reputation  repository.SourceReputationRepo
	DevMode     bool
}

// Server is the L5 HTTP surface.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	startupTime time.Time

	insights    repository.BusinessInsightRepo
	values      repository.IndicatorValueRepo
	events      repository.IndicatorEventRepo
	definitions repository.IndicatorDefinitionRepo
	reputation  repository.SourceReputationRepo
}

// New builds a Server with routes and middleware installed.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "presentation").Logger(),
		startupTime: time.Now(),
		insights:    cfg.Insights,
		values:      cfg.Values,
		events:      cfg.Events,
		definitions: cfg.Definitions,
		reputation:  cfg.Reputation,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/insights", func(r chi.Router) {
			r.Get("/{companyId}", s.handleGetInsightBundle)
		})
		r.Route("/indicators", func(r chi.Router) {
			r.Get("/", s.handleListActiveIndicators)
			r.Get("/{indicatorId}/latest", s.handleGetLatestValue)
			r.Get("/{indicatorId}/history", s.handleGetValueHistory)
			r.Get("/{indicatorId}/events", s.handleGetEvents)
		})
		r.Route("/reputation", func(r chi.Router) {
			r.Get("/{sourceId}", s.handleGetReputation)
			r.Get("/{sourceId}/history", s.handleGetReputationHistory)
		})
	})
}

// Start begins serving; blocks until the server stops or errors.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting presentation HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
