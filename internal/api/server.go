// Package api exposes the race browser over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/logger"
	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/models"
	"github.com/EaziLuizi/raceradar/internal/search"
	"github.com/EaziLuizi/raceradar/internal/service"
)

// RaceService is the subset of service.RaceFinder the API needs
type RaceService interface {
	Search(ctx context.Context, q search.Query) (search.ResultView, error)
	RaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error)
	FilterOptions() service.FilterOptions
}

// Config holds the API server settings
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	CORSMaxAge     int
	// DefaultPageSize applies when the request sends no page_size
	DefaultPageSize int
	DefaultSort     search.SortOrder
	// MetricsPath mounts the Prometheus handler; empty disables it
	MetricsPath     string
	ShutdownTimeout time.Duration
	Logger          *logrus.Logger
	Now             func() time.Time
}

// Server serves the race API
type Server struct {
	races     RaceService
	config    Config
	logger    *logrus.Logger
	reqLogger *logger.RequestLogger
	validate  *validator.Validate
	server    *http.Server
}

// NewServer creates a new API server
func NewServer(races RaceService, cfg Config) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = search.SortDateAsc
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Server{
		races:     races,
		config:    cfg,
		logger:    cfg.Logger,
		reqLogger: logger.NewRequestLogger(cfg.Logger),
		validate:  validator.New(),
	}
}

// Handler returns the API router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.observe)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         s.config.CORSMaxAge,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/races", s.handleSearch)
		r.Get("/races/{slug}", s.handleRace)
		r.Get("/filters", s.handleFilters)
	})

	if s.config.MetricsPath != "" {
		r.Method(http.MethodGet, s.config.MetricsPath, metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}

// Run serves until ctx is done, then shuts down within the configured timeout
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.config.Address).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
