// Package health serves the operational endpoints of the race API: process
// status on /health and /live, and catalog readiness on /ready.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	defaultAddress      = ":8081"
	defaultCheckTimeout = 3 * time.Second
)

// Checker reports whether a dependency the catalog relies on can serve reads.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Status is the body of /health and /live.
type Status struct {
	Service   string    `json:"service"`
	State     string    `json:"state"`
	Version   string    `json:"version,omitempty"`
	Commit    string    `json:"commit,omitempty"`
	Uptime    string    `json:"uptime"`
	CheckedAt time.Time `json:"checked_at"`
}

// Dependency is the outcome of one readiness check.
type Dependency struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Readiness is the body of /ready. Ready is true only when the catalog has
// been warmed and every dependency answered.
type Readiness struct {
	Service       string       `json:"service"`
	Ready         bool         `json:"ready"`
	CatalogWarmed bool         `json:"catalog_warmed"`
	Dependencies  []Dependency `json:"dependencies"`
}

// Config holds the health server settings.
type Config struct {
	ServiceName  string
	Version      string
	Commit       string
	Address      string
	CheckTimeout time.Duration
	Logger       logrus.FieldLogger
	// Checks run on every /ready request, keyed by dependency name.
	Checks map[string]Checker
}

// Server answers status and readiness requests for the race API.
type Server struct {
	config  Config
	logger  logrus.FieldLogger
	started time.Time
	warmed  atomic.Bool
}

// NewServer creates a health server. It reports not ready until MarkWarmed.
func NewServer(cfg Config) *Server {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaultCheckTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		config:  cfg,
		logger:  logger.WithField("component", "health"),
		started: time.Now(),
	}
}

// MarkWarmed records whether the catalog is loaded and the API is serving.
func (s *Server) MarkWarmed(warmed bool) {
	s.warmed.Store(warmed)
}

// Warmed reports the value last passed to MarkWarmed.
func (s *Server) Warmed() bool {
	return s.warmed.Load()
}

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleStatus)
	r.Get("/live", s.handleStatus)
	r.Get("/ready", s.handleReady)
	return r
}

// Run serves until ctx is canceled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: s.config.CheckTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.config.Address).Info("Health endpoints listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	writeJSON(w, http.StatusOK, Status{
		Service:   s.config.ServiceName,
		State:     "up",
		Version:   s.config.Version,
		Commit:    s.config.Commit,
		Uptime:    now.Sub(s.started).Round(time.Second).String(),
		CheckedAt: now.UTC(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	deps := s.checkDependencies(r.Context())

	body := Readiness{
		Service:       s.config.ServiceName,
		CatalogWarmed: s.Warmed(),
		Dependencies:  deps,
	}
	body.Ready = body.CatalogWarmed
	for _, d := range deps {
		if !d.Healthy {
			body.Ready = false
			s.logger.WithFields(logrus.Fields{
				"dependency": d.Name,
				"error":      d.Error,
			}).Warn("Readiness check failed")
		}
	}

	code := http.StatusOK
	if !body.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

// checkDependencies pings every dependency concurrently, each under its own
// timeout, and returns the results sorted by name.
func (s *Server) checkDependencies(ctx context.Context) []Dependency {
	deps := make([]Dependency, 0, len(s.config.Checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range s.config.Checks {
		wg.Add(1)
		go func(name string, check Checker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, s.config.CheckTimeout)
			defer cancel()

			start := time.Now()
			err := check.Ping(checkCtx)
			dep := Dependency{
				Name:    name,
				Healthy: err == nil,
				Latency: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				dep.Error = err.Error()
			}

			mu.Lock()
			deps = append(deps, dep)
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
