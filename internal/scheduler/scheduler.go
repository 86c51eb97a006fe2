// Package scheduler runs periodic catalog maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/logger"
	"github.com/EaziLuizi/raceradar/internal/service"
)

// CatalogRefresher re-fetches and re-warms a cached catalog
type CatalogRefresher interface {
	Refresh(ctx context.Context) (int, error)
	Name() string
}

// CatalogAuditor validates the catalog served by a source
type CatalogAuditor interface {
	AuditSource(ctx context.Context, source datasource.CatalogSource) (*service.DataQualityReport, error)
}

// Scheduler manages scheduled catalog jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logger.CatalogLogger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(baseLogger *logrus.Logger) *Scheduler {
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		logger:          logger.NewCatalogLogger(baseLogger),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      2 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleCatalogRefresh refreshes the cached catalog on the cron expression
func (s *Scheduler) ScheduleCatalogRefresh(cronExpression string, refresher CatalogRefresher) error {
	return s.schedule(cronExpression, "catalog refresh", s.refreshJob(refresher))
}

// ScheduleCatalogValidation audits the catalog on the cron expression
func (s *Scheduler) ScheduleCatalogValidation(cronExpression string, auditor CatalogAuditor, source datasource.CatalogSource) error {
	return s.schedule(cronExpression, "catalog validation", s.validationJob(auditor, source))
}

func (s *Scheduler) schedule(cronExpression, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, job)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("Scheduled job")

	return nil
}

func (s *Scheduler) refreshJob(refresher CatalogRefresher) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		n, err := refresher.Refresh(ctx)
		s.logger.LogRefresh(refresher.Name(), n, err)
	}
}

func (s *Scheduler) validationJob(auditor CatalogAuditor, source datasource.CatalogSource) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		// AuditSource logs its own report
		if _, err := auditor.AuditSource(ctx, source); err != nil {
			s.logger.WithError(err).Error("Scheduled catalog validation failed")
		}
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop timed out: %w", ctx.Err())
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
