package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/EaziLuizi/raceradar/internal/api"
	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/health"
	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/scheduler"
	"github.com/EaziLuizi/raceradar/internal/search"
	"github.com/EaziLuizi/raceradar/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the race API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.log.WithFields(logrus.Fields{
		"environment": a.cfg.App.Environment,
		"source":      a.cfg.Catalog.Source,
		"version":     Version,
	}).Info("RaceRadar starting")

	if a.cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	cat, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()

	cached, isCached := cat.source.(*datasource.CachedSource)
	if isCached {
		if n, err := cached.Refresh(ctx); err != nil {
			a.log.WithError(err).Warn("Initial catalog warm-up failed, serving on demand")
		} else {
			a.log.WithField("races", n).Info("Catalog cache warmed")
		}
	}

	finder := service.NewRaceFinder(cat.source, service.RaceFinderConfig{
		MaxPageSize:      a.cfg.Search.MaxPageSize,
		ServerSideFilter: a.cfg.Search.ServerSideFilter,
	}, a.log)

	var healthServer *health.Server
	if a.cfg.Health.Enabled {
		checks := map[string]health.Checker{
			"catalog": health.CheckerFunc(func(ctx context.Context) error {
				_, err := cat.source.FetchRaces(ctx, datasource.CatalogFilter{})
				return err
			}),
		}
		if cat.db != nil {
			checks["database"] = cat.db
		}
		healthServer = health.NewServer(health.Config{
			ServiceName: a.cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Address:     ":" + strconv.Itoa(a.cfg.Health.Port),
			Logger:      a.log,
			Checks:      checks,
		})
		go func() {
			if err := healthServer.Run(ctx); err != nil {
				a.log.WithError(err).Error("Health server stopped")
			}
		}()
	}

	sched := scheduler.NewScheduler(a.log)
	if a.cfg.Scheduler.Enabled {
		if isCached && a.cfg.Scheduler.CatalogRefresh != "" {
			if err := sched.ScheduleCatalogRefresh(a.cfg.Scheduler.CatalogRefresh, cached); err != nil {
				return err
			}
		}
		if a.cfg.Scheduler.CatalogValidate != "" {
			validator := service.NewDataValidator(a.log)
			if err := sched.ScheduleCatalogValidation(a.cfg.Scheduler.CatalogValidate, validator, cat.source); err != nil {
				return err
			}
		}
		if len(sched.Entries()) > 0 {
			if err := sched.Start(); err != nil {
				return err
			}
		}
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			a.log.WithError(err).Error("Failed to stop scheduler")
		}
	}()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	server := api.NewServer(finder, api.Config{
		Address:         a.cfg.Server.Address,
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		AllowedOrigins:  a.cfg.Server.CORS.AllowedOrigins,
		CORSMaxAge:      a.cfg.Server.CORS.MaxAge,
		DefaultPageSize: a.cfg.Search.DefaultPageSize,
		DefaultSort:     search.SortOrder(a.cfg.Search.DefaultSort),
		MetricsPath:     metricsPath,
		Logger:          a.log,
	})

	if healthServer != nil {
		healthServer.MarkWarmed(true)
	}

	err = server.Run(ctx)
	a.log.Info("RaceRadar stopped")
	return err
}
