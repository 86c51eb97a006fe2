// Package main provides the raceradar command line: the API server and catalog tooling.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/EaziLuizi/raceradar/internal/config"
	"github.com/EaziLuizi/raceradar/internal/database"
	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/logger"
	"github.com/EaziLuizi/raceradar/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app carries the state shared by every subcommand
type app struct {
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "raceradar",
		Short:        "Search and browse South African endurance races",
		Long:         `RaceRadar serves the race catalog API and provides tooling to search, validate and import the catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := a.setup(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			// keep stdout clean for command output
			if cmd.Name() != "serve" {
				a.log.SetOutput(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	root.AddCommand(
		newServeCmd(a),
		newSearchCmd(a),
		newRaceCmd(a),
		newValidateCatalogCmd(a),
		newImportCatalogCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, overlays secrets and builds the logger
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(a.configFile)
	if err != nil {
		return err
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

// catalog is an opened catalog source plus the database behind it, if any
type catalog struct {
	source datasource.CatalogSource
	db     *database.DB
}

func (c *catalog) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

// openCatalog builds the configured catalog source. The postgres source gets a
// connection pool and the races table is created if missing.
func (a *app) openCatalog(ctx context.Context) (*catalog, error) {
	c := &catalog{}

	var fallback datasource.CatalogSource
	if a.cfg.Catalog.Source == config.SourcePostgres {
		db, err := database.Initialize(ctx, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db

		repos, err := repository.NewRepositories(db, a.log)
		if err != nil {
			c.Close()
			return nil, err
		}
		fallback = repos.Race
	}

	source, err := datasource.NewFactory(a.cfg, a.log).NewCatalogSource(fallback)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.source = source
	return c, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "raceradar %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
