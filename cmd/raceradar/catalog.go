package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/EaziLuizi/raceradar/internal/config"
	"github.com/EaziLuizi/raceradar/internal/database"
	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/repository"
	"github.com/EaziLuizi/raceradar/internal/service"
)

var errCatalogIssues = errors.New("catalog has data quality issues")

func newValidateCatalogCmd(a *app) *cobra.Command {
	var (
		strict  bool
		maxShow int
	)

	cmd := &cobra.Command{
		Use:   "validate-catalog",
		Short: "Check the configured catalog for data quality issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cat, err := a.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer cat.Close()

			report, err := service.NewDataValidator(a.log).AuditSource(ctx, cat.source)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report, maxShow)
			if strict && report.HasIssues() {
				return errCatalogIssues
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any record has issues")
	cmd.Flags().IntVar(&maxShow, "max-issues", 50, "Maximum number of issues to list")
	return cmd
}

func printReport(w io.Writer, report *service.DataQualityReport, maxShow int) {
	fmt.Fprintf(w, "Source: %s\n", report.Source)
	fmt.Fprintf(w, "Records: %d total, %d valid\n", report.Total, report.Valid)
	if !report.HasIssues() {
		fmt.Fprintln(w, "No issues found")
		return
	}

	for kind, count := range report.ByKind {
		if count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", kind, count)
		}
	}
	fmt.Fprintln(w)
	for i, issue := range report.Issues {
		if i == maxShow {
			fmt.Fprintf(w, "... and %d more\n", len(report.Issues)-maxShow)
			break
		}
		fmt.Fprintf(w, "#%d %s: %s\n", issue.Index, issue.Slug, issue.Message)
	}
}

func newImportCatalogCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-catalog",
		Short: "Normalise, validate and upsert a JSON catalog into Postgres",
		Long: `Reads races from a JSON file (or the bundled demo catalog when --file is empty),
normalises and validates them, and upserts the valid records into the races table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if a.cfg.Database.Host == "" || a.cfg.Database.Name == "" {
				return fmt.Errorf("import-catalog requires database.host and database.name")
			}

			var (
				source datasource.CatalogSource
				err    error
			)
			if file != "" {
				source, err = datasource.LoadStaticSource(file)
			} else {
				source, err = datasource.NewDemoSource()
			}
			if err != nil {
				return err
			}

			db, err := database.Initialize(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			repos, err := repository.NewRepositories(db, a.log)
			if err != nil {
				return err
			}

			importer := service.NewCatalogImporter(
				source,
				repos.Race,
				service.NewDataValidator(a.log),
				service.NewDataNormalizer(a.log),
				a.log,
			)
			stats, err := importer.Import(ctx)
			if stats != nil {
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
			}
			if err != nil {
				return err
			}

			count, err := repos.Race.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "races table now holds %d records\n", count)
			if a.cfg.Catalog.Source != config.SourcePostgres {
				a.log.Warnf("catalog.source is %q; set it to %q to serve the imported races", a.cfg.Catalog.Source, config.SourcePostgres)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON catalog to import")
	return cmd
}
