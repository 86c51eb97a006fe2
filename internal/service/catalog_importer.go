package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/models"
)

// RaceWriter persists catalog records
type RaceWriter interface {
	Upsert(ctx context.Context, race *models.RaceRecord) error
}

// CatalogImporter copies a catalog from one source into the database
type CatalogImporter struct {
	source     datasource.CatalogSource
	writer     RaceWriter
	validator  *DataValidator
	normalizer *DataNormalizer
	logger     logrus.FieldLogger
}

// NewCatalogImporter creates a new catalog importer
func NewCatalogImporter(
	source datasource.CatalogSource,
	writer RaceWriter,
	validator *DataValidator,
	normalizer *DataNormalizer,
	logger logrus.FieldLogger,
) *CatalogImporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CatalogImporter{
		source:     source,
		writer:     writer,
		validator:  validator,
		normalizer: normalizer,
		logger:     logger.WithField("component", "importer"),
	}
}

// Import normalises and validates every active race of the source and upserts the valid ones.
// Invalid or duplicate records are counted and skipped; a write failure aborts the run.
func (i *CatalogImporter) Import(ctx context.Context) (*ImportStats, error) {
	stats := NewImportStats()
	defer stats.Finish()

	races, err := i.source.FetchRaces(ctx, datasource.CatalogFilter{})
	if err != nil {
		stats.RecordError()
		return stats, fmt.Errorf("failed to fetch races from %s: %w", i.source.Name(), err)
	}
	stats.TotalRaces = len(races)

	i.logger.WithFields(logrus.Fields{
		"source": i.source.Name(),
		"races":  len(races),
	}).Info("Starting catalog import")

	normalized := make([]models.RaceRecord, len(races))
	for idx := range races {
		normalized[idx] = i.normalizer.NormalizeRace(races[idx])
	}

	report := i.validator.ValidateCatalog(i.source.Name(), normalized)
	rejected := make(map[int]string, len(report.Issues))
	for _, issue := range report.Issues {
		if _, seen := rejected[issue.Index]; !seen {
			rejected[issue.Index] = issue.Kind
		}
	}

	for idx := range normalized {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if kind, bad := rejected[idx]; bad {
			if kind == IssueDuplicateID || kind == IssueDuplicateSlug {
				stats.RecordDuplicate()
			} else {
				stats.RecordValidationError()
			}
			i.logger.WithFields(logrus.Fields{
				"slug": normalized[idx].Slug,
				"kind": kind,
			}).Warn("Skipping invalid race")
			continue
		}

		if err := i.writer.Upsert(ctx, &normalized[idx]); err != nil {
			stats.RecordError()
			return stats, fmt.Errorf("import aborted: %w", err)
		}
		stats.RecordImported()
	}

	i.logger.WithField("stats", stats.String()).Info("Catalog import complete")
	return stats, nil
}
