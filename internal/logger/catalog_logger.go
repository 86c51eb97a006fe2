package logger

import (
	"github.com/sirupsen/logrus"
)

// CatalogLogger provides dedicated logging for catalog access and data quality.
type CatalogLogger struct {
	*logrus.Entry
}

// NewCatalogLogger creates a new catalog logger.
func NewCatalogLogger(baseLogger *logrus.Logger) *CatalogLogger {
	return &CatalogLogger{
		Entry: baseLogger.WithField("component", "catalog"),
	}
}

// LogFetch logs a catalog fetch.
func (cl *CatalogLogger) LogFetch(source string, races int, durationMs float64) {
	cl.WithFields(logrus.Fields{
		"source":      source,
		"races":       races,
		"duration_ms": durationMs,
	}).Debug("Catalog fetched")
}

// LogFetchError logs a failed catalog fetch.
func (cl *CatalogLogger) LogFetchError(source, code string, err error) {
	cl.WithFields(logrus.Fields{
		"source": source,
		"code":   code,
		"error":  err.Error(),
	}).Error("Catalog fetch failed")
}

// LogDataQuality logs a catalog validation summary.
func (cl *CatalogLogger) LogDataQuality(source string, total, valid int, issues map[string]int) {
	entry := cl.WithFields(logrus.Fields{
		"source": source,
		"total":  total,
		"valid":  valid,
		"issues": issues,
	})
	if valid < total {
		entry.Warn("Catalog data quality issues found")
		return
	}
	entry.Info("Catalog data quality check passed")
}

// LogRefresh logs a scheduled cache refresh.
func (cl *CatalogLogger) LogRefresh(source string, races int, err error) {
	if err != nil {
		cl.WithFields(logrus.Fields{
			"source": source,
			"error":  err.Error(),
		}).Error("Catalog refresh failed")
		return
	}
	cl.WithFields(logrus.Fields{
		"source": source,
		"races":  races,
	}).Info("Catalog refresh completed")
}
