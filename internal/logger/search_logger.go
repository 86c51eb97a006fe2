package logger

import (
	"github.com/sirupsen/logrus"
)

// SearchLogger provides dedicated logging for search evaluations.
type SearchLogger struct {
	*logrus.Entry
}

// NewSearchLogger creates a new search logger.
func NewSearchLogger(baseLogger *logrus.Logger) *SearchLogger {
	return &SearchLogger{
		Entry: baseLogger.WithField("component", "search"),
	}
}

// LogEvaluation logs a completed search evaluation.
func (sl *SearchLogger) LogEvaluation(searchText, province, raceType, difficulty, sort string, catalogSize, totalCount, returned int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"search_text":   searchText,
		"province":      province,
		"race_type":     raceType,
		"difficulty":    difficulty,
		"sort":          sort,
		"catalog_size":  catalogSize,
		"total_count":   totalCount,
		"returned":      returned,
		"evaluation_ms": durationMs,
	}).Debug("Search evaluation completed")
}

// LogSkippedRecords logs malformed catalog records excluded from a result.
func (sl *SearchLogger) LogSkippedRecords(source string, skipped int) {
	sl.WithFields(logrus.Fields{
		"source":  source,
		"skipped": skipped,
	}).Warn("Malformed race records skipped")
}

// LogSupersededQuery logs a session result dropped for a newer query.
func (sl *SearchLogger) LogSupersededQuery(generation, current uint64) {
	sl.WithFields(logrus.Fields{
		"generation": generation,
		"current":    current,
	}).Debug("Query result superseded")
}
