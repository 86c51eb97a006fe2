package service

import (
	"fmt"
	"sync"
	"time"
)

// ImportStats tracks statistics about a catalog import
type ImportStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalRaces       int
	ImportedRaces    int
	Duplicates       int
	ValidationErrors int
	Errors           int
}

// NewImportStats creates a new stats tracker
func NewImportStats() *ImportStats {
	return &ImportStats{
		StartTime: time.Now(),
	}
}

// RecordImported increments the imported race count
func (m *ImportStats) RecordImported() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportedRaces++
}

// RecordDuplicate increments duplicate count
func (m *ImportStats) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments error count
func (m *ImportStats) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordValidationError increments validation error count
func (m *ImportStats) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// Finish stamps the duration
func (m *ImportStats) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

// String returns a formatted string representation of the stats
func (m *ImportStats) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalRaces > 0 {
		successRate = float64(m.ImportedRaces) / float64(m.TotalRaces) * 100
	}

	return fmt.Sprintf(
		"ImportStats{Total=%d, Imported=%d (%.1f%%), Duplicates=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalRaces,
		m.ImportedRaces,
		successRate,
		m.Duplicates,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
