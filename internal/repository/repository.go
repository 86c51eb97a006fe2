// Package repository provides Postgres persistence for the race catalog.
package repository

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race RaceRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB, logger logrus.FieldLogger) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race: NewPostgresRaceRepository(db.GetPool(), logger),
	}, nil
}
